package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryUserFlow(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Username:     "  Cashier1 ",
		Name:         "First Cashier",
		PasswordHash: "hash",
		Role:         enums.UserRoleCashier,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "cashier1", created.Username)
	assert.True(t, created.IsActive)

	found, err := repo.FindByUsername(ctx, "CASHIER1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	at := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))
	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(at))

	require.NoError(t, repo.SetActive(ctx, created.ID, false))
	reloaded, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryCreateInactiveUser(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	inactive := false
	created, err := repo.Create(ctx, CreateUserDTO{
		Username:     "temp",
		Name:         "Temp",
		PasswordHash: "hash",
		Role:         enums.UserRoleCashier,
		IsActive:     &inactive,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	active, err := repo.Create(ctx, CreateUserDTO{
		Username:     "steady",
		Name:         "Steady",
		PasswordHash: "hash",
		Role:         enums.UserRoleCashier,
	})
	require.NoError(t, err)
	reloaded, err = repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsActive, "unset flag defaults to active")
}

func TestRepositoryDuplicateUsername(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	dto := CreateUserDTO{Username: "dup", Name: "Dup", PasswordHash: "hash", Role: enums.UserRoleAdmin}
	_, err := repo.Create(ctx, dto)
	require.NoError(t, err)

	_, err = repo.Create(ctx, dto)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositorySetActiveMissingUser(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))

	err := repo.SetActive(context.Background(), uuid.New(), false)
	assert.True(t, db.IsNotFound(err))
}
