package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password too short")
	}
	return "hashed:" + password, nil
}

func buildTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(ServiceParams{Repo: repo, Hasher: stubHasher{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(ServiceParams{Hasher: stubHasher{}}); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(ServiceParams{Repo: NewRepository(nil)}); err == nil {
		t.Fatal("expected error without hasher")
	}
}

func TestServiceCreateUser(t *testing.T) {
	svc, repo := buildTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateUserRequest{Username: "Bob", Name: "Bob", Password: "longenough", Role: "cashier"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Username != "bob" || dto.Role != enums.UserRoleCashier {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	stored, err := repo.FindByID(ctx, dto.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.PasswordHash != "hashed:longenough" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}

	_, err = svc.Create(ctx, CreateUserRequest{Username: "BOB", Name: "Other", Password: "longenough", Role: "admin"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}
}

func TestServiceCreateUserValidation(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	cases := []CreateUserRequest{
		{Username: "  ", Name: "x", Password: "longenough", Role: "cashier"},
		{Username: "eve", Name: "x", Password: "longenough", Role: "owner"},
		{Username: "eve", Name: "x", Password: "short", Role: "cashier"},
	}
	for _, req := range cases {
		if _, err := svc.Create(ctx, req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestServiceSetActive(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, CreateUserRequest{Username: "admin", Name: "Admin", Password: "longenough", Role: "admin"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	cashier, err := svc.Create(ctx, CreateUserRequest{Username: "cash", Name: "Cash", Password: "longenough", Role: "cashier"})
	if err != nil {
		t.Fatalf("create cashier: %v", err)
	}

	if _, err := svc.SetActive(ctx, admin.ID, admin.ID, false); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict deactivating self, got %v", err)
	}

	updated, err := svc.SetActive(ctx, admin.ID, cashier.ID, false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected cashier to be inactive")
	}

	if _, err := svc.SetActive(ctx, admin.ID, uuid.New(), true); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, repo := buildTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureBootstrapAdmin(ctx, config.BootstrapConfig{})
	if err != nil || created {
		t.Fatalf("expected disabled bootstrap to be a no-op, got %v %v", created, err)
	}

	cfg := config.BootstrapConfig{AdminUsername: "Root", AdminPassword: "changeme123", AdminName: "Administrator"}
	created, err = svc.EnsureBootstrapAdmin(ctx, cfg)
	if err != nil || !created {
		t.Fatalf("expected admin to be created, got %v %v", created, err)
	}

	user, err := repo.FindByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if user.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}

	created, err = svc.EnsureBootstrapAdmin(ctx, cfg)
	if err != nil || created {
		t.Fatalf("expected second bootstrap to be a no-op, got %v %v", created, err)
	}
}
