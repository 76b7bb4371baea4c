package customers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), nil)
	require.NoError(t, err)
	return svc, conn
}

func strPtr(v string) *string { return &v }

func seedCreditOrder(t *testing.T, conn *gorm.DB, customerID uuid.UUID, total, covered string) {
	t.Helper()
	totalDec := decimal.RequireFromString(total)
	coveredDec := decimal.RequireFromString(covered)
	order := &models.Order{
		OrderNumber:    "ORD-" + uuid.NewString()[:8],
		CustomerID:     &customerID,
		CreatedBy:      uuid.New(),
		PaymentMethod:  enums.PaymentMethodNasiya,
		DiscountType:   enums.DiscountTypeFixed,
		Subtotal:       totalDec,
		DiscountAmount: decimal.Zero,
		TotalPrice:     totalDec,
		CoveredAmount:  coveredDec,
		RemainingDebt:  totalDec.Sub(coveredDec),
	}
	require.NoError(t, conn.Create(order).Error)
}

func TestCreateAndGetCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerRequest{
		Name:    " Aziz ",
		Phone:   "+998 90 123 45 67",
		Address: strPtr("  "),
		Email:   strPtr("aziz@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aziz", created.Name)
	assert.Equal(t, "+998901234567", created.Phone)
	assert.Nil(t, created.Address)
	assert.True(t, created.Balance.IsZero())

	_, err = svc.Create(ctx, CreateCustomerRequest{Name: "Other", Phone: "+998901234567"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Create(ctx, CreateCustomerRequest{Name: "Bad", Phone: "1", Email: strPtr("nope")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateCustomerClearsNullableFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerRequest{Name: "Dilnoza", Phone: "555", Notes: strPtr("prefers white MDF")})
	require.NoError(t, err)

	var req UpdateCustomerRequest
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null,"address":"Chilonzor 5"}`), &req))
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Nil(t, updated.Notes)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Chilonzor 5", *updated.Address)
	assert.Equal(t, "Dilnoza", updated.Name)
}

func TestBalanceAndPayments(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateCustomerRequest{Name: "Bekzod", Phone: "777"})
	require.NoError(t, err)
	seedCreditOrder(t, conn, customer.ID, "1000", "400")
	seedCreditOrder(t, conn, customer.ID, "500", "500")

	got, err := svc.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(600)), "balance %s", got.Balance)

	actor := uuid.New()
	result, err := svc.RecordPayment(ctx, actor, customer.ID, RecordPaymentRequest{Amount: decimal.NewFromInt(250), Note: strPtr("cash")})
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, actor, result.Payment.RecordedBy)

	_, err = svc.RecordPayment(ctx, actor, customer.ID, RecordPaymentRequest{Amount: decimal.NewFromInt(351)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.RecordPayment(ctx, actor, customer.ID, RecordPaymentRequest{Amount: decimal.Zero})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.RecordPayment(ctx, actor, uuid.New(), RecordPaymentRequest{Amount: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	payments, err := svc.ListPayments(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	page, err := svc.List(ctx, ListCustomersInput{Search: "bek"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Balance.Equal(decimal.NewFromInt(350)))
}

func TestExists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateCustomerRequest{Name: "Exists", Phone: "1"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
