package reports

import (
	"context"
	"testing"
	"time"

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

type soldItem struct {
	product uuid.UUID
	name    string
	qty     int
	price   string
}

func seedOrder(t *testing.T, conn *gorm.DB, at time.Time, method enums.PaymentMethod, discount, covered string, items ...soldItem) {
	t.Helper()
	subtotal := decimal.Zero
	rows := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		price := decimal.RequireFromString(it.price)
		line := price.Mul(decimal.NewFromInt(int64(it.qty)))
		subtotal = subtotal.Add(line)
		rows = append(rows, models.OrderItem{
			ProductID:   it.product,
			ProductName: it.name,
			SKU:         "SKU-" + it.name,
			Quantity:    it.qty,
			UnitPrice:   price,
			LineTotal:   line,
		})
	}
	total := subtotal.Sub(decimal.RequireFromString(discount))
	paid := total
	if covered != "" {
		paid = decimal.RequireFromString(covered)
	}
	order := &models.Order{
		OrderNumber:    "ORD-" + uuid.NewString()[:8],
		CreatedBy:      uuid.New(),
		PaymentMethod:  method,
		DiscountType:   enums.DiscountTypeFixed,
		Subtotal:       subtotal,
		DiscountAmount: decimal.RequireFromString(discount),
		TotalPrice:     total,
		CoveredAmount:  paid,
		RemainingDebt:  total.Sub(paid),
		Items:          rows,
		CreatedAt:      at.UTC(),
	}
	require.NoError(t, conn.Create(order).Error)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestSalesSummaryAggregatesWindow(t *testing.T) {
	svc, conn := newTestService(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mdf, ply := uuid.New(), uuid.New()

	seedOrder(t, conn, day.Add(9*time.Hour), enums.PaymentMethodCash, "10", "",
		soldItem{mdf, "mdf", 2, "100"})
	seedOrder(t, conn, day.Add(11*time.Hour), enums.PaymentMethodNasiya, "0", "50",
		soldItem{ply, "ply", 1, "150"})
	seedOrder(t, conn, day.Add(15*time.Hour), enums.PaymentMethodCash, "0", "",
		soldItem{mdf, "mdf", 1, "100"}, soldItem{ply, "ply", 1, "150"})
	seedOrder(t, conn, day.Add(30*time.Hour), enums.PaymentMethodCard, "0", "",
		soldItem{mdf, "mdf", 9, "100"})

	summary, err := svc.SalesSummary(context.Background(), Range{From: day, To: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.OrderCount)
	assert.True(t, decimal.NewFromInt(600).Equal(summary.Subtotal), "subtotal %s", summary.Subtotal)
	assert.True(t, decimal.NewFromInt(10).Equal(summary.Discounts))
	assert.True(t, decimal.NewFromInt(590).Equal(summary.Total))
	assert.True(t, decimal.NewFromInt(490).Equal(summary.Covered))
	assert.True(t, decimal.NewFromInt(100).Equal(summary.Debt))

	require.Len(t, summary.ByPaymentMethod, 2)
	cash := summary.ByPaymentMethod[0]
	assert.Equal(t, enums.PaymentMethodCash, cash.PaymentMethod)
	assert.EqualValues(t, 2, cash.OrderCount)
	assert.True(t, decimal.NewFromInt(440).Equal(cash.Total))
	credit := summary.ByPaymentMethod[1]
	assert.Equal(t, enums.PaymentMethodNasiya, credit.PaymentMethod)
	assert.True(t, decimal.NewFromInt(100).Equal(credit.Debt))
}

func TestSalesSummaryEmptyWindow(t *testing.T) {
	svc, _ := newTestService(t)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	summary, err := svc.SalesSummary(context.Background(), Range{From: from, To: from.AddDate(0, 1, 0)})
	require.NoError(t, err)
	assert.Zero(t, summary.OrderCount)
	assert.True(t, summary.Total.IsZero())
	assert.Empty(t, summary.ByPaymentMethod)
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	mdf, ply, osb := uuid.New(), uuid.New(), uuid.New()

	seedOrder(t, conn, day.Add(time.Hour), enums.PaymentMethodCash, "0", "",
		soldItem{mdf, "mdf", 3, "100"}, soldItem{ply, "ply", 1, "150"})
	seedOrder(t, conn, day.Add(2*time.Hour), enums.PaymentMethodCard, "0", "",
		soldItem{osb, "osb", 5, "40"}, soldItem{mdf, "mdf", 1, "100"})

	top, err := svc.TopProducts(context.Background(), Range{From: day, To: day.AddDate(0, 0, 1)}, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, osb, top[0].ProductID)
	assert.EqualValues(t, 5, top[0].Quantity)
	assert.Equal(t, mdf, top[1].ProductID)
	assert.EqualValues(t, 4, top[1].Quantity)
	assert.True(t, decimal.NewFromInt(400).Equal(top[1].Revenue))
	assert.Equal(t, "SKU-mdf", top[1].SKU)
}

func TestRangeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

	for name, window := range map[string]Range{
		"missing":  {},
		"reversed": {From: now, To: now.Add(-time.Hour)},
		"too long": {From: now.AddDate(-2, 0, 0), To: now},
	} {
		_, err := svc.SalesSummary(context.Background(), window)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), name)
	}
}
