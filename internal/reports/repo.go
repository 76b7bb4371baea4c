package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/warehousepos-backend/internal/repo"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	totalsSQL = `
SELECT
  COUNT(*) AS order_count,
  COALESCE(SUM(subtotal), 0) AS subtotal,
  COALESCE(SUM(discount_amount), 0) AS discounts,
  COALESCE(SUM(total_price), 0) AS total,
  COALESCE(SUM(covered_amount), 0) AS covered,
  COALESCE(SUM(remaining_debt), 0) AS debt
FROM orders
WHERE created_at >= ? AND created_at < ?
`

	byMethodSQL = `
SELECT
  payment_method,
  COUNT(*) AS order_count,
  COALESCE(SUM(total_price), 0) AS total,
  COALESCE(SUM(covered_amount), 0) AS covered,
  COALESCE(SUM(remaining_debt), 0) AS debt
FROM orders
WHERE created_at >= ? AND created_at < ?
GROUP BY payment_method
ORDER BY payment_method ASC
`

	topProductsSQL = `
SELECT
  order_items.product_id AS product_id,
  MAX(order_items.product_name) AS product_name,
  MAX(order_items.sku) AS sku,
  SUM(order_items.quantity) AS quantity,
  COALESCE(SUM(order_items.line_total), 0) AS revenue
FROM order_items
JOIN orders ON orders.id = order_items.order_id
WHERE orders.created_at >= ? AND orders.created_at < ?
GROUP BY order_items.product_id
ORDER BY quantity DESC, revenue DESC
LIMIT ?
`
)

type totalsRow struct {
	OrderCount int64
	Subtotal   decimal.Decimal
	Discounts  decimal.Decimal
	Total      decimal.Decimal
	Covered    decimal.Decimal
	Debt       decimal.Decimal
}

type methodRow struct {
	PaymentMethod enums.PaymentMethod
	OrderCount    int64
	Total         decimal.Decimal
	Covered       decimal.Decimal
	Debt          decimal.Decimal
}

type productRow struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int64
	Revenue     decimal.Decimal
}

// Repository runs the read-only sales aggregates.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Totals(ctx context.Context, from, to time.Time) (totalsRow, error) {
	var row totalsRow
	err := r.DB(ctx).Raw(totalsSQL, from.UTC(), to.UTC()).Scan(&row).Error
	return row, err
}

func (r *Repository) ByPaymentMethod(ctx context.Context, from, to time.Time) ([]methodRow, error) {
	var rows []methodRow
	if err := r.DB(ctx).Raw(byMethodSQL, from.UTC(), to.UTC()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]productRow, error) {
	var rows []productRow
	if err := r.DB(ctx).Raw(topProductsSQL, from.UTC(), to.UTC(), limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
