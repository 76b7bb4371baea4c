package reports

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Range is a half-open [From, To) reporting window.
type Range struct {
	From time.Time
	To   time.Time
}

type SalesSummary struct {
	From            time.Time         `json:"from"`
	To              time.Time         `json:"to"`
	OrderCount      int64             `json:"order_count"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Discounts       decimal.Decimal   `json:"discounts"`
	Total           decimal.Decimal   `json:"total"`
	Covered         decimal.Decimal   `json:"covered"`
	Debt            decimal.Decimal   `json:"debt"`
	ByPaymentMethod []MethodBreakdown `json:"by_payment_method"`
}

type MethodBreakdown struct {
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	OrderCount    int64               `json:"order_count"`
	Total         decimal.Decimal     `json:"total"`
	Covered       decimal.Decimal     `json:"covered"`
	Debt          decimal.Decimal     `json:"debt"`
}

// TopProduct ranks a product by units sold in the window.
type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}
