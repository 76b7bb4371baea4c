// Package pricing computes cart line totals, board services, discounts and
// order summaries, and maps a priced cart onto the order-creation payload.
// Every function is pure; callers supply already-loaded products and tiers.
package pricing

import (
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog view the engine prices against.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	StockQty    int             `json:"stock_qty"`
	WidthMM     int             `json:"width_mm"`
	HeightMM    int             `json:"height_mm"`
	ThicknessMM decimal.Decimal `json:"thickness_mm"`
	Category    string          `json:"category"`
	Color       string          `json:"color"`
}

// ThicknessTier is one entry of the edge-banding price list.
type ThicknessTier struct {
	ID            uuid.UUID       `json:"id"`
	SizeMM        decimal.Decimal `json:"size_mm"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
	Label         string          `json:"label"`
}

// CuttingService splits boards, priced per cut.
type CuttingService struct {
	ID          uuid.UUID       `json:"id"`
	Boards      int             `json:"number_of_boards"`
	PricePerCut decimal.Decimal `json:"price_per_cut"`
}

// Total is Boards × PricePerCut.
func (c CuttingService) Total() decimal.Decimal {
	return decimal.NewFromInt(int64(c.Boards)).Mul(c.PricePerCut)
}

// EdgeBandingService covers panel edges with tape of one thickness tier.
type EdgeBandingService struct {
	ID        uuid.UUID       `json:"id"`
	Thickness ThicknessTier   `json:"thickness"`
	WidthMM   decimal.Decimal `json:"width"`
	HeightMM  decimal.Decimal `json:"height"`
}

// LinearMeters is the perimeter of the panel in meters.
func (e EdgeBandingService) LinearMeters() decimal.Decimal {
	return LinearMeters(e.WidthMM, e.HeightMM)
}

func (e EdgeBandingService) Total() decimal.Decimal {
	return e.LinearMeters().Mul(e.Thickness.PricePerMeter)
}

// CartLine is one product entry in a cart with its optional services.
type CartLine struct {
	ID          uuid.UUID           `json:"id"`
	Product     Product             `json:"product"`
	Quantity    int                 `json:"quantity"`
	Cutting     *CuttingService     `json:"cutting_service,omitempty"`
	EdgeBanding *EdgeBandingService `json:"edge_banding_service,omitempty"`
}

// DiscountSpec is a discount as entered at the till.
type DiscountSpec struct {
	Type      enums.DiscountType `json:"type"`
	Magnitude decimal.Decimal    `json:"magnitude"`
}

// NoDiscount is a zero fixed discount.
func NoDiscount() DiscountSpec {
	return DiscountSpec{Type: enums.DiscountTypeFixed, Magnitude: decimal.Zero}
}

// OrderSummary holds the computed totals of a cart.
type OrderSummary struct {
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	DiscountType   enums.DiscountType  `json:"discount_type"`
	Total          decimal.Decimal     `json:"total"`
	RemainingDebt  decimal.Decimal     `json:"remaining_debt"`
	CoveredAmount  decimal.Decimal     `json:"covered_amount"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
}

// OrderRequest is the payload accepted by order creation.
type OrderRequest struct {
	Items              []OrderItem         `json:"items"`
	Discount           decimal.Decimal     `json:"discount"`
	DiscountType       enums.DiscountType  `json:"discount_type"`
	CoveredAmount      string              `json:"covered_amount"`
	CustomerID         *uuid.UUID          `json:"customer_id,omitempty"`
	CuttingService     *CuttingSpec        `json:"cutting_service,omitempty"`
	EdgeBandingService *EdgeBandingSpec    `json:"edge_banding_service,omitempty"`
	PaymentMethod      enums.PaymentMethod `json:"payment_method"`
}

type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CuttingSpec struct {
	NumberOfBoards int             `json:"number_of_boards"`
	PricePerCut    decimal.Decimal `json:"price_per_cut"`
}

type EdgeBandingSpec struct {
	ThicknessID uuid.UUID       `json:"thickness_id"`
	Width       decimal.Decimal `json:"width"`
	Height      decimal.Decimal `json:"height"`
}
