package models

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a completed sale with the totals computed at creation time.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber    string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID     *uuid.UUID          `gorm:"column:customer_id;type:uuid;index"`
	CreatedBy      uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	DiscountType   enums.DiscountType  `gorm:"column:discount_type;type:text;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,2);not null"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(14,2);not null"`
	TotalPrice     decimal.Decimal     `gorm:"column:total_price;type:numeric(14,2);not null"`
	CoveredAmount  decimal.Decimal     `gorm:"column:covered_amount;type:numeric(14,2);not null"`
	RemainingDebt  decimal.Decimal     `gorm:"column:remaining_debt;type:numeric(14,2);not null"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Services       []OrderService      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem snapshots the product and price sold on an order.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName string          `gorm:"column:product_name;not null"`
	SKU         string          `gorm:"column:sku;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// OrderService records a cutting or edge-banding charge on an order.
type OrderService struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Kind          enums.ServiceKind   `gorm:"column:kind;type:text;not null"`
	Boards        *int                `gorm:"column:boards"`
	PricePerCut   decimal.NullDecimal `gorm:"column:price_per_cut;type:numeric(14,2)"`
	ThicknessID   *uuid.UUID          `gorm:"column:thickness_id;type:uuid"`
	WidthMM       decimal.NullDecimal `gorm:"column:width_mm;type:numeric(10,2)"`
	HeightMM      decimal.NullDecimal `gorm:"column:height_mm;type:numeric(10,2)"`
	LinearMeters  decimal.NullDecimal `gorm:"column:linear_meters;type:numeric(12,3)"`
	PricePerMeter decimal.NullDecimal `gorm:"column:price_per_meter;type:numeric(14,2)"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(14,2);not null"`
}

func (s *OrderService) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
