package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable board or panel with its on-hand stock.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	SKU         string          `gorm:"column:sku;not null;uniqueIndex"`
	Category    string          `gorm:"column:category;not null;default:''"`
	Color       string          `gorm:"column:color;not null;default:''"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	StockQty    int             `gorm:"column:stock_qty;not null;default:0"`
	WidthMM     int             `gorm:"column:width_mm;not null;default:0"`
	HeightMM    int             `gorm:"column:height_mm;not null;default:0"`
	ThicknessMM decimal.Decimal `gorm:"column:thickness_mm;type:numeric(6,2);not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ThicknessTier prices edge banding per linear meter for one tape thickness.
type ThicknessTier struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Label         string          `gorm:"column:label;not null"`
	SizeMM        decimal.Decimal `gorm:"column:size_mm;type:numeric(6,2);not null;uniqueIndex"`
	PricePerMeter decimal.Decimal `gorm:"column:price_per_meter;type:numeric(14,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ThicknessTier) TableName() string {
	return "thickness_tiers"
}

func (t *ThicknessTier) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}
