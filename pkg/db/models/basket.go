package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Basket is the single authoritative cart of a till user. ClearedAt marks
// the last deliberate emptying, such as a completed checkout.
type Basket struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []BasketItem `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE"`
	ClearedAt *time.Time   `gorm:"column:cleared_at"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Basket) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// BasketItem is one cart line. Cutting and edge-banding columns are null when
// the service is not attached.
type BasketItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BasketID  uuid.UUID `gorm:"column:basket_id;type:uuid;not null;uniqueIndex:idx_basket_items_basket_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_basket_items_basket_product"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`

	CuttingID          *uuid.UUID          `gorm:"column:cutting_id;type:uuid"`
	CuttingBoards      *int                `gorm:"column:cutting_boards"`
	CuttingPricePerCut decimal.NullDecimal `gorm:"column:cutting_price_per_cut;type:numeric(14,2)"`

	BandingID          *uuid.UUID          `gorm:"column:banding_id;type:uuid"`
	BandingThicknessID *uuid.UUID          `gorm:"column:banding_thickness_id;type:uuid"`
	BandingWidthMM     decimal.NullDecimal `gorm:"column:banding_width_mm;type:numeric(10,2)"`
	BandingHeightMM    decimal.NullDecimal `gorm:"column:banding_height_mm;type:numeric(10,2)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *BasketItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func (i BasketItem) HasCutting() bool {
	return i.CuttingBoards != nil && i.CuttingPricePerCut.Valid
}

func (i BasketItem) HasEdgeBanding() bool {
	return i.BandingThicknessID != nil && i.BandingWidthMM.Valid && i.BandingHeightMM.Valid
}
