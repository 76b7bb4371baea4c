package catalog

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog entry returned to the till.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"dgte0"`
	StockQty    int             `json:"stock_qty"`
	WidthMM     int             `json:"width_mm"`
	HeightMM    int             `json:"height_mm"`
	ThicknessMM decimal.Decimal `json:"thickness_mm"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ThicknessTierDTO is one edge-banding price list entry.
type ThicknessTierDTO struct {
	ID            uuid.UUID       `json:"id"`
	Label         string          `json:"label"`
	SizeMM        decimal.Decimal `json:"size_mm"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
}

// CreateProductRequest is the admin payload for a new catalog entry.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Category    string          `json:"category" validate:"max=64"`
	Color       string          `json:"color" validate:"max=64"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"dgte0"`
	StockQty    int             `json:"stock_qty" validate:"gte=0"`
	WidthMM     int             `json:"width_mm" validate:"gte=0"`
	HeightMM    int             `json:"height_mm" validate:"gte=0"`
	ThicknessMM decimal.Decimal `json:"thickness_mm" validate:"dgte0"`
	IsActive    *bool           `json:"is_active"`
}

// UpdateProductRequest changes only the fields that are present.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	SKU         *string          `json:"sku" validate:"omitempty,max=64"`
	Category    *string          `json:"category" validate:"omitempty,max=64"`
	Color       *string          `json:"color" validate:"omitempty,max=64"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,dgte0"`
	WidthMM     *int             `json:"width_mm" validate:"omitempty,gte=0"`
	HeightMM    *int             `json:"height_mm" validate:"omitempty,gte=0"`
	ThicknessMM *decimal.Decimal `json:"thickness_mm" validate:"omitempty,dgte0"`
	IsActive    *bool            `json:"is_active"`
}

// AdjustStockRequest moves on-hand stock by Delta (receipts are positive).
type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CreateTierRequest adds a thickness to the edge-banding price list.
type CreateTierRequest struct {
	Label         string          `json:"label" validate:"required,max=32"`
	SizeMM        decimal.Decimal `json:"size_mm" validate:"dgt0"`
	PricePerMeter decimal.Decimal `json:"price_per_meter" validate:"dgt0"`
}

// ListProductsInput carries listing filters from the controller.
type ListProductsInput struct {
	Search          string
	Category        string
	IncludeInactive bool
	Limit           int
	Cursor          string
}

func productFromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Category:    p.Category,
		Color:       p.Color,
		UnitPrice:   p.UnitPrice,
		StockQty:    p.StockQty,
		WidthMM:     p.WidthMM,
		HeightMM:    p.HeightMM,
		ThicknessMM: p.ThicknessMM,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func tierFromModel(t *models.ThicknessTier) ThicknessTierDTO {
	return ThicknessTierDTO{
		ID:            t.ID,
		Label:         t.Label,
		SizeMM:        t.SizeMM,
		PricePerMeter: t.PricePerMeter,
	}
}

// PricingProduct converts a stored product into the engine's view.
func PricingProduct(p models.Product) pricing.Product {
	return pricing.Product{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		UnitPrice:   p.UnitPrice,
		StockQty:    p.StockQty,
		WidthMM:     p.WidthMM,
		HeightMM:    p.HeightMM,
		ThicknessMM: p.ThicknessMM,
		Category:    p.Category,
		Color:       p.Color,
	}
}

// PricingTier converts a stored thickness tier into the engine's view.
func PricingTier(t models.ThicknessTier) pricing.ThicknessTier {
	return pricing.ThicknessTier{
		ID:            t.ID,
		SizeMM:        t.SizeMM,
		PricePerMeter: t.PricePerMeter,
		Label:         t.Label,
	}
}
