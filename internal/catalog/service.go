package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service exposes catalog management and the price lookups used by the
// basket and order flows.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductDTO, error)
	ListTiers(ctx context.Context) ([]ThicknessTierDTO, error)
	CreateTier(ctx context.Context, req CreateTierRequest) (*ThicknessTierDTO, error)
	Lookup
}

// Lookup resolves catalog ids into pricing values. Inactive products are
// treated as missing.
type Lookup interface {
	Product(ctx context.Context, id uuid.UUID) (pricing.Product, error)
	Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.Product, error)
	Tier(ctx context.Context, id uuid.UUID) (pricing.ThicknessTier, error)
	Tiers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.ThicknessTier, error)
}

type catalogStore interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListProducts(ctx context.Context, query ProductQuery) ([]models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error)
	CreateTier(ctx context.Context, tier *models.ThicknessTier) (*models.ThicknessTier, error)
	ListTiers(ctx context.Context) ([]models.ThicknessTier, error)
	FindTier(ctx context.Context, id uuid.UUID) (*models.ThicknessTier, error)
	FindTiers(ctx context.Context, ids []uuid.UUID) ([]models.ThicknessTier, error)
}

type service struct {
	repo catalogStore
	logg *logger.Logger
}

// NewService constructs the catalog service.
func NewService(repo catalogStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListProducts(ctx, ProductQuery{
		Search:          input.Search,
		Category:        input.Category,
		IncludeInactive: input.IncludeInactive,
		Cursor:          cursor,
		Limit:           input.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, productFromModel(&rows[i]))
	}
	page := pagination.BuildPage(dtos, input.Limit, func(p ProductDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &page, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := productFromModel(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	name := strings.TrimSpace(req.Name)
	sku := strings.TrimSpace(req.SKU)
	if name == "" {
		return nil, pkgerrors.Invalid("name", "name is required")
	}
	if sku == "" {
		return nil, pkgerrors.Invalid("sku", "sku is required")
	}
	if req.UnitPrice.IsNegative() {
		return nil, pkgerrors.Invalid("unit_price", "unit price must not be negative")
	}
	if req.StockQty < 0 {
		return nil, pkgerrors.Invalid("stock_qty", "stock must not be negative")
	}
	if req.ThicknessMM.IsNegative() {
		return nil, pkgerrors.Invalid("thickness_mm", "thickness must not be negative")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := &models.Product{
		Name:        name,
		SKU:         sku,
		Category:    strings.TrimSpace(req.Category),
		Color:       strings.TrimSpace(req.Color),
		UnitPrice:   req.UnitPrice,
		StockQty:    req.StockQty,
		WidthMM:     req.WidthMM,
		HeightMM:    req.HeightMM,
		ThicknessMM: req.ThicknessMM,
		IsActive:    active,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := productFromModel(created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.Invalid("name", "name is required")
		}
		product.Name = name
	}
	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			return nil, pkgerrors.Invalid("sku", "sku is required")
		}
		product.SKU = sku
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Color != nil {
		product.Color = strings.TrimSpace(*req.Color)
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, pkgerrors.Invalid("unit_price", "unit price must not be negative")
		}
		product.UnitPrice = *req.UnitPrice
	}
	if req.WidthMM != nil {
		product.WidthMM = *req.WidthMM
	}
	if req.HeightMM != nil {
		product.HeightMM = *req.HeightMM
	}
	if req.ThicknessMM != nil {
		if req.ThicknessMM.IsNegative() {
			return nil, pkgerrors.Invalid("thickness_mm", "thickness must not be negative")
		}
		product.ThicknessMM = *req.ThicknessMM
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := productFromModel(updated)
	return &dto, nil
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductDTO, error) {
	if delta == 0 {
		return nil, pkgerrors.Invalid("delta", "delta must not be zero")
	}
	changed, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock")
	}
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
			"product_id": id,
			"stock_qty":  product.StockQty,
			"delta":      delta,
		})
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": id.String(), "delta": delta, "stock_qty": product.StockQty})
		s.logg.Info(logCtx, "stock adjusted")
	}
	dto := productFromModel(product)
	return &dto, nil
}

func (s *service) ListTiers(ctx context.Context) ([]ThicknessTierDTO, error) {
	rows, err := s.repo.ListTiers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list thickness tiers")
	}
	out := make([]ThicknessTierDTO, 0, len(rows))
	for i := range rows {
		out = append(out, tierFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateTier(ctx context.Context, req CreateTierRequest) (*ThicknessTierDTO, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, pkgerrors.Invalid("label", "label is required")
	}
	if !req.SizeMM.GreaterThan(decimal.Zero) {
		return nil, pkgerrors.Invalid("size_mm", "size must be positive")
	}
	if !req.PricePerMeter.GreaterThan(decimal.Zero) {
		return nil, pkgerrors.Invalid("price_per_meter", "price per meter must be positive")
	}
	created, err := s.repo.CreateTier(ctx, &models.ThicknessTier{
		Label:         label,
		SizeMM:        req.SizeMM,
		PricePerMeter: req.PricePerMeter,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "thickness already priced")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create thickness tier")
	}
	dto := tierFromModel(created)
	return &dto, nil
}

func (s *service) Product(ctx context.Context, id uuid.UUID) (pricing.Product, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return pricing.Product{}, err
	}
	if !product.IsActive {
		return pricing.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return PricingProduct(*product), nil
}

func (s *service) Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.Product, error) {
	rows, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	out := make(map[uuid.UUID]pricing.Product, len(rows))
	for _, row := range rows {
		if row.IsActive {
			out[row.ID] = PricingProduct(row)
		}
	}
	return out, nil
}

func (s *service) Tier(ctx context.Context, id uuid.UUID) (pricing.ThicknessTier, error) {
	tier, err := s.repo.FindTier(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pricing.ThicknessTier{}, pkgerrors.Invalid("thickness_id", "unknown thickness")
		}
		return pricing.ThicknessTier{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load thickness tier")
	}
	return PricingTier(*tier), nil
}

func (s *service) Tiers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.ThicknessTier, error) {
	rows, err := s.repo.FindTiers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load thickness tiers")
	}
	out := make(map[uuid.UUID]pricing.ThicknessTier, len(rows))
	for _, row := range rows {
		out[row.ID] = PricingTier(row)
	}
	return out, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}
