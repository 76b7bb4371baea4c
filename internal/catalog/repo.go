package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/internal/repo"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists products and thickness tiers.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ProductQuery filters the product listing.
type ProductQuery struct {
	Search          string
	Category        string
	IncludeInactive bool
	Cursor          *pagination.Cursor
	Limit           int
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	if !product.IsActive {
		if err := r.DB(ctx).Model(product).UpdateColumn("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return product, nil
}

// UpdateProduct writes every column of product.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProducts loads the products with the given ids. Missing ids are skipped.
func (r *Repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProducts returns one page of products, newest first, plus a look-ahead row.
func (r *Repository) ListProducts(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	q := r.DB(ctx).Model(&models.Product{})
	if !query.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if term := strings.ToLower(strings.TrimSpace(query.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		q = q.Where("category = ?", category)
	}

	var rows []models.Product
	if err := repo.Keyset(q, "", query.Cursor, query.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AdjustStock adds delta to the on-hand quantity unless the result would go
// negative. It reports whether a row changed.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty + ? >= 0", id, delta).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) CreateTier(ctx context.Context, tier *models.ThicknessTier) (*models.ThicknessTier, error) {
	if err := r.DB(ctx).Create(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// ListTiers returns the thickness catalog ordered by size.
func (r *Repository) ListTiers(ctx context.Context) ([]models.ThicknessTier, error) {
	var rows []models.ThicknessTier
	if err := r.DB(ctx).Order("size_mm ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindTier(ctx context.Context, id uuid.UUID) (*models.ThicknessTier, error) {
	var tier models.ThicknessTier
	if err := r.DB(ctx).First(&tier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *Repository) FindTiers(ctx context.Context, ids []uuid.UUID) ([]models.ThicknessTier, error) {
	if len(ids) == 0 {
		return []models.ThicknessTier{}, nil
	}
	var rows []models.ThicknessTier
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
