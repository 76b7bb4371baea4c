package orders

import (
	"context"

	"github.com/angelmondragon/warehousepos-backend/internal/repo"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

// Create inserts the order together with its items and services.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

// DecrementStock takes quantity off the product's stock only when enough is
// on hand. It reports whether the row changed.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, quantity).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items").
		Preload("Services").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	q := r.DB(ctx).Model(&models.Order{}).Preload("Items").Preload("Services")
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *filters.PaymentMethod)
	}
	if filters.CreatedBy != nil {
		q = q.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.From != nil {
		q = q.Where("created_at >= ?", filters.From.UTC())
	}
	if filters.To != nil {
		q = q.Where("created_at < ?", filters.To.UTC())
	}

	var rows []models.Order
	if err := repo.Keyset(q, "", cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
