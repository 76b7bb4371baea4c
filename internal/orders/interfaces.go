package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists orders and moves stock for them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error)
}

// ListFilters narrows the order history.
type ListFilters struct {
	CustomerID    *uuid.UUID
	PaymentMethod *enums.PaymentMethod
	CreatedBy     *uuid.UUID
	From          *time.Time
	To            *time.Time
}
