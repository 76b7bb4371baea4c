package basket

import (
	"context"
	"time"

	"github.com/angelmondragon/warehousepos-backend/internal/repo"
	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists baskets and their lines.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByUser loads a user's basket with its items in display order.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.DB(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB {
			return q.Order("position ASC").Order("created_at ASC")
		}).
		Where("user_id = ?", userID).
		First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

// Ensure returns the user's basket, creating an empty one on first use.
func (r *Repository) Ensure(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	basket, err := r.FindByUser(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}
	created := &models.Basket{UserID: userID}
	if err := r.DB(ctx).Omit("Items").Create(created).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return r.FindByUser(ctx, userID)
		}
		return nil, err
	}
	created.Items = []models.BasketItem{}
	return created, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.BasketItem) error {
	return r.DB(ctx).Create(item).Error
}

// SaveItem writes every column of item, including cleared service columns.
func (r *Repository) SaveItem(ctx context.Context, item *models.BasketItem) error {
	return r.DB(ctx).Save(item).Error
}

func (r *Repository) DeleteItem(ctx context.Context, basketID, itemID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Where("basket_id = ? AND id = ?", basketID, itemID).
		Delete(&models.BasketItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Empty removes every line and stamps cleared_at in one transaction, so a
// cached copy older than the stamp is never restored.
func (r *Repository) Empty(ctx context.Context, basketID uuid.UUID, at time.Time) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("basket_id = ?", basketID).Delete(&models.BasketItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Basket{}).Where("id = ?", basketID).Update("cleared_at", at).Error
	})
}

// ReplaceItems swaps the basket's lines for items in one transaction.
func (r *Repository) ReplaceItems(ctx context.Context, basketID uuid.UUID, items []models.BasketItem) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("basket_id = ?", basketID).Delete(&models.BasketItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].BasketID = basketID
		}
		return tx.Create(&items).Error
	})
}
