package customers

import (
	"context"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/internal/repo"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists customers and their debt payments.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type customerTotal struct {
	CustomerID uuid.UUID
	Total      decimal.Decimal
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.DB(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.DB(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindForUpdate loads a customer and row-locks it where the dialect supports it.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns one page of customers matching search on name or phone.
func (r *Repository) List(ctx context.Context, search string, cursor *pagination.Cursor, limit int) ([]models.Customer, error) {
	q := r.DB(ctx).Model(&models.Customer{})
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
	var rows []models.Customer
	if err := repo.Keyset(q, "", cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Balances returns outstanding debt per customer: remaining debt across their
// orders minus recorded payments. Customers without activity map to zero.
func (r *Repository) Balances(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = decimal.Zero
	}

	var debts []customerTotal
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("customer_id, COALESCE(SUM(remaining_debt), 0) AS total").
		Where("customer_id IN ?", ids).
		Group("customer_id").
		Scan(&debts).Error
	if err != nil {
		return nil, err
	}
	for _, d := range debts {
		out[d.CustomerID] = out[d.CustomerID].Add(d.Total)
	}

	var paid []customerTotal
	err = r.DB(ctx).
		Model(&models.CustomerPayment{}).
		Select("customer_id, COALESCE(SUM(amount), 0) AS total").
		Where("customer_id IN ?", ids).
		Group("customer_id").
		Scan(&paid).Error
	if err != nil {
		return nil, err
	}
	for _, p := range paid {
		out[p.CustomerID] = out[p.CustomerID].Sub(p.Total)
	}
	return out, nil
}

func (r *Repository) CreatePayment(ctx context.Context, payment *models.CustomerPayment) (*models.CustomerPayment, error) {
	if err := r.DB(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns a customer's payments, newest first.
func (r *Repository) ListPayments(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPayment, error) {
	var rows []models.CustomerPayment
	err := r.DB(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
