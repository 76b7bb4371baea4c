package customers

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages the customer directory and credit repayments.
type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, input ListCustomersInput) (*pagination.Page[CustomerDTO], error)
	RecordPayment(ctx context.Context, actorID, customerID uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error)
	ListPayments(ctx context.Context, customerID uuid.UUID) ([]PaymentDTO, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs the customer service.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerDTO, error) {
	name := strings.TrimSpace(req.Name)
	phone := normalizePhone(req.Phone)
	if name == "" {
		return nil, pkgerrors.Invalid("name", "name is required")
	}
	if phone == "" {
		return nil, pkgerrors.Invalid("phone", "phone is required")
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Customer{
		Name:    name,
		Phone:   phone,
		Address: trimmed(req.Address),
		Email:   trimmed(req.Email),
		Notes:   trimmed(req.Notes),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	dto := fromModel(created, decimal.Zero)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerDTO, error) {
	customer, err := s.load(ctx, s.repo, id, false)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.Invalid("name", "name is required")
		}
		customer.Name = name
	}
	if req.Phone != nil {
		phone := normalizePhone(*req.Phone)
		if phone == "" {
			return nil, pkgerrors.Invalid("phone", "phone is required")
		}
		customer.Phone = phone
	}
	if req.Email.Set {
		if err := validateEmail(req.Email.Value); err != nil {
			return nil, err
		}
	}
	req.Address.Apply(&customer.Address)
	req.Email.Apply(&customer.Email)
	req.Notes.Apply(&customer.Notes)
	customer.Address = trimmed(customer.Address)
	customer.Email = trimmed(customer.Email)
	customer.Notes = trimmed(customer.Notes)

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
	}
	return s.withBalance(ctx, updated)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.load(ctx, s.repo, id, false)
	if err != nil {
		return nil, err
	}
	return s.withBalance(ctx, customer)
}

func (s *service) List(ctx context.Context, input ListCustomersInput) (*pagination.Page[CustomerDTO], error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, input.Search, cursor, input.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	balances, err := s.repo.Balances(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load balances")
	}

	dtos := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, fromModel(&rows[i], balances[rows[i].ID]))
	}
	page := pagination.BuildPage(dtos, input.Limit, func(c CustomerDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return &page, nil
}

// RecordPayment books a repayment against the customer's credit debt. A
// payment larger than the outstanding balance is rejected.
func (s *service) RecordPayment(ctx context.Context, actorID, customerID uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.Invalid("amount", "amount must be positive")
	}

	var result PaymentResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, txRepo, customerID, true); err != nil {
			return err
		}
		balances, err := txRepo.Balances(ctx, []uuid.UUID{customerID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load balance")
		}
		balance := balances[customerID]
		if req.Amount.GreaterThan(balance) {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment exceeds outstanding debt").WithDetails(map[string]any{
				"balance": balance.String(),
				"amount":  req.Amount.String(),
			})
		}

		payment, err := txRepo.CreatePayment(ctx, &models.CustomerPayment{
			CustomerID: customerID,
			Amount:     req.Amount,
			Note:       trimmed(req.Note),
			RecordedBy: actorID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
		}
		result = PaymentResult{Payment: paymentFromModel(payment), Balance: balance.Sub(req.Amount)}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodeInternal, "record payment")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"customer_id": customerID.String(),
			"amount":      req.Amount.String(),
			"balance":     result.Balance.String(),
		})
		s.logg.Info(logCtx, "customer payment recorded")
	}
	return &result, nil
}

func (s *service) ListPayments(ctx context.Context, customerID uuid.UUID) ([]PaymentDTO, error) {
	if _, err := s.load(ctx, s.repo, customerID, false); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPayments(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, paymentFromModel(&rows[i]))
	}
	return out, nil
}

// Exists reports whether id names a customer.
func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return true, nil
}

func (s *service) load(ctx context.Context, r *Repository, id uuid.UUID, lock bool) (*models.Customer, error) {
	var (
		customer *models.Customer
		err      error
	)
	if lock {
		customer, err = r.FindForUpdate(ctx, id)
	} else {
		customer, err = r.FindByID(ctx, id)
	}
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return customer, nil
}

func (s *service) withBalance(ctx context.Context, customer *models.Customer) (*CustomerDTO, error) {
	balances, err := s.repo.Balances(ctx, []uuid.UUID{customer.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load balance")
	}
	dto := fromModel(customer, balances[customer.ID])
	return &dto, nil
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

func validateEmail(email *string) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(*email)); err != nil {
		return pkgerrors.Invalid("email", "email is invalid")
	}
	return nil
}

// trimmed trims v and maps blank strings to nil.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
