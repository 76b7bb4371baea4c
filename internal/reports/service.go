package reports

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
	maxRange        = 366 * 24 * time.Hour
)

type reportStore interface {
	Totals(ctx context.Context, from, to time.Time) (totalsRow, error)
	ByPaymentMethod(ctx context.Context, from, to time.Time) ([]methodRow, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]productRow, error)
}

// Service answers the back-office sales questions.
type Service interface {
	SalesSummary(ctx context.Context, window Range) (*SalesSummary, error)
	TopProducts(ctx context.Context, window Range, limit int) ([]TopProduct, error)
}

type service struct {
	repo reportStore
}

func NewService(repo reportStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SalesSummary(ctx context.Context, window Range) (*SalesSummary, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, window.From, window.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sales totals")
	}
	methods, err := s.repo.ByPaymentMethod(ctx, window.From, window.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sales by payment method")
	}

	out := &SalesSummary{
		From:            window.From.UTC(),
		To:              window.To.UTC(),
		OrderCount:      totals.OrderCount,
		Subtotal:        totals.Subtotal,
		Discounts:       totals.Discounts,
		Total:           totals.Total,
		Covered:         totals.Covered,
		Debt:            totals.Debt,
		ByPaymentMethod: make([]MethodBreakdown, 0, len(methods)),
	}
	for _, m := range methods {
		out.ByPaymentMethod = append(out.ByPaymentMethod, MethodBreakdown(m))
	}
	return out, nil
}

func (s *service) TopProducts(ctx context.Context, window Range, limit int) ([]TopProduct, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultTopLimit
	case limit > maxTopLimit:
		limit = maxTopLimit
	}
	rows, err := s.repo.TopProducts(ctx, window.From, window.To, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "top products")
	}
	out := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopProduct(row))
	}
	return out, nil
}

func (r Range) validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return pkgerrors.Invalid("from", "from and to are required")
	}
	if !r.From.Before(r.To) {
		return pkgerrors.Invalid("from", "from must be before to")
	}
	if r.To.Sub(r.From) > maxRange {
		return pkgerrors.Invalid("to", "range must not exceed one year")
	}
	return nil
}
