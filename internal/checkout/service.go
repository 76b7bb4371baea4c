package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/metrics"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
	Exists(ctx context.Context, key string) (bool, error)
	CheckoutLockKey(userID string) string
}

type basketSource interface {
	Lines(ctx context.Context, userID uuid.UUID) ([]pricing.CartLine, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type orderCreator interface {
	Create(ctx context.Context, actorID uuid.UUID, req pricing.OrderRequest) (*orders.OrderDTO, error)
}

// Service turns the caller's basket into an order.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
	Preview(ctx context.Context, userID uuid.UUID, input Input) (*Preview, error)
	Status(ctx context.Context, userID uuid.UUID) (*Status, error)
}

type ServiceParams struct {
	Locker  locker
	Basket  basketSource
	Orders  orderCreator
	Metrics *metrics.CheckoutMetrics
	Logger  *logger.Logger
	LockTTL time.Duration
}

type service struct {
	locker  locker
	basket  basketSource
	orders  orderCreator
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	lockTTL time.Duration
}

const defaultLockTTL = 30 * time.Second

func NewService(params ServiceParams) (Service, error) {
	if params.Locker == nil {
		return nil, fmt.Errorf("checkout locker required")
	}
	if params.Basket == nil {
		return nil, fmt.Errorf("basket source required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	ttl := params.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &service{
		locker:  params.Locker,
		basket:  params.Basket,
		orders:  params.Orders,
		metrics: params.Metrics,
		logg:    params.Logger,
		lockTTL: ttl,
	}, nil
}

func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	method := input.PaymentMethod.String()
	started := time.Now()
	s.metrics.IncAttempt(method)

	key := s.locker.CheckoutLockKey(userID.String())
	token := uuid.NewString()
	acquired, err := s.locker.AcquireLock(ctx, key, token, s.lockTTL)
	if err != nil {
		s.metrics.IncOutcome(method, metrics.OutcomeFailure)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		s.metrics.IncOutcome(method, metrics.OutcomeBusy)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	defer s.release(ctx, key, token)

	result, err := s.submit(ctx, userID, input)
	s.metrics.ObserveDuration(method, time.Since(started))
	if err != nil {
		s.metrics.IncOutcome(method, metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncOutcome(method, metrics.OutcomeSuccess)
	return result, nil
}

// submit drives one Machine through a single submission. The machine is
// not kept afterwards; Status reports the lock instead.
func (s *service) submit(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	machine := NewMachine()

	lines, err := s.basket.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := machine.Begin(len(lines)); err != nil {
		return nil, err
	}
	if err := pricing.ValidateOrderServices(lines); err != nil {
		s.reportRejectedServices(ctx, userID, lines)
		return nil, s.fail(ctx, machine, userID, err)
	}

	summary := pricing.Aggregate(lines, input.Discount, input.PaymentMethod, input.AmountPaid)
	req := pricing.BuildOrderRequest(lines, summary, input.CustomerID)

	order, err := s.orders.Create(ctx, userID, req)
	if err != nil {
		return nil, s.fail(ctx, machine, userID, pkgerrors.EnsureTyped(err, pkgerrors.CodeDependency, "submit order"))
	}
	if err := machine.Succeed(order); err != nil {
		return nil, err
	}

	if err := s.basket.Clear(ctx, userID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "clear basket after checkout", err)
	}

	return &Result{State: machine.State(), Order: order, Summary: summary}, nil
}

func (s *service) fail(ctx context.Context, machine *Machine, userID uuid.UUID, err error) error {
	if transitionErr := machine.Fail(err); transitionErr != nil {
		return transitionErr
	}
	s.logFailure(ctx, userID, err)
	return err
}

func (s *service) Preview(ctx context.Context, userID uuid.UUID, input Input) (*Preview, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	lines, err := s.basket.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	cutting, banding := pricing.ServiceLineCounts(lines)
	return &Preview{
		Summary:              pricing.Aggregate(lines, input.Discount, input.PaymentMethod, input.AmountPaid),
		LineCount:            len(lines),
		Submittable:          len(lines) > 0 && pricing.ValidateOrderServices(lines) == nil,
		ExtraCuttingServices: extra(cutting),
		ExtraBandingServices: extra(banding),
	}, nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	held, err := s.locker.Exists(ctx, s.locker.CheckoutLockKey(userID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read checkout lock")
	}
	if held {
		return &Status{State: enums.CheckoutStateSubmitting}, nil
	}
	return &Status{State: enums.CheckoutStateIdle}, nil
}

// release runs on a context detached from the request so a cancelled client
// still frees its lock.
func (s *service) release(ctx context.Context, key, token string) {
	err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key, token)
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "release checkout lock", err)
	}
}

func (s *service) reportRejectedServices(ctx context.Context, userID uuid.UUID, lines []pricing.CartLine) {
	cutting, banding := pricing.ServiceLineCounts(lines)
	s.metrics.AddRejectedServices(enums.ServiceKindCutting.String(), extra(cutting))
	s.metrics.AddRejectedServices(enums.ServiceKindEdgeBanding.String(), extra(banding))
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithUserID(ctx, userID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"cutting_lines":      cutting,
		"edge_banding_lines": banding,
	})
	s.logg.Warn(logCtx, "checkout refused: basket has more services than one order carries")
}

func (s *service) logFailure(ctx context.Context, userID uuid.UUID, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithUserID(ctx, userID.String())
	logCtx = s.logg.WithField(logCtx, "code", string(pkgerrors.CodeOf(err)))
	s.logg.Warn(logCtx, "checkout failed")
}

// extra counts the service lines beyond the one an order can carry.
func extra(count int) int {
	if count <= 1 {
		return 0
	}
	return count - 1
}

// Input is what the till sends with the checkout trigger.
type Input struct {
	Discount      pricing.DiscountSpec `json:"discount"`
	PaymentMethod enums.PaymentMethod  `json:"payment_method"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	CustomerID    *uuid.UUID           `json:"customer_id,omitempty"`
}

func (in Input) validate() error {
	if !in.PaymentMethod.IsValid() {
		return pkgerrors.Invalid("payment_method", "unknown payment method")
	}
	return in.Discount.Validate()
}

// Result is a successful checkout.
type Result struct {
	State   enums.CheckoutState  `json:"state"`
	Order   *orders.OrderDTO     `json:"order"`
	Summary pricing.OrderSummary `json:"summary"`
}

// Preview is the totals panel for the current basket. Submittable is false
// for an empty basket or one with more than one line per service kind.
type Preview struct {
	Summary              pricing.OrderSummary `json:"summary"`
	LineCount            int                  `json:"line_count"`
	Submittable          bool                 `json:"submittable"`
	ExtraCuttingServices int                  `json:"extra_cutting_services"`
	ExtraBandingServices int                  `json:"extra_edge_banding_services"`
}

// Status is idle or submitting, read from the per-user submit lock.
type Status struct {
	State enums.CheckoutState `json:"state"`
}
