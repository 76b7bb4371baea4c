package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type priceLookup interface {
	Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.Product, error)
	Tiers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.ThicknessTier, error)
}

type customerChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service creates and reads orders. Totals are always recomputed from the
// catalog; client-supplied prices are never trusted.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, req pricing.OrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListOrdersInput) (*pagination.Page[OrderDTO], error)
}

type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Catalog   priceLookup
	Customers customerChecker
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	catalog   priceLookup
	customers customerChecker
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer checker required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		catalog:   params.Catalog,
		customers: params.Customers,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, req pricing.OrderRequest) (*OrderDTO, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	lines, err := s.priceLines(ctx, req)
	if err != nil {
		return nil, err
	}

	demand := aggregateDemand(req.Items)
	for _, line := range lines {
		if line.Product.StockQty < demand[line.Product.ID] {
			return nil, insufficientStock(line.Product.ID, demand[line.Product.ID], line.Product.StockQty)
		}
	}

	subtotal := pricing.Subtotal(lines)
	if req.Discount.GreaterThan(subtotal) {
		return nil, pkgerrors.Invalid("discount", "discount exceeds subtotal")
	}

	covered, err := parseCovered(req.CoveredAmount)
	if err != nil {
		return nil, err
	}
	summary := pricing.Aggregate(lines, pricing.DiscountSpec{
		Type:      enums.DiscountTypeFixed,
		Magnitude: req.Discount,
	}, req.PaymentMethod, covered)
	if req.PaymentMethod.IsCredit() && covered.GreaterThan(summary.Total) {
		return nil, pkgerrors.Invalid("covered_amount", "covered amount exceeds total")
	}

	if err := s.checkCustomer(ctx, req, summary); err != nil {
		return nil, err
	}

	order := buildOrder(actorID, req, lines, summary, s.now())
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		for _, productID := range sortedProductIDs(demand) {
			ok, err := r.DecrementStock(ctx, productID, demand[productID])
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				return insufficientStock(productID, demand[productID], -1)
			}
		}
		if err := r.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number collision")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodeInternal, "create order")
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"order_number":   order.OrderNumber,
			"payment_method": order.PaymentMethod.String(),
			"total":          order.TotalPrice.String(),
		})
		s.logg.Info(logCtx, "order created")
	}

	dto := FromModel(order)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListOrdersInput) (*pagination.Page[OrderDTO], error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	f := input.Filters
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, pkgerrors.Invalid("from", "from must be before to")
	}
	if f.PaymentMethod != nil && !f.PaymentMethod.IsValid() {
		return nil, pkgerrors.Invalid("payment_method", "unknown payment method")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	rows, err := s.repo.List(ctx, f, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	page := pagination.BuildPage(items, limit, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &page, nil
}

func validateRequest(req *pricing.OrderRequest) error {
	if !req.PaymentMethod.IsValid() {
		return pkgerrors.Invalid("payment_method", "unknown payment method")
	}
	if req.DiscountType == "" {
		req.DiscountType = enums.DiscountTypeFixed
	}
	if !req.DiscountType.IsValid() {
		return pkgerrors.Invalid("discount_type", "unknown discount type")
	}
	if req.Discount.IsNegative() {
		return pkgerrors.Invalid("discount", "discount must not be negative")
	}
	if len(req.Items) == 0 {
		return pkgerrors.Invalid("items", "order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return pkgerrors.Invalid("items", "quantity must be at least 1")
		}
	}
	return nil
}

func (s *service) priceLines(ctx context.Context, req pricing.OrderRequest) ([]pricing.CartLine, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.Products(ctx, ids)
	if err != nil {
		return nil, err
	}

	var tiers map[uuid.UUID]pricing.ThicknessTier
	if spec := req.EdgeBandingService; spec != nil {
		tiers, err = s.catalog.Tiers(ctx, []uuid.UUID{spec.ThicknessID})
		if err != nil {
			return nil, err
		}
	}
	return pricing.LinesFromRequest(req, products, tiers)
}

func (s *service) checkCustomer(ctx context.Context, req pricing.OrderRequest, summary pricing.OrderSummary) error {
	if req.CustomerID == nil {
		if summary.RemainingDebt.IsPositive() {
			return pkgerrors.Invalid("customer_id", "credit sale with debt requires a customer")
		}
		return nil
	}
	ok, err := s.customers.Exists(ctx, *req.CustomerID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.Invalid("customer_id", "unknown customer")
	}
	return nil
}

func parseCovered(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Invalid("covered_amount", "covered amount must be a number")
	}
	if v.IsNegative() {
		return decimal.Zero, pkgerrors.Invalid("covered_amount", "covered amount must not be negative")
	}
	return v, nil
}

func aggregateDemand(items []pricing.OrderItem) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// sortedProductIDs gives a stable decrement order so concurrent orders lock
// product rows in the same sequence.
func sortedProductIDs(demand map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func insufficientStock(productID uuid.UUID, requested, available int) error {
	details := map[string]any{
		"product_id": productID.String(),
		"requested":  requested,
	}
	if available >= 0 {
		details["available"] = available
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(details)
}

func buildOrder(actorID uuid.UUID, req pricing.OrderRequest, lines []pricing.CartLine, summary pricing.OrderSummary, now time.Time) *models.Order {
	order := &models.Order{
		OrderNumber:    orderNumber(now),
		CustomerID:     req.CustomerID,
		CreatedBy:      actorID,
		PaymentMethod:  req.PaymentMethod,
		DiscountType:   req.DiscountType,
		Subtotal:       summary.Subtotal,
		DiscountAmount: summary.DiscountAmount,
		TotalPrice:     summary.Total,
		CoveredAmount:  summary.CoveredAmount,
		RemainingDebt:  summary.RemainingDebt,
		Items:          make([]models.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			SKU:         line.Product.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.UnitPrice,
			LineTotal:   line.Product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
		if c := line.Cutting; c != nil {
			boards := c.Boards
			order.Services = append(order.Services, models.OrderService{
				Kind:        enums.ServiceKindCutting,
				Boards:      &boards,
				PricePerCut: decimal.NewNullDecimal(c.PricePerCut),
				Total:       c.Total(),
			})
		}
		if e := line.EdgeBanding; e != nil {
			tierID := e.Thickness.ID
			order.Services = append(order.Services, models.OrderService{
				Kind:          enums.ServiceKindEdgeBanding,
				ThicknessID:   &tierID,
				WidthMM:       decimal.NewNullDecimal(e.WidthMM),
				HeightMM:      decimal.NewNullDecimal(e.HeightMM),
				LinearMeters:  decimal.NewNullDecimal(e.LinearMeters()),
				PricePerMeter: decimal.NewNullDecimal(e.Thickness.PricePerMeter),
				Total:         e.Total(),
			})
		}
	}
	return order
}

func orderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}
