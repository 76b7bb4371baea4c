package pricing

import (
	"strconv"

	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/google/uuid"
)

// BuildOrderRequest maps a priced cart onto the order payload. Lines become
// (product_id, quantity) pairs. The order carries at most one cutting and one
// edge-banding spec, taken from the first line that has each. Callers that
// submit the request run ValidateOrderServices first so nothing is left out.
func BuildOrderRequest(lines []CartLine, summary OrderSummary, customerID *uuid.UUID) OrderRequest {
	req := OrderRequest{
		Items:         make([]OrderItem, 0, len(lines)),
		Discount:      summary.DiscountAmount,
		DiscountType:  summary.DiscountType,
		CoveredAmount: summary.CoveredAmount.String(),
		PaymentMethod: summary.PaymentMethod,
	}
	if customerID != nil && *customerID != uuid.Nil {
		id := *customerID
		req.CustomerID = &id
	}

	for _, line := range lines {
		req.Items = append(req.Items, OrderItem{ProductID: line.Product.ID, Quantity: line.Quantity})
		if req.CuttingService == nil && line.Cutting != nil {
			req.CuttingService = &CuttingSpec{
				NumberOfBoards: line.Cutting.Boards,
				PricePerCut:    line.Cutting.PricePerCut,
			}
		}
		if req.EdgeBandingService == nil && line.EdgeBanding != nil {
			req.EdgeBandingService = &EdgeBandingSpec{
				ThicknessID: line.EdgeBanding.Thickness.ID,
				Width:       line.EdgeBanding.WidthMM,
				Height:      line.EdgeBanding.HeightMM,
			}
		}
	}
	return req
}

// ValidateOrderServices rejects carts whose services an order request cannot
// carry: more than one line with cutting, or more than one with edge banding.
// Totals computed over such a cart would disagree with the order created from
// its request.
func ValidateOrderServices(lines []CartLine) error {
	cutting, banding := ServiceLineCounts(lines)
	if cutting <= 1 && banding <= 1 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "an order carries at most one cutting and one edge-banding service").
		WithDetails(map[string]string{
			"field":              "items",
			"cutting_lines":      strconv.Itoa(cutting),
			"edge_banding_lines": strconv.Itoa(banding),
		})
}

// LinesFromRequest rebuilds priceable lines from an order payload. The
// order-level services are attached to the first line, which prices the same
// as any other placement. Unknown products or tiers are validation errors.
func LinesFromRequest(req OrderRequest, products map[uuid.UUID]Product, tiers map[uuid.UUID]ThicknessTier) ([]CartLine, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.Invalid("items", "order must contain at least one item")
	}

	lines := make([]CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, pkgerrors.Invalid("items", "unknown product "+item.ProductID.String())
		}
		lines = append(lines, CartLine{ID: uuid.New(), Product: product, Quantity: item.Quantity})
	}

	if spec := req.CuttingService; spec != nil {
		svc, err := NewCuttingService(spec.NumberOfBoards, spec.PricePerCut)
		if err != nil {
			return nil, err
		}
		lines[0].Cutting = svc
	}
	if spec := req.EdgeBandingService; spec != nil {
		var tier *ThicknessTier
		if t, ok := tiers[spec.ThicknessID]; ok {
			tier = &t
		}
		svc, err := NewEdgeBandingService(spec.Width, spec.Height, tier)
		if err != nil {
			return nil, err
		}
		lines[0].EdgeBanding = svc
	}
	return lines, nil
}
