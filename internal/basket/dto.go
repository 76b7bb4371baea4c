package basket

import (
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View is the cart as returned to the till.
type View struct {
	BasketID uuid.UUID       `json:"basket_id"`
	Lines    []LineView      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Source   Source          `json:"source"`
	// Stale is set when the database could not be read and the cached copy
	// was served instead.
	Stale bool `json:"stale"`
}

// LineView is a cart line with its computed total.
type LineView struct {
	pricing.CartLine
	LineTotal decimal.Decimal `json:"line_total"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type AttachCuttingRequest struct {
	NumberOfBoards int             `json:"number_of_boards" validate:"required,gte=1"`
	PricePerCut    decimal.Decimal `json:"price_per_cut" validate:"dgt0"`
}

type AttachEdgeBandingRequest struct {
	ThicknessID uuid.UUID       `json:"thickness_id" validate:"required"`
	Width       decimal.Decimal `json:"width" validate:"dgt0"`
	Height      decimal.Decimal `json:"height" validate:"dgt0"`
}

func newView(snap Snapshot, source Source, stale bool) *View {
	lines := make([]LineView, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		lines = append(lines, LineView{CartLine: line, LineTotal: pricing.LineTotal(line)})
	}
	return &View{
		BasketID: snap.BasketID,
		Lines:    lines,
		Subtotal: pricing.Subtotal(snap.Lines),
		Source:   source,
		Stale:    stale,
	}
}
