package pricing

import (
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// LineTotal is unitPrice × quantity plus any attached service totals.
// Quantity is not checked here; see ValidateLine.
func LineTotal(line CartLine) decimal.Decimal {
	total := line.Product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	if line.Cutting != nil {
		total = total.Add(line.Cutting.Total())
	}
	if line.EdgeBanding != nil {
		total = total.Add(line.EdgeBanding.Total())
	}
	return total
}

// ValidateLine enforces 1 ≤ quantity ≤ stock.
func ValidateLine(line CartLine) error {
	return ValidateQuantity(line.Quantity, line.Product.StockQty)
}

func ValidateQuantity(quantity, stock int) error {
	if quantity < 1 {
		return pkgerrors.Invalid("quantity", "quantity must be at least 1")
	}
	if quantity > stock {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]int{"requested": quantity, "available": stock})
	}
	return nil
}

// Subtotal sums LineTotal over lines.
func Subtotal(lines []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line))
	}
	return sum
}

// ServiceLineCounts reports how many lines carry each service kind.
func ServiceLineCounts(lines []CartLine) (cutting, banding int) {
	for _, line := range lines {
		if line.Cutting != nil {
			cutting++
		}
		if line.EdgeBanding != nil {
			banding++
		}
	}
	return cutting, banding
}
