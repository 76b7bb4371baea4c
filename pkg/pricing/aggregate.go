package pricing

import (
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Aggregate prices a cart. For credit sales amountPaid is clamped to
// [0, total] and the rest becomes debt; every other method covers the total.
// An empty cart aggregates to zeros.
func Aggregate(lines []CartLine, discount DiscountSpec, method enums.PaymentMethod, amountPaid decimal.Decimal) OrderSummary {
	discount = discount.normalized()
	subtotal := Subtotal(lines)
	discountAmount := DiscountAmount(subtotal, discount)
	total := subtotal.Sub(discountAmount)

	summary := OrderSummary{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		DiscountType:   discount.Type,
		Total:          total,
		RemainingDebt:  decimal.Zero,
		CoveredAmount:  total,
		PaymentMethod:  method,
	}
	if method.IsCredit() {
		paid := clamp(amountPaid, decimal.Zero, total)
		summary.CoveredAmount = paid
		summary.RemainingDebt = total.Sub(paid)
	}
	return summary
}
