package pricing

import (
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountAmount returns the discount for subtotal, always within [0, subtotal].
// An unknown discount type yields zero.
func DiscountAmount(subtotal decimal.Decimal, spec DiscountSpec) decimal.Decimal {
	var amount decimal.Decimal
	switch spec.normalized().Type {
	case enums.DiscountTypePercentage:
		amount = subtotal.Mul(spec.Magnitude).Div(hundred)
	case enums.DiscountTypeFixed:
		amount = decimal.Min(spec.Magnitude, subtotal)
	default:
		return decimal.Zero
	}
	return clamp(amount, decimal.Zero, decimal.Max(subtotal, decimal.Zero))
}

// Validate rejects discounts a cashier cannot enter: unknown types, negative
// magnitudes and percentages above 100.
func (d DiscountSpec) Validate() error {
	n := d.normalized()
	if !n.Type.IsValid() {
		return pkgerrors.Invalid("discount_type", "discount type must be percentage or fixed")
	}
	if n.Magnitude.IsNegative() {
		return pkgerrors.Invalid("discount", "discount cannot be negative")
	}
	if n.Type == enums.DiscountTypePercentage && n.Magnitude.GreaterThan(hundred) {
		return pkgerrors.Invalid("discount", "percentage discount cannot exceed 100")
	}
	return nil
}

// normalized treats an unset type as a fixed discount.
func (d DiscountSpec) normalized() DiscountSpec {
	if d.Type == "" {
		d.Type = enums.DiscountTypeFixed
	}
	return d
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
