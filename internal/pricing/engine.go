// Package pricing derives money amounts from cart state. Every amount is an
// integer in minor currency units and every division floors.
package pricing

import (
	"github.com/jafarshop/restaurant/internal/domain"
)

// ComputeLineTotal returns (base + variant diff + modifier diffs) * qty.
// qty is not guarded here; the cart store keeps it at 1 or above.
func ComputeLineTotal(basePrice int64, variant *domain.Variant, modifiers []domain.Modifier, qty int64) int64 {
	unit := basePrice
	if variant != nil {
		unit += variant.PriceDiff
	}
	for _, m := range modifiers {
		unit += m.PriceDiff
	}
	return unit * qty
}

// ComputeTotals projects a cart into its totals. The discount is taken off the
// subtotal before tax is computed.
func ComputeTotals(cart domain.Cart) domain.Totals {
	var subtotal int64
	for _, line := range cart.Lines {
		subtotal += line.LineTotal
	}

	discount := DiscountAmount(cart.Coupon, subtotal)

	// The displayed discount may exceed the subtotal; only the tax base is floored.
	taxedBase := subtotal - discount
	if taxedBase < 0 {
		taxedBase = 0
	}

	tax := floorDiv(taxedBase*cart.TaxRate, 100)
	fees := cart.Fees.Sum()

	return domain.Totals{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		Fees:       fees,
		GrandTotal: taxedBase + tax + fees + cart.Tip,
	}
}

// DiscountAmount returns what a coupon takes off the given subtotal
func DiscountAmount(coupon *domain.Coupon, subtotal int64) int64 {
	if coupon == nil {
		return 0
	}
	switch d := coupon.Discount.(type) {
	case domain.PercentOff:
		return floorDiv(subtotal*d.Points, 100)
	case domain.FixedOff:
		return d.Amount
	default:
		return 0
	}
}

// floorDiv rounds toward negative infinity, unlike Go's truncating division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
