// Package pricing implements the deterministic price computation for menu
// items and carts. All arithmetic is integer cents, rounded at every step, so
// repeated calculations never drift. The engine performs no I/O; callers feed
// it authoritative catalog prices, never client-supplied ones.
package pricing

import "math"

// Engine computes price breakdowns with an injected tax rate.
type Engine struct {
	taxRate float64
}

// NewEngine creates an engine with the given tax rate (e.g. 0.0875 for 8.75%).
func NewEngine(taxRate float64) *Engine {
	return &Engine{taxRate: taxRate}
}

// TaxRate returns the configured tax rate.
func (e *Engine) TaxRate() float64 {
	return e.taxRate
}

// SelectedModifier is one priced modifier selection. The price adjustment
// comes from the catalog, not the client, and may be negative.
type SelectedModifier struct {
	ID                   string `json:"id"`
	Name                 string `json:"name,omitempty"`
	PriceAdjustmentCents int64  `json:"price_adjustment_cents"`
}

// SelectedGroup is the priced selections within one modifier group.
type SelectedGroup struct {
	GroupID   string             `json:"group_id"`
	Modifiers []SelectedModifier `json:"modifiers"`
}

// Breakdown is the full price breakdown for one item at a given quantity.
type Breakdown struct {
	ItemID             string      `json:"item_id"`
	BasePriceCents     int64       `json:"base_price_cents"`
	ModifierTotalCents int64       `json:"modifier_total_cents"`
	UnitPriceCents     int64       `json:"unit_price_cents"`
	Quantity           int         `json:"quantity"`
	SubtotalCents      int64       `json:"subtotal_cents"`
	TaxCents           int64       `json:"tax_cents"`
	TotalCents         int64       `json:"total_cents"`
	Fingerprint        Fingerprint `json:"pricing_fingerprint"`
}

// Calculate computes the breakdown for a single item. Non-positive quantities
// silently default to 1. Identical inputs always produce identical output,
// including the fingerprint, regardless of the order groups and modifiers
// were supplied in.
func (e *Engine) Calculate(itemID string, basePriceCents int64, groups []SelectedGroup, quantity int) Breakdown {
	if quantity < 1 {
		quantity = 1
	}

	var modifierTotal int64
	for _, g := range groups {
		for _, m := range g.Modifiers {
			modifierTotal += m.PriceAdjustmentCents
		}
	}

	unitPrice := basePriceCents + modifierTotal
	if unitPrice < 0 {
		unitPrice = 0
	}
	subtotal := unitPrice * int64(quantity)
	tax := e.roundTax(subtotal)

	return Breakdown{
		ItemID:             itemID,
		BasePriceCents:     basePriceCents,
		ModifierTotalCents: modifierTotal,
		UnitPriceCents:     unitPrice,
		Quantity:           quantity,
		SubtotalCents:      subtotal,
		TaxCents:           tax,
		TotalCents:         subtotal + tax,
		Fingerprint:        ComputeFingerprint(itemID, basePriceCents, groups, quantity),
	}
}

// CartTotals is the cart-level total after discounts and tax.
type CartTotals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// CartTotals sums line subtotals, applies the discount, then applies the tax
// rate once to the discounted cart subtotal. Taxing the sum rather than
// summing per-line tax is deliberate: the two can differ by rounding. The
// discount is clamped so the discounted subtotal never goes negative.
func (e *Engine) CartTotals(lineSubtotalCents []int64, discountCents int64) CartTotals {
	var subtotal int64
	for _, s := range lineSubtotalCents {
		subtotal += s
	}

	if discountCents < 0 {
		discountCents = 0
	}
	if discountCents > subtotal {
		discountCents = subtotal
	}

	discounted := subtotal - discountCents
	tax := e.roundTax(discounted)

	return CartTotals{
		SubtotalCents: subtotal,
		DiscountCents: discountCents,
		TaxCents:      tax,
		TotalCents:    discounted + tax,
	}
}

// roundTax rounds half away from zero, matching how register receipts round.
func (e *Engine) roundTax(amountCents int64) int64 {
	return int64(math.Round(float64(amountCents) * e.taxRate))
}
