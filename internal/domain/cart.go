package domain

// Cart size limits enforced during checkout validation.
const (
	MaxCartLines    = 100
	MinLineQuantity = 1
	MaxLineQuantity = 100
)

// CartLineRequest is a client-submitted cart line. It is untrusted: it never
// carries a price, only identifiers and quantities. Prices are always
// re-fetched from the menu catalog.
type CartLineRequest struct {
	ItemID     string           `json:"id"`
	Quantity   int              `json:"quantity"`
	Notes      string           `json:"notes,omitempty"`
	Selections []GroupSelection `json:"modifier_selections,omitempty"`
}

// GroupSelection is the set of modifier IDs a customer selected within one
// modifier group.
type GroupSelection struct {
	GroupID     string   `json:"group_id"`
	ModifierIDs []string `json:"modifier_ids"`
}

// ValidatedCartLine is a server-computed, trusted cart line. It is created by
// re-pricing the request against the menu catalog.
type ValidatedCartLine struct {
	ItemID            string           `json:"item_id"`
	Name              string           `json:"name"`
	UnitPriceCents    int64            `json:"unit_price_cents"`
	Quantity          int              `json:"quantity"`
	LineSubtotalCents int64            `json:"line_subtotal_cents"`
	Notes             string           `json:"notes,omitempty"`
	Selections        []GroupSelection `json:"modifier_selections,omitempty"`
	Fingerprint       string           `json:"pricing_fingerprint"`
}

// ClampQuantity clamps a requested quantity into [MinLineQuantity, MaxLineQuantity].
// Non-positive quantities default to the minimum rather than erroring.
func ClampQuantity(q int) int {
	if q < MinLineQuantity {
		return MinLineQuantity
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}
