package domain

import "time"

// Checkout session statuses.
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"
)

// CustomerInfo is the contact information collected at checkout.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// CheckoutSession is a persisted checkout. It is only created once every
// pricing, promo and credit step has succeeded, so a stored session always
// carries final, trusted amounts.
type CheckoutSession struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Status        string              `json:"status"`
	Customer      CustomerInfo        `json:"customer"`
	Lines         []ValidatedCartLine `json:"lines"`
	SubtotalCents int64               `json:"subtotal_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TaxCents      int64               `json:"tax_cents"`
	TotalCents    int64               `json:"total_cents"`
	PromoCodeID   string              `json:"promo_code_id,omitempty"`
	PromoCode     string              `json:"promo_code,omitempty"`
	CreditID      string              `json:"credit_id,omitempty"`
	RedirectURL   string              `json:"redirect_url,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// IsOpen reports whether the session can still transition to complete or
// expired.
func (s CheckoutSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}
