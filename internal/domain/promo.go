package domain

import (
	"math"
	"time"
)

// Promo discount types.
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

// PromoCode is a redeemable discount code. For percent codes Value is a whole
// percentage (10 means 10% off); for fixed codes Value is an amount in cents.
// MaxUses and PerUserLimit of nil mean unlimited.
type PromoCode struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	Value         int64      `json:"value"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	CurrentUses   int        `json:"current_uses"`
	PerUserLimit  *int       `json:"per_user_limit,omitempty"`
	MinOrderCents int64      `json:"min_order_cents"`
	Active        bool       `json:"active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsExpired reports whether the code has passed its expiry at the given time.
// Codes without an expiry never expire.
func (p PromoCode) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// IsExhausted reports whether the code has reached its global usage cap.
func (p PromoCode) IsExhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}

// DiscountFor computes the discount in cents against the given subtotal.
// Percent discounts round half away from zero; fixed discounts are clamped to
// the subtotal so they never drive it negative.
func (p PromoCode) DiscountFor(subtotalCents int64) int64 {
	switch p.DiscountType {
	case DiscountTypePercent:
		d := int64(math.Round(float64(subtotalCents) * float64(p.Value) / 100))
		if d > subtotalCents {
			d = subtotalCents
		}
		return d
	case DiscountTypeFixed:
		if p.Value > subtotalCents {
			return subtotalCents
		}
		return p.Value
	default:
		return 0
	}
}
