package domain

import "time"

// StoredCredit is a single-use credit held by a customer, spent in full on
// redemption. ReservedBy carries the checkout attempt ID that holds the
// reservation while a checkout is in flight.
type StoredCredit struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	AmountCents int64      `json:"amount_cents"`
	Used        bool       `json:"used"`
	ReservedBy  string     `json:"-"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsExpired reports whether the credit has passed its expiry at the given
// time. Credits without an expiry never expire.
func (c StoredCredit) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
