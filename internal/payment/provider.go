// Package payment abstracts the external payment processor that hosts the
// actual payment page. The checkout pipeline only ever creates a session and
// hands the customer a redirect URL; charging happens on the provider's side.
package payment

import "context"

// SessionRequest describes the payment session to create. AmountCents is the
// final server-computed grand total; the provider is never asked to trust
// anything the client sent.
type SessionRequest struct {
	ReferenceID   string `json:"reference_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	Description   string `json:"description,omitempty"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
}

// Session is the provider's hosted payment session.
type Session struct {
	ProviderSessionID string `json:"id"`
	URL               string `json:"url"`
}

// Provider creates hosted payment sessions.
type Provider interface {
	// CreateSession creates a payment session for the given amount and
	// returns the redirect URL. Errors are terminal for the checkout attempt
	// and trigger rollback of every reservation taken before this step.
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)

	// Name identifies the provider in logs and events.
	Name() string
}
