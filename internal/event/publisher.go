// Package event publishes checkout lifecycle events to Kafka for downstream
// consumers (kitchen display, loyalty, analytics). Publishing is best-effort:
// a dropped event never fails a checkout that already committed.
package event

import (
	"context"
	"log/slog"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/kafka"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/logger"
)

// Event types emitted on the checkout topic.
const (
	TypeSessionCreated = "checkout.session_created"
	TypeAttemptFailed  = "checkout.attempt_failed"
	TypeSessionExpired = "checkout.session_expired"
)

// SessionCreated is the payload for a successfully created checkout session.
type SessionCreated struct {
	SessionID     string `json:"session_id"`
	UserID        string `json:"user_id"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`
	PromoCode     string `json:"promo_code,omitempty"`
	CreditID      string `json:"credit_id,omitempty"`
	LineCount     int    `json:"line_count"`
}

// AttemptFailed is the payload for a checkout attempt that was rolled back.
type AttemptFailed struct {
	AttemptID  string            `json:"attempt_id"`
	UserID     string            `json:"user_id"`
	Reason     string            `json:"reason"`
	FailedStep string            `json:"failed_step"`
	Steps      []domain.SagaStep `json:"steps,omitempty"`
}

// Publisher emits checkout events.
type Publisher struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewPublisher creates a publisher for the given topic.
func NewPublisher(producer *kafka.Producer, topic string, log *slog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: log}
}

// SessionCreated publishes a checkout.session_created event keyed by session ID.
func (p *Publisher) SessionCreated(ctx context.Context, session *domain.CheckoutSession) {
	payload := SessionCreated{
		SessionID:     session.ID,
		UserID:        session.UserID,
		SubtotalCents: session.SubtotalCents,
		DiscountCents: session.DiscountCents,
		TaxCents:      session.TaxCents,
		TotalCents:    session.TotalCents,
		PromoCode:     session.PromoCode,
		CreditID:      session.CreditID,
		LineCount:     len(session.Lines),
	}
	p.publish(ctx, TypeSessionCreated, session.ID, payload)
}

// AttemptFailed publishes a checkout.attempt_failed event keyed by attempt ID.
func (p *Publisher) AttemptFailed(ctx context.Context, res *domain.DiscountReservation, userID, reason, failedStep string) {
	payload := AttemptFailed{
		AttemptID:  res.AttemptID,
		UserID:     userID,
		Reason:     reason,
		FailedStep: failedStep,
		Steps:      res.Steps,
	}
	p.publish(ctx, TypeAttemptFailed, res.AttemptID, payload)
}

// SessionExpired publishes a checkout.session_expired event.
func (p *Publisher) SessionExpired(ctx context.Context, sessionID string) {
	p.publish(ctx, TypeSessionExpired, sessionID, map[string]string{"session_id": sessionID})
}

func (p *Publisher) publish(ctx context.Context, eventType, aggregateID string, payload any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, "checkout_session", "checkout-service", payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt = evt.WithCorrelationID(id)
	}
	if err := p.producer.Publish(ctx, p.topic, evt); err != nil {
		// Logged by the producer; the checkout outcome stands either way.
		return
	}
}
