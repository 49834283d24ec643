// Package service implements the checkout orchestrator: cart validation and
// re-pricing, promo and credit reservation with compensating rollback, the
// combined-discount ceiling, and payment session creation.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/config"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/payment"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/pricing"
)

// CatalogStore is the authoritative menu catalog.
type CatalogStore interface {
	GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error)
	GetItems(ctx context.Context, itemIDs []string) (map[string]*domain.MenuItem, error)
}

// PromoStore manages promo codes and their usage accounting.
type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	ReserveUse(ctx context.Context, promoID string) error
	ReleaseUse(ctx context.Context, promoID string) error
	CountUserRedemptions(ctx context.Context, promoID, userID string) (int, error)
	RecordRedemption(ctx context.Context, promoID, userID, sessionID string, discountCents int64) error
}

// CreditStore manages single-use stored credits.
type CreditStore interface {
	Get(ctx context.Context, creditID string) (*domain.StoredCredit, error)
	Reserve(ctx context.Context, creditID, attemptID string) error
	Release(ctx context.Context, creditID, attemptID string) error
}

// SessionStore persists checkout sessions.
type SessionStore interface {
	Create(ctx context.Context, session *domain.CheckoutSession) error
	Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	TransitionStatus(ctx context.Context, sessionID, from, to string) error
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventPublisher emits checkout lifecycle events. Implementations must be
// best-effort: a publish failure never changes a checkout outcome.
type EventPublisher interface {
	SessionCreated(ctx context.Context, session *domain.CheckoutSession)
	AttemptFailed(ctx context.Context, res *domain.DiscountReservation, userID, reason, failedStep string)
	SessionExpired(ctx context.Context, sessionID string)
}

// RateLimiter gates checkout attempts per user before any paid work starts.
type RateLimiter interface {
	Allow(ctx context.Context, userID string) error
}

var (
	checkoutAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)
	checkoutRollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_rollbacks_total",
			Help: "Compensating rollbacks by failed step",
		},
		[]string{"failed_step"},
	)
	checkoutDiscount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_discount_cents",
			Help:    "Total discount applied to committed checkouts",
			Buckets: prometheus.ExponentialBuckets(50, 2.5, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(checkoutAttempts, checkoutRollbacks, checkoutDiscount)
}

// Service is the checkout orchestrator.
type Service struct {
	catalog  CatalogStore
	promos   PromoStore
	credits  CreditStore
	sessions SessionStore
	provider payment.Provider
	events   EventPublisher
	limiter  RateLimiter
	engine   *pricing.Engine
	policy   config.CheckoutConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the orchestrator. The limiter and events publisher may be
// nil (rate limiting disabled, events dropped); every store is required.
func NewService(
	catalog CatalogStore,
	promos PromoStore,
	credits CreditStore,
	sessions SessionStore,
	provider payment.Provider,
	events EventPublisher,
	limiter RateLimiter,
	policy config.CheckoutConfig,
	log *slog.Logger,
) *Service {
	return &Service{
		catalog:  catalog,
		promos:   promos,
		credits:  credits,
		sessions: sessions,
		provider: provider,
		events:   events,
		limiter:  limiter,
		engine:   pricing.NewEngine(policy.TaxRate),
		policy:   policy,
		logger:   log,
		now:      time.Now,
	}
}

// Engine exposes the pricing engine for the item price quote endpoint.
func (s *Service) Engine() *pricing.Engine {
	return s.engine
}
