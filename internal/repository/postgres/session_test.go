package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

func sampleSession(now time.Time) *domain.CheckoutSession {
	return &domain.CheckoutSession{
		ID:     "sess-1",
		UserID: "user-1",
		Status: domain.SessionStatusOpen,
		Customer: domain.CustomerInfo{
			Name:  "Ada",
			Email: "ada@example.com",
		},
		Lines: []domain.ValidatedCartLine{
			{ItemID: "item-1", Name: "Burger", UnitPriceCents: 1000, Quantity: 2, LineSubtotalCents: 2000},
		},
		SubtotalCents: 2000,
		DiscountCents: 200,
		TaxCents:      158,
		TotalCents:    1958,
		PromoCodeID:   "promo-1",
		PromoCode:     "SAVE10",
		RedirectURL:   "https://pay.example.com/sess-1",
		CreatedAt:     now,
	}
}

func TestSessionStore_Create(t *testing.T) {
	mock := newMock(t)
	store := NewSessionStore(mock)
	now := time.Now()
	sess := sampleSession(now)

	mock.ExpectExec("INSERT INTO checkout_sessions").
		WithArgs("sess-1", "user-1", domain.SessionStatusOpen,
			"Ada", "ada@example.com", "", pgxmock.AnyArg(),
			int64(2000), int64(200), int64(158), int64(1958),
			"promo-1", "SAVE10", nil, "https://pay.example.com/sess-1", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.Create(context.Background(), sess))
}

func TestSessionStore_Get(t *testing.T) {
	mock := newMock(t)
	store := NewSessionStore(mock)
	now := time.Now()

	mock.ExpectQuery("SELECT id, user_id, status").
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "status", "customer_name", "customer_email", "customer_phone", "lines",
			"subtotal_cents", "discount_cents", "tax_cents", "total_cents",
			"promo_code_id", "promo_code", "credit_id", "redirect_url", "created_at", "updated_at",
		}).AddRow("sess-1", "user-1", domain.SessionStatusOpen, "Ada", "ada@example.com", "",
			[]byte(`[{"item_id":"item-1","name":"Burger","unit_price_cents":1000,"quantity":2,"line_subtotal_cents":2000,"pricing_fingerprint":""}]`),
			int64(2000), int64(200), int64(158), int64(1958),
			"promo-1", "SAVE10", "", "https://pay.example.com/sess-1", now, now))

	sess, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1958), sess.TotalCents)
	require.Len(t, sess.Lines, 1)
	assert.Equal(t, "Burger", sess.Lines[0].Name)
}

func TestSessionStore_TransitionStatus_GuardRejectsStaleTransition(t *testing.T) {
	mock := newMock(t)
	store := NewSessionStore(mock)

	mock.ExpectExec("UPDATE checkout_sessions").
		WithArgs("sess-1", domain.SessionStatusOpen, domain.SessionStatusComplete).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.TransitionStatus(context.Background(), "sess-1",
		domain.SessionStatusOpen, domain.SessionStatusComplete)
	assert.ErrorContains(t, err, "no longer open")
}

func TestSessionStore_ExpireStale(t *testing.T) {
	mock := newMock(t)
	store := NewSessionStore(mock)
	cutoff := time.Now().Add(-30 * time.Minute)

	mock.ExpectExec("UPDATE checkout_sessions").
		WithArgs(domain.SessionStatusExpired, domain.SessionStatusOpen, cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := store.ExpireStale(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
