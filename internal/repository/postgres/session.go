package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

// SessionStore persists checkout sessions. Sessions are written once, after
// every reservation has succeeded, and afterwards only their status changes.
type SessionStore struct {
	db DBTX
}

// NewSessionStore creates a session store.
func NewSessionStore(db DBTX) *SessionStore {
	return &SessionStore{db: db}
}

const insertSession = `
	INSERT INTO checkout_sessions
		(id, user_id, status, customer_name, customer_email, customer_phone, lines,
		 subtotal_cents, discount_cents, tax_cents, total_cents,
		 promo_code_id, promo_code, credit_id, redirect_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`

// Create persists a new session.
func (s *SessionStore) Create(ctx context.Context, session *domain.CheckoutSession) error {
	lines, err := json.Marshal(session.Lines)
	if err != nil {
		return fmt.Errorf("encode session lines: %w", err)
	}

	_, err = s.db.Exec(ctx, insertSession,
		session.ID, session.UserID, session.Status,
		session.Customer.Name, session.Customer.Email, session.Customer.Phone, lines,
		session.SubtotalCents, session.DiscountCents, session.TaxCents, session.TotalCents,
		nullable(session.PromoCodeID), nullable(session.PromoCode), nullable(session.CreditID),
		session.RedirectURL, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create checkout session: %w", err)
	}
	return nil
}

const selectSession = `
	SELECT id, user_id, status, customer_name, customer_email, customer_phone, lines,
	       subtotal_cents, discount_cents, tax_cents, total_cents,
	       COALESCE(promo_code_id, ''), COALESCE(promo_code, ''), COALESCE(credit_id, ''),
	       redirect_url, created_at, updated_at
	FROM checkout_sessions
	WHERE id = $1`

// Get fetches a session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	var (
		sess  domain.CheckoutSession
		lines []byte
	)
	err := s.db.QueryRow(ctx, selectSession, sessionID).Scan(
		&sess.ID, &sess.UserID, &sess.Status,
		&sess.Customer.Name, &sess.Customer.Email, &sess.Customer.Phone, &lines,
		&sess.SubtotalCents, &sess.DiscountCents, &sess.TaxCents, &sess.TotalCents,
		&sess.PromoCodeID, &sess.PromoCode, &sess.CreditID,
		&sess.RedirectURL, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound(sessionID)
		}
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &sess.Lines); err != nil {
			return nil, fmt.Errorf("decode session lines: %w", err)
		}
	}
	return &sess, nil
}

const updateSessionStatus = `
	UPDATE checkout_sessions
	SET status = $3, updated_at = NOW()
	WHERE id = $1 AND status = $2`

// TransitionStatus moves a session from one status to another. The from
// guard makes transitions idempotent and keeps terminal states terminal: a
// session that already left the expected status is reported, not overwritten.
func (s *SessionStore) TransitionStatus(ctx context.Context, sessionID, from, to string) error {
	tag, err := s.db.Exec(ctx, updateSessionStatus, sessionID, from, to)
	if err != nil {
		return fmt.Errorf("transition session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotOpen(sessionID)
	}
	return nil
}

const expireStaleSessions = `
	UPDATE checkout_sessions
	SET status = $1, updated_at = NOW()
	WHERE status = $2 AND created_at < $3`

// ExpireStale marks open sessions older than the cutoff as expired and
// returns how many were affected. Run periodically by the app.
func (s *SessionStore) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, expireStaleSessions,
		domain.SessionStatusExpired, domain.SessionStatusOpen, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// nullable converts empty strings to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
