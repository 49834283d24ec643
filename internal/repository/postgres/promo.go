package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

// PromoStore manages promo codes, their global usage counters, and the
// per-user redemption journal.
type PromoStore struct {
	db DBTX
}

// NewPromoStore creates a promo store.
func NewPromoStore(db DBTX) *PromoStore {
	return &PromoStore{db: db}
}

const selectPromoByCode = `
	SELECT id, code, discount_type, value, max_uses, current_uses, per_user_limit,
	       min_order_cents, active, expires_at, created_at, updated_at
	FROM promo_codes
	WHERE code = $1`

// GetByCode looks up a promo code by its customer-facing code string.
func (s *PromoStore) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var p domain.PromoCode
	err := s.db.QueryRow(ctx, selectPromoByCode, code).Scan(
		&p.ID, &p.Code, &p.DiscountType, &p.Value, &p.MaxUses, &p.CurrentUses,
		&p.PerUserLimit, &p.MinOrderCents, &p.Active, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromoNotFound()
		}
		return nil, fmt.Errorf("get promo by code: %w", err)
	}
	return &p, nil
}

const reservePromoUse = `
	UPDATE promo_codes
	SET current_uses = current_uses + 1, updated_at = NOW()
	WHERE id = $1
	  AND active = TRUE
	  AND (max_uses IS NULL OR current_uses < max_uses)`

// ReserveUse atomically claims one usage slot. The WHERE guard makes the
// increment conditional: under concurrent attempts the database admits at
// most max_uses total successes. Zero rows affected means the code is
// exhausted (or was deactivated between the read and the reservation).
func (s *PromoStore) ReserveUse(ctx context.Context, promoID string) error {
	tag, err := s.db.Exec(ctx, reservePromoUse, promoID)
	if err != nil {
		return fmt.Errorf("reserve promo use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromoExhausted()
	}
	return nil
}

const releasePromoUse = `
	UPDATE promo_codes
	SET current_uses = GREATEST(current_uses - 1, 0), updated_at = NOW()
	WHERE id = $1`

// ReleaseUse is the compensating action for ReserveUse. GREATEST keeps the
// counter from going below zero if a release is ever replayed.
func (s *PromoStore) ReleaseUse(ctx context.Context, promoID string) error {
	if _, err := s.db.Exec(ctx, releasePromoUse, promoID); err != nil {
		return fmt.Errorf("release promo use: %w", err)
	}
	return nil
}

const countRedemptions = `
	SELECT COUNT(*)
	FROM promo_redemptions
	WHERE promo_id = $1 AND user_id = $2`

// CountUserRedemptions returns how many times the user has redeemed the code.
func (s *PromoStore) CountUserRedemptions(ctx context.Context, promoID, userID string) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, countRedemptions, promoID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count promo redemptions: %w", err)
	}
	return count, nil
}

const insertRedemption = `
	INSERT INTO promo_redemptions (promo_id, user_id, session_id, discount_cents, redeemed_at)
	VALUES ($1, $2, $3, $4, NOW())`

// RecordRedemption journals a committed redemption. Called only after the
// checkout session is durably created, so rollbacks never need to touch it.
func (s *PromoStore) RecordRedemption(ctx context.Context, promoID, userID, sessionID string, discountCents int64) error {
	if _, err := s.db.Exec(ctx, insertRedemption, promoID, userID, sessionID, discountCents); err != nil {
		return fmt.Errorf("record promo redemption: %w", err)
	}
	return nil
}
