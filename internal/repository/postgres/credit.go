package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

// CreditStore manages single-use stored credits. The used flag only ever
// transitions false to true through a guarded UPDATE, so a credit can never
// be consumed twice even under concurrent checkouts.
type CreditStore struct {
	db DBTX
}

// NewCreditStore creates a credit store.
func NewCreditStore(db DBTX) *CreditStore {
	return &CreditStore{db: db}
}

const selectCredit = `
	SELECT id, owner_id, amount_cents, used, COALESCE(reserved_by, ''), expires_at, created_at
	FROM stored_credits
	WHERE id = $1`

// Get fetches a credit by ID.
func (s *CreditStore) Get(ctx context.Context, creditID string) (*domain.StoredCredit, error) {
	var c domain.StoredCredit
	err := s.db.QueryRow(ctx, selectCredit, creditID).Scan(
		&c.ID, &c.OwnerID, &c.AmountCents, &c.Used, &c.ReservedBy, &c.ExpiresAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditNotFound()
		}
		return nil, fmt.Errorf("get stored credit: %w", err)
	}
	return &c, nil
}

const reserveCredit = `
	UPDATE stored_credits
	SET used = TRUE, reserved_by = $2
	WHERE id = $1 AND used = FALSE`

// Reserve atomically marks the credit used on behalf of one checkout attempt.
// The used = FALSE guard means exactly one of any number of concurrent
// attempts wins; the rest see zero rows affected and fail with
// CreditAlreadyConsumed.
func (s *CreditStore) Reserve(ctx context.Context, creditID, attemptID string) error {
	tag, err := s.db.Exec(ctx, reserveCredit, creditID, attemptID)
	if err != nil {
		return fmt.Errorf("reserve credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCreditAlreadyConsumed()
	}
	return nil
}

const releaseCredit = `
	UPDATE stored_credits
	SET used = FALSE, reserved_by = NULL
	WHERE id = $1 AND reserved_by = $2`

// Release is the compensating action for Reserve. The reserved_by guard
// restricts the release to the attempt that holds the reservation, so a slow
// rollback can never free a credit that a newer checkout has since claimed.
// Only safe before a payment session has been durably linked to the credit.
func (s *CreditStore) Release(ctx context.Context, creditID, attemptID string) error {
	if _, err := s.db.Exec(ctx, releaseCredit, creditID, attemptID); err != nil {
		return fmt.Errorf("release credit: %w", err)
	}
	return nil
}
