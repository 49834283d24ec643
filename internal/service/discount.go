package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
)

// applyPromoCode validates and reserves a promo code. Checks run in a fixed
// order, each with its own user-facing rejection: exists, active, not
// expired, minimum order met, per-user limit. Only then is the global usage
// slot claimed atomically; the losing side of a concurrent race gets
// PROMO_EXHAUSTED from the store. Returns nil when no code was supplied.
func (s *Service) applyPromoCode(ctx context.Context, res *domain.DiscountReservation, code, userID string, subtotalCents int64) (*domain.PromoCode, error) {
	if code == "" {
		return nil, nil
	}

	promo, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !promo.Active {
		return nil, domain.ErrPromoInactive()
	}
	if promo.IsExpired(s.now()) {
		return nil, domain.ErrPromoExpired()
	}
	if subtotalCents < promo.MinOrderCents {
		return nil, domain.ErrPromoMinOrder(promo.MinOrderCents)
	}
	if promo.PerUserLimit != nil {
		used, err := s.promos.CountUserRedemptions(ctx, promo.ID, userID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if used >= *promo.PerUserLimit {
			return nil, domain.ErrPromoPerUserLimit()
		}
	}

	if err := s.promos.ReserveUse(ctx, promo.ID); err != nil {
		return nil, err
	}

	res.PromoID = promo.ID
	res.PromoCode = promo.Code
	res.PromoDiscountCents = promo.DiscountFor(subtotalCents)
	res.PromoReserved = true
	res.RecordStep(domain.StepReservePromo, domain.StepStatusCompleted, "")
	return promo, nil
}

// applyStoredCredit validates and reserves a stored credit. Checks run in
// order: exists, owned by the caller, not already used, not expired. The
// applied amount is capped at whatever the promo left of the subtotal; a
// credit can partially cover an order but never pays out its remainder.
// Returns nil error and does nothing when no credit was supplied.
func (s *Service) applyStoredCredit(ctx context.Context, res *domain.DiscountReservation, creditID, userID string, subtotalCents int64) error {
	if creditID == "" {
		return nil
	}

	credit, err := s.credits.Get(ctx, creditID)
	if err != nil {
		return err
	}
	if credit.OwnerID != userID {
		return domain.ErrCreditNotOwned()
	}
	if credit.Used {
		return domain.ErrCreditAlreadyConsumed()
	}
	if credit.IsExpired(s.now()) {
		return domain.ErrCreditExpired()
	}

	if err := s.credits.Reserve(ctx, creditID, res.AttemptID); err != nil {
		return err
	}

	remaining := subtotalCents - res.PromoDiscountCents
	if remaining < 0 {
		remaining = 0
	}
	applied := credit.AmountCents
	if applied > remaining {
		applied = remaining
	}

	res.CreditID = creditID
	res.CreditDiscountCents = applied
	res.CreditReserved = true
	res.RecordStep(domain.StepReserveCredit, domain.StepStatusCompleted, "")
	return nil
}

// enforceDiscountCeiling clamps the combined discount to a configured
// fraction of the subtotal. The promo is clamped first, then the credit gets
// whatever budget remains: promo codes take priority over credits by policy.
func (s *Service) enforceDiscountCeiling(res *domain.DiscountReservation, subtotalCents int64) {
	maxDiscount := int64(math.Floor(float64(subtotalCents) * s.policy.MaxDiscountFraction))

	if res.PromoDiscountCents > maxDiscount {
		res.PromoDiscountCents = maxDiscount
	}
	budget := maxDiscount - res.PromoDiscountCents
	if res.CreditDiscountCents > budget {
		res.CreditDiscountCents = budget
	}
}

// rollback releases every still-uncommitted reservation in reverse order of
// acquisition. Release failures are logged and do not stop the remaining
// compensations; the store-side guards make replays safe.
func (s *Service) rollback(ctx context.Context, res *domain.DiscountReservation) {
	if res.CreditReserved {
		if err := s.credits.Release(ctx, res.CreditID, res.AttemptID); err != nil {
			s.logger.ErrorContext(ctx, "credit rollback failed",
				slog.String("credit_id", res.CreditID),
				slog.String("attempt_id", res.AttemptID),
				slog.String("error", err.Error()),
			)
		} else {
			res.CreditReserved = false
			res.RecordStep(domain.StepReserveCredit, domain.StepStatusCompensated, "")
		}
	}
	if res.PromoReserved {
		if err := s.promos.ReleaseUse(ctx, res.PromoID); err != nil {
			s.logger.ErrorContext(ctx, "promo rollback failed",
				slog.String("promo_id", res.PromoID),
				slog.String("attempt_id", res.AttemptID),
				slog.String("error", err.Error()),
			)
		} else {
			res.PromoReserved = false
			res.RecordStep(domain.StepReservePromo, domain.StepStatusCompensated, "")
		}
	}
}
