package service

import (
	"context"
	"log/slog"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/modifier"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/pricing"
)

// GetSession fetches a checkout session by ID.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// CompleteSession marks an open session complete. Driven by the payment
// processor's confirmation; a session that already left the open state is
// rejected by the store's guarded transition.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.TransitionStatus(ctx, sessionID,
		domain.SessionStatusOpen, domain.SessionStatusComplete)
}

// ExpireSession marks an open session expired.
func (s *Service) ExpireSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.TransitionStatus(ctx, sessionID,
		domain.SessionStatusOpen, domain.SessionStatusExpired); err != nil {
		return err
	}
	if s.events != nil {
		s.events.SessionExpired(ctx, sessionID)
	}
	return nil
}

// ExpireStaleSessions expires every open session older than the configured
// TTL. Called periodically by the app.
func (s *Service) ExpireStaleSessions(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.policy.SessionTTL)
	n, err := s.sessions.ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired stale checkout sessions", slog.Int64("count", n))
	}
	return n, nil
}

// PriceItem returns an interactive price quote for one item with the given
// selections. Selections hidden by visibility rules are dropped, then the
// rest must validate. The quote carries the tamper-detection fingerprint the
// client can echo back to detect staleness.
func (s *Service) PriceItem(ctx context.Context, itemID string, selections []domain.GroupSelection, quantity int) (*pricing.Breakdown, error) {
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, domain.ErrItemNotFound(itemID)
	}

	byGroup := selectionsByGroup(selections)
	states := modifier.EvaluateRules(item.VisibilityRules, byGroup)
	byGroup = modifier.FilterSelectionsToVisible(byGroup, states)

	if result := modifier.ValidateItem(item.ModifierGroups, byGroup); !result.Valid {
		return nil, domain.ErrInvalidSelections(itemID)
	}

	bd := s.engine.Calculate(item.ID, item.BasePriceCents, pricedSelections(item, byGroup), domain.ClampQuantity(quantity))
	return &bd, nil
}
