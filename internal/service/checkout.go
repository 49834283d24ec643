package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/modifier"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/payment"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/pricing"
	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
)

// CheckoutRequest is the orchestrator's input. Everything here crossed the
// trust boundary and is re-validated; prices are never taken from it.
type CheckoutRequest struct {
	UserID     string
	Items      []domain.CartLineRequest
	Customer   domain.CustomerInfo
	PromoCode  string
	CreditID   string
	SuccessURL string
	CancelURL  string
}

// CheckoutResult is returned to the client on success.
type CheckoutResult struct {
	SessionID   string
	RedirectURL string
	Status      string
	Totals      pricing.CartTotals
}

// Checkout runs the full pipeline: validate and re-price the cart, reserve
// the promo and credit, enforce the discount ceiling, create the payment
// session, and persist the checkout session. Any failure after a reservation
// triggers compensating rollbacks in reverse order.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, req.UserID); err != nil {
			checkoutAttempts.WithLabelValues("rate_limited").Inc()
			return nil, err
		}
	}

	lines, err := s.validateItems(ctx, req.Items)
	if err != nil {
		checkoutAttempts.WithLabelValues("invalid_cart").Inc()
		return nil, err
	}

	var subtotal int64
	lineSubtotals := make([]int64, len(lines))
	for i, l := range lines {
		subtotal += l.LineSubtotalCents
		lineSubtotals[i] = l.LineSubtotalCents
	}
	if subtotal < s.policy.MinOrderCents || subtotal > s.policy.MaxOrderCents {
		checkoutAttempts.WithLabelValues("invalid_cart").Inc()
		return nil, domain.ErrSubtotalOutOfBounds(s.policy.MinOrderCents, s.policy.MaxOrderCents)
	}

	res := &domain.DiscountReservation{AttemptID: uuid.NewString()}
	res.RecordStep(domain.StepValidateCart, domain.StepStatusCompleted, "")

	promo, err := s.applyPromoCode(ctx, res, req.PromoCode, req.UserID, subtotal)
	if err != nil {
		return nil, s.fail(ctx, res, req.UserID, domain.StepReservePromo, err)
	}

	if err := s.applyStoredCredit(ctx, res, req.CreditID, req.UserID, subtotal); err != nil {
		return nil, s.fail(ctx, res, req.UserID, domain.StepReserveCredit, err)
	}

	s.enforceDiscountCeiling(res, subtotal)

	totals := s.engine.CartTotals(lineSubtotals, res.TotalDiscountCents())
	if totals.TotalCents <= 0 {
		res.RecordStep(domain.StepEnforceFloor, domain.StepStatusFailed, "non-payable total")
		return nil, s.fail(ctx, res, req.UserID, domain.StepEnforceFloor, domain.ErrZeroPayableTotal())
	}
	res.RecordStep(domain.StepEnforceFloor, domain.StepStatusCompleted, "")

	sessionID := uuid.NewString()
	paySession, err := s.provider.CreateSession(ctx, payment.SessionRequest{
		ReferenceID:   sessionID,
		AmountCents:   totals.TotalCents,
		Currency:      "usd",
		CustomerEmail: req.Customer.Email,
		Description:   fmt.Sprintf("Order of %d items", len(lines)),
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		res.RecordStep(domain.StepCreatePayment, domain.StepStatusFailed, err.Error())
		return nil, s.fail(ctx, res, req.UserID, domain.StepCreatePayment, err)
	}
	res.RecordStep(domain.StepCreatePayment, domain.StepStatusCompleted, "")

	now := s.now().UTC()
	session := &domain.CheckoutSession{
		ID:            sessionID,
		UserID:        req.UserID,
		Status:        domain.SessionStatusOpen,
		Customer:      req.Customer,
		Lines:         lines,
		SubtotalCents: totals.SubtotalCents,
		DiscountCents: totals.DiscountCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		CreditID:      res.CreditID,
		RedirectURL:   paySession.URL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if promo != nil {
		session.PromoCodeID = promo.ID
		session.PromoCode = promo.Code
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		res.RecordStep(domain.StepPersistOrder, domain.StepStatusFailed, err.Error())
		return nil, s.fail(ctx, res, req.UserID, domain.StepPersistOrder, apperrors.Internal(err))
	}
	res.RecordStep(domain.StepPersistOrder, domain.StepStatusCompleted, "")

	// The session is durable: the reservations are committed from here on.
	if promo != nil {
		if err := s.promos.RecordRedemption(ctx, promo.ID, req.UserID, sessionID, res.PromoDiscountCents); err != nil {
			s.logger.ErrorContext(ctx, "failed to journal promo redemption",
				slog.String("promo_id", promo.ID),
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.events != nil {
		s.events.SessionCreated(ctx, session)
	}

	checkoutAttempts.WithLabelValues("committed").Inc()
	checkoutDiscount.Observe(float64(totals.DiscountCents))
	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", sessionID),
		slog.String("user_id", req.UserID),
		slog.Int64("total_cents", totals.TotalCents),
		slog.Int64("discount_cents", totals.DiscountCents),
	)

	return &CheckoutResult{
		SessionID:   sessionID,
		RedirectURL: paySession.URL,
		Status:      session.Status,
		Totals:      totals,
	}, nil
}

// validateItems re-prices the raw cart against the catalog. It rejects empty
// or oversized carts, unknown or inactive items, and invalid modifier
// selections. Selections in groups hidden by visibility rules are silently
// dropped before validation, matching what the customer actually saw.
func (s *Service) validateItems(ctx context.Context, items []domain.CartLineRequest) ([]domain.ValidatedCartLine, error) {
	if len(items) == 0 {
		return nil, domain.ErrCartEmpty()
	}
	if len(items) > domain.MaxCartLines {
		return nil, domain.ErrCartTooLarge(domain.MaxCartLines)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ItemID)
	}
	catalog, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	lines := make([]domain.ValidatedCartLine, 0, len(items))
	for _, it := range items {
		item, ok := catalog[it.ItemID]
		if !ok || !item.Active {
			return nil, domain.ErrItemNotFound(it.ItemID)
		}

		selections := selectionsByGroup(it.Selections)
		states := modifier.EvaluateRules(item.VisibilityRules, selections)
		selections = modifier.FilterSelectionsToVisible(selections, states)

		if result := modifier.ValidateItem(item.ModifierGroups, selections); !result.Valid {
			return nil, domain.ErrInvalidSelections(it.ItemID)
		}

		quantity := domain.ClampQuantity(it.Quantity)
		priced := pricedSelections(item, selections)
		bd := s.engine.Calculate(item.ID, item.BasePriceCents, priced, quantity)

		lines = append(lines, domain.ValidatedCartLine{
			ItemID:            item.ID,
			Name:              item.Name,
			UnitPriceCents:    bd.UnitPriceCents,
			Quantity:          quantity,
			LineSubtotalCents: bd.SubtotalCents,
			Notes:             it.Notes,
			Selections:        visibleSelections(it.Selections, selections),
			Fingerprint:       bd.Fingerprint.Fast,
		})
	}
	return lines, nil
}

// fail rolls back the attempt, emits the failure event, and counts it.
func (s *Service) fail(ctx context.Context, res *domain.DiscountReservation, userID, step string, cause error) error {
	hadReservations := res.PromoReserved || res.CreditReserved
	s.rollback(ctx, res)
	if s.events != nil && (hadReservations || step == domain.StepCreatePayment || step == domain.StepPersistOrder) {
		s.events.AttemptFailed(ctx, res, userID, cause.Error(), step)
	}
	checkoutAttempts.WithLabelValues("failed").Inc()
	checkoutRollbacks.WithLabelValues(step).Inc()
	return cause
}

func selectionsByGroup(selections []domain.GroupSelection) map[string][]string {
	m := make(map[string][]string, len(selections))
	for _, sel := range selections {
		m[sel.GroupID] = append(m[sel.GroupID], sel.ModifierIDs...)
	}
	return m
}

// pricedSelections resolves catalog price adjustments for the selections.
// Selections were already validated, so every modifier resolves.
func pricedSelections(item *domain.MenuItem, selections map[string][]string) []pricing.SelectedGroup {
	groups := make([]pricing.SelectedGroup, 0, len(selections))
	for _, g := range item.ModifierGroups {
		ids, ok := selections[g.ID]
		if !ok || len(ids) == 0 {
			continue
		}
		sg := pricing.SelectedGroup{GroupID: g.ID}
		for _, id := range ids {
			if m, found := g.Modifier(id); found {
				sg.Modifiers = append(sg.Modifiers, pricing.SelectedModifier{
					ID:                   m.ID,
					Name:                 m.Name,
					PriceAdjustmentCents: m.PriceAdjustmentCents,
				})
			}
		}
		groups = append(groups, sg)
	}
	return groups
}

// visibleSelections keeps the client's selection shape but drops groups that
// were filtered out by visibility rules.
func visibleSelections(original []domain.GroupSelection, visible map[string][]string) []domain.GroupSelection {
	out := make([]domain.GroupSelection, 0, len(original))
	for _, sel := range original {
		if _, ok := visible[sel.GroupID]; ok {
			out = append(out, sel)
		}
	}
	return out
}
