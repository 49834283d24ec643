// Package http exposes the checkout pipeline over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/pricing"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/service"
	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/httputil"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/validator"
)

// userIDHeader is set by the gateway after authentication.
const userIDHeader = "X-User-ID"

// CheckoutService is the slice of the orchestrator the HTTP layer uses.
type CheckoutService interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
	GetSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	CompleteSession(ctx context.Context, sessionID string) error
	ExpireSession(ctx context.Context, sessionID string) error
	PriceItem(ctx context.Context, itemID string, selections []domain.GroupSelection, quantity int) (*pricing.Breakdown, error)
}

// CheckoutHandler serves the checkout endpoints.
type CheckoutHandler struct {
	svc    CheckoutService
	logger *slog.Logger
}

// NewCheckoutHandler creates the handler.
func NewCheckoutHandler(svc CheckoutService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, logger: log}
}

type groupSelectionRequest struct {
	GroupID     string   `json:"group_id" validate:"required"`
	ModifierIDs []string `json:"modifier_ids" validate:"required,min=1,dive,required"`
}

type checkoutItemRequest struct {
	ID                 string                  `json:"id" validate:"required"`
	Quantity           int                     `json:"quantity" validate:"required"`
	Notes              string                  `json:"notes" validate:"omitempty,max=500"`
	ModifierSelections []groupSelectionRequest `json:"modifier_selections" validate:"omitempty,dive"`
}

type checkoutRequest struct {
	Items      []checkoutItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
	Email      string                `json:"email" validate:"required,email"`
	Name       string                `json:"name" validate:"omitempty,max=200"`
	Phone      string                `json:"phone" validate:"omitempty,max=32"`
	PromoCode  string                `json:"promo_code" validate:"omitempty,max=64"`
	CreditID   string                `json:"credit_id" validate:"omitempty,max=64"`
	SuccessURL string                `json:"successUrl" validate:"required,url"`
	CancelURL  string                `json:"cancelUrl" validate:"required,url"`
}

type checkoutResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// Checkout handles POST /api/v1/checkout. The request carries IDs and
// quantities only; every amount in the response was computed server-side.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Forbidden("missing authenticated user"), h.logger)
		return
	}

	var req checkoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items := make([]domain.CartLineRequest, 0, len(req.Items))
	for _, it := range req.Items {
		line := domain.CartLineRequest{ItemID: it.ID, Quantity: it.Quantity, Notes: it.Notes}
		for _, sel := range it.ModifierSelections {
			line.Selections = append(line.Selections, domain.GroupSelection{
				GroupID:     sel.GroupID,
				ModifierIDs: sel.ModifierIDs,
			})
		}
		items = append(items, line)
	}

	result, err := h.svc.Checkout(r.Context(), service.CheckoutRequest{
		UserID: userID,
		Items:  items,
		Customer: domain.CustomerInfo{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		},
		PromoCode:  req.PromoCode,
		CreditID:   req.CreditID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: checkoutResponse{
		ID:     result.SessionID,
		URL:    result.RedirectURL,
		Status: result.Status,
	}})
}

// GetSession handles GET /api/v1/checkout/{id}. Sessions are visible to
// their owner only.
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Forbidden("missing authenticated user"), h.logger)
		return
	}

	sess, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if sess.UserID != userID {
		httputil.WriteError(w, r, apperrors.Forbidden("session belongs to another user"), h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess})
}

// CompleteSession handles POST /api/v1/checkout/{id}/complete, driven by the
// payment processor's confirmation callback.
func (h *CheckoutHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.CompleteSession(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"id":     id,
		"status": domain.SessionStatusComplete,
	}})
}

// ExpireSession handles POST /api/v1/checkout/{id}/expire.
func (h *CheckoutHandler) ExpireSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.ExpireSession(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"id":     id,
		"status": domain.SessionStatusExpired,
	}})
}

type priceQuoteRequest struct {
	Quantity           int                     `json:"quantity" validate:"required"`
	ModifierSelections []groupSelectionRequest `json:"modifier_selections" validate:"omitempty,dive"`
}

// PriceItem handles POST /api/v1/menu/items/{id}/price: an interactive quote
// with the tamper-detection fingerprint.
func (h *CheckoutHandler) PriceItem(w http.ResponseWriter, r *http.Request) {
	var req priceQuoteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	selections := make([]domain.GroupSelection, 0, len(req.ModifierSelections))
	for _, sel := range req.ModifierSelections {
		selections = append(selections, domain.GroupSelection{
			GroupID:     sel.GroupID,
			ModifierIDs: sel.ModifierIDs,
		})
	}

	bd, err := h.svc.PriceItem(r.Context(), chi.URLParam(r, "id"), selections, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: bd})
}
