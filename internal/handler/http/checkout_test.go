package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/pricing"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/service"
	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/health"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/logger"
)

type stubService struct {
	checkoutReq  *service.CheckoutRequest
	checkoutRes  *service.CheckoutResult
	checkoutErr  error
	session      *domain.CheckoutSession
	sessionErr   error
	completeErr  error
	expireErr    error
	breakdown    *pricing.Breakdown
	breakdownErr error
}

func (s *stubService) Checkout(_ context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	s.checkoutReq = &req
	return s.checkoutRes, s.checkoutErr
}

func (s *stubService) GetSession(context.Context, string) (*domain.CheckoutSession, error) {
	return s.session, s.sessionErr
}

func (s *stubService) CompleteSession(context.Context, string) error { return s.completeErr }
func (s *stubService) ExpireSession(context.Context, string) error   { return s.expireErr }

func (s *stubService) PriceItem(context.Context, string, []domain.GroupSelection, int) (*pricing.Breakdown, error) {
	return s.breakdown, s.breakdownErr
}

func newServer(t *testing.T, stub *stubService) *httptest.Server {
	t.Helper()
	log := logger.New("test", "error")
	router := NewRouter(NewCheckoutHandler(stub, log), health.NewHandler(), log)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

const validCheckoutBody = `{
	"items": [{"id": "item-burger", "quantity": 2}],
	"email": "ada@example.com",
	"name": "Ada",
	"promo_code": "SAVE10",
	"successUrl": "https://shop.example.com/done",
	"cancelUrl": "https://shop.example.com/cart"
}`

func postCheckout(t *testing.T, srv *httptest.Server, body, userID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/checkout", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCheckout_Success(t *testing.T) {
	stub := &stubService{
		checkoutRes: &service.CheckoutResult{
			SessionID:   "sess-1",
			RedirectURL: "https://pay.example.com/sess-1",
			Status:      domain.SessionStatusOpen,
		},
	}
	srv := newServer(t, stub)

	resp := postCheckout(t, srv, validCheckoutBody, "user-1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "sess-1", envelope.Data.ID)
	assert.Equal(t, "https://pay.example.com/sess-1", envelope.Data.URL)
	assert.Equal(t, "open", envelope.Data.Status)

	require.NotNil(t, stub.checkoutReq)
	assert.Equal(t, "user-1", stub.checkoutReq.UserID)
	assert.Equal(t, "SAVE10", stub.checkoutReq.PromoCode)
	require.Len(t, stub.checkoutReq.Items, 1)
	assert.Equal(t, 2, stub.checkoutReq.Items[0].Quantity)
}

func TestCheckout_MissingUser(t *testing.T) {
	srv := newServer(t, &stubService{})

	resp := postCheckout(t, srv, validCheckoutBody, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCheckout_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty items", `{"items": [], "email": "a@b.com", "successUrl": "https://s", "cancelUrl": "https://c"}`},
		{"bad email", `{"items": [{"id":"i","quantity":1}], "email": "nope", "successUrl": "https://s.example.com", "cancelUrl": "https://c.example.com"}`},
		{"missing redirect", `{"items": [{"id":"i","quantity":1}], "email": "a@b.com"}`},
		{"malformed json", `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, &stubService{})
			resp := postCheckout(t, srv, tc.body, "user-1")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCheckout_BusinessErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"promo exhausted", domain.ErrPromoExhausted(), http.StatusUnprocessableEntity, "PROMO_EXHAUSTED"},
		{"credit consumed", domain.ErrCreditAlreadyConsumed(), http.StatusConflict, "CREDIT_ALREADY_CONSUMED"},
		{"rate limited", apperrors.RateLimited(30), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"provider down", apperrors.ServiceUnavailable("payment provider unavailable"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, &stubService{checkoutErr: tc.err})

			resp := postCheckout(t, srv, validCheckoutBody, "user-1")
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var envelope struct {
				Error struct {
					Code      string `json:"code"`
					Retryable bool   `json:"retryable"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
			assert.Equal(t, tc.wantCode, envelope.Error.Code)

			if tc.wantStatus == http.StatusTooManyRequests {
				assert.True(t, envelope.Error.Retryable)
				assert.Equal(t, "30", resp.Header.Get("Retry-After"))
			}
		})
	}
}

func getSession(t *testing.T, srv *httptest.Server, id, userID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/checkout/"+id, nil)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetSession(t *testing.T) {
	stub := &stubService{
		session: &domain.CheckoutSession{
			ID: "sess-1", UserID: "user-1",
			Status: domain.SessionStatusOpen, TotalCents: 1958,
		},
	}
	srv := newServer(t, stub)

	resp := getSession(t, srv, "sess-1", "user-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data domain.CheckoutSession `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, int64(1958), envelope.Data.TotalCents)
}

func TestGetSession_WrongOwner(t *testing.T) {
	stub := &stubService{
		session: &domain.CheckoutSession{ID: "sess-1", UserID: "user-1", Status: domain.SessionStatusOpen},
	}
	srv := newServer(t, stub)

	resp := getSession(t, srv, "sess-1", "user-2")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetSession_NotFound(t *testing.T) {
	srv := newServer(t, &stubService{sessionErr: domain.ErrSessionNotFound("missing")})

	resp := getSession(t, srv, "missing", "user-1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExpireSession_GoneWhenNotOpen(t *testing.T) {
	srv := newServer(t, &stubService{expireErr: domain.ErrSessionNotOpen("sess-1")})

	resp, err := http.Post(srv.URL+"/api/v1/checkout/sess-1/expire", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestPriceItem(t *testing.T) {
	stub := &stubService{
		breakdown: &pricing.Breakdown{
			ItemID:         "item-pizza",
			UnitPriceCents: 1300,
			Quantity:       2,
			SubtotalCents:  2600,
			Fingerprint:    pricing.Fingerprint{Fast: "abc", Audit: "def"},
		},
	}
	srv := newServer(t, stub)

	resp, err := http.Post(srv.URL+"/api/v1/menu/items/item-pizza/price", "application/json",
		strings.NewReader(`{"quantity": 2, "modifier_selections": [{"group_id": "grp-t", "modifier_ids": ["mod-olives"]}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data pricing.Breakdown `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, int64(2600), envelope.Data.SubtotalCents)
	assert.Equal(t, "abc", envelope.Data.Fingerprint.Fast)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newServer(t, &stubService{})

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
