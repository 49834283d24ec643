package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/httpclient"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/logger"
)

func newHosted(t *testing.T, handler http.HandlerFunc) *HostedProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.New("test", "error")
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg), httpclient.DefaultCircuitBreakerConfig(t.Name()), log)
	return NewHostedProvider(client, srv.URL, "test-key", log)
}

func TestHostedProvider_CreateSession(t *testing.T) {
	var got SessionRequest
	p := newHosted(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_sessions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "sess-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Session{ProviderSessionID: "ps_123", URL: "https://pay.example.com/ps_123"})
	})

	session, err := p.CreateSession(context.Background(), SessionRequest{
		ReferenceID: "sess-1",
		AmountCents: 1958,
		Currency:    "usd",
		SuccessURL:  "https://shop.example.com/done",
		CancelURL:   "https://shop.example.com/cart",
	})

	require.NoError(t, err)
	assert.Equal(t, "ps_123", session.ProviderSessionID)
	assert.Equal(t, "https://pay.example.com/ps_123", session.URL)
	assert.Equal(t, int64(1958), got.AmountCents)
}

func TestHostedProvider_RejectsMissingRedirectURL(t *testing.T) {
	p := newHosted(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Session{ProviderSessionID: "ps_123"})
	})

	_, err := p.CreateSession(context.Background(), SessionRequest{ReferenceID: "sess-1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestHostedProvider_MapsStructuredDownstreamError(t *testing.T) {
	p := newHosted(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"AMOUNT_TOO_SMALL","message":"minimum charge is 50"}}`))
	})

	_, err := p.CreateSession(context.Background(), SessionRequest{ReferenceID: "sess-1", AmountCents: 1})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.HTTPStatus(err))
	assert.ErrorContains(t, err, "AMOUNT_TOO_SMALL")
}

func TestHostedProvider_ServerErrorBecomesUnavailable(t *testing.T) {
	p := newHosted(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.CreateSession(context.Background(), SessionRequest{ReferenceID: "sess-1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestMockProvider_RecordsAndFails(t *testing.T) {
	p := NewMockProvider()

	s, err := p.CreateSession(context.Background(), SessionRequest{ReferenceID: "sess-9"})
	require.NoError(t, err)
	assert.Contains(t, s.URL, "sess-9")

	p.FailWith(apperrors.ServiceUnavailable("down"))
	_, err = p.CreateSession(context.Background(), SessionRequest{ReferenceID: "sess-10"})
	assert.Error(t, err)
	assert.Len(t, p.Requests(), 2)
}
