package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/logger"
)

func newBreakerClient(name string, minRequests uint32) *CircuitBreakerClient {
	base := New(Config{
		Timeout:         time.Second,
		MaxRetries:      0,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
	return NewCircuitBreakerClient(base, CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  minRequests,
	}, logger.New("test", "error"))
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cb := newBreakerClient("cb-pass", 5)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := cb.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := newBreakerClient("cb-open", 2)

	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		_, _ = cb.Do(context.Background(), req)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestCircuitBreaker_FallbackInvokedWhenOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := newBreakerClient("cb-fallback", 2).WithFallback(
		func(_ context.Context, _ error) (*http.Response, error) {
			return nil, apperrors.ServiceUnavailable("payment processor is temporarily unavailable")
		})

	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		_, _ = cb.Do(context.Background(), req)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = cb.Do(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}
