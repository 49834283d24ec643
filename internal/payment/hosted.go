package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/httpclient"
)

// HostedProvider talks to the hosted payment processor over HTTP. Calls run
// through a circuit breaker so a struggling processor sheds load fast instead
// of tying up every checkout worker.
type HostedProvider struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewHostedProvider creates a provider against the given base URL.
func NewHostedProvider(client *httpclient.CircuitBreakerClient, baseURL, apiKey string, logger *slog.Logger) *HostedProvider {
	return &HostedProvider{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Name implements Provider.
func (p *HostedProvider) Name() string { return "hosted" }

// CreateSession implements Provider.
func (p *HostedProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode payment session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/payment_sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create payment session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.ReferenceID)
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "payment session creation failed",
			slog.String("reference_id", req.ReferenceID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ServiceUnavailable("payment provider unavailable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "payment provider")
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode payment session response: %w", err)
	}
	if session.URL == "" {
		return nil, apperrors.ServiceUnavailable("payment provider returned no redirect URL")
	}

	p.logger.InfoContext(ctx, "payment session created",
		slog.String("reference_id", req.ReferenceID),
		slog.String("provider_session_id", session.ProviderSessionID),
		slog.Int64("amount_cents", req.AmountCents),
	)
	return &session, nil
}
