package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-process provider for local development and tests. It
// records every request and can be primed to fail.
type MockProvider struct {
	mu       sync.Mutex
	requests []SessionRequest
	failWith error
}

// NewMockProvider creates a mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name implements Provider.
func (p *MockProvider) Name() string { return "mock" }

// FailWith makes every subsequent CreateSession call return err. Pass nil to
// restore success.
func (p *MockProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

// Requests returns a copy of every request received so far.
func (p *MockProvider) Requests() []SessionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SessionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// CreateSession implements Provider.
func (p *MockProvider) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.failWith != nil {
		return nil, p.failWith
	}
	return &Session{
		ProviderSessionID: "mock_" + req.ReferenceID,
		URL:               fmt.Sprintf("https://pay.example.test/session/%s", req.ReferenceID),
	}, nil
}
