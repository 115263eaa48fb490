package api

import (
	"context"
	"sync"

	"github.com/diogo/wikichat/internal/models"
)

// MockClient is a mock implementation of Exchanger for testing
type MockClient struct {
	// Mock return values
	Response *models.ChatResponse
	Err      error

	// Gate, when non-nil, blocks Exchange until it is closed or the context ends
	Gate chan struct{}

	mu       sync.Mutex
	requests []models.ChatRequest
}

// Ensure MockClient implements Exchanger
var _ Exchanger = (*MockClient)(nil)

// NewMockClient returns a mock that answers every request with answer
func NewMockClient(answer string) *MockClient {
	return &MockClient{Response: &models.ChatResponse{Answer: answer}}
}

// NewMockClientWithError returns a mock that fails every request with err
func NewMockClientWithError(err error) *MockClient {
	return &MockClient{Err: err}
}

func (m *MockClient) Exchange(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// Requests returns a copy of every request received so far
func (m *MockClient) Requests() []models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of Exchange calls
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, if any
func (m *MockClient) LastRequest() (models.ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return models.ChatRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}
