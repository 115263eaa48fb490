package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/models"
)

// transportTimeoutGrace is how long the transport timer outlives the exchange deadline
const transportTimeoutGrace = 5 * time.Second

// Exchanger performs the single remote operation the chat controller depends on
type Exchanger interface {
	Exchange(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// Client is the HTTP implementation of Exchanger
type Client struct {
	httpClient tls_client.HttpClient
	endpoint   string
	timeout    time.Duration
	logger     *zap.Logger
	mu         sync.RWMutex
	closed     bool
}

// Ensure Client implements Exchanger
var _ Exchanger = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithEndpoint sets the chat endpoint URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout bounds each exchange. Zero disables the client-side timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint: models.DefaultEndpoint,
		timeout:  2 * time.Minute,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		options = append(options, tls_client.WithTimeoutMilliseconds(int(transportTimeout(client.timeout).Milliseconds())))

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// transportTimeout returns the timeout given to the HTTP client. The exchange
// deadline is enforced by the request context; the transport timer only backs
// it up, so it fires later. Zero means no transport timeout.
func transportTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	return timeout + transportTimeoutGrace
}

// Endpoint returns the chat endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-exchange timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Close releases idle connections; subsequent exchanges fail
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
