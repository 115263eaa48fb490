package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/wikichat/internal/errors"
	"github.com/diogo/wikichat/internal/models"
)

const (
	// maxResponseBytes caps how much of a success body is read
	maxResponseBytes = 4 << 20
	// maxErrorBodyBytes caps how much of an error body is kept for diagnostics
	maxErrorBodyBytes = 4096
)

// Exchange sends one message to the chat endpoint and returns the answer.
// Any non-2xx status is an *errors.HTTPError; a transport failure is an
// *errors.NetworkError (or *errors.TimeoutError when the deadline passed).
func (c *Client) Exchange(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range models.DefaultHeaders() {
		httpReq.Header.Set(key, value)
	}

	c.logger.Debug("sending chat exchange",
		zap.String("endpoint", c.endpoint),
		zap.String("mode", req.Mode.String()),
		zap.Int("message_len", len(req.Message)))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("chat exchange timed out", zap.Duration("timeout", c.timeout))
			return nil, apierrors.NewTimeoutError(fmt.Sprintf("no response after %s", c.timeout))
		}
		c.logger.Warn("chat exchange failed", zap.Error(err))
		return nil, apierrors.NewNetworkError("chat exchange", c.endpoint, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	c.logger.Debug("chat exchange response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		message := ""
		if gjson.ValidBytes(body) {
			message = gjson.GetBytes(body, "error").String()
		}
		return nil, apierrors.NewHTTPErrorWithBody(resp.StatusCode, c.endpoint, string(body), message)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apierrors.NewNetworkError("read chat response", c.endpoint, err)
	}

	return parseResponse(body)
}

// parseResponse extracts the answer from a success body. A missing "answer"
// field yields an empty answer.
func parseResponse(body []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response body is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, apierrors.NewParseError("response body is not a JSON object", "")
	}

	return &models.ChatResponse{
		Answer: parsed.Get("answer").String(),
	}, nil
}
