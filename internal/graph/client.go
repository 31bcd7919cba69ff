package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// Microsoft Graph base URLs. Copilot APIs ship on the beta surface.
const (
	BetaBaseURL = "https://graph.microsoft.com/beta"
	V1BaseURL   = "https://graph.microsoft.com/v1.0"
)

// Client is the authenticated HTTP layer shared by all API clients.
// It resolves a bearer token per request, applies the service rate limit
// and stamps an X-Request-Id header for log correlation.
type Client struct {
	tokens  driven.TokenProvider
	http    *http.Client
	limiter *RateLimiter
}

// defaultTimeout applies when a caller passes no usable timeout.
const defaultTimeout = 60 * time.Second

// NewClient creates a Graph client for one API service. A non-positive
// timeout falls back to defaultTimeout.
func NewClient(tokens driven.TokenProvider, service ServiceType, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
		limiter: NewRateLimiter(service),
	}
}

// Do performs an authenticated request. A non-nil body is JSON-encoded.
// The response body is left open for the caller to consume and close.
func (c *Client) Do(
	ctx context.Context, method, url string, body any, requestID string,
) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	logger.Debug("[%s] %s %s", requestID, method, url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, WrapTransportError(err)
	}

	if IsRateLimited(resp.StatusCode) {
		c.limiter.RecordRateLimitError(retryAfterSeconds(resp))
	}

	logger.Debug("[%s] response: %d", requestID, resp.StatusCode)
	return resp, nil
}

// WrapTransportError maps deadline errors onto the timeout sentinel so
// callers can distinguish "took too long" from "server rejected".
func WrapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("request: %w", err)
}

// retryAfterSeconds parses the Retry-After header of a 429 response.
func retryAfterSeconds(resp *http.Response) int {
	var seconds int
	if _, err := fmt.Sscanf(resp.Header.Get("Retry-After"), "%d", &seconds); err != nil {
		return 0
	}
	return seconds
}
