// Package chat implements the M365 Copilot Chat API client.
//
// Chat turns stream back over Server-Sent Events: delta frames carry
// incremental text and citations, a completion frame carries any final
// citations, and an error frame aborts the turn. The client folds the
// stream into one assembled response via an Accumulator.
//
// Endpoints:
//   - POST /beta/copilot/conversations - create conversation
//   - POST /beta/copilot/conversations/{id}/chatOverStream - streaming chat
package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// Stream deadlines. Turns grounded against files take longer to process
// remotely, so they get a larger budget.
const (
	streamTimeout          = 60 * time.Second
	streamWithFilesTimeout = 120 * time.Second
)

// StreamError is a terminal error frame received on the event stream.
// The partial accumulation is discarded when one arrives.
type StreamError struct {
	// Payload is the error frame's data, passed through as diagnostic text.
	Payload string
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return "chat stream error: " + e.Payload
}

// SendOptions controls grounding for one chat turn.
type SendOptions struct {
	// WebSearch includes public web results in grounding.
	WebSearch bool
	// FileURIs grounds the answer against specific SharePoint/OneDrive files.
	FileURIs []string
	// RequestID correlates log lines; generated when empty.
	RequestID string
}

// Client talks to the Copilot Chat API.
type Client struct {
	tokens driven.TokenProvider
	base   *graph.Client
	// stream has no client-level timeout; the per-turn context deadline
	// governs the whole SSE exchange.
	stream       *http.Client
	baseURL      string
	timeout      time.Duration
	filesTimeout time.Duration
}

// NewClient creates a Chat API client. A positive timeout overrides the
// stream deadlines for every turn, grounded against files or not; zero
// keeps the defaults.
func NewClient(tokens driven.TokenProvider, timeout time.Duration) *Client {
	filesTimeout := streamWithFilesTimeout
	if timeout <= 0 {
		timeout = streamTimeout
	} else {
		filesTimeout = timeout
	}
	return &Client{
		tokens:       tokens,
		base:         graph.NewClient(tokens, graph.ServiceChat, timeout),
		stream:       &http.Client{},
		baseURL:      graph.BetaBaseURL,
		timeout:      timeout,
		filesTimeout: filesTimeout,
	}
}

// CreateConversation creates a new server-side conversation and returns its ID.
func (c *Client) CreateConversation(ctx context.Context, requestID string) (string, error) {
	if requestID == "" {
		requestID = graph.GenRequestID()
	}
	url := c.baseURL + "/copilot/conversations"

	resp, err := c.base.Do(ctx, http.MethodPost, url, map[string]any{}, requestID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		logger.Error("[%s] create conversation failed: %d", requestID, resp.StatusCode)
		return "", graph.NewAPIError(resp.StatusCode, body)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode conversation: %w", err)
	}

	logger.Info("[%s] created conversation %s", requestID, created.ID)
	return created.ID, nil
}

// Send posts a message into a conversation and consumes the event stream
// until completion, returning the assembled response.
func (c *Client) Send(
	ctx context.Context, apiConversationID, message string, opts SendOptions,
) (*domain.ChatResponse, error) {
	requestID := opts.RequestID
	if requestID == "" {
		requestID = graph.GenRequestID()
	}

	timeout := c.timeout
	if len(opts.FileURIs) > 0 {
		timeout = c.filesTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("[%s] chat: %s (web=%t, files=%d)",
		requestID, graph.TruncateQuery(message), opts.WebSearch, len(opts.FileURIs))

	body := buildRequest(message, opts)

	resp, err := c.openStream(ctx, apiConversationID, body, requestID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	acc := NewAccumulator()
	if err := c.consumeStream(ctx, resp.Body, acc, requestID); err != nil {
		return nil, err
	}

	response := acc.Response(apiConversationID)
	logger.Info("[%s] chat complete: %d chars, %d citations",
		requestID, len(response.Text), len(response.Attributions))
	return response, nil
}

// buildRequest assembles the chatOverStream request body.
func buildRequest(message string, opts SendOptions) *chatRequest {
	body := &chatRequest{
		Messages: []chatMessage{{Content: message, Role: "user"}},
	}
	if !opts.WebSearch {
		body.GroundingOptions = &groundingOptions{DisableWebGrounding: true}
	}
	for _, uri := range opts.FileURIs {
		body.ExternalContexts = append(body.ExternalContexts, externalContext{
			Type:  "fileUri",
			Value: uri,
		})
	}
	return body
}

// openStream issues the SSE request and validates the handshake.
func (c *Client) openStream(
	ctx context.Context, apiConversationID string, body *chatRequest, requestID string,
) (*http.Response, error) {
	url := fmt.Sprintf("%s/copilot/conversations/%s/chatOverStream",
		c.baseURL, apiConversationID)

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, graph.WrapTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, graph.NewAPIError(resp.StatusCode, data)
	}
	return resp, nil
}

// consumeStream reads event frames until end-of-stream, feeding the
// accumulator. Frames that fail to parse are logged and skipped; an error
// frame aborts immediately.
func (c *Client) consumeStream(
	ctx context.Context, body io.Reader, acc *Accumulator, requestID string,
) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)

	var currentEvent string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		switch currentEvent {
		case eventDelta:
			if err := acc.AddDelta([]byte(data)); err != nil {
				logger.Warn("[%s] skipping malformed delta frame: %s",
					requestID, graph.TruncateQuery(data))
			}
		case eventComplete:
			if err := acc.AddCompletion([]byte(data)); err != nil {
				logger.Warn("[%s] skipping malformed completion frame: %s",
					requestID, graph.TruncateQuery(data))
			}
		case eventError:
			logger.Error("[%s] stream error: %s", requestID, data)
			return &StreamError{Payload: data}
		}
	}

	if err := scanner.Err(); err != nil {
		return graph.WrapTransportError(err)
	}
	if err := ctx.Err(); err != nil {
		return graph.WrapTransportError(err)
	}
	return nil
}
