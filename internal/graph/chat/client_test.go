package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/copilot-mcp/internal/graph"
)

// staticTokens is a TokenProvider returning a fixed token.
type staticTokens struct{}

func (staticTokens) GetToken(context.Context) (string, error) { return "test-token", nil }

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(staticTokens{}, 0)
	c.baseURL = srv.URL
	return c
}

func TestNewClient_TimeoutOverride(t *testing.T) {
	// Given no override, the per-turn defaults apply.
	c := NewClient(staticTokens{}, 0)
	assert.Equal(t, streamTimeout, c.timeout)
	assert.Equal(t, streamWithFilesTimeout, c.filesTimeout)

	// A configured override governs every turn, files included.
	c = NewClient(staticTokens{}, 90*time.Second)
	assert.Equal(t, 90*time.Second, c.timeout)
	assert.Equal(t, 90*time.Second, c.filesTimeout)
}

func writeSSE(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func TestCreateConversation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/copilot/conversations", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"api-conv-42"}`)
	}))

	id, err := c.CreateConversation(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "api-conv-42", id)
}

func TestCreateConversation_Forbidden(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"no licence"}}`)
	}))

	_, err := c.CreateConversation(context.Background(), "req-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrForbidden)

	var apiErr *graph.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestSend_AssemblesStream(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/copilot/conversations/api-conv-1/chatOverStream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, eventDelta, `{"delta":{"content":"The answer "}}`)
		writeSSE(w, eventDelta, `{"delta":{"content":"is 42.","attributions":[{"url":"https://contoso.sharepoint.com/doc","title":"Doc"}]}}`)
		writeSSE(w, eventComplete, `{"attributions":[{"url":"https://contoso.sharepoint.com/doc","title":"Ignored"}]}`)
	}))

	resp, err := c.Send(context.Background(), "api-conv-1", "what is the answer?", SendOptions{})
	require.NoError(t, err)

	assert.Equal(t, "The answer is 42.", resp.Text)
	require.Len(t, resp.Attributions, 1)
	assert.Equal(t, "Doc", resp.Attributions[0].Title)
}

func TestSend_ErrorFrameAbortsTurn(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, eventDelta, `{"delta":{"content":"partial"}}`)
		writeSSE(w, eventError, `{"code":"TooManyRequests","message":"rate limited"}`)
	}))

	_, err := c.Send(context.Background(), "api-conv-1", "hi", SendOptions{})
	require.Error(t, err)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Contains(t, streamErr.Payload, "rate limited")
}

func TestSend_MalformedFramesSkipped(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, eventDelta, `{corrupt`)
		writeSSE(w, eventDelta, `{"delta":{"content":"survives"}}`)
		writeSSE(w, eventComplete, `{}`)
	}))

	resp, err := c.Send(context.Background(), "api-conv-1", "hi", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "survives", resp.Text)
}

func TestSend_HandshakeFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Send(context.Background(), "api-conv-1", "hi", SendOptions{})
	assert.ErrorIs(t, err, graph.ErrUnauthorised)
}

func TestSend_UnknownEventsIgnored(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "keepAlive", `{}`)
		writeSSE(w, eventDelta, `{"delta":{"content":"ok"}}`)
	}))

	resp, err := c.Send(context.Background(), "api-conv-1", "hi", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name            string
		opts            SendOptions
		wantGrounding   bool
		wantDisableWeb  bool
		wantFileContext int
	}{
		{
			name:           "defaults disable web grounding",
			opts:           SendOptions{},
			wantGrounding:  true,
			wantDisableWeb: true,
		},
		{
			name:          "web search omits grounding options",
			opts:          SendOptions{WebSearch: true},
			wantGrounding: false,
		},
		{
			name:            "file uris become external contexts",
			opts:            SendOptions{FileURIs: []string{"https://a", "https://b"}},
			wantGrounding:   true,
			wantDisableWeb:  true,
			wantFileContext: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildRequest("question", tt.opts)

			require.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, "question", body.Messages[0].Content)

			if tt.wantGrounding {
				require.NotNil(t, body.GroundingOptions)
				assert.Equal(t, tt.wantDisableWeb, body.GroundingOptions.DisableWebGrounding)
			} else {
				assert.Nil(t, body.GroundingOptions)
			}
			assert.Len(t, body.ExternalContexts, tt.wantFileContext)
			for _, ec := range body.ExternalContexts {
				assert.Equal(t, "fileUri", ec.Type)
			}
		})
	}
}

func TestStreamError_Error(t *testing.T) {
	err := &StreamError{Payload: "boom"}
	assert.Equal(t, "chat stream error: boom", err.Error())
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
