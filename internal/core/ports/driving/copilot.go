// Package driving defines inbound ports consumed by the MCP and CLI adapters.
package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
)

// RetrieveRequest holds the arguments for a retrieval query.
type RetrieveRequest struct {
	// Query is the natural language query.
	Query string
	// DataSource selects where to search: "sharepoint", "onedrive" or "connectors".
	DataSource string
	// FilterExpression is an optional KQL filter.
	FilterExpression string
	// MaxResults limits returned chunks (clamped to 1-25).
	MaxResults int
}

// ChatRequest holds the arguments for one conversational turn.
type ChatRequest struct {
	// Message is the user's question.
	Message string
	// ConversationID resumes a prior conversation when set. Expired or
	// unknown IDs start a fresh conversation rather than failing.
	ConversationID string
	// WebSearch includes public web results in grounding.
	WebSearch bool
	// FileURIs grounds the answer against specific SharePoint/OneDrive files.
	FileURIs []string
}

// SearchRequest holds the arguments for a document search.
type SearchRequest struct {
	// Query is the natural language query.
	Query string
	// PathFilter scopes results to a OneDrive folder path.
	PathFilter string
	// PageSize limits returned documents (clamped to 1-100).
	PageSize int
}

// CopilotService is the gateway's tool-facing surface.
type CopilotService interface {
	// Retrieve fetches relevance-scored text chunks for RAG.
	Retrieve(ctx context.Context, req RetrieveRequest) (*domain.RetrievalResponse, error)

	// Chat sends one turn through the streaming Chat API, creating or
	// resuming the conversation identified by req.ConversationID.
	Chat(ctx context.Context, req ChatRequest) (*domain.ChatResponse, error)

	// Search finds documents in OneDrive.
	Search(ctx context.Context, req SearchRequest) (*domain.SearchResponse, error)

	// ListMeetings lists recent meetings since the given time.
	ListMeetings(ctx context.Context, since time.Time) ([]domain.MeetingSummary, error)

	// MeetingInsights fetches AI insights for one meeting, identified by
	// meeting ID or Teams join URL.
	MeetingInsights(ctx context.Context, meetingID, joinURL string) (*domain.MeetingInsight, error)
}
