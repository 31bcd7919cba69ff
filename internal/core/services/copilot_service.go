// Package services wires the domain ports to the Graph API clients and
// holds in-process session state.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/graph/chat"
	"github.com/custodia-labs/copilot-mcp/internal/graph/meetings"
	"github.com/custodia-labs/copilot-mcp/internal/graph/retrieval"
	"github.com/custodia-labs/copilot-mcp/internal/graph/search"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// displayNameLimit truncates conversation display names derived from the
// first message.
const displayNameLimit = 50

// CopilotService implements driving.CopilotService on top of the Graph
// API clients.
type CopilotService struct {
	retrieval *retrieval.Client
	chat      *chat.Client
	search    *search.Client
	meetings  *meetings.Client
	store     *ConversationStore
}

// NewCopilotService assembles the service from its clients and session store.
func NewCopilotService(
	retrievalClient *retrieval.Client,
	chatClient *chat.Client,
	searchClient *search.Client,
	meetingsClient *meetings.Client,
	store *ConversationStore,
) *CopilotService {
	return &CopilotService{
		retrieval: retrievalClient,
		chat:      chatClient,
		search:    searchClient,
		meetings:  meetingsClient,
		store:     store,
	}
}

// Retrieve fetches relevance-scored text chunks for RAG.
func (s *CopilotService) Retrieve(
	ctx context.Context, req driving.RetrieveRequest,
) (*domain.RetrievalResponse, error) {
	dataSource := req.DataSource
	if dataSource == "" {
		dataSource = "sharepoint"
	}
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = 10
	}
	return s.retrieval.Retrieve(ctx, req.Query, dataSource, req.FilterExpression, maxResults, "")
}

// Chat sends one conversational turn, creating or resuming the session
// identified by req.ConversationID. Expired or unknown IDs fall back to a
// fresh conversation rather than failing the turn.
func (s *CopilotService) Chat(ctx context.Context, req driving.ChatRequest) (*domain.ChatResponse, error) {
	requestID := graph.GenRequestID()

	conv, err := s.resumeOrCreate(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	resp, err := s.chat.Send(ctx, conv.APIConversationID, req.Message, chat.SendOptions{
		WebSearch: req.WebSearch,
		FileURIs:  req.FileURIs,
		RequestID: requestID,
	})
	if err != nil {
		return nil, err
	}

	resp.ConversationID = conv.ID
	resp.TurnCount = s.store.IncrementTurn(conv.ID)
	return resp, nil
}

// resumeOrCreate looks up an existing session or starts a new one.
func (s *CopilotService) resumeOrCreate(
	ctx context.Context, req driving.ChatRequest, requestID string,
) (*domain.Conversation, error) {
	if req.ConversationID != "" {
		conv, err := s.store.Get(req.ConversationID)
		if err == nil {
			s.store.Touch(conv.ID)
			return conv, nil
		}
		if !errors.Is(err, domain.ErrConversationNotFound) {
			return nil, err
		}
		logger.Info("[%s] conversation %s not found, starting fresh", requestID, req.ConversationID)
	}

	apiID, err := s.chat.CreateConversation(ctx, requestID)
	if err != nil {
		return nil, err
	}

	return s.store.Create(apiID, truncate(req.Message, displayNameLimit)), nil
}

// Search finds documents in OneDrive and SharePoint.
func (s *CopilotService) Search(ctx context.Context, req driving.SearchRequest) (*domain.SearchResponse, error) {
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 10
	}
	return s.search.Search(ctx, req.Query, req.PathFilter, pageSize, "")
}

// ListMeetings lists the user's recent online meetings.
func (s *CopilotService) ListMeetings(ctx context.Context, since time.Time) ([]domain.MeetingSummary, error) {
	return s.meetings.ListMeetings(ctx, since)
}

// MeetingInsights fetches AI insights for one meeting.
func (s *CopilotService) MeetingInsights(
	ctx context.Context, meetingID, joinURL string,
) (*domain.MeetingInsight, error) {
	return s.meetings.GetInsights(ctx, meetingID, joinURL)
}

// Store exposes the session store for adapters that report session state.
func (s *CopilotService) Store() *ConversationStore {
	return s.store
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
