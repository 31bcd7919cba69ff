package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// RetrieveArgs are the inputs for the m365_retrieve tool.
type RetrieveArgs struct {
	Query            string `json:"query" jsonschema:"Natural language query describing the content to find"`
	DataSource       string `json:"dataSource,omitempty" jsonschema:"Where to search: sharepoint (default), onedrive or connectors"`
	FilterExpression string `json:"filterExpression,omitempty" jsonschema:"Optional KQL filter, e.g. path:\"https://contoso.sharepoint.com/sites/hr\""`
	MaxResults       int    `json:"maxResults,omitempty" jsonschema:"Maximum chunks to return, 1-25 (default 10)"`
}

// ChatArgs are the inputs for the m365_chat tool.
type ChatArgs struct {
	Message        string `json:"message" jsonschema:"The question or instruction for Copilot"`
	ConversationID string `json:"conversationId,omitempty" jsonschema:"Conversation ID from a previous turn to continue that conversation"`
	WebSearch      bool   `json:"webSearch,omitempty" jsonschema:"Include public web results in grounding (default false)"`
}

// ChatWithFilesArgs are the inputs for the m365_chat_with_files tool.
type ChatWithFilesArgs struct {
	Message        string   `json:"message" jsonschema:"The question about the given files"`
	FileURLs       []string `json:"fileUrls" jsonschema:"SharePoint or OneDrive URLs of the files to ground against"`
	ConversationID string   `json:"conversationId,omitempty" jsonschema:"Conversation ID from a previous turn to continue that conversation"`
}

// SearchArgs are the inputs for the m365_search tool.
type SearchArgs struct {
	Query      string `json:"query" jsonschema:"Keywords to search for"`
	PathFilter string `json:"pathFilter,omitempty" jsonschema:"Optional folder path to scope results, e.g. /Documents/Reports"`
	PageSize   int    `json:"pageSize,omitempty" jsonschema:"Maximum documents to return, 1-100 (default 10)"`
}

// MeetingsArgs are the inputs for the m365_meetings tool.
type MeetingsArgs struct {
	MeetingID string `json:"meetingId,omitempty" jsonschema:"Meeting ID to fetch insights for; omit to list recent meetings"`
	JoinURL   string `json:"joinUrl,omitempty" jsonschema:"Teams join URL as an alternative to meetingId"`
	SinceDays int    `json:"sinceDays,omitempty" jsonschema:"When listing, how many days back to look (default 7)"`
}

func (s *Server) handleRetrieve(
	ctx context.Context, _ *mcp.CallToolRequest, args RetrieveArgs,
) (*mcp.CallToolResult, any, error) {
	if args.Query == "" {
		return errorResult(errors.New("query is required")), nil, nil
	}

	resp, err := s.service.Retrieve(ctx, driving.RetrieveRequest{
		Query:            args.Query,
		DataSource:       args.DataSource,
		FilterExpression: args.FilterExpression,
		MaxResults:       args.MaxResults,
	})
	if err != nil {
		logger.Error("mcp: retrieve failed: %v", err)
		return errorResult(err), nil, nil
	}

	return textResult(resp.ToMarkdown()), nil, nil
}

func (s *Server) handleChat(
	ctx context.Context, _ *mcp.CallToolRequest, args ChatArgs,
) (*mcp.CallToolResult, any, error) {
	if args.Message == "" {
		return errorResult(errors.New("message is required")), nil, nil
	}

	resp, err := s.service.Chat(ctx, driving.ChatRequest{
		Message:        args.Message,
		ConversationID: args.ConversationID,
		WebSearch:      args.WebSearch,
	})
	if err != nil {
		logger.Error("mcp: chat failed: %v", err)
		return errorResult(err), nil, nil
	}

	return textResult(withConversationFooter(resp)), nil, nil
}

func (s *Server) handleChatWithFiles(
	ctx context.Context, _ *mcp.CallToolRequest, args ChatWithFilesArgs,
) (*mcp.CallToolResult, any, error) {
	if args.Message == "" {
		return errorResult(errors.New("message is required")), nil, nil
	}
	if len(args.FileURLs) == 0 {
		return errorResult(errors.New("at least one file URL is required")), nil, nil
	}

	resp, err := s.service.Chat(ctx, driving.ChatRequest{
		Message:        args.Message,
		ConversationID: args.ConversationID,
		FileURIs:       args.FileURLs,
	})
	if err != nil {
		logger.Error("mcp: chat with files failed: %v", err)
		return errorResult(err), nil, nil
	}

	return textResult(withConversationFooter(resp)), nil, nil
}

func (s *Server) handleSearch(
	ctx context.Context, _ *mcp.CallToolRequest, args SearchArgs,
) (*mcp.CallToolResult, any, error) {
	if args.Query == "" {
		return errorResult(errors.New("query is required")), nil, nil
	}

	resp, err := s.service.Search(ctx, driving.SearchRequest{
		Query:      args.Query,
		PathFilter: args.PathFilter,
		PageSize:   args.PageSize,
	})
	if err != nil {
		logger.Error("mcp: search failed: %v", err)
		return errorResult(err), nil, nil
	}

	return textResult(resp.ToMarkdown()), nil, nil
}

func (s *Server) handleMeetings(
	ctx context.Context, _ *mcp.CallToolRequest, args MeetingsArgs,
) (*mcp.CallToolResult, any, error) {
	if args.MeetingID != "" || args.JoinURL != "" {
		insight, err := s.service.MeetingInsights(ctx, args.MeetingID, args.JoinURL)
		if err != nil {
			logger.Error("mcp: meeting insights failed: %v", err)
			return errorResult(err), nil, nil
		}
		return textResult(insight.ToMarkdown()), nil, nil
	}

	var since time.Time
	if args.SinceDays > 0 {
		since = time.Now().AddDate(0, 0, -args.SinceDays)
	}

	meetings, err := s.service.ListMeetings(ctx, since)
	if err != nil {
		logger.Error("mcp: list meetings failed: %v", err)
		return errorResult(err), nil, nil
	}

	if len(meetings) == 0 {
		return textResult("No recent meetings found."), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d meetings:\n\n", len(meetings))
	for _, m := range meetings {
		b.WriteString(m.ToMarkdown())
		b.WriteString("\n")
	}
	return textResult(b.String()), nil, nil
}

// withConversationFooter appends the session footer so the model can
// continue the conversation on the next turn.
func withConversationFooter(resp *domain.ChatResponse) string {
	return fmt.Sprintf("%s\n\n---\nConversation: `%s` (turn %d)",
		resp.ToMarkdown(), resp.ConversationID, resp.TurnCount)
}

// friendlyError maps internal errors onto guidance the model can act on.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthFailed),
		errors.Is(err, graph.ErrUnauthorised):
		return "Authentication failed. Run 'copilot-mcp auth' in a terminal to sign in again."
	case errors.Is(err, graph.ErrForbidden):
		return "Access denied. Your account may lack a Microsoft 365 Copilot licence, " +
			"or admin consent is missing for the required permissions."
	case errors.Is(err, graph.ErrRateLimited):
		return "The Microsoft Graph API is throttling requests. Wait a moment and try again."
	case errors.Is(err, domain.ErrTimeout):
		return "The request timed out. The service may be busy; try again or simplify the query."
	default:
		return fmt.Sprintf("Request failed: %v", err)
	}
}
