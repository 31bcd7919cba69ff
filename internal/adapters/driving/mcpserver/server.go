// Package mcpserver exposes the Copilot gateway as MCP tools over stdio
// or streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// serverName identifies the gateway to MCP clients.
const serverName = "m365-copilot"

// Server adapts the CopilotService to the Model Context Protocol.
type Server struct {
	service driving.CopilotService
	mcp     *mcp.Server
	// principal reports the signed-in account for the info endpoint.
	// May be nil, and returns "" before the first sign-in.
	principal func() string
}

// New creates an MCP server with all gateway tools registered. The
// principal func may be nil when no credential source is attached.
func New(service driving.CopilotService, version string, principal func() string) *Server {
	s := &Server{
		service:   service,
		principal: principal,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// principalName returns the signed-in account, or "" when unknown.
func (s *Server) principalName() string {
	if s.principal == nil {
		return ""
	}
	return s.principal()
}

// RunStdio serves MCP over stdin/stdout until the context is cancelled
// or the client disconnects. Logs go to stderr so the protocol stream
// stays clean.
func (s *Server) RunStdio(ctx context.Context) error {
	logger.Info("mcp: serving over stdio")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("run stdio transport: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "m365_retrieve",
		Description: "Retrieve relevant text chunks from SharePoint and OneDrive " +
			"for retrieval-augmented generation. Returns relevance-scored excerpts " +
			"with source links, best for grounding answers in organisational documents.",
	}, s.handleRetrieve)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "m365_chat",
		Description: "Ask Microsoft 365 Copilot a question grounded in your " +
			"organisation's emails, files, meetings and chats. Supports multi-turn " +
			"conversations via the returned conversation ID.",
	}, s.handleChat)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "m365_chat_with_files",
		Description: "Ask Microsoft 365 Copilot a question about specific SharePoint " +
			"or OneDrive files, identified by their URLs.",
	}, s.handleChatWithFiles)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "m365_search",
		Description: "Search for documents in OneDrive and SharePoint by keyword. " +
			"Returns file names, links, sizes and content previews.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "m365_meetings",
		Description: "List recent Teams meetings or fetch AI-generated insights " +
			"(summary notes, action items, mentions) for one meeting.",
	}, s.handleMeetings)
}

// textResult wraps markdown text as a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult wraps an error as a tool-level failure so the model sees
// the message and can adjust, rather than a protocol error.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: friendlyError(err)}},
	}
}
