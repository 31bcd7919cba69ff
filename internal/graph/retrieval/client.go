// Package retrieval implements the M365 Copilot Retrieval API client.
//
// The Retrieval API returns relevance-scored text chunks from SharePoint
// and OneDrive for RAG scenarios.
//
// Endpoint: POST /beta/copilot/retrieval
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// retrievalTimeout allows for the heavier server-side chunking work.
const retrievalTimeout = 90 * time.Second

// MaxResults caps how many chunks the API returns per call.
const MaxResults = 25

// dataSources maps friendly source names onto API data source types.
var dataSources = map[string]string{
	"sharepoint": "microsoft365SharePoint",
	"onedrive":   "microsoft365OneDrive",
	"connectors": "copilotConnectors",
}

// Client talks to the Copilot Retrieval API.
type Client struct {
	base *graph.Client
}

// NewClient creates a Retrieval API client. A non-positive timeout keeps
// the default.
func NewClient(tokens driven.TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = retrievalTimeout
	}
	return &Client{
		base: graph.NewClient(tokens, graph.ServiceRetrieval, timeout),
	}
}

// Retrieve fetches text chunks for a query. The data source is one of
// "sharepoint", "onedrive" or "connectors"; maxResults is clamped to 1-25.
func (c *Client) Retrieve(
	ctx context.Context, query, dataSource, filterExpression string, maxResults int, requestID string,
) (*domain.RetrievalResponse, error) {
	if requestID == "" {
		requestID = graph.GenRequestID()
	}
	url := graph.BetaBaseURL + "/copilot/retrieval"

	logger.Info("[%s] retrieve: %s (source=%s, max=%d)",
		requestID, graph.TruncateQuery(query), dataSource, maxResults)

	sourceType, ok := dataSources[dataSource]
	if !ok {
		sourceType = dataSource
	}

	source := map[string]any{"type": sourceType}
	if filterExpression != "" {
		source["filterExpression"] = filterExpression
	}

	body := map[string]any{
		"query":      query,
		"dataSource": source,
		"maxResults": clamp(maxResults, 1, MaxResults),
	}

	resp, err := c.base.Do(ctx, http.MethodPost, url, body, requestID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("[%s] retrieval failed: %d", requestID, resp.StatusCode)
		return nil, graph.NewAPIError(resp.StatusCode, data)
	}

	chunks, err := parseChunks(data)
	if err != nil {
		return nil, err
	}

	logger.Info("[%s] retrieved %d chunks", requestID, len(chunks))
	return &domain.RetrievalResponse{
		Chunks:       chunks,
		TotalResults: len(chunks),
	}, nil
}

// parseChunks extracts chunks from the API response, sorted by relevance
// score descending.
func parseChunks(data []byte) ([]domain.TextChunk, error) {
	var payload struct {
		Value []struct {
			Content              string  `json:"content"`
			RelevanceScore       float64 `json:"relevanceScore"`
			WebURL               string  `json:"webUrl"`
			Name                 string  `json:"name"`
			FileType             string  `json:"fileType"`
			LastModifiedDateTime string  `json:"lastModifiedDateTime"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode retrieval response: %w", err)
	}

	chunks := make([]domain.TextChunk, 0, len(payload.Value))
	for _, item := range payload.Value {
		chunks = append(chunks, domain.TextChunk{
			Content:        item.Content,
			RelevanceScore: item.RelevanceScore,
			SourceURL:      item.WebURL,
			SourceTitle:    item.Name,
			FileType:       item.FileType,
			LastModified:   item.LastModifiedDateTime,
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].RelevanceScore > chunks[j].RelevanceScore
	})

	return chunks, nil
}

// clamp bounds n to the inclusive range [lo, hi].
func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
