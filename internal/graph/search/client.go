// Package search implements the Microsoft Search API client for
// document lookups across SharePoint and OneDrive.
//
// Endpoint: POST /v1.0/search/query
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

const searchTimeout = 60 * time.Second

// MaxPageSize caps how many hits the API returns per call.
const MaxPageSize = 100

// Client talks to the Microsoft Search API.
type Client struct {
	base *graph.Client
}

// NewClient creates a Search API client. A non-positive timeout keeps
// the default.
func NewClient(tokens driven.TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = searchTimeout
	}
	return &Client{
		base: graph.NewClient(tokens, graph.ServiceSearch, timeout),
	}
}

// Search finds documents matching the query. An optional pathFilter
// restricts hits to URLs under the given prefix; pageSize is clamped
// to 1-100.
func (c *Client) Search(
	ctx context.Context, query, pathFilter string, pageSize int, requestID string,
) (*domain.SearchResponse, error) {
	if requestID == "" {
		requestID = graph.GenRequestID()
	}
	url := graph.V1BaseURL + "/search/query"

	logger.Info("[%s] search: %s (size=%d)", requestID, graph.TruncateQuery(query), pageSize)

	queryString := query
	if pathFilter != "" {
		queryString = fmt.Sprintf("%s path:\"%s\"", query, pathFilter)
	}

	body := map[string]any{
		"requests": []map[string]any{{
			"entityTypes": []string{"driveItem"},
			"query":       map[string]string{"queryString": queryString},
			"from":        0,
			"size":        clamp(pageSize, 1, MaxPageSize),
		}},
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
		logger.Error("[%s] search failed: %d", requestID, resp.StatusCode)
		return nil, graph.NewAPIError(resp.StatusCode, data)
	}

	results, total, err := parseHits(data)
	if err != nil {
		return nil, err
	}

	logger.Info("[%s] search returned %d hits", requestID, len(results))
	return &domain.SearchResponse{Results: results, TotalResults: total}, nil
}

// parseHits walks the nested hitsContainers structure of a search response.
func parseHits(data []byte) ([]domain.SearchResult, int, error) {
	var payload struct {
		Value []struct {
			HitsContainers []struct {
				Total int `json:"total"`
				Hits  []struct {
					Summary  string `json:"summary"`
					Resource struct {
						Name                 string `json:"name"`
						WebURL               string `json:"webUrl"`
						Size                 int64  `json:"size"`
						LastModifiedDateTime string `json:"lastModifiedDateTime"`
						File                 struct {
							MimeType string `json:"mimeType"`
						} `json:"file"`
						LastModifiedBy struct {
							User struct {
								DisplayName string `json:"displayName"`
							} `json:"user"`
						} `json:"lastModifiedBy"`
						ParentReference struct {
							Path string `json:"path"`
						} `json:"parentReference"`
					} `json:"resource"`
				} `json:"hits"`
			} `json:"hitsContainers"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	var results []domain.SearchResult
	var total int
	for _, value := range payload.Value {
		for _, container := range value.HitsContainers {
			total += container.Total
			for _, hit := range container.Hits {
				res := hit.Resource
				results = append(results, domain.SearchResult{
					Name:         res.Name,
					URL:          res.WebURL,
					Preview:      hit.Summary,
					FileType:     fileExtension(res.Name),
					Size:         res.Size,
					LastModified: res.LastModifiedDateTime,
					Author:       res.LastModifiedBy.User.DisplayName,
					Path:         res.ParentReference.Path,
				})
			}
		}
	}

	return results, total, nil
}

// fileExtension returns the extension of name without the dot, or "".
func fileExtension(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		switch name[i] {
		case '.':
			return name[i+1:]
		case '/', '\\':
			return ""
		}
	}
	return ""
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
