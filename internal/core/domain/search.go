package domain

import (
	"fmt"
	"strings"
)

// SearchResult is a document hit from the Search API.
type SearchResult struct {
	Name         string
	URL          string
	Preview      string
	FileType     string
	Size         int64
	LastModified string
	Author       string
	Path         string
}

// ToMarkdown renders the result with a link, metadata line and preview.
func (r *SearchResult) ToMarkdown() string {
	lines := []string{fmt.Sprintf("**[%s](%s)**", r.Name, r.URL)}

	var meta []string
	if r.FileType != "" {
		meta = append(meta, strings.ToUpper(r.FileType))
	}
	if r.Size > 0 {
		sizeKB := float64(r.Size) / 1024
		if sizeKB > 1024 {
			meta = append(meta, fmt.Sprintf("%.1f MB", sizeKB/1024))
		} else {
			meta = append(meta, fmt.Sprintf("%.0f KB", sizeKB))
		}
	}
	if r.Author != "" {
		meta = append(meta, "by "+r.Author)
	}
	if len(meta) > 0 {
		lines = append(lines, fmt.Sprintf("*%s*", strings.Join(meta, " | ")))
	}

	if r.Preview != "" {
		lines = append(lines, "\n"+r.Preview)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// SearchResponse holds the documents returned for one search query.
type SearchResponse struct {
	Results      []SearchResult
	TotalResults int
}

// ToMarkdown renders all results as a numbered markdown list.
func (r *SearchResponse) ToMarkdown() string {
	if len(r.Results) == 0 {
		return "No documents found matching your query."
	}

	lines := []string{fmt.Sprintf("Found %d documents:\n", len(r.Results))}
	for i, result := range r.Results {
		lines = append(lines, fmt.Sprintf("### %d. %s", i+1, result.ToMarkdown()))
	}

	return strings.Join(lines, "\n")
}
