package domain

import (
	"fmt"
	"strings"
)

// TextChunk is a relevance-scored excerpt returned by the Retrieval API.
type TextChunk struct {
	Content        string
	RelevanceScore float64
	SourceURL      string
	SourceTitle    string
	FileType       string
	LastModified   string
}

// ToMarkdown renders the chunk with its source metadata.
func (c *TextChunk) ToMarkdown() string {
	var lines []string

	if c.SourceTitle != "" {
		lines = append(lines, fmt.Sprintf("### %s", c.SourceTitle))
	}
	if c.SourceURL != "" {
		lines = append(lines, fmt.Sprintf("*Source: [%s](%s)*", c.SourceURL, c.SourceURL))
	}
	if c.RelevanceScore > 0 {
		lines = append(lines, fmt.Sprintf("*Relevance: %.2f*", c.RelevanceScore))
	}

	lines = append(lines, "", c.Content, "")
	return strings.Join(lines, "\n")
}

// RetrievalResponse holds the chunks returned for one retrieval query.
type RetrievalResponse struct {
	Chunks       []TextChunk
	TotalResults int
}

// ToMarkdown renders all chunks as a numbered markdown list.
func (r *RetrievalResponse) ToMarkdown() string {
	if len(r.Chunks) == 0 {
		return "No relevant content found."
	}

	lines := []string{fmt.Sprintf("Found %d relevant chunks:\n", len(r.Chunks))}
	for i, chunk := range r.Chunks {
		lines = append(lines, fmt.Sprintf("---\n**[%d]**\n", i+1), chunk.ToMarkdown())
	}

	return strings.Join(lines, "\n")
}
