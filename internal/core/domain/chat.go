package domain

import (
	"fmt"
	"strings"
)

// Attribution is a citation backing part of a Copilot answer.
type Attribution struct {
	// Type is the attribution kind reported by the API
	// ("annotation", "citation", "grounding").
	Type string
	// Text is the display text of the citation.
	Text string
	// URL is the source location. Attributions are deduplicated by URL.
	URL string
	// Title is the source document title, if known.
	Title string
}

// ChatResponse is the fully assembled result of one streamed chat turn.
type ChatResponse struct {
	// Text is the concatenation of all delta fragments in arrival order.
	Text string
	// ConversationID is the local conversation the turn belongs to.
	ConversationID string
	// TurnCount is the turn number within the conversation.
	TurnCount int
	// Attributions is the URL-deduplicated citation list in first-occurrence order.
	Attributions []Attribution
	// SensitivityLabel is the last label seen on the stream, empty if none.
	SensitivityLabel string
}

// ToMarkdown renders the response with a citations section and a
// sensitivity footer when present.
func (r *ChatResponse) ToMarkdown() string {
	parts := []string{r.Text}

	if citations := FormatCitations(r.Attributions); citations != "" {
		parts = append(parts, citations)
	}
	if r.SensitivityLabel != "" {
		parts = append(parts, fmt.Sprintf("\n---\n**Sensitivity:** %s", r.SensitivityLabel))
	}

	return strings.Join(parts, "\n")
}

// FormatCitations renders attributions as a markdown sources section.
// Returns an empty string when there is nothing to cite.
func FormatCitations(attributions []Attribution) string {
	if len(attributions) == 0 {
		return ""
	}

	lines := []string{"\n---", "**Sources:**"}
	for i, attr := range attributions {
		switch {
		case attr.URL != "":
			title := attr.Title
			if title == "" {
				title = attr.Text
			}
			if title == "" {
				title = fmt.Sprintf("Source %d", i+1)
			}
			lines = append(lines, fmt.Sprintf("[^%d^]: [%s](%s)", i+1, title, attr.URL))
		case attr.Text != "":
			lines = append(lines, fmt.Sprintf("[^%d^]: %s", i+1, attr.Text))
		}
	}

	return strings.Join(lines, "\n")
}
