package chat

import (
	"encoding/json"
	"strings"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
)

// Accumulator folds streamed event frames into one coherent response.
//
// Delta-phase attributions are collected as-is; the live stream repeats
// citations and that is expected. The completion phase only contributes
// attributions whose URL has not been seen. Finalising deduplicates by URL
// with first-occurrence order, so the first copy of a citation wins even
// when a later copy carries richer metadata.
type Accumulator struct {
	fragments    []string
	attributions []domain.Attribution
	sensitivity  string
}

// NewAccumulator creates an empty accumulator for one chat turn.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// AddDelta applies a copilotMessageDelta frame. Returns an error only when
// the payload is not valid JSON; callers log and skip such frames.
func (a *Accumulator) AddDelta(data []byte) error {
	var frame deltaFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}

	if frame.Delta.Content != nil {
		a.fragments = append(a.fragments, *frame.Delta.Content)
	}

	for _, attr := range frame.Delta.Attributions {
		a.attributions = append(a.attributions, toAttribution(attr))
	}

	if frame.Delta.SensitivityLabel != nil {
		a.sensitivity = frame.Delta.SensitivityLabel.DisplayName
	}

	return nil
}

// AddCompletion applies a copilotMessageComplete frame. Completion
// attributions are merged even when no delta frame ever arrived.
func (a *Accumulator) AddCompletion(data []byte) error {
	var frame completionFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}

	for _, attr := range frame.Attributions {
		if a.hasURL(attr.URL) {
			continue
		}
		a.attributions = append(a.attributions, toAttribution(attr))
	}

	return nil
}

// Response finalises the accumulation into an immutable chat response.
// An entirely empty stream yields empty text and no attributions.
func (a *Accumulator) Response(conversationID string) *domain.ChatResponse {
	return &domain.ChatResponse{
		Text:             strings.Join(a.fragments, ""),
		ConversationID:   conversationID,
		Attributions:     dedupeByURL(a.attributions),
		SensitivityLabel: a.sensitivity,
	}
}

// hasURL reports whether any collected attribution carries the URL.
func (a *Accumulator) hasURL(url string) bool {
	for _, attr := range a.attributions {
		if attr.URL == url {
			return true
		}
	}
	return false
}

// toAttribution maps a wire attribution onto the domain type.
// The attribution kind defaults to "citation" when the API omits it.
func toAttribution(attr wireAttribution) domain.Attribution {
	kind := attr.Type
	if kind == "" {
		kind = "citation"
	}
	return domain.Attribution{
		Type:  kind,
		Text:  attr.Text,
		URL:   attr.URL,
		Title: attr.Title,
	}
}

// dedupeByURL keeps the first attribution per distinct URL, preserving
// first-occurrence order.
func dedupeByURL(attributions []domain.Attribution) []domain.Attribution {
	seen := make(map[string]bool, len(attributions))
	result := make([]domain.Attribution, 0, len(attributions))
	for _, attr := range attributions {
		if seen[attr.URL] {
			continue
		}
		seen[attr.URL] = true
		result = append(result, attr)
	}
	return result
}
