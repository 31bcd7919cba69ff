package domain

import (
	"fmt"
	"strings"
)

// MeetingNote is a summary point from a meeting, optionally with subpoints.
type MeetingNote struct {
	Title     string
	Text      string
	Subpoints []MeetingNote
}

// ActionItem is a task extracted from a meeting.
type ActionItem struct {
	Title   string
	Text    string
	Owner   string
	DueDate string
}

// MentionEvent records the user being mentioned during a meeting.
type MentionEvent struct {
	Timestamp string
	Text      string
	Speaker   string
}

// MeetingInsight is the AI-generated digest of one Teams meeting.
type MeetingInsight struct {
	MeetingID    string
	MeetingTitle string
	MeetingDate  string
	Notes        []MeetingNote
	ActionItems  []ActionItem
	Mentions     []MentionEvent
}

// ToMarkdown renders the insight with summary, action item and mention sections.
func (m *MeetingInsight) ToMarkdown() string {
	var lines []string

	if m.MeetingTitle != "" {
		lines = append(lines, fmt.Sprintf("# %s", m.MeetingTitle))
	}
	if m.MeetingDate != "" {
		lines = append(lines, fmt.Sprintf("*%s*\n", m.MeetingDate))
	}

	if len(m.Notes) > 0 {
		lines = append(lines, "## Summary")
		for _, note := range m.Notes {
			lines = append(lines, fmt.Sprintf("### %s", note.Title), note.Text)
			for _, sub := range note.Subpoints {
				lines = append(lines, fmt.Sprintf("- **%s**: %s", sub.Title, sub.Text))
			}
			lines = append(lines, "")
		}
	}

	if len(m.ActionItems) > 0 {
		lines = append(lines, "## Action Items")
		for _, item := range m.ActionItems {
			owner := ""
			if item.Owner != "" {
				owner = fmt.Sprintf(" (@%s)", item.Owner)
			}
			lines = append(lines, fmt.Sprintf("- [ ] **%s**%s", item.Title, owner))
			lines = append(lines, fmt.Sprintf("  %s", item.Text))
		}
		lines = append(lines, "")
	}

	if len(m.Mentions) > 0 {
		lines = append(lines, "## You Were Mentioned")
		for _, mention := range m.Mentions {
			lines = append(lines, fmt.Sprintf("- *%s* at %s:", mention.Speaker, mention.Timestamp))
			lines = append(lines, fmt.Sprintf("  > %s", mention.Text))
		}
		lines = append(lines, "")
	}

	if len(lines) == 0 {
		return "No insights available for this meeting."
	}
	return strings.Join(lines, "\n")
}

// MeetingSummary is a brief listing entry for a meeting.
type MeetingSummary struct {
	MeetingID string
	Title     string
	StartTime string
	JoinURL   string
}

// ToMarkdown renders the summary as a markdown list item.
func (m *MeetingSummary) ToMarkdown() string {
	return fmt.Sprintf("- **%s** (%s)\n  ID: `%s`", m.Title, m.StartTime, m.MeetingID)
}
