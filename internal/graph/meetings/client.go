// Package meetings implements the Teams meeting AI insights client.
//
// Endpoints:
//
//	GET /v1.0/me/onlineMeetings
//	GET /beta/copilot/users/{userId}/onlineMeetings/{meetingId}/aiInsights
package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

const meetingsTimeout = 30 * time.Second

// defaultLookback bounds ListMeetings when no since time is given.
const defaultLookback = 7 * 24 * time.Hour

// listPageSize caps the number of meetings returned per listing.
const listPageSize = 50

// Client talks to the online meetings and AI insights APIs.
type Client struct {
	base   *graph.Client
	userID string
}

// NewClient creates a meetings client. A non-positive timeout keeps
// the default.
func NewClient(tokens driven.TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = meetingsTimeout
	}
	return &Client{
		base: graph.NewClient(tokens, graph.ServiceMeetings, timeout),
	}
}

// ListMeetings returns the user's online meetings that started after
// since. A zero since defaults to the past seven days.
func (c *Client) ListMeetings(ctx context.Context, since time.Time) ([]domain.MeetingSummary, error) {
	requestID := graph.GenRequestID()
	if since.IsZero() {
		since = time.Now().Add(-defaultLookback)
	}

	filter := fmt.Sprintf("startDateTime gt %s", since.UTC().Format(time.RFC3339))
	listURL := fmt.Sprintf("%s/me/onlineMeetings?$filter=%s&$orderby=startDateTime desc&$top=%d",
		graph.V1BaseURL, url.QueryEscape(filter), listPageSize)

	logger.Info("[%s] list meetings since %s", requestID, since.Format("2006-01-02"))

	data, err := c.get(ctx, listURL, requestID)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Value []struct {
			ID            string `json:"id"`
			Subject       string `json:"subject"`
			StartDateTime string `json:"startDateTime"`
			JoinWebURL    string `json:"joinWebUrl"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode meetings response: %w", err)
	}

	summaries := make([]domain.MeetingSummary, 0, len(payload.Value))
	for _, meeting := range payload.Value {
		summaries = append(summaries, domain.MeetingSummary{
			MeetingID: meeting.ID,
			Title:     meeting.Subject,
			StartTime: meeting.StartDateTime,
			JoinURL:   meeting.JoinWebURL,
		})
	}

	logger.Info("[%s] found %d meetings", requestID, len(summaries))
	return summaries, nil
}

// GetInsights fetches the AI-generated notes, action items and mentions
// for one meeting. Pass either the meeting ID or its join URL. Insights
// for recent meetings can lag; a not-yet-ready meeting returns a
// placeholder insight rather than an error.
func (c *Client) GetInsights(ctx context.Context, meetingID, joinURL string) (*domain.MeetingInsight, error) {
	requestID := graph.GenRequestID()

	userID, err := c.currentUserID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if meetingID == "" {
		if joinURL == "" {
			return nil, fmt.Errorf("meeting ID or join URL is required")
		}
		meetingID, err = c.resolveMeetingID(ctx, joinURL, requestID)
		if err != nil {
			return nil, err
		}
	}

	insightsURL := fmt.Sprintf("%s/copilot/users/%s/onlineMeetings/%s/aiInsights",
		graph.BetaBaseURL, url.PathEscape(userID), url.PathEscape(meetingID))

	logger.Info("[%s] fetch insights for meeting %s", requestID, graph.TruncateQuery(meetingID))

	data, err := c.get(ctx, insightsURL, requestID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return &domain.MeetingInsight{
				MeetingID: meetingID,
				Notes: []domain.MeetingNote{{
					Title: "Insights not available",
					Text: "AI insights are not ready for this meeting yet. " +
						"They are generated after the meeting ends and can take a while to appear. " +
						"Transcription must have been enabled during the meeting.",
				}},
			}, nil
		}
		return nil, err
	}

	return parseInsights(data, meetingID)
}

// resolveMeetingID looks up a meeting by its join URL.
func (c *Client) resolveMeetingID(ctx context.Context, joinURL, requestID string) (string, error) {
	filter := fmt.Sprintf("JoinWebUrl eq '%s'", joinURL)
	lookupURL := fmt.Sprintf("%s/me/onlineMeetings?$filter=%s",
		graph.V1BaseURL, url.QueryEscape(filter))

	data, err := c.get(ctx, lookupURL, requestID)
	if err != nil {
		return "", err
	}

	var payload struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode meeting lookup: %w", err)
	}
	if len(payload.Value) == 0 {
		return "", fmt.Errorf("no meeting found for join URL: %w", graph.ErrNotFound)
	}

	return payload.Value[0].ID, nil
}

// currentUserID resolves and caches the signed-in user's object ID.
func (c *Client) currentUserID(ctx context.Context, requestID string) (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}

	data, err := c.get(ctx, graph.V1BaseURL+"/me", requestID)
	if err != nil {
		return "", err
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &me); err != nil {
		return "", fmt.Errorf("decode user profile: %w", err)
	}

	c.userID = me.ID
	return c.userID, nil
}

// get performs a GET and returns the body, mapping non-200 statuses to
// API errors.
func (c *Client) get(ctx context.Context, requestURL, requestID string) ([]byte, error) {
	resp, err := c.base.Do(ctx, http.MethodGet, requestURL, nil, requestID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, graph.NewAPIError(resp.StatusCode, data)
	}
	return data, nil
}

// parseInsights maps the aiInsights payload onto a MeetingInsight. The
// API returns a list; the most recent insight wins.
func parseInsights(data []byte, meetingID string) (*domain.MeetingInsight, error) {
	var payload struct {
		Value []struct {
			MeetingNotes []struct {
				Title     string `json:"title"`
				Text      string `json:"text"`
				Subpoints []struct {
					Title string `json:"title"`
					Text  string `json:"text"`
				} `json:"subpoints"`
			} `json:"meetingNotes"`
			ActionItems []struct {
				Title            string `json:"title"`
				Text             string `json:"text"`
				OwnerDisplayName string `json:"ownerDisplayName"`
			} `json:"actionItems"`
			Viewpoint struct {
				MentionEvents []struct {
					EventDateTime       string `json:"eventDateTime"`
					TranscriptUtterance string `json:"transcriptUtterance"`
					Speaker             struct {
						User struct {
							DisplayName string `json:"displayName"`
						} `json:"user"`
					} `json:"speaker"`
				} `json:"mentionEvents"`
			} `json:"viewpoint"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode insights response: %w", err)
	}

	insight := &domain.MeetingInsight{MeetingID: meetingID}
	if len(payload.Value) == 0 {
		return insight, nil
	}

	latest := payload.Value[0]
	for _, note := range latest.MeetingNotes {
		mapped := domain.MeetingNote{Title: note.Title, Text: note.Text}
		for _, sub := range note.Subpoints {
			mapped.Subpoints = append(mapped.Subpoints, domain.MeetingNote{
				Title: sub.Title,
				Text:  sub.Text,
			})
		}
		insight.Notes = append(insight.Notes, mapped)
	}
	for _, item := range latest.ActionItems {
		insight.ActionItems = append(insight.ActionItems, domain.ActionItem{
			Title: item.Title,
			Text:  item.Text,
			Owner: item.OwnerDisplayName,
		})
	}
	for _, mention := range latest.Viewpoint.MentionEvents {
		insight.Mentions = append(insight.Mentions, domain.MentionEvent{
			Timestamp: mention.EventDateTime,
			Text:      mention.TranscriptUtterance,
			Speaker:   mention.Speaker.User.DisplayName,
		})
	}

	return insight, nil
}
