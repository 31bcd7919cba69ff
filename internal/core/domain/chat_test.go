package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCitations(t *testing.T) {
	tests := []struct {
		name         string
		attributions []Attribution
		contains     []string
		empty        bool
	}{
		{
			name:  "no attributions",
			empty: true,
		},
		{
			name: "url with title",
			attributions: []Attribution{
				{URL: "https://contoso.sharepoint.com/doc", Title: "Policy Doc"},
			},
			contains: []string{"**Sources:**", "[^1^]: [Policy Doc](https://contoso.sharepoint.com/doc)"},
		},
		{
			name: "url without title falls back to text",
			attributions: []Attribution{
				{URL: "https://contoso.sharepoint.com/doc", Text: "the policy"},
			},
			contains: []string{"[^1^]: [the policy](https://contoso.sharepoint.com/doc)"},
		},
		{
			name: "url with no title or text gets a numbered label",
			attributions: []Attribution{
				{URL: "https://contoso.sharepoint.com/doc"},
			},
			contains: []string{"[^1^]: [Source 1](https://contoso.sharepoint.com/doc)"},
		},
		{
			name: "text only attribution",
			attributions: []Attribution{
				{Text: "internal knowledge"},
			},
			contains: []string{"[^1^]: internal knowledge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCitations(tt.attributions)
			if tt.empty {
				assert.Empty(t, got)
				return
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestChatResponse_ToMarkdown(t *testing.T) {
	resp := &ChatResponse{
		Text: "The PTO policy allows 25 days.",
		Attributions: []Attribution{
			{URL: "https://contoso.sharepoint.com/hr", Title: "HR Handbook"},
		},
		SensitivityLabel: "Confidential",
	}

	md := resp.ToMarkdown()
	assert.Contains(t, md, "The PTO policy allows 25 days.")
	assert.Contains(t, md, "[HR Handbook]")
	assert.Contains(t, md, "**Sensitivity:** Confidential")
}

func TestChatResponse_ToMarkdown_Bare(t *testing.T) {
	resp := &ChatResponse{Text: "Plain answer."}
	assert.Equal(t, "Plain answer.", resp.ToMarkdown())
}
