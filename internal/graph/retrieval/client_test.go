package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChunks_SortedByRelevance(t *testing.T) {
	data := []byte(`{"value":[
		{"content":"low","relevanceScore":0.2,"webUrl":"https://a","name":"A.docx"},
		{"content":"high","relevanceScore":0.9,"webUrl":"https://b","name":"B.docx"},
		{"content":"mid","relevanceScore":0.5,"webUrl":"https://c","name":"C.docx"}
	]}`)

	chunks, err := parseChunks(data)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "high", chunks[0].Content)
	assert.Equal(t, "mid", chunks[1].Content)
	assert.Equal(t, "low", chunks[2].Content)
	assert.Equal(t, "B.docx", chunks[0].SourceTitle)
	assert.Equal(t, "https://b", chunks[0].SourceURL)
}

func TestParseChunks_Empty(t *testing.T) {
	chunks, err := parseChunks([]byte(`{"value":[]}`))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestParseChunks_Malformed(t *testing.T) {
	_, err := parseChunks([]byte(`{broken`))
	assert.Error(t, err)
}

func TestDataSourceMapping(t *testing.T) {
	assert.Equal(t, "microsoft365SharePoint", dataSources["sharepoint"])
	assert.Equal(t, "microsoft365OneDrive", dataSources["onedrive"])
	assert.Equal(t, "copilotConnectors", dataSources["connectors"])
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		expected int
	}{
		{name: "below minimum", n: 0, expected: 1},
		{name: "negative", n: -3, expected: 1},
		{name: "in range", n: 10, expected: 10},
		{name: "at maximum", n: 25, expected: 25},
		{name: "above maximum", n: 100, expected: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clamp(tt.n, 1, MaxResults))
		})
	}
}
