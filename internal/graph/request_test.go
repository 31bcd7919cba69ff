package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenRequestID(t *testing.T) {
	id := GenRequestID()
	assert.Len(t, id, 6)

	// IDs should differ across calls
	other := GenRequestID()
	assert.NotEqual(t, id, other)
}

func TestTruncateQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "short query unchanged",
			query:    "quarterly report",
			expected: "quarterly report",
		},
		{
			name:     "exactly fifty chars unchanged",
			query:    strings.Repeat("a", 50),
			expected: strings.Repeat("a", 50),
		},
		{
			name:     "long query truncated with ellipsis",
			query:    strings.Repeat("b", 60),
			expected: strings.Repeat("b", 50) + "...",
		},
		{
			name:     "empty query",
			query:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateQuery(tt.query))
		})
	}
}
