package graph

import (
	"crypto/rand"
	"encoding/hex"
)

// GenRequestID generates a 6-character hex request ID for log correlation.
func GenRequestID() string {
	buf := make([]byte, 3)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// TruncateQuery shortens a query for logging so free-form user text never
// lands in logs verbatim.
func TruncateQuery(query string) string {
	const maxLength = 50
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
