// Package driven defines outbound ports implemented by infrastructure adapters.
package driven

import "context"

// TokenProvider supplies bearer tokens for Microsoft Graph requests.
// Implementations must be safe for concurrent use; Graph clients share one
// provider across all in-flight calls.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing or acquiring one
	// as needed. Blocks on user interaction for interactive strategies.
	GetToken(ctx context.Context) (string, error)
}
