// Package auth builds the credential chain for Microsoft Graph.
//
// A chain is an ordered list of acquisition strategies tried silently first,
// interactively last:
//
//  1. Replay of a persisted authentication record (no user interaction)
//  2. Shared token cache, optionally filtered to a preferred account
//  3. Interactive browser login with PKCE (suppressed for headless hosts)
//  4. Device code flow (always last; works everywhere)
//
// The first strategy to produce a token wins for the lifetime of the
// process. A strategy that fails is skipped for that request only.
//
// # Token Cache
//
// Tokens and the authentication record are persisted under a single cache
// directory (~/.copilot-mcp by default) so later runs can sign in silently.
// Both files are opaque JSON blobs; 'copilot-mcp auth --clear' removes the
// whole directory.
//
// # Scopes
//
// The Copilot Chat API rejects tokens that do not carry every required
// delegated permission, so all scopes are requested upfront in one consent.
package auth
