package domain

import "errors"

// Error types shared across the gateway.
var (
	// ErrMissingClientID indicates no Azure AD application ID was supplied
	// via arguments or the AZURE_CLIENT_ID environment variable.
	ErrMissingClientID = errors.New("copilot: AZURE_CLIENT_ID is required, set it in the environment or config file")

	// ErrMissingTenantID indicates no Azure AD tenant ID was supplied
	// via arguments or the AZURE_TENANT_ID environment variable.
	ErrMissingTenantID = errors.New("copilot: AZURE_TENANT_ID is required, set it in the environment or config file")

	// ErrAuthFailed indicates every credential strategy in the chain failed.
	ErrAuthFailed = errors.New("copilot: authentication failed, run 'copilot-mcp auth' to sign in")

	// ErrTimeout indicates a Graph call exceeded its deadline.
	ErrTimeout = errors.New("copilot: request timed out")

	// ErrConversationNotFound indicates the conversation ID is unknown or expired.
	ErrConversationNotFound = errors.New("copilot: conversation not found or expired")
)
