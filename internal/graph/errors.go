package graph

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for Microsoft Graph API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("graph: unauthorised")

	// ErrForbidden indicates the user lacks permission for the requested resource.
	ErrForbidden = errors.New("graph: forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("graph: not found")

	// ErrRateLimited indicates the request was throttled by Microsoft Graph.
	ErrRateLimited = errors.New("graph: rate limited")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("graph: bad request")

	// ErrServerError indicates a server-side error from Microsoft Graph.
	ErrServerError = errors.New("graph: server error")
)

// WrapError converts an HTTP status code to an appropriate error.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// APIError is a non-success response from a request/response style call.
// It carries the status and body so callers can render actionable messages.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Body is the response body, truncated for logging.
	Body string
}

// NewAPIError builds an APIError from a status code and response body.
func NewAPIError(status int, body []byte) *APIError {
	const maxBody = 4096
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &APIError{Status: status, Body: string(body)}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graph: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("graph: request failed with status %d: %s", e.Status, e.Body)
}

// Unwrap maps the status onto the package sentinels so callers can use
// errors.Is(err, ErrRateLimited) and friends.
func (e *APIError) Unwrap() error {
	return WrapError(e.Status)
}

// IsRateLimited checks if the status code indicates rate limiting.
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}

// IsNotFound checks if the status code indicates a missing resource.
func IsNotFound(statusCode int) bool {
	return statusCode == http.StatusNotFound
}

// IsRetryable checks if the error is potentially transient and can be retried.
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}
