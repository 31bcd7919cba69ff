// Package graph provides the shared HTTP layer for Microsoft Graph and
// M365 Copilot API calls.
//
// This package provides:
//   - An authenticated HTTP client with request ID correlation
//   - Rate limiting for Microsoft Graph API requests
//   - Error handling for Microsoft Graph API responses
//   - User profile lookup for identifying the signed-in account
//
// Copilot endpoints live under /beta, standard Graph endpoints under /v1.0.
//
// # Rate Limits
//
// Microsoft Graph allows approximately 10,000 requests per 10 minutes per
// app. This package implements conservative rate limiting to avoid hitting
// quotas.
package graph
