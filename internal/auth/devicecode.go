package auth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// acquireDeviceCode runs the device code flow: show a verification URL and
// short code, then poll until the user completes sign-in out-of-band.
func (c *Chain) acquireDeviceCode(ctx context.Context) (*oauth2.Token, string, error) {
	response, err := c.oauth.DeviceAuth(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("request device code: %w", err)
	}

	promptDeviceCode(response)

	token, err := c.oauth.DeviceAccessToken(ctx, response)
	if err != nil {
		return nil, "", fmt.Errorf("device code sign-in: %w", err)
	}

	principal, err := graph.GetUserPrincipal(ctx, token.AccessToken)
	if err != nil {
		return nil, "", fmt.Errorf("resolve signed-in account: %w", err)
	}

	return token, principal, nil
}

// promptDeviceCode shows the sign-in instructions. Written to stderr so the
// prompt is visible even while stdout carries the MCP transport.
func promptDeviceCode(response *oauth2.DeviceAuthResponse) {
	logger.Info("auth: to sign in, visit %s and enter code %s",
		response.VerificationURI, response.UserCode)
	fmt.Fprintf(os.Stderr, "\nTo authenticate, visit: %s\n", response.VerificationURI)
	fmt.Fprintf(os.Stderr, "   Enter code: %s\n\n", response.UserCode)
}
