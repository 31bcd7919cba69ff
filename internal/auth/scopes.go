package auth

import (
	"fmt"

	"golang.org/x/oauth2"
)

// GraphScopes are the delegated permissions required by the M365 Copilot
// APIs. The Chat API requires all of these simultaneously in one consent.
var GraphScopes = []string{
	"https://graph.microsoft.com/Sites.Read.All",
	"https://graph.microsoft.com/Mail.Read",
	"https://graph.microsoft.com/People.Read.All",
	"https://graph.microsoft.com/OnlineMeetingTranscript.Read.All",
	"https://graph.microsoft.com/Chat.Read",
	"https://graph.microsoft.com/ChannelMessage.Read.All",
	"https://graph.microsoft.com/ExternalItem.Read.All",
	"https://graph.microsoft.com/Files.Read.All",
	"https://graph.microsoft.com/OnlineMeeting.Read",
}

// Microsoft identity platform endpoints. The tenant segment is the directory
// ID or "common"/"organizations" for multi-tenant apps.
const (
	authURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/authorize"
	//nolint:gosec // G101: Not credentials, OAuth endpoint URL
	tokenURLFormat      = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	deviceAuthURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/devicecode"
)

// oauthScopes returns the scopes sent on token requests. "openid" and
// "offline_access" are required by the identity platform for ID and refresh
// tokens; Graph permissions come from GraphScopes.
func oauthScopes() []string {
	scopes := []string{"openid", "offline_access"}
	return append(scopes, GraphScopes...)
}

// endpoint returns the OAuth2 endpoint for a tenant.
func endpoint(tenantID string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:       fmt.Sprintf(authURLFormat, tenantID),
		TokenURL:      fmt.Sprintf(tokenURLFormat, tenantID),
		DeviceAuthURL: fmt.Sprintf(deviceAuthURLFormat, tenantID),
	}
}
