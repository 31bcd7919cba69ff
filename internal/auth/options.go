package auth

import (
	"os"

	"github.com/custodia-labs/copilot-mcp/internal/config"
	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
)

// Options configures a credential chain.
type Options struct {
	// ClientID is the Azure AD application ID. Falls back to AZURE_CLIENT_ID.
	ClientID string
	// TenantID is the Azure AD tenant ID. Falls back to AZURE_TENANT_ID.
	TenantID string
	// Username prefers a specific account when reading the shared cache.
	Username string
	// CacheDir overrides the token cache directory (~/.copilot-mcp by default).
	CacheDir string
	// AllowBrowser enables the interactive browser strategy.
	AllowBrowser bool
}

// normalise applies environment fallbacks and validates required fields.
// Validation happens before any network or filesystem access.
func (o *Options) normalise() error {
	if o.ClientID == "" {
		o.ClientID = os.Getenv(config.EnvClientID)
	}
	if o.TenantID == "" {
		o.TenantID = os.Getenv(config.EnvTenantID)
	}
	if o.Username == "" {
		o.Username = os.Getenv(config.EnvUsername)
	}

	if o.ClientID == "" {
		return domain.ErrMissingClientID
	}
	if o.TenantID == "" {
		return domain.ErrMissingTenantID
	}

	if o.CacheDir == "" {
		if dir := os.Getenv(config.EnvCacheDir); dir != "" {
			o.CacheDir = dir
		} else {
			dir, err := config.DefaultDir()
			if err != nil {
				return err
			}
			o.CacheDir = dir
		}
	}

	return nil
}
