// Package config loads gateway configuration from a TOML file with
// environment variable overrides.
//
// Precedence, lowest to highest: config file, environment, explicit flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// Environment variable names recognised by the gateway.
const (
	EnvClientID = "AZURE_CLIENT_ID"
	EnvTenantID = "AZURE_TENANT_ID"
	EnvUsername = "M365_COPILOT_USERNAME"
	EnvCacheDir = "M365_COPILOT_CACHE_DIR"
	EnvTimeout  = "M365_COPILOT_TIMEOUT"
)

// Config holds all scalar gateway configuration.
type Config struct {
	// ClientID is the Azure AD application (client) ID.
	ClientID string `toml:"client_id"`
	// TenantID is the Azure AD tenant ID, or "common"/"organizations".
	TenantID string `toml:"tenant_id"`
	// Username prefers a specific account when replaying cached logins.
	Username string `toml:"username"`
	// CacheDir overrides the token cache directory.
	CacheDir string `toml:"cache_dir"`
	// TimeoutSeconds overrides the request timeout for Graph calls.
	// Zero leaves each API client on its own default.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// DisableBrowser suppresses the interactive browser login strategy.
	DisableBrowser bool `toml:"disable_browser"`
}

// DefaultDir returns the gateway's home directory (~/.copilot-mcp).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".copilot-mcp"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration from path and applies environment overrides.
// A missing file is not an error; the result then carries environment
// values and defaults only. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file, fall through to environment.
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// Timeout returns the configured request timeout override, or zero when no
// override is set.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// applyEnv overlays environment variables onto file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvTenantID); v != "" {
		c.TenantID = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logger.Warn("config: invalid %s value %q, ignored", EnvTimeout, v)
		} else {
			c.TimeoutSeconds = n
		}
	}
}
