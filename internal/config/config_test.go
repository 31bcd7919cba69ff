package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvClientID, EnvTenantID, EnvUsername, EnvCacheDir, EnvTimeout} {
		t.Setenv(key, "")
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
client_id = "file-client"
tenant_id = "file-tenant"
username = "user@contoso.com"
timeout_seconds = 90
disable_browser = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-client", cfg.ClientID)
	assert.Equal(t, "file-tenant", cfg.TenantID)
	assert.Equal(t, "user@contoso.com", cfg.Username)
	assert.Equal(t, 90, cfg.TimeoutSeconds)
	assert.True(t, cfg.DisableBrowser)
}

func TestLoad_MissingFileNotAnError(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ClientID)
	assert.Zero(t, cfg.TimeoutSeconds)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
client_id = "file-client"
tenant_id = "file-tenant"
`)
	t.Setenv(EnvClientID, "env-client")
	t.Setenv(EnvTimeout, "120")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-client", cfg.ClientID)
	assert.Equal(t, "file-tenant", cfg.TenantID)
	assert.Equal(t, 120, cfg.TimeoutSeconds)
}

func TestLoad_InvalidTimeoutEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Zero(t, cfg.TimeoutSeconds)
}

func TestConfig_Timeout(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected time.Duration
	}{
		{name: "unset means no override", seconds: 0, expected: 0},
		{name: "negative means no override", seconds: -5, expected: 0},
		{name: "positive converts to duration", seconds: 90, expected: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{TimeoutSeconds: tt.seconds}
			assert.Equal(t, tt.expected, cfg.Timeout())
		})
	}
}

func TestLoad_TimeoutOverrideFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "30")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `client_id = [broken`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultDir(t *testing.T) {
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Contains(t, dir, ".copilot-mcp")
}
