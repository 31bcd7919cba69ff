package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache file names within the cache directory.
const (
	recordFileName = "authrecord.json"
	cacheFileName  = "tokencache.json"
)

// Record remembers a prior successful interactive login so later runs can
// sign in silently. It carries no secrets; tokens live in the cache file.
type Record struct {
	// Username is the signed-in account (UPN/email).
	Username string `json:"username"`
	// ClientID is the application the login was made with.
	ClientID string `json:"client_id"`
	// TenantID is the directory the login was made against.
	TenantID string `json:"tenant_id"`
	// AcquiredAt is when the interactive login completed.
	AcquiredAt time.Time `json:"acquired_at"`
}

// LoadRecord reads the authentication record from the cache directory.
// Returns nil without error when no record has been persisted.
func LoadRecord(cacheDir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(cacheDir, recordFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read auth record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse auth record: %w", err)
	}
	if rec.Username == "" {
		return nil, nil
	}
	return &rec, nil
}

// SaveRecord persists the authentication record to the cache directory.
func SaveRecord(cacheDir string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal auth record: %w", err)
	}

	path := filepath.Join(cacheDir, recordFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write auth record: %w", err)
	}
	return nil
}

// ClearCache removes the auth record and token cache files. Other files in
// the directory, such as a config file, are left alone.
func ClearCache(cacheDir string) error {
	for _, name := range []string{recordFileName, cacheFileName} {
		err := os.Remove(filepath.Join(cacheDir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear token cache: %w", err)
		}
	}
	return nil
}
