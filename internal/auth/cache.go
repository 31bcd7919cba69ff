package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/oauth2"
)

// TokenCache persists OAuth tokens per account under the cache directory.
// The file is shared between processes; reads always go to disk so that a
// login performed by another tool is picked up without a restart.
type TokenCache struct {
	dir string
}

// NewTokenCache creates a cache rooted at dir.
func NewTokenCache(dir string) *TokenCache {
	return &TokenCache{dir: dir}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return filepath.Join(c.dir, cacheFileName)
}

// Entries returns all cached tokens keyed by username.
// A missing cache file yields an empty map.
func (c *TokenCache) Entries() (map[string]*oauth2.Token, error) {
	data, err := os.ReadFile(c.Path())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*oauth2.Token{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token cache: %w", err)
	}

	entries := map[string]*oauth2.Token{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse token cache: %w", err)
	}
	return entries, nil
}

// Get returns the cached token for a username, or nil if absent.
func (c *TokenCache) Get(username string) (*oauth2.Token, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}
	return entries[username], nil
}

// First returns the first cached entry in username order, or empty values
// when the cache holds nothing. Used when no preferred account is set.
func (c *TokenCache) First() (string, *oauth2.Token, error) {
	entries, err := c.Entries()
	if err != nil {
		return "", nil, err
	}
	if len(entries) == 0 {
		return "", nil, nil
	}

	usernames := make([]string, 0, len(entries))
	for username := range entries {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	return usernames[0], entries[usernames[0]], nil
}

// Put stores a token for a username, creating the cache file if needed.
func (c *TokenCache) Put(username string, token *oauth2.Token) error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}
	entries[username] = token

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token cache: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}
