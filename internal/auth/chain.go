package auth

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// Chain tries credential strategies in order and remembers the winner.
// It implements driven.TokenProvider and is safe for concurrent use.
type Chain struct {
	opts   Options
	oauth  *oauth2.Config
	cache  *TokenCache
	record *Record
	chain  []strategyKind

	mu        sync.Mutex
	token     *oauth2.Token
	source    oauth2.TokenSource
	principal string
}

// NewChain builds a credential chain from the options. It validates the
// required identifiers synchronously, ensures the cache directory exists
// and assembles the strategy list. A strategy that cannot be constructed
// (no record, empty cache, browser suppressed) is skipped, not fatal.
func NewChain(opts Options) (*Chain, error) {
	if err := opts.normalise(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.CacheDir, 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &Chain{
		opts:  opts,
		cache: NewTokenCache(opts.CacheDir),
		oauth: &oauth2.Config{
			ClientID: opts.ClientID,
			Endpoint: endpoint(opts.TenantID),
			Scopes:   oauthScopes(),
		},
	}

	record, err := LoadRecord(opts.CacheDir)
	if err != nil {
		logger.Warn("auth: could not load auth record: %v", err)
	} else if record != nil {
		c.record = record
		c.chain = append(c.chain, kindCachedRecord)
		logger.Debug("auth: added %s strategy for %s", kindCachedRecord, record.Username)
	}

	c.chain = append(c.chain, kindSharedCache)

	if opts.AllowBrowser {
		c.chain = append(c.chain, kindBrowser)
		logger.Debug("auth: added %s strategy", kindBrowser)
	}

	// Device code works on headless hosts with no prior cache, so it is
	// always the final fallback.
	c.chain = append(c.chain, kindDeviceCode)

	return c, nil
}

// Strategies returns the ordered strategy names in the chain.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.chain))
	for i, kind := range c.chain {
		names[i] = kind.String()
	}
	return names
}

// Principal returns the account the winning strategy signed in as.
func (c *Chain) Principal() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.principal
}

// GetToken returns a valid access token, acquiring one through the chain
// when no cached token or winning source can supply it.
func (c *Chain) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token.AccessToken, nil
	}

	// The winning strategy's source refreshes silently. A refresh failure
	// falls through to the full chain for this request only.
	if c.source != nil {
		token, err := c.source.Token()
		if err == nil {
			c.token = token
			c.persist(token)
			return token.AccessToken, nil
		}
		logger.Warn("auth: token refresh failed, retrying chain: %v", err)
		c.source = nil
		c.token = nil
	}

	return c.runChain(ctx)
}

// Invalidate drops the cached token and winning source so the next
// acquisition re-reads the on-disk cache.
func (c *Chain) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	c.source = nil
}

// InvalidateIfChanged drops the in-memory token only when the on-disk
// cache entry for the signed-in principal no longer matches it. Persists
// made by this process update both places, so the cache watcher's echo of
// our own write does not force a needless re-acquisition.
func (c *Chain) InvalidateIfChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil && c.source == nil {
		return
	}
	if c.token != nil && c.principal != "" {
		cached, err := c.cache.Get(c.principal)
		if err == nil && cached != nil && cached.AccessToken == c.token.AccessToken {
			return
		}
	}
	logger.Debug("auth: token cache changed on disk, invalidating")
	c.token = nil
	c.source = nil
}

// CachePath returns the shared token cache file location.
func (c *Chain) CachePath() string {
	return c.cache.Path()
}

// CacheDir returns the resolved cache directory, after environment and
// home directory fallbacks have been applied.
func (c *Chain) CacheDir() string {
	return c.opts.CacheDir
}

// runChain tries each strategy in order. Caller holds c.mu.
func (c *Chain) runChain(ctx context.Context) (string, error) {
	var lastErr error

	for _, kind := range c.chain {
		token, principal, err := c.acquire(ctx, kind)
		if err != nil {
			logger.Debug("auth: %s strategy failed: %v", kind, err)
			lastErr = err
			continue
		}

		logger.Info("auth: signed in via %s as %s", kind, principal)
		c.token = token
		c.principal = principal
		c.source = oauth2.ReuseTokenSource(token, c.oauth.TokenSource(ctx, token))
		c.persist(token)

		if kind == kindBrowser || kind == kindDeviceCode {
			c.persistRecord(principal)
		}
		return token.AccessToken, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailed, lastErr)
	}
	return "", domain.ErrAuthFailed
}

// acquire dispatches one strategy attempt.
func (c *Chain) acquire(ctx context.Context, kind strategyKind) (*oauth2.Token, string, error) {
	switch kind {
	case kindCachedRecord:
		return c.acquireCachedRecord(ctx)
	case kindSharedCache:
		return c.acquireSharedCache(ctx)
	case kindBrowser:
		return c.acquireBrowser(ctx)
	case kindDeviceCode:
		return c.acquireDeviceCode(ctx)
	default:
		return nil, "", fmt.Errorf("unknown strategy %d", kind)
	}
}

// acquireCachedRecord replays the persisted login silently.
func (c *Chain) acquireCachedRecord(ctx context.Context) (*oauth2.Token, string, error) {
	if c.record == nil {
		return nil, "", fmt.Errorf("no auth record")
	}

	cached, err := c.cache.Get(c.record.Username)
	if err != nil {
		return nil, "", err
	}
	if cached == nil {
		return nil, "", fmt.Errorf("no cached token for %s", c.record.Username)
	}

	token, err := c.refresh(ctx, cached)
	if err != nil {
		return nil, "", err
	}
	return token, c.record.Username, nil
}

// acquireSharedCache picks up a token cached by any prior login.
func (c *Chain) acquireSharedCache(ctx context.Context) (*oauth2.Token, string, error) {
	username := c.opts.Username
	var cached *oauth2.Token
	var err error

	if username != "" {
		cached, err = c.cache.Get(username)
	} else {
		username, cached, err = c.cache.First()
	}
	if err != nil {
		return nil, "", err
	}
	if cached == nil {
		return nil, "", fmt.Errorf("token cache is empty")
	}

	token, err := c.refresh(ctx, cached)
	if err != nil {
		return nil, "", err
	}
	return token, username, nil
}

// refresh exchanges a possibly expired token for a fresh one.
func (c *Chain) refresh(ctx context.Context, cached *oauth2.Token) (*oauth2.Token, error) {
	if cached.Valid() {
		return cached, nil
	}
	if cached.RefreshToken == "" {
		return nil, fmt.Errorf("cached token expired with no refresh token")
	}

	token, err := c.oauth.TokenSource(ctx, cached).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh cached token: %w", err)
	}
	return token, nil
}

// persist writes the current token back to the shared cache.
// Caller holds c.mu.
func (c *Chain) persist(token *oauth2.Token) {
	if c.principal == "" {
		return
	}
	if err := c.cache.Put(c.principal, token); err != nil {
		logger.Warn("auth: could not persist token: %v", err)
	}
}

// persistRecord saves the authentication record after an interactive login
// so the next process run can replay it silently. Caller holds c.mu.
func (c *Chain) persistRecord(principal string) {
	rec := &Record{
		Username:   principal,
		ClientID:   c.opts.ClientID,
		TenantID:   c.opts.TenantID,
		AcquiredAt: time.Now().UTC(),
	}
	if err := SaveRecord(c.opts.CacheDir, rec); err != nil {
		logger.Warn("auth: could not persist auth record: %v", err)
		return
	}
	c.record = rec
}

// Authenticate forces an interactive login (browser when allowed, device
// code otherwise), persists the result and returns the record. Used by the
// one-time 'auth' command.
func (c *Chain) Authenticate(ctx context.Context) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := kindDeviceCode
	if c.opts.AllowBrowser {
		kind = kindBrowser
	}

	token, principal, err := c.acquire(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}

	c.token = token
	c.principal = principal
	c.source = oauth2.ReuseTokenSource(token, c.oauth.TokenSource(ctx, token))
	c.persist(token)
	c.persistRecord(principal)

	return c.record, nil
}
