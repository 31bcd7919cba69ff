package main

import (
	"log"
	"os"
	"time"

	"github.com/custodia-labs/copilot-mcp/internal/adapters/driving/cli"
	"github.com/custodia-labs/copilot-mcp/internal/adapters/driving/mcpserver"
	"github.com/custodia-labs/copilot-mcp/internal/auth"
	"github.com/custodia-labs/copilot-mcp/internal/config"
	"github.com/custodia-labs/copilot-mcp/internal/core/services"
	"github.com/custodia-labs/copilot-mcp/internal/graph/chat"
	"github.com/custodia-labs/copilot-mcp/internal/graph/meetings"
	"github.com/custodia-labs/copilot-mcp/internal/graph/retrieval"
	"github.com/custodia-labs/copilot-mcp/internal/graph/search"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

var version = "dev"

// sweepInterval governs background eviction of expired conversations.
const sweepInterval = 10 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	cfg, err := config.Load("")
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	chain, err := auth.NewChain(auth.Options{
		ClientID:     cfg.ClientID,
		TenantID:     cfg.TenantID,
		Username:     cfg.Username,
		CacheDir:     cfg.CacheDir,
		AllowBrowser: !cfg.DisableBrowser,
	})
	if err != nil {
		log.Printf("failed to initialise authentication: %v", err)
		return 1
	}

	// Pick up token cache writes from other processes sharing the cache.
	watcher, err := auth.WatchCache(chain)
	if err != nil {
		logger.Warn("cache watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	store := services.NewConversationStore()
	stopSweeper := startSweeper(store)
	defer stopSweeper()

	timeout := cfg.Timeout()
	service := services.NewCopilotService(
		retrieval.NewClient(chain, timeout),
		chat.NewClient(chain, timeout),
		search.NewClient(chain, timeout),
		meetings.NewClient(chain, timeout),
		store,
	)

	gateway := mcpserver.New(service, version, chain.Principal)

	cli.SetServices(&cli.Services{
		Gateway: gateway,
		Auth:    chain,
	})

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

// startSweeper evicts expired conversations periodically. Returns a stop
// function.
func startSweeper(store *services.ConversationStore) func() {
	ticker := time.NewTicker(sweepInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				store.Sweep()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
