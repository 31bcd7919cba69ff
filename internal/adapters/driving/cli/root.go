// Package cli implements the copilot-mcp command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/copilot-mcp/internal/adapters/driving/mcpserver"
	"github.com/custodia-labs/copilot-mcp/internal/auth"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// Services injected for CLI commands.
	gateway   *mcpserver.Server
	authChain *auth.Chain
)

// Services holds injected implementations for CLI commands.
type Services struct {
	Gateway *mcpserver.Server
	Auth    *auth.Chain
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	gateway = s.Gateway
	authChain = s.Auth
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "copilot-mcp",
	Short: "MCP gateway for Microsoft 365 Copilot",
	Long: `copilot-mcp exposes Microsoft 365 Copilot to MCP clients such as
Claude Desktop and other AI assistants.

It provides tools for organisational knowledge retrieval, Copilot chat,
document search and Teams meeting insights, authenticated against your
Microsoft 365 tenant.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}
