package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	serveHTTP bool
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server over stdio (default) or streamable HTTP.

Stdio is the transport MCP clients like Claude Desktop expect; all
logging goes to stderr so the protocol stream stays clean.

Examples:
  # Stdio transport, for an MCP client configuration
  copilot-mcp serve

  # Streamable HTTP on port 3000
  copilot-mcp serve --http --port 3000`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveHTTP {
		addr := fmt.Sprintf(":%d", servePort)
		return gateway.RunHTTP(ctx, addr, version)
	}
	return gateway.RunStdio(ctx)
}

func init() {
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve over streamable HTTP instead of stdio")
	serveCmd.Flags().IntVar(&servePort, "port", 3000, "port for the HTTP transport")
	rootCmd.AddCommand(serveCmd)
}
