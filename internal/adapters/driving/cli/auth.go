package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/copilot-mcp/internal/auth"
)

var authClear bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to Microsoft 365",
	Long: `Sign in interactively and cache the resulting tokens.

Opens the system browser for sign-in when possible, falling back to a
device code you enter on another machine. Cached tokens are refreshed
silently on later runs, so this only needs repeating when refresh fails.

Use --clear to sign out and remove all cached tokens.`,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, _ []string) error {
	if authClear {
		// The chain has already resolved the cache directory, including the
		// environment and home directory fallbacks.
		if err := auth.ClearCache(authChain.CacheDir()); err != nil {
			return fmt.Errorf("clear token cache: %w", err)
		}
		fmt.Println("Signed out. Cached tokens removed.")
		return nil
	}

	rec, err := authChain.Authenticate(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", rec.Username)
	return nil
}

func init() {
	authCmd.Flags().BoolVar(&authClear, "clear", false, "sign out and remove cached tokens")
	rootCmd.AddCommand(authCmd)
}
