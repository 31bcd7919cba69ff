package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/custodia-labs/copilot-mcp/internal/graph"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// Local redirect listener for the browser flow. The port must match the
// redirect URI registered on the Azure AD application.
const (
	redirectAddr = "localhost:8400"
	redirectURI  = "http://localhost:8400"

	// browserLoginTimeout bounds how long we wait for the user to finish
	// signing in before giving up and moving to the next strategy.
	browserLoginTimeout = 5 * time.Minute
)

// acquireBrowser runs an interactive browser login with PKCE.
// It binds a local redirect listener first; a bind failure (port in use)
// skips the strategy rather than failing the chain.
func (c *Chain) acquireBrowser(ctx context.Context) (*oauth2.Token, string, error) {
	// Without a terminal there is nobody at the machine to finish the
	// sign-in; fail fast instead of waiting out the login timeout.
	if !term.IsTerminal(int(os.Stdin.Fd())) && !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil, "", fmt.Errorf("no interactive terminal for browser sign-in")
	}

	listener, err := net.Listen("tcp", redirectAddr)
	if err != nil {
		return nil, "", fmt.Errorf("bind redirect listener: %w", err)
	}
	defer listener.Close()

	state, err := randomState()
	if err != nil {
		return nil, "", err
	}
	verifier := oauth2.GenerateVerifier()

	cfg := *c.oauth
	cfg.RedirectURL = redirectURI

	authURL := cfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		// Microsoft-specific: response_mode=query for easier code extraction
		oauth2.SetAuthURLParam("response_mode", "query"),
	)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{Handler: redirectHandler(state, codeCh, errCh)}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer server.Close()

	if err := openBrowser(authURL); err != nil {
		logger.Warn("auth: could not open browser: %v", err)
		logger.Info("auth: open this URL to sign in: %s", authURL)
	}

	ctx, cancel := context.WithTimeout(ctx, browserLoginTimeout)
	defer cancel()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, "", err
	case <-ctx.Done():
		return nil, "", fmt.Errorf("browser login: %w", ctx.Err())
	}

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, "", fmt.Errorf("exchange authorization code: %w", err)
	}

	principal, err := graph.GetUserPrincipal(ctx, token.AccessToken)
	if err != nil {
		return nil, "", fmt.Errorf("resolve signed-in account: %w", err)
	}

	return token, principal, nil
}

// redirectHandler captures the authorization code from the OAuth redirect.
func redirectHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if errParam := query.Get("error"); errParam != "" {
			http.Error(w, "Sign-in failed. You can close this tab.", http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization error: %s: %s", errParam, query.Get("error_description"))
			return
		}
		if query.Get("state") != state {
			http.Error(w, "Sign-in failed. You can close this tab.", http.StatusBadRequest)
			errCh <- fmt.Errorf("state mismatch in OAuth redirect")
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "Sign-in failed. You can close this tab.", http.StatusBadRequest)
			errCh <- fmt.Errorf("no authorization code in redirect")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Signed in. You can close this tab.</body></html>")
		codeCh <- code
	})
}

// randomState generates the OAuth state parameter.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// openBrowser launches the system browser at the given URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
