package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// ClientSecretsFile is the Google API credentials file, looked up in the
	// config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile holds the user's OAuth token (access + refresh) in the config
	// directory.
	TokenFile = "token.json"

	// LocalhostAuthPort is the port the local web server listens on to
	// capture the OAuth redirect.
	LocalhostAuthPort = "6789"

	xdgAppName = "taskhub"

	oobRedirect = "urn:ietf:wg:oauth:2.0:oob"
)

// GetConfig creates an oauth2.Config from the client secrets file and specified scopes.
func GetConfig(scopes []string, logger *slog.Logger) (*oauth2.Config, error) {
	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	clientSecretsFile := filepath.Join(xdgConfigBase, ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = normalizeRedirect(config.RedirectURL, orDefault(logger))
	return config, nil
}

// normalizeRedirect forces localhost and out-of-band redirects onto
// LocalhostAuthPort, where getTokenFromWeb listens.
func normalizeRedirect(redirect string, logger *slog.Logger) string {
	if redirect == oobRedirect {
		fixed := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
		logger.Debug("overriding out-of-band redirect", "redirect", fixed)
		return fixed
	}

	u, err := url.Parse(redirect)
	if err != nil {
		logger.Warn("could not parse redirect URL, using it as is", "redirect", redirect, "error", err)
		return redirect
	}
	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		logger.Warn("redirect URL is not a localhost callback", "redirect", redirect)
		return redirect
	}
	if u.Port() != LocalhostAuthPort {
		if u.Port() != "" {
			logger.Warn("localhost redirect port mismatch", "got", u.Port(), "want", LocalhostAuthPort)
		}
		u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
	}
	return u.String()
}

// GetClient retrieves an authenticated *http.Client.
// It loads an existing token, or runs the web-based authorization flow if
// there is none. The returned client refreshes expired tokens itself.
func GetClient(ctx context.Context, scopes []string, logger *slog.Logger) (*http.Client, error) {
	logger = orDefault(logger)
	config, err := GetConfig(scopes, logger)
	if err != nil {
		return nil, err
	}

	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	tokenFile := filepath.Join(xdgConfigBase, TokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		logger.Info("no existing token, starting web authorization flow", "path", tokenFile)
		tok, err = getTokenFromWeb(ctx, config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	// Persist a refreshed token so the next run starts from it.
	src := config.TokenSource(ctx, tok)
	current, err := src.Token()
	if err != nil {
		logger.Warn("could not refresh token", "error", err)
	} else if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
		logger.Debug("token was refreshed, saving")
		if err := saveToken(tokenFile, current); err != nil {
			logger.Warn("could not save refreshed token", "error", err)
		}
	}

	return oauth2.NewClient(ctx, src), nil
}

// getTokenFromWeb runs the OAuth 2.0 authorization code flow through a local
// web server that captures the redirect.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, logger *slog.Logger) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Close()

	go func() {
		logger.Debug("listening for OAuth2 redirect", "redirect", config.RedirectURL)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()

	// AccessTypeOffline makes Google return a refresh token.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Please open the following URL in your browser to authorize taskhub:\n%s\n", authURL)

	select {
	case authCode := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, errors.New("authorization timed out, please try again")
	}
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken writes an oauth2.Token to a JSON file readable only by the owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// GetXdgHome returns the taskhub config directory.
func GetXdgHome() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
