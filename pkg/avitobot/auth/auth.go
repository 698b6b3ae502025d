// Package auth implements bearer token acquisition and renewal against the
// Avito identity provider (client-credentials grant) plus best-effort
// persistence of the current token, so a restart does not force an immediate
// re-authentication.
//
// The token is a single-writer cache: every transport call reads it, only
// Token/ForceRefresh write it. The mutex keeps that contract safe if polling
// ever fans out across goroutines.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthError means the identity provider was unreachable or rejected the
// client credentials.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth: %v", e.Err) }

func (e *AuthError) Unwrap() error { return e.Err }

// Authenticator obtains and caches a bearer token.
type Authenticator struct {
	cc        clientcredentials.Config
	tokenFile string

	mu    sync.Mutex
	token string

	logger *slog.Logger
}

// New creates an Authenticator for the given client credentials.
// tokenFile is where the current token is persisted between restarts;
// empty disables persistence.
func New(clientID, clientSecret, tokenURL, tokenFile string, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Authenticator{
		cc: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			// Avito expects credentials in the request body, not basic auth.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		tokenFile: tokenFile,
		logger:    logger.With("component", "auth"),
	}
}

// Token returns a valid bearer token. Resolution order: in-memory cache,
// persisted token file, synchronous refresh from the identity provider.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" {
		return a.token, nil
	}

	if a.tokenFile != "" {
		if stored, err := loadTokenFile(a.tokenFile); err == nil && stored != "" {
			a.logger.Debug("token loaded from file", "path", a.tokenFile)
			a.token = stored
			return a.token, nil
		}
		a.logger.Info("no stored token, refreshing", "path", a.tokenFile)
	}

	return a.refreshLocked(ctx)
}

// ForceRefresh unconditionally fetches a new token, replacing the cached one.
// Called proactively every renewal interval and reactively when a transport
// response carries the authorization failure signature.
func (a *Authenticator) ForceRefresh(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshLocked(ctx)
}

// refreshLocked fetches a fresh token and persists it. Caller holds a.mu.
func (a *Authenticator) refreshLocked(ctx context.Context) (string, error) {
	tok, err := a.cc.Token(ctx)
	if err != nil {
		return "", &AuthError{Err: err}
	}

	a.token = tok.AccessToken
	a.logger.Info("token refreshed")

	if a.tokenFile != "" {
		if err := saveTokenFile(a.tokenFile, a.token); err != nil {
			// Persistence is best effort; the in-memory token stays valid.
			a.logger.Warn("failed to persist token", "path", a.tokenFile, "error", err)
		}
	}

	return a.token, nil
}
