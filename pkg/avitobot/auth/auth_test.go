package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTokenServer returns an httptest server acting as the identity provider.
func newTokenServer(t *testing.T, accessToken string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if got := r.FormValue("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		if got := r.FormValue("client_id"); got != "cid" {
			t.Errorf("client_id = %q, want cid", got)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"`+accessToken+`","token_type":"Bearer","expires_in":86400}`)
	}))
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yml")

	if err := saveTokenFile(path, "secret-token"); err != nil {
		t.Fatalf("saveTokenFile failed: %v", err)
	}

	got, err := loadTokenFile(path)
	if err != nil {
		t.Fatalf("loadTokenFile failed: %v", err)
	}
	if got != "secret-token" {
		t.Errorf("token = %q, want %q", got, "secret-token")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}
}

func TestLoadTokenFileMissing(t *testing.T) {
	_, err := loadTokenFile(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTokenUsesStoredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yml")
	if err := saveTokenFile(path, "stored-token"); err != nil {
		t.Fatalf("seeding token file: %v", err)
	}

	// Unreachable token URL: the test fails if a refresh is attempted.
	a := New("cid", "secret", "http://127.0.0.1:0/token", path, testLogger())

	got, err := a.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != "stored-token" {
		t.Errorf("token = %q, want stored-token", got)
	}
}

func TestTokenRefreshesWhenNoStoredToken(t *testing.T) {
	server := newTokenServer(t, "fresh-token")
	defer server.Close()

	path := filepath.Join(t.TempDir(), "token.yml")
	a := New("cid", "secret", server.URL, path, testLogger())

	got, err := a.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != "fresh-token" {
		t.Errorf("token = %q, want fresh-token", got)
	}

	// The fresh token must be persisted for the next restart.
	stored, err := loadTokenFile(path)
	if err != nil {
		t.Fatalf("loading persisted token: %v", err)
	}
	if stored != "fresh-token" {
		t.Errorf("persisted token = %q, want fresh-token", stored)
	}
}

func TestForceRefreshReplacesCachedToken(t *testing.T) {
	server := newTokenServer(t, "new-token")
	defer server.Close()

	path := filepath.Join(t.TempDir(), "token.yml")
	if err := saveTokenFile(path, "old-token"); err != nil {
		t.Fatalf("seeding token file: %v", err)
	}

	a := New("cid", "secret", server.URL, path, testLogger())

	if got, err := a.Token(context.Background()); err != nil || got != "old-token" {
		t.Fatalf("Token = %q, %v; want old-token", got, err)
	}

	got, err := a.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh failed: %v", err)
	}
	if got != "new-token" {
		t.Errorf("token = %q, want new-token", got)
	}

	// Cache and file must both hold the replacement.
	if cached, _ := a.Token(context.Background()); cached != "new-token" {
		t.Errorf("cached token = %q, want new-token", cached)
	}
	if stored, _ := loadTokenFile(path); stored != "new-token" {
		t.Errorf("persisted token = %q, want new-token", stored)
	}
}

func TestTokenProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a := New("cid", "secret", server.URL, "", testLogger())

	_, err := a.Token(context.Background())
	var aerr *AuthError
	if !errors.As(err, &aerr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
}

func TestTokenPersistenceIsBestEffort(t *testing.T) {
	server := newTokenServer(t, "fresh-token")
	defer server.Close()

	// A directory path cannot be written as a file; refresh must still work.
	a := New("cid", "secret", server.URL, t.TempDir(), testLogger())

	got, err := a.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh failed: %v", err)
	}
	if got != "fresh-token" {
		t.Errorf("token = %q, want fresh-token", got)
	}
}
