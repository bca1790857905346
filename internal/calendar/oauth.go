package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// Scopes requested for reading busy time and writing task events.
var Scopes = []string{gcal.CalendarEventsScope, gcal.CalendarReadonlyScope}

// LoadOAuthConfig parses a Google "installed app" credentials file.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing", domain.ErrNoCalendarAccess, credentialsFile)
		}
		return nil, fmt.Errorf("reading client secret file %s: %w", credentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}
	return cfg, nil
}

// TokenFile persists an OAuth token as JSON with owner-only permissions.
type TokenFile string

func (f TokenFile) Load() (*oauth2.Token, error) {
	b, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("decoding token from %s: %w", f, err)
	}
	return tok, nil
}

func (f TokenFile) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(string(f)), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(string(f), b, 0600); err != nil {
		return fmt.Errorf("writing token to %s: %w", f, err)
	}
	return nil
}

// Authorizer obtains a fresh token interactively.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// HTTPClient returns a client whose token refreshes automatically and is
// written back to file whenever it changes. Without a stored token it runs
// auth; a nil auth means the account must already be connected.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, file TokenFile, auth Authorizer, log *slog.Logger) (*http.Client, error) {
	tok, err := file.Load()
	if err != nil {
		if auth == nil {
			return nil, fmt.Errorf("%w: no token at %s", domain.ErrNoCalendarAccess, file)
		}
		log.Info("no stored calendar token, starting authorization", "token_file", string(file))
		tok, err = auth.Authorize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("authorizing calendar access: %w", err)
		}
		if err := file.Save(tok); err != nil {
			return nil, err
		}
	}

	src := &persistingSource{
		inner: cfg.TokenSource(ctx, tok),
		last:  tok,
		file:  file,
		log:   log,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// persistingSource saves refreshed tokens so the next process start reuses them.
type persistingSource struct {
	inner oauth2.TokenSource
	file  TokenFile
	log   *slog.Logger

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		if err := s.file.Save(tok); err != nil {
			s.log.Warn("could not persist refreshed calendar token", "error", err)
		} else {
			s.log.Debug("calendar token refreshed", "expiry", tok.Expiry)
		}
		s.last = tok
	}
	return tok, nil
}

// WebAuthorizer runs the installed-app flow: it serves the redirect on a
// loopback port and exchanges the returned code.
type WebAuthorizer struct {
	// Addr is the loopback listen address; ":0" picks a free port.
	Addr    string
	Timeout time.Duration
	// ShowURL presents the consent URL to the user.
	ShowURL func(authURL string)
}

func (a WebAuthorizer) Authorize(ctx context.Context, base *oauth2.Config) (*oauth2.Token, error) {
	addr := a.Addr
	if addr == "" {
		addr = "127.0.0.1:6789"
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for oauth redirect on %s: %w", addr, err)
	}
	defer listener.Close()

	cfg := *base
	port := listener.Addr().(*net.TCPAddr).Port
	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/oauth2callback", port)
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "authorization code not found", http.StatusBadRequest)
				errCh <- errors.New("authorization code not found in redirect")
				return
			}
			fmt.Fprint(w, "Calendar connected. You can close this window.")
			codeCh <- code
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("oauth redirect server: %w", err)
		}
	}()
	defer server.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	if a.ShowURL != nil {
		a.ShowURL(authURL)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}
