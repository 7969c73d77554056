package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/giladondon/xo-assistance/internal/xoerr"
)

// CalendarScope grants full read/write access to the user's calendars.
const CalendarScope = "https://www.googleapis.com/auth/calendar"

// LoadOAuthConfig reads the client secrets JSON (web or installed block)
// and resolves the redirect URI with precedence: explicit override >
// first redirect URI from the client secrets. A flow without a usable
// redirect target cannot start, so a missing one is a ConfigError meant
// to be raised during startup validation.
func LoadOAuthConfig(credentialsFile, redirectOverride string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, xoerr.Config("GOOGLE_CREDENTIALS_FILE", fmt.Sprintf("cannot read %s: %v", credentialsFile, err))
	}

	conf, err := google.ConfigFromJSON(data, CalendarScope)
	if err != nil {
		return nil, xoerr.Config("GOOGLE_CREDENTIALS_FILE", fmt.Sprintf("invalid client secrets: %v", err))
	}

	if redirectOverride != "" {
		conf.RedirectURL = redirectOverride
	}
	if conf.RedirectURL == "" {
		return nil, xoerr.Config("GOOGLE_REDIRECT_URI", "no redirect URI in environment or client secrets")
	}

	return conf, nil
}

// Handshake correlates one issued authorization URL with the user who
// must supply the resulting code. Handshakes live only in memory; a
// restart simply restarts the flow.
type Handshake struct {
	UserID   int64
	State    string
	IssuedAt time.Time
}

// Flow runs the multi-turn authorization handshake for all users.
type Flow struct {
	conf     *oauth2.Config
	store    *TokenStore
	listener *RedirectListener
	logger   *slog.Logger
}

// NewFlow creates the negotiator and its redirect listener. The listener
// is not started until the first handshake begins.
func NewFlow(conf *oauth2.Config, store *TokenStore, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		conf:     conf,
		store:    store,
		listener: NewRedirectListener(conf.RedirectURL, logger),
		logger:   logger,
	}
}

// Begin builds an authorization URL for the user and starts the redirect
// listener if it is not already running. Listener startup failures are
// logged but do not block the handshake: the user can still paste the
// redirect URL manually.
func (f *Flow) Begin(userID int64) (string, *Handshake, error) {
	if err := f.listener.EnsureStarted(); err != nil {
		f.logger.Warn("redirect listener unavailable", "error", err.Error())
	}

	state, err := randomState()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate handshake state: %w", err)
	}

	authURL := f.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	return authURL, &Handshake{
		UserID:   userID,
		State:    state,
		IssuedAt: time.Now(),
	}, nil
}

// Complete exchanges the user's reply for tokens and persists them.
// The reply may be the bare authorization code or the full redirect URL
// pasted from the browser. On exchange failure no stored state changes.
func (f *Flow) Complete(ctx context.Context, hs *Handshake, reply string) (*oauth2.Token, error) {
	code := ExtractCode(reply)
	if code == "" {
		return nil, xoerr.Auth("complete", errors.New("no authorization code in reply"))
	}

	token, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return nil, xoerr.Auth("code exchange", err)
	}

	if err := f.store.Put(hs.UserID, token); err != nil {
		return nil, err
	}

	return token, nil
}

// Close shuts down the redirect listener.
func (f *Flow) Close() error {
	return f.listener.Close()
}

// ExtractCode pulls the authorization code out of a user reply. Replies
// that look like a redirect URL have the code taken from the query
// string; anything else is used verbatim after trimming. Returns the
// empty string when no code can be found.
func ExtractCode(reply string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ""
	}

	if strings.Contains(reply, "code=") || strings.HasPrefix(reply, "http") {
		u, err := url.Parse(reply)
		if err != nil {
			return ""
		}
		return u.Query().Get("code")
	}

	return reply
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
