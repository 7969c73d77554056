package google

import (
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
)

// RedirectListener serves the OAuth redirect target locally. It answers
// the configured path with a confirmation page embedding the received
// code for manual copy, and everything else with 404.
//
// Startup is idempotent and serialized: concurrent EnsureStarted calls
// race on one mutex, the first binds the port and later callers observe
// the listener already running.
type RedirectListener struct {
	redirectURI string
	logger      *slog.Logger

	mu      sync.Mutex
	srv     *http.Server
	started bool
}

// NewRedirectListener creates a listener for the given redirect URI.
func NewRedirectListener(redirectURI string, logger *slog.Logger) *RedirectListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedirectListener{redirectURI: redirectURI, logger: logger}
}

// EnsureStarted binds and serves the redirect target if it is not already
// running. Non-http redirect URIs (such as the out-of-band scheme) are
// not served locally and return nil.
func (l *RedirectListener) EnsureStarted() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return nil
	}

	u, err := url.Parse(l.redirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect URI %q: %w", l.redirectURI, err)
	}
	if u.Scheme != "http" {
		return nil
	}

	port := u.Port()
	if port == "" {
		port = "80"
	}
	expectedPath := u.Path
	if expectedPath == "" {
		expectedPath = "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != expectedPath {
			http.NotFound(w, r)
			return
		}
		code := r.URL.Query().Get("code")
		page := callbackPage(code)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	})

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to bind redirect listener on port %s: %w", port, err)
	}

	l.srv = &http.Server{Handler: mux}
	go func() {
		if serveErr := l.srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			l.logger.Error("redirect listener stopped", "error", serveErr.Error())
		}
	}()

	l.logger.Info("redirect listener started", "addr", ln.Addr().String(), "path", expectedPath)
	l.started = true
	return nil
}

// Close shuts the listener down. Safe to call when it never started.
func (l *RedirectListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started || l.srv == nil {
		return nil
	}
	err := l.srv.Close()
	l.srv = nil
	l.started = false
	return err
}

func callbackPage(code string) []byte {
	safe := html.EscapeString(code)
	page := `<!doctype html>
<html lang="he" dir="rtl">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>ההרשאה הושלמה</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 2rem; line-height: 1.5; }
    .card { max-width: 720px; border: 1px solid #d9d9d9; border-radius: 12px; padding: 1rem 1.25rem; }
    .code { display: block; width: 100%; margin-top: .5rem; padding: .75rem; font-family: monospace; }
  </style>
</head>
<body>
  <div class="card">
    <h2>✅ ההתחברות לגוגל הושלמה</h2>
    <p>העתק/י את הקוד הבא והדבק/י אותו בבוט בטלגרם.</p>
    <input id="oauthCode" class="code" value="` + safe + `" readonly />
  </div>
</body>
</html>
`
	return []byte(page)
}
