package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giladondon/xo-assistance/internal/xoerr"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
	}{
		{
			name:     "bare code used verbatim",
			reply:    "XYZ",
			expected: "XYZ",
		},
		{
			name:     "bare code trimmed",
			reply:    "  XYZ  ",
			expected: "XYZ",
		},
		{
			name:     "full redirect URL",
			reply:    "http://localhost:8080/oauth2callback?state=abc&code=XYZ&scope=calendar",
			expected: "XYZ",
		},
		{
			name:     "https redirect URL",
			reply:    "https://example.com/cb?code=4/0AfJ",
			expected: "4/0AfJ",
		},
		{
			name:     "query fragment without scheme",
			reply:    "?code=XYZ",
			expected: "XYZ",
		},
		{
			name:     "URL without code parameter",
			reply:    "http://localhost:8080/oauth2callback?state=abc",
			expected: "",
		},
		{
			name:     "empty reply",
			reply:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractCode(tt.reply))
		})
	}
}

func TestLoadOAuthConfig(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "credentials.json")
	creds := `{
		"installed": {
			"client_id": "id.apps.googleusercontent.com",
			"client_secret": "secret",
			"auth_uri": "https://accounts.google.com/o/oauth2/auth",
			"token_uri": "https://oauth2.googleapis.com/token",
			"redirect_uris": ["http://localhost:8118/oauth2callback"]
		}
	}`
	require.NoError(t, writeFile(credsPath, creds))

	t.Run("redirect from client secrets", func(t *testing.T) {
		conf, err := LoadOAuthConfig(credsPath, "")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8118/oauth2callback", conf.RedirectURL)
		assert.Equal(t, []string{CalendarScope}, conf.Scopes)
	})

	t.Run("explicit override wins", func(t *testing.T) {
		conf, err := LoadOAuthConfig(credsPath, "http://localhost:9999/cb")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9999/cb", conf.RedirectURL)
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, err := LoadOAuthConfig(filepath.Join(dir, "nope.json"), "")
		require.Error(t, err)
		var ce *xoerr.ConfigError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("no redirect target is a config error", func(t *testing.T) {
		bare := filepath.Join(dir, "bare.json")
		require.NoError(t, writeFile(bare, `{
			"installed": {
				"client_id": "id",
				"client_secret": "secret",
				"auth_uri": "https://accounts.google.com/o/oauth2/auth",
				"token_uri": "https://oauth2.googleapis.com/token"
			}
		}`))
		_, err := LoadOAuthConfig(bare, "")
		require.Error(t, err)
		var ce *xoerr.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "GOOGLE_REDIRECT_URI", ce.Field)
	})
}

func TestFlowCompleteExchange(t *testing.T) {
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "GOOD" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	defer exchange.Close()

	conf := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Endpoint:     oauth2.Endpoint{TokenURL: exchange.URL},
	}
	store := NewTokenStore(t.TempDir(), conf, nil, nil)
	flow := NewFlow(conf, store, nil)

	authURL, hs, err := flow.Begin(42)
	require.NoError(t, err)
	assert.Contains(t, authURL, "state="+hs.State)
	assert.EqualValues(t, 42, hs.UserID)

	t.Run("bare code accepted", func(t *testing.T) {
		tok, err := flow.Complete(context.Background(), hs, "GOOD")
		require.NoError(t, err)
		assert.Equal(t, "at", tok.AccessToken)
		assert.True(t, store.Has(42), "token persisted on success")
	})

	t.Run("pasted redirect URL accepted", func(t *testing.T) {
		tok, err := flow.Complete(context.Background(), hs, "http://localhost/cb?code=GOOD&state="+hs.State)
		require.NoError(t, err)
		assert.Equal(t, "at", tok.AccessToken)
	})

	t.Run("exchange failure is an auth error and mutates nothing", func(t *testing.T) {
		require.NoError(t, store.Delete(42))
		_, err := flow.Complete(context.Background(), hs, "BAD")
		require.Error(t, err)
		assert.True(t, xoerr.IsAuth(err))
		assert.False(t, store.Has(42), "no state stored on failure")
	})

	t.Run("reply without code is an auth error", func(t *testing.T) {
		_, err := flow.Complete(context.Background(), hs, "http://localhost/cb?state=only")
		require.Error(t, err)
		assert.True(t, xoerr.IsAuth(err))
	})
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
