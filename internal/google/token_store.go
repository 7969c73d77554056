package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/giladondon/xo-assistance/internal/instrumentation"
	"github.com/giladondon/xo-assistance/internal/logging"
	"github.com/giladondon/xo-assistance/internal/xoerr"
)

// TokenStore persists one credential record and one calendar preference
// record per user as JSON files under a state directory. The directory
// is created lazily on the first write.
type TokenStore struct {
	dir     string
	conf    *oauth2.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	mu      sync.Mutex
}

// NewTokenStore creates a token store rooted at dir.
func NewTokenStore(dir string, conf *oauth2.Config, logger *slog.Logger, metrics *instrumentation.Metrics) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &TokenStore{dir: dir, conf: conf, logger: logger, metrics: metrics}
}

type calendarPref struct {
	CalendarID string `json:"calendar_id"`
}

// Get loads the user's credential, refreshing it when expired. It never
// returns a token known to be expired and non-refreshable.
//
// Absent and unrecoverable both report (nil, nil): an unrecoverable
// refresh failure (revoked or expired grant) deletes the stored record
// so the caller re-runs the authorization handshake. Transient refresh
// failures propagate without touching stored state.
func (s *TokenStore) Get(ctx context.Context, userID int64) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.tokenPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token record: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode token record: %w", err)
	}

	if tok.Valid() {
		return &tok, nil
	}
	if tok.RefreshToken == "" {
		// Expired with no way to refresh; the user must authorize again.
		return nil, nil
	}

	fresh, err := s.conf.TokenSource(ctx, &tok).Token()
	if err != nil {
		s.metrics.RecordOAuth(ctx, "refresh", instrumentation.StatusError)
		if isUnrecoverableRefresh(err) {
			s.logger.Warn("token refresh rejected, deleting credential",
				logging.UserHash(userID), logging.Err(err))
			if rmErr := os.Remove(s.tokenPath(userID)); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.Error("failed to delete token record", logging.Err(rmErr))
			}
			return nil, nil
		}
		return nil, xoerr.Transient("token refresh", err)
	}
	s.metrics.RecordOAuth(ctx, "refresh", instrumentation.StatusSuccess)

	// Refreshed tokens replace the stored record.
	if fresh.AccessToken != tok.AccessToken || !fresh.Expiry.Equal(tok.Expiry) {
		if err := s.put(userID, fresh); err != nil {
			return nil, err
		}
	}

	return fresh, nil
}

// Put persists the credential, overwriting any prior record.
func (s *TokenStore) Put(userID int64, tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(userID, tok)
}

func (s *TokenStore) put(userID int64, tok *oauth2.Token) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(userID), raw, 0o600); err != nil {
		return fmt.Errorf("failed to write token record: %w", err)
	}
	return nil
}

// Delete removes the user's credential record if present.
func (s *TokenStore) Delete(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.tokenPath(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token record: %w", err)
	}
	return nil
}

// Has reports whether a credential record exists for the user. It does
// not check validity.
func (s *TokenStore) Has(userID int64) bool {
	_, err := os.Stat(s.tokenPath(userID))
	return err == nil
}

// SaveCalendarID persists the user's selected calendar.
func (s *TokenStore) SaveCalendarID(userID int64, calendarID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	raw, err := json.Marshal(calendarPref{CalendarID: calendarID})
	if err != nil {
		return fmt.Errorf("failed to encode calendar preference: %w", err)
	}
	if err := os.WriteFile(s.calendarPath(userID), raw, 0o600); err != nil {
		return fmt.Errorf("failed to write calendar preference: %w", err)
	}
	return nil
}

// LoadCalendarID returns the user's selected calendar, or the empty
// string when none is stored.
func (s *TokenStore) LoadCalendarID(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.calendarPath(userID))
	if err != nil {
		return ""
	}
	var pref calendarPref
	if err := json.Unmarshal(raw, &pref); err != nil {
		return ""
	}
	return pref.CalendarID
}

func (s *TokenStore) tokenPath(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("token_%d.json", userID))
}

func (s *TokenStore) calendarPath(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("calendar_%d.json", userID))
}

// isUnrecoverableRefresh reports whether a refresh failure means the
// grant itself is invalid or revoked, as opposed to a transient backend
// or network problem.
func isUnrecoverableRefresh(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.ErrorCode == "invalid_grant" {
		return true
	}
	if re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
	}
	return false
}
