package session

import (
	"sync"
	"time"

	"github.com/giladondon/xo-assistance/internal/google"
)

// PendingAction is a queued create or update waiting for a label.
type PendingAction struct {
	Kind            string // "create" or "update"
	Summary         string
	Start           string // "2006-01-02 15:04" draft, as parsed from the command
	DurationMinutes int
}

// Choice is one calendar offered in a selection menu.
type Choice struct {
	ID      string
	Summary string
	Primary bool
}

// PendingSelection is an ordered calendar menu waiting for a 1-based
// index reply.
type PendingSelection struct {
	Choices []Choice
}

// TrackedEvent is one snapshot entry: the previously observed state of a
// calendar event inside the lookahead window.
type TrackedEvent struct {
	ID      string
	Stamp   string
	Summary string
	Start   time.Time
	AllDay  bool
}

// Snapshot maps event id to its last observed state for one chat.
type Snapshot map[string]TrackedEvent

// Session is the single state record for one user.
type Session struct {
	userID int64

	// handleMu serializes whole-message handling for the user. It is
	// separate from mu so field accessors stay usable while a message
	// is in flight.
	handleMu sync.Mutex

	mu               sync.Mutex
	calendarID       string
	pendingAction    *PendingAction
	pendingSelection *PendingSelection
	pendingHandshake *google.Handshake
	snapshots        map[int64]Snapshot
}

// UserID returns the owning user id.
func (s *Session) UserID() int64 { return s.userID }

// Lock blocks until no other message for this user is being handled.
// Callers hold it across the full resolution of one message so that a
// pending slot is read, acted on, and cleared atomically with respect
// to the user's next message.
func (s *Session) Lock() { s.handleMu.Lock() }

// Unlock releases the handling lock taken by Lock.
func (s *Session) Unlock() { s.handleMu.Unlock() }

// CalendarID returns the cached selected calendar, or empty when the
// user never picked one.
func (s *Session) CalendarID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calendarID
}

// SetCalendarID caches the selected calendar.
func (s *Session) SetCalendarID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendarID = id
}

// PendingAction returns the queued action, or nil.
func (s *Session) PendingAction() *PendingAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingAction
}

// SetPendingAction queues an action awaiting a label, displacing any
// other pending slot.
func (s *Session) SetPendingAction(a *PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAction = a
	s.pendingSelection = nil
	s.pendingHandshake = nil
}

// ClearPendingAction resolves the action slot.
func (s *Session) ClearPendingAction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAction = nil
}

// PendingSelection returns the open calendar menu, or nil.
func (s *Session) PendingSelection() *PendingSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingSelection
}

// SetPendingSelection opens a calendar menu, displacing any other
// pending slot.
func (s *Session) SetPendingSelection(sel *PendingSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingSelection = sel
	s.pendingAction = nil
	s.pendingHandshake = nil
}

// ClearPendingSelection resolves the selection slot.
func (s *Session) ClearPendingSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingSelection = nil
}

// PendingHandshake returns the in-flight authorization handshake, or nil.
func (s *Session) PendingHandshake() *google.Handshake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingHandshake
}

// SetPendingHandshake records an issued authorization URL, displacing
// any other pending slot.
func (s *Session) SetPendingHandshake(hs *google.Handshake) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingHandshake = hs
	s.pendingAction = nil
	s.pendingSelection = nil
}

// ClearPendingHandshake resolves the handshake slot.
func (s *Session) ClearPendingHandshake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingHandshake = nil
}

// SnapshotFor returns a copy of the chat's snapshot. The copy may be
// diffed without holding the session lock.
func (s *Session) SnapshotFor(chatID int64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Snapshot, len(s.snapshots[chatID]))
	for id, ev := range s.snapshots[chatID] {
		out[id] = ev
	}
	return out
}

// SetSnapshotFor replaces the chat's snapshot with the next cycle's view.
func (s *Session) SetSnapshotFor(chatID int64, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshots == nil {
		s.snapshots = make(map[int64]Snapshot)
	}
	s.snapshots[chatID] = snap
}

// Store holds one session per user, created on demand.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the user's session, creating it if needed.
func (st *Store) Get(userID int64) *Session {
	st.mu.RLock()
	s, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.sessions[userID]; ok {
		return s
	}
	s = &Session{userID: userID, snapshots: make(map[int64]Snapshot)}
	st.sessions[userID] = s
	return s
}
