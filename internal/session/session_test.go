package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giladondon/xo-assistance/internal/google"
)

func TestStoreGetCreatesOnce(t *testing.T) {
	st := NewStore()

	a := st.Get(1)
	b := st.Get(1)
	c := st.Get(2)

	assert.Same(t, a, b, "same user resolves to the same session")
	assert.NotSame(t, a, c)
	assert.EqualValues(t, 1, a.UserID())
}

func TestPendingSlotExclusivity(t *testing.T) {
	s := NewStore().Get(1)

	s.SetPendingAction(&PendingAction{Kind: "create", Summary: "תדריך"})
	require.NotNil(t, s.PendingAction())

	s.SetPendingSelection(&PendingSelection{Choices: []Choice{{ID: "primary"}}})
	assert.Nil(t, s.PendingAction(), "selection displaces action")
	assert.NotNil(t, s.PendingSelection())

	s.SetPendingHandshake(&google.Handshake{UserID: 1, State: "st"})
	assert.Nil(t, s.PendingSelection(), "handshake displaces selection")
	assert.NotNil(t, s.PendingHandshake())

	s.SetPendingAction(&PendingAction{Kind: "update"})
	assert.Nil(t, s.PendingHandshake(), "action displaces handshake")
	assert.NotNil(t, s.PendingAction())

	s.ClearPendingAction()
	assert.Nil(t, s.PendingAction())
	assert.Nil(t, s.PendingSelection())
	assert.Nil(t, s.PendingHandshake())
}

func TestSnapshotCopySemantics(t *testing.T) {
	s := NewStore().Get(1)

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s.SetSnapshotFor(10, Snapshot{
		"e1": {ID: "e1", Stamp: "s1", Summary: "a", Start: start},
	})

	snap := s.SnapshotFor(10)
	require.Len(t, snap, 1)

	// Mutating the copy must not leak into the stored snapshot.
	snap["e2"] = TrackedEvent{ID: "e2"}
	assert.Len(t, s.SnapshotFor(10), 1)

	// Distinct chats have distinct snapshots.
	assert.Empty(t, s.SnapshotFor(11))
}

func TestCalendarIDCache(t *testing.T) {
	s := NewStore().Get(1)
	assert.Equal(t, "", s.CalendarID())
	s.SetCalendarID("work")
	assert.Equal(t, "work", s.CalendarID())
}

func TestHandlingLockLeavesAccessorsUsable(t *testing.T) {
	s := NewStore().Get(1)
	s.Lock()
	defer s.Unlock()

	// Field accessors must not block while a message is being handled;
	// the watcher reads snapshots mid-resolution.
	s.SetCalendarID("work")
	assert.Equal(t, "work", s.CalendarID())
	s.SetSnapshotFor(1, Snapshot{"e": {ID: "e"}})
	assert.Len(t, s.SnapshotFor(1), 1)
}

func TestConcurrentAccess(t *testing.T) {
	st := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := st.Get(int64(i % 4))
			s.SetPendingAction(&PendingAction{Kind: "create"})
			_ = s.PendingAction()
			s.SetSnapshotFor(1, Snapshot{"e": {ID: "e"}})
			_ = s.SnapshotFor(1)
			s.ClearPendingAction()
		}(i)
	}
	wg.Wait()
}
