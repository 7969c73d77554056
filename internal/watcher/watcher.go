package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/giladondon/xo-assistance/internal/calendar"
	"github.com/giladondon/xo-assistance/internal/instrumentation"
	"github.com/giladondon/xo-assistance/internal/logging"
	"github.com/giladondon/xo-assistance/internal/notify"
	"github.com/giladondon/xo-assistance/internal/session"
)

// lookahead is the tracked window: only events starting within the next
// 24 hours are snapshotted and diffed.
const lookahead = 24 * time.Hour

// Notice kinds.
const (
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Notice is one change detected between two consecutive snapshots.
// Deleted notices carry only Old.
type Notice struct {
	Kind string
	Old  session.TrackedEvent
	New  session.TrackedEvent
}

// EventSource lists one user's upcoming events.
type EventSource interface {
	EventsForUser(ctx context.Context, userID int64, calendarID string, timeMin, timeMax time.Time) ([]calendar.Event, error)
}

// Messenger delivers a notification text to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Config carries the watcher's collaborators and timing.
type Config struct {
	Source    EventSource
	Sessions  *session.Store
	Renderer  *notify.Renderer
	Messenger Messenger
	Metrics   *instrumentation.Metrics
	Logger    *slog.Logger

	// Interval between poll cycles; Warmup delays the first cycle after
	// a chat starts being watched.
	Interval time.Duration
	Warmup   time.Duration
}

// Watcher runs one polling loop per watched chat.
type Watcher struct {
	source    EventSource
	sessions  *session.Store
	renderer  *notify.Renderer
	messenger Messenger
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	interval  time.Duration
	warmup    time.Duration
	now       func() time.Time

	mu     sync.Mutex
	active map[int64]bool
}

// New creates a watcher. Interval defaults to one minute and Warmup to
// ten seconds when unset.
func New(cfg Config) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Warmup <= 0 {
		cfg.Warmup = 10 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Watcher{
		source:    cfg.Source,
		sessions:  cfg.Sessions,
		renderer:  cfg.Renderer,
		messenger: cfg.Messenger,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
		warmup:    cfg.Warmup,
		now:       time.Now,
		active:    make(map[int64]bool),
	}
}

// Watch starts polling the chat's calendar in a background goroutine.
// Watching an already-watched chat is a no-op, so message handlers may
// call it on every message.
func (w *Watcher) Watch(ctx context.Context, chatID, userID int64) {
	w.mu.Lock()
	if w.active[chatID] {
		w.mu.Unlock()
		return
	}
	w.active[chatID] = true
	w.mu.Unlock()

	w.logger.Info("watching chat",
		logging.Operation("watch"),
		logging.Chat(chatID),
		logging.UserHash(userID))
	go w.run(ctx, chatID, userID)
}

func (w *Watcher) run(ctx context.Context, chatID, userID int64) {
	warmup := time.NewTimer(w.warmup)
	defer warmup.Stop()
	select {
	case <-ctx.Done():
		return
	case <-warmup.C:
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	errNotified := false
	for {
		if err := w.cycle(ctx, chatID, userID); err != nil {
			w.logger.Error("poll cycle failed",
				logging.Operation("poll"),
				logging.Chat(chatID),
				logging.Err(err))
			// Report a failure streak once, not every cycle.
			if !errNotified {
				errNotified = true
				text := w.renderer.Render(notify.KeyWatchError, map[string]string{"error": err.Error()})
				if err := w.messenger.Send(ctx, chatID, text); err != nil {
					w.logger.Error("failed to send watch error", logging.Chat(chatID), logging.Err(err))
				}
			}
		} else {
			errNotified = false
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// cycle fetches the next 24 hours, diffs against the previous snapshot,
// stores the new snapshot and sends the resulting notices.
func (w *Watcher) cycle(ctx context.Context, chatID, userID int64) error {
	start := w.now()
	sess := w.sessions.Get(userID)
	calendarID := sess.CalendarID()
	if calendarID == "" {
		calendarID = calendar.DefaultCalendarID
	}

	events, err := w.source.EventsForUser(ctx, userID, calendarID, start, start.Add(lookahead))
	if err != nil {
		w.metrics.RecordPollCycle(ctx, instrumentation.StatusError, w.now().Sub(start))
		return fmt.Errorf("failed to poll calendar: %w", err)
	}

	next, notices := diff(sess.SnapshotFor(chatID), events, start)
	sess.SetSnapshotFor(chatID, next)

	for _, n := range notices {
		if err := w.messenger.Send(ctx, chatID, w.renderNotice(n)); err != nil {
			w.logger.Error("failed to send notification",
				logging.Chat(chatID),
				logging.Event(n.Old.ID),
				logging.Err(err))
			continue
		}
		w.metrics.RecordNotification(ctx, n.Kind)
	}

	w.metrics.RecordPollCycle(ctx, instrumentation.StatusSuccess, w.now().Sub(start))
	return nil
}

func (w *Watcher) renderNotice(n Notice) string {
	oldTime, oldDate := w.renderer.TimeDate(n.Old.Start, n.Old.AllDay)
	if n.Kind == KindDeleted {
		return w.renderer.Render(notify.KeyEventDeleted, map[string]string{
			"summary":  n.Old.Summary,
			"old_time": oldTime,
			"old_date": oldDate,
		})
	}

	newTime, newDate := w.renderer.TimeDate(n.New.Start, n.New.AllDay)
	return w.renderer.Render(notify.KeyEventUpdated, map[string]string{
		"summary":  n.New.Summary,
		"old_time": oldTime,
		"old_date": oldDate,
		"new_time": newTime,
		"new_date": newDate,
	})
}

// diff compares the previous snapshot against the freshly fetched
// events and returns the next snapshot plus the notices to send.
//
// An event seen for the first time is recorded silently. An event
// present in both snapshots notifies only when its mutation stamp
// changed and the change is visible, meaning the start or summary
// differs; invisible stamp changes such as an attendee RSVP still
// refresh the stored entry so they are not re-examined next cycle. An
// event that vanished notifies only when its last recorded start was
// still within 24 hours of now, so events that simply scrolled out of
// the window stay quiet.
func diff(prev session.Snapshot, events []calendar.Event, now time.Time) (session.Snapshot, []Notice) {
	next := make(session.Snapshot, len(events))
	var notices []Notice

	for _, ev := range events {
		cur := session.TrackedEvent{
			ID:      ev.ID,
			Stamp:   ev.Updated,
			Summary: ev.Summary,
			Start:   ev.Start,
			AllDay:  ev.AllDay,
		}
		if old, seen := prev[ev.ID]; seen &&
			old.Stamp != cur.Stamp &&
			(!old.Start.Equal(cur.Start) || old.Summary != cur.Summary) {
			notices = append(notices, Notice{Kind: KindUpdated, Old: old, New: cur})
		}
		next[ev.ID] = cur
	}

	for id, old := range prev {
		if _, ok := next[id]; ok {
			continue
		}
		if lead := old.Start.Sub(now); lead >= 0 && lead <= lookahead {
			notices = append(notices, Notice{Kind: KindDeleted, Old: old})
		}
	}

	return next, notices
}
