package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Event is the assistant's view of a calendar event. Updated is the
// backend's opaque mutation stamp, comparable only for equality.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
	Updated string
	ColorID string
}

// CalendarInfo identifies one entry of the user's calendar list.
type CalendarInfo struct {
	ID      string
	Summary string
	Primary bool
}

// EventInput carries the fields for creating or updating an event.
// Duration measures from Start; ColorID and Attendees come from the
// label directory.
type EventInput struct {
	Summary   string
	Start     time.Time
	Duration  time.Duration
	ColorID   string
	Attendees []string
}

// toEvent converts a Google Calendar event. All-day events carry a bare
// date; timed events carry an RFC 3339 timestamp.
func toEvent(ev *calendar.Event) Event {
	if ev == nil {
		return Event{}
	}

	out := Event{
		ID:      ev.Id,
		Summary: ev.Summary,
		Updated: ev.Updated,
		ColorID: ev.ColorId,
	}

	if ev.Start != nil {
		if ev.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
				out.Start = t
			}
		} else if ev.Start.Date != "" {
			if t, err := time.Parse("2006-01-02", ev.Start.Date); err == nil {
				out.Start = t
				out.AllDay = true
			}
		}
	}

	if ev.End != nil {
		if ev.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, ev.End.DateTime); err == nil {
				out.End = t
			}
		} else if ev.End.Date != "" {
			if t, err := time.Parse("2006-01-02", ev.End.Date); err == nil {
				out.End = t
			}
		}
	}

	return out
}

func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	summary := entry.Summary
	if summary == "" {
		summary = entry.Id
	}
	return CalendarInfo{
		ID:      entry.Id,
		Summary: summary,
		Primary: entry.Primary,
	}
}
