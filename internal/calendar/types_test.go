package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	calendar "google.golang.org/api/calendar/v3"
)

func TestToEvent(t *testing.T) {
	tests := []struct {
		name     string
		input    *calendar.Event
		expected Event
	}{
		{
			name:     "nil event",
			input:    nil,
			expected: Event{},
		},
		{
			name: "timed event",
			input: &calendar.Event{
				Id:      "e1",
				Summary: "תדריך",
				Updated: "2026-08-31T10:00:00.000Z",
				ColorId: "11",
				Start:   &calendar.EventDateTime{DateTime: "2026-09-01T10:00:00+03:00"},
				End:     &calendar.EventDateTime{DateTime: "2026-09-01T11:00:00+03:00"},
			},
			expected: Event{
				ID:      "e1",
				Summary: "תדריך",
				Updated: "2026-08-31T10:00:00.000Z",
				ColorID: "11",
				Start:   mustParse(t, "2026-09-01T10:00:00+03:00"),
				End:     mustParse(t, "2026-09-01T11:00:00+03:00"),
			},
		},
		{
			name: "all-day event",
			input: &calendar.Event{
				Id:    "e2",
				Start: &calendar.EventDateTime{Date: "2026-09-02"},
				End:   &calendar.EventDateTime{Date: "2026-09-03"},
			},
			expected: Event{
				ID:     "e2",
				AllDay: true,
				Start:  time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
				End:    time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "unparseable start left zero",
			input: &calendar.Event{
				Id:    "e3",
				Start: &calendar.EventDateTime{DateTime: "not-a-time"},
			},
			expected: Event{ID: "e3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toEvent(tt.input)
			assert.Equal(t, tt.expected.ID, got.ID)
			assert.Equal(t, tt.expected.Summary, got.Summary)
			assert.Equal(t, tt.expected.Updated, got.Updated)
			assert.Equal(t, tt.expected.ColorID, got.ColorID)
			assert.Equal(t, tt.expected.AllDay, got.AllDay)
			assert.True(t, tt.expected.Start.Equal(got.Start), "start: want %v got %v", tt.expected.Start, got.Start)
			assert.True(t, tt.expected.End.Equal(got.End), "end: want %v got %v", tt.expected.End, got.End)
		})
	}
}

func TestToCalendarInfo(t *testing.T) {
	info := toCalendarInfo(nil)
	assert.Equal(t, CalendarInfo{}, info)

	info = toCalendarInfo(&calendar.CalendarListEntry{Id: "primary", Summary: "יומן", Primary: true})
	assert.Equal(t, CalendarInfo{ID: "primary", Summary: "יומן", Primary: true}, info)

	info = toCalendarInfo(&calendar.CalendarListEntry{Id: "x@group.calendar.google.com"})
	assert.Equal(t, "x@group.calendar.google.com", info.Summary, "summary falls back to id")
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}
