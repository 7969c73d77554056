package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giladondon/xo-assistance/internal/contacts"
	"github.com/giladondon/xo-assistance/internal/intent"
	"github.com/giladondon/xo-assistance/internal/session"
)

// sendTomorrowSchedule summarizes tomorrow's events through the intent
// parser and sends the result, one color emoji per bullet.
func (b *Bot) sendTomorrowSchedule(ctx context.Context, sess *session.Session, chatID, userID int64) error {
	cal, err := b.calendars.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	calendarID := b.calendarID(sess, userID)

	now := b.now().In(b.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.loc).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	events, err := cal.ListEvents(ctx, calendarID, from, to)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		b.send(ctx, chatID, replyNoEventsTomorrow)
		return nil
	}

	lines := make([]string, 0, len(events))
	emojis := make([]string, 0, len(events))
	for _, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = "ללא כותרת"
		}

		duration := intent.DefaultDurationMinutes
		timeStr := ev.Start.In(b.loc).Format("15:04")
		if ev.AllDay {
			timeStr = ev.Start.Format("2006-01-02")
		} else if !ev.End.IsZero() {
			duration = int(ev.End.Sub(ev.Start).Minutes())
		}

		lines = append(lines, fmt.Sprintf("%s - %s (משך: %d דקות)", timeStr, summary, duration))
		emojis = append(emojis, contacts.EmojiForColor(ev.ColorID))
	}

	text, err := b.parser.Summarize(ctx, lines, now)
	if err != nil {
		return err
	}

	b.send(ctx, chatID, decorateBullets(text, emojis))
	return nil
}

// decorateBullets appends each event's color emoji to the matching
// bullet line of the model's summary, pairing bullets and events in
// order.
func decorateBullets(summary string, emojis []string) string {
	summary = strings.TrimSpace(strings.ReplaceAll(summary, "\n- ", "\n\n- "))

	lines := strings.Split(summary, "\n")
	idx := 0
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "-") || idx >= len(emojis) {
			continue
		}
		if emojis[idx] != "" {
			lines[i] = line + " " + emojis[idx]
		}
		idx++
	}
	return strings.Join(lines, "\n")
}
