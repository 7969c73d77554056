package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/giladondon/xo-assistance/internal/google"
	"github.com/giladondon/xo-assistance/internal/xoerr"
)

// DefaultCalendarID is used when the user never picked a calendar.
const DefaultCalendarID = "primary"

// eventTimeZone is the zone event bodies are written in.
const eventTimeZone = "Asia/Jerusalem"

// Client wraps the Google Calendar service for one authenticated user.
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client from an OAuth token.
func NewClient(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*Client, error) {
	tokenSource := conf.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2 to avoid protocol errors on
	// long-lived poll loops.
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// Factory builds per-user clients from the credential store.
type Factory struct {
	conf  *oauth2.Config
	store *google.TokenStore
}

// NewFactory creates a client factory.
func NewFactory(conf *oauth2.Config, store *google.TokenStore) *Factory {
	return &Factory{conf: conf, store: store}
}

// ForUser returns a client for the user's stored credential. An absent
// credential is an AuthError: the caller must run the handshake first.
func (f *Factory) ForUser(ctx context.Context, userID int64) (*Client, error) {
	token, err := f.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, xoerr.Auth("client", fmt.Errorf("user %d has no stored credential", userID))
	}
	return NewClient(ctx, f.conf, token)
}

// EventsForUser lists the user's events in [timeMin, timeMax), building
// a client from the stored credential first.
func (f *Factory) EventsForUser(ctx context.Context, userID int64, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	c, err := f.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.ListEvents(ctx, calendarID, timeMin, timeMax)
}

// ListEvents lists events with a start time inside [timeMin, timeMax),
// expanded to single instances and ordered ascending by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	result, err := c.svc.Events.List(calendarID).
		TimeMin(timeMin.UTC().Format(time.RFC3339)).
		TimeMax(timeMax.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, toEvent(item))
	}
	return events, nil
}

// FindEvent searches the next seven days for an event whose summary
// contains query and returns the first match in start order.
func (c *Client) FindEvent(ctx context.Context, calendarID, query string) (*Event, error) {
	now := time.Now()
	events, err := c.ListEvents(ctx, calendarID, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	for _, ev := range events {
		if ev.Summary != "" && strings.Contains(ev.Summary, query) {
			match := ev
			return &match, nil
		}
	}

	return nil, xoerr.NotFound(query)
}

// CreateEvent inserts a new event. Attendee invitations are sent only
// when the input carries attendees.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error) {
	body := &calendar.Event{
		Summary: input.Summary,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format("2006-01-02T15:04:05"),
			TimeZone: eventTimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.Start.Add(input.Duration).Format("2006-01-02T15:04:05"),
			TimeZone: eventTimeZone,
		},
	}
	if input.ColorID != "" {
		body.ColorId = input.ColorID
	}
	for _, email := range input.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{Email: email})
	}

	sendUpdates := "none"
	if len(input.Attendees) > 0 {
		sendUpdates = "all"
	}

	created, err := c.svc.Events.Insert(calendarID, body).
		SendUpdates(sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	ev := toEvent(created)
	return &ev, nil
}

// UpdateEvent rewrites an existing event's summary and time window.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (*Event, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if !input.Start.IsZero() {
		existing.Start = &calendar.EventDateTime{
			DateTime: input.Start.Format("2006-01-02T15:04:05"),
			TimeZone: eventTimeZone,
		}
		existing.End = &calendar.EventDateTime{
			DateTime: input.Start.Add(input.Duration).Format("2006-01-02T15:04:05"),
			TimeZone: eventTimeZone,
		}
	}

	updated, err := c.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	ev := toEvent(updated)
	return &ev, nil
}

// PatchEventLabel applies a label's color and invitees to an event,
// notifying attendees of the change.
func (c *Client) PatchEventLabel(ctx context.Context, calendarID, eventID, colorID string, attendees []string) error {
	patch := &calendar.Event{}
	changed := false

	if colorID != "" {
		patch.ColorId = colorID
		changed = true
	}
	for _, email := range attendees {
		patch.Attendees = append(patch.Attendees, &calendar.EventAttendee{Email: email})
		changed = true
	}
	if !changed {
		return nil
	}

	_, err := c.svc.Events.Patch(calendarID, eventID, patch).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to patch event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by id.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListCalendars returns all calendars on the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var calendars []CalendarInfo
	pageToken := ""
	for {
		call := c.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendars: %w", err)
		}
		for _, entry := range page.Items {
			if entry.Id == "" {
				continue
			}
			calendars = append(calendars, toCalendarInfo(entry))
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return calendars, nil
}
