package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/giladondon/xo-assistance/internal/calendar"
	"github.com/giladondon/xo-assistance/internal/contacts"
	"github.com/giladondon/xo-assistance/internal/google"
	"github.com/giladondon/xo-assistance/internal/instrumentation"
	"github.com/giladondon/xo-assistance/internal/intent"
	"github.com/giladondon/xo-assistance/internal/logging"
	"github.com/giladondon/xo-assistance/internal/session"
	"github.com/giladondon/xo-assistance/internal/telegram"
	"github.com/giladondon/xo-assistance/internal/xoerr"
)

// startLayout is the draft start-time format produced by the intent
// parser, interpreted in the bot's display time zone.
const startLayout = "2006-01-02 15:04"

// labelRe matches an inline label token: @ followed by word or Hebrew
// letters.
var labelRe = regexp.MustCompile(`@([\w\x{0590}-\x{05FF}]+)`)

// Calendar is the per-user calendar surface the resolver drives.
type Calendar interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]calendar.Event, error)
	FindEvent(ctx context.Context, calendarID, query string) (*calendar.Event, error)
	CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, input calendar.EventInput) (*calendar.Event, error)
	PatchEventLabel(ctx context.Context, calendarID, eventID, colorID string, attendees []string) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error)
}

// CalendarProvider builds a Calendar for an authenticated user.
type CalendarProvider interface {
	ForUser(ctx context.Context, userID int64) (Calendar, error)
}

// Credentials gates message handling on a stored token and persists the
// user's calendar choice.
type Credentials interface {
	Get(ctx context.Context, userID int64) (*oauth2.Token, error)
	SaveCalendarID(userID int64, calendarID string) error
	LoadCalendarID(userID int64) string
}

// AuthFlow runs the authorization handshake.
type AuthFlow interface {
	Begin(userID int64) (string, *google.Handshake, error)
	Complete(ctx context.Context, hs *google.Handshake, reply string) (*oauth2.Token, error)
}

// Messenger sends replies back to the chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Registrar starts change watching for a chat. Registration must be
// idempotent.
type Registrar interface {
	Watch(ctx context.Context, chatID, userID int64)
}

// Config carries the resolver's collaborators.
type Config struct {
	Sessions    *session.Store
	Credentials Credentials
	Auth        AuthFlow
	Calendars   CalendarProvider
	Parser      intent.Parser
	Directory   contacts.Directory
	Messenger   Messenger
	Watcher     Registrar
	Metrics     *instrumentation.Metrics
	Logger      *slog.Logger
	Location    *time.Location
}

// Bot resolves inbound messages into calendar actions.
type Bot struct {
	sessions    *session.Store
	credentials Credentials
	auth        AuthFlow
	calendars   CalendarProvider
	parser      intent.Parser
	directory   contacts.Directory
	messenger   Messenger
	watcher     Registrar
	metrics     *instrumentation.Metrics
	logger      *slog.Logger
	loc         *time.Location
	now         func() time.Time

	mu     sync.Mutex
	active map[int64]int64 // chatID -> userID
}

// New creates a resolver.
func New(cfg Config) *Bot {
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Bot{
		sessions:    cfg.Sessions,
		credentials: cfg.Credentials,
		auth:        cfg.Auth,
		calendars:   cfg.Calendars,
		parser:      cfg.Parser,
		directory:   cfg.Directory,
		messenger:   cfg.Messenger,
		watcher:     cfg.Watcher,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		loc:         cfg.Location,
		now:         time.Now,
		active:      make(map[int64]int64),
	}
}

// HandleMessage resolves one inbound message. Errors never escape: any
// failure is reported to the chat as a diagnostic and logged, so one
// user's bad day cannot take down the handler loop.
//
// Messages from the same user are handled one at a time: the session
// lock is held for the full resolution, so a reply to a pending slot
// finishes before the user's next message is interpreted. Distinct
// users never contend.
func (b *Bot) HandleMessage(ctx context.Context, msg telegram.Message) {
	sess := b.sessions.Get(msg.UserID)
	sess.Lock()
	defer sess.Unlock()

	status := instrumentation.StatusSuccess
	if err := b.handle(ctx, sess, msg); err != nil {
		status = instrumentation.StatusError
		b.logger.Error("message handling failed",
			logging.Chat(msg.ChatID),
			logging.UserHash(msg.UserID),
			logging.Err(err))
		b.send(ctx, msg.ChatID, fmt.Sprintf(replyGenericError, err))
	}
	b.metrics.RecordMessage(ctx, status)
}

func (b *Bot) handle(ctx context.Context, sess *session.Session, msg telegram.Message) error {
	if hs := sess.PendingHandshake(); hs != nil {
		return b.resolveAuthReply(ctx, sess, msg, hs)
	}

	token, err := b.credentials.Get(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if token == nil {
		return b.beginHandshake(ctx, sess, msg)
	}

	b.registerChat(ctx, msg.ChatID, msg.UserID)
	b.send(ctx, msg.ChatID, replyProcessing)

	if sel := sess.PendingSelection(); sel != nil {
		return b.resolveSelection(ctx, sess, msg, sel)
	}
	if pending := sess.PendingAction(); pending != nil {
		return b.resolveLabelReply(ctx, sess, msg, pending)
	}
	return b.resolveCommand(ctx, sess, msg)
}

// resolveAuthReply treats the message as the user's authorization code
// or pasted redirect URL. The handshake survives a failed exchange so
// the user can try again.
func (b *Bot) resolveAuthReply(ctx context.Context, sess *session.Session, msg telegram.Message, hs *google.Handshake) error {
	if google.ExtractCode(msg.Text) == "" {
		b.send(ctx, msg.ChatID, replyAuthNoCode)
		return nil
	}

	if _, err := b.auth.Complete(ctx, hs, msg.Text); err != nil {
		b.metrics.RecordOAuth(ctx, "exchange", instrumentation.StatusError)
		b.send(ctx, msg.ChatID, fmt.Sprintf(replyAuthFailed, err))
		return nil
	}
	b.metrics.RecordOAuth(ctx, "exchange", instrumentation.StatusSuccess)

	sess.ClearPendingHandshake()
	b.send(ctx, msg.ChatID, replyAuthDone)
	return nil
}

func (b *Bot) beginHandshake(ctx context.Context, sess *session.Session, msg telegram.Message) error {
	url, hs, err := b.auth.Begin(msg.UserID)
	if err != nil {
		b.metrics.RecordOAuth(ctx, "begin", instrumentation.StatusError)
		b.send(ctx, msg.ChatID, fmt.Sprintf(replyAuthFailed, err))
		return nil
	}
	b.metrics.RecordOAuth(ctx, "begin", instrumentation.StatusSuccess)

	sess.SetPendingHandshake(hs)
	b.send(ctx, msg.ChatID, fmt.Sprintf(replyAuthPrompt, url))
	return nil
}

// resolveSelection treats the message as a 1-based index into the open
// calendar menu. Anything else reprompts and keeps the menu open.
func (b *Bot) resolveSelection(ctx context.Context, sess *session.Session, msg telegram.Message, sel *session.PendingSelection) error {
	idx, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || idx < 1 || idx > len(sel.Choices) {
		b.send(ctx, msg.ChatID, fmt.Sprintf(replyCalendarBadPick, len(sel.Choices)))
		return nil
	}

	choice := sel.Choices[idx-1]
	if err := b.credentials.SaveCalendarID(msg.UserID, choice.ID); err != nil {
		return err
	}
	sess.SetCalendarID(choice.ID)
	sess.ClearPendingSelection()
	b.send(ctx, msg.ChatID, fmt.Sprintf(replyCalendarChosen, choice.Summary))
	return nil
}

// resolveLabelReply treats the message as a label for the queued create
// or update. An unknown label reprompts with the valid set and keeps
// the queued action.
func (b *Bot) resolveLabelReply(ctx context.Context, sess *session.Session, msg telegram.Message, pending *session.PendingAction) error {
	chosen := strings.TrimPrefix(strings.TrimSpace(msg.Text), "@")
	if fields := strings.Fields(chosen); len(fields) > 0 {
		chosen = fields[0]
	}

	labels := b.directory.Labels()
	if !contacts.Contains(b.directory, chosen) {
		b.send(ctx, msg.ChatID, fmt.Sprintf(replyUnknownLabel, strings.Join(labels, ", ")))
		return nil
	}

	start, err := time.ParseInLocation(startLayout, pending.Start, b.loc)
	if err != nil {
		// The draft can never execute; drop it instead of trapping the
		// user in the label prompt.
		sess.ClearPendingAction()
		return xoerr.Validation(fmt.Sprintf("draft start time %q is not valid", pending.Start))
	}

	cal, err := b.calendars.ForUser(ctx, msg.UserID)
	if err != nil {
		return err
	}
	calendarID := b.calendarID(sess, msg.UserID)
	input := calendar.EventInput{
		Summary:   pending.Summary,
		Start:     start,
		Duration:  time.Duration(pending.DurationMinutes) * time.Minute,
		ColorID:   b.directory.ColorForLabel(chosen),
		Attendees: b.directory.EmailsForLabel(chosen),
	}

	switch pending.Kind {
	case intent.ActionCreate:
		if _, err := cal.CreateEvent(ctx, calendarID, input); err != nil {
			return err
		}
		sess.ClearPendingAction()
		b.send(ctx, msg.ChatID, replyCreatedLabeled)

	default:
		ev, err := cal.FindEvent(ctx, calendarID, pending.Summary)
		if err != nil {
			if xoerr.IsNotFound(err) {
				sess.ClearPendingAction()
				b.send(ctx, msg.ChatID, replyNoEventUpdate)
				return nil
			}
			return err
		}
		if _, err := cal.UpdateEvent(ctx, calendarID, ev.ID, input); err != nil {
			return err
		}
		if err := cal.PatchEventLabel(ctx, calendarID, ev.ID, input.ColorID, input.Attendees); err != nil {
			return err
		}
		sess.ClearPendingAction()
		b.send(ctx, msg.ChatID, replyUpdatedLabeled)
	}
	return nil
}

// resolveCommand hands a fresh message to the intent parser and
// executes the result.
func (b *Bot) resolveCommand(ctx context.Context, sess *session.Session, msg telegram.Message) error {
	text := strings.TrimSpace(msg.Text)

	label := ""
	if m := labelRe.FindStringSubmatchIndex(text); m != nil {
		label = text[m[2]:m[3]]
		text = strings.TrimSpace(text[:m[0]] + text[m[1]:])
	}

	labels := b.directory.Labels()
	cmd, err := b.parser.Parse(ctx, text, labels, b.now().In(b.loc))
	if err != nil {
		b.metrics.RecordIntentParse(ctx, "unknown", instrumentation.StatusError)
		return err
	}
	b.metrics.RecordIntentParse(ctx, cmd.Action, instrumentation.StatusSuccess)

	switch cmd.Action {
	case intent.ActionSummarize:
		return b.sendTomorrowSchedule(ctx, sess, msg.ChatID, msg.UserID)
	case intent.ActionCalendars:
		return b.offerCalendars(ctx, sess, msg)
	}

	if cmd.Action == intent.ActionCreate || cmd.Action == intent.ActionUpdate {
		if label == "" || !contacts.Contains(b.directory, label) {
			sess.SetPendingAction(&session.PendingAction{
				Kind:            cmd.Action,
				Summary:         cmd.Summary,
				Start:           cmd.StartTime,
				DurationMinutes: cmd.DurationMinutes,
			})
			b.send(ctx, msg.ChatID, fmt.Sprintf(replyPickLabel, strings.Join(labels, ", ")))
			return nil
		}
	}

	cal, err := b.calendars.ForUser(ctx, msg.UserID)
	if err != nil {
		return err
	}
	calendarID := b.calendarID(sess, msg.UserID)

	switch cmd.Action {
	case intent.ActionCreate:
		start, err := time.ParseInLocation(startLayout, cmd.StartTime, b.loc)
		if err != nil {
			return xoerr.Validation(fmt.Sprintf("start time %q is not valid", cmd.StartTime))
		}
		input := calendar.EventInput{
			Summary:   cmd.Summary,
			Start:     start,
			Duration:  time.Duration(cmd.DurationMinutes) * time.Minute,
			ColorID:   b.directory.ColorForLabel(label),
			Attendees: b.directory.EmailsForLabel(label),
		}
		if _, err := cal.CreateEvent(ctx, calendarID, input); err != nil {
			return err
		}
		b.send(ctx, msg.ChatID, replyCreated)

	case intent.ActionDelete:
		ev, err := cal.FindEvent(ctx, calendarID, cmd.Summary)
		if err != nil {
			if xoerr.IsNotFound(err) {
				b.send(ctx, msg.ChatID, replyNoEventDelete)
				return nil
			}
			return err
		}
		if err := cal.DeleteEvent(ctx, calendarID, ev.ID); err != nil {
			return err
		}
		b.send(ctx, msg.ChatID, replyDeleted)

	case intent.ActionUpdate:
		ev, err := cal.FindEvent(ctx, calendarID, cmd.Summary)
		if err != nil {
			if xoerr.IsNotFound(err) {
				b.send(ctx, msg.ChatID, replyNoEventUpdate)
				return nil
			}
			return err
		}
		start, err := time.ParseInLocation(startLayout, cmd.StartTime, b.loc)
		if err != nil {
			return xoerr.Validation(fmt.Sprintf("start time %q is not valid", cmd.StartTime))
		}
		input := calendar.EventInput{
			Summary:  cmd.Summary,
			Start:    start,
			Duration: time.Duration(cmd.DurationMinutes) * time.Minute,
		}
		if _, err := cal.UpdateEvent(ctx, calendarID, ev.ID, input); err != nil {
			return err
		}
		if err := cal.PatchEventLabel(ctx, calendarID, ev.ID, b.directory.ColorForLabel(label), b.directory.EmailsForLabel(label)); err != nil {
			return err
		}
		b.send(ctx, msg.ChatID, replyUpdated)

	default:
		b.send(ctx, msg.ChatID, replyUnknownAction)
	}
	return nil
}

// offerCalendars opens a numbered calendar menu and waits for a pick.
func (b *Bot) offerCalendars(ctx context.Context, sess *session.Session, msg telegram.Message) error {
	cal, err := b.calendars.ForUser(ctx, msg.UserID)
	if err != nil {
		return err
	}
	infos, err := cal.ListCalendars(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		b.send(ctx, msg.ChatID, replyNoCalendars)
		return nil
	}

	choices := make([]session.Choice, 0, len(infos))
	var menu strings.Builder
	for i, info := range infos {
		choices = append(choices, session.Choice{ID: info.ID, Summary: info.Summary, Primary: info.Primary})
		fmt.Fprintf(&menu, "%d. %s", i+1, info.Summary)
		if info.Primary {
			menu.WriteString(replyCalendarPrimary)
		}
		menu.WriteString("\n")
	}

	sess.SetPendingSelection(&session.PendingSelection{Choices: choices})
	b.send(ctx, msg.ChatID, fmt.Sprintf(replyCalendarMenu, strings.TrimRight(menu.String(), "\n")))
	return nil
}

// calendarID resolves the user's working calendar: the session cache,
// then the persisted preference, then the primary calendar.
func (b *Bot) calendarID(sess *session.Session, userID int64) string {
	if id := sess.CalendarID(); id != "" {
		return id
	}
	if id := b.credentials.LoadCalendarID(userID); id != "" {
		sess.SetCalendarID(id)
		return id
	}
	return calendar.DefaultCalendarID
}

// registerChat remembers the chat for agenda pushes and starts its
// change watcher.
func (b *Bot) registerChat(ctx context.Context, chatID, userID int64) {
	b.mu.Lock()
	b.active[chatID] = userID
	b.mu.Unlock()

	if b.watcher != nil {
		b.watcher.Watch(ctx, chatID, userID)
	}
}

// PushAgenda sends tomorrow's schedule to every chat seen since
// startup. Used by the scheduled morning job.
func (b *Bot) PushAgenda(ctx context.Context) {
	b.mu.Lock()
	chats := make(map[int64]int64, len(b.active))
	for chatID, userID := range b.active {
		chats[chatID] = userID
	}
	b.mu.Unlock()

	for chatID, userID := range chats {
		sess := b.sessions.Get(userID)
		if err := b.sendTomorrowSchedule(ctx, sess, chatID, userID); err != nil {
			b.logger.Error("agenda push failed",
				logging.Operation("agenda"),
				logging.Chat(chatID),
				logging.Err(err))
		}
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.messenger.Send(ctx, chatID, text); err != nil {
		b.logger.Error("failed to send reply", logging.Chat(chatID), logging.Err(err))
	}
}
