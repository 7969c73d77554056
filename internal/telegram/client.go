package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/giladondon/xo-assistance/internal/logging"
	"github.com/giladondon/xo-assistance/internal/xoerr"
)

// Message is one incoming text message.
type Message struct {
	ChatID int64
	UserID int64
	Text   string
}

// Handler processes one incoming message.
type Handler func(ctx context.Context, msg Message)

// Client wraps the Bot API connection.
type Client struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// New authenticates against the Bot API.
func New(token string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, xoerr.Auth("telegram", fmt.Errorf("failed to authenticate bot: %w", err))
	}
	logger.Info("telegram bot authorized", slog.String("username", bot.Self.UserName))
	return &Client{bot: bot, logger: logger}, nil
}

// Send delivers text to a chat.
func (c *Client) Send(_ context.Context, chatID int64, text string) error {
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return xoerr.Transient("send", fmt.Errorf("failed to send message: %w", err))
	}
	return nil
}

// Listen long-polls for updates until ctx is cancelled, dispatching each
// text message to handler in its own goroutine.
func (c *Client) Listen(ctx context.Context, handler Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg, ok := fromUpdate(update)
			if !ok {
				continue
			}
			c.logger.Debug("message received",
				logging.Chat(msg.ChatID),
				logging.UserHash(msg.UserID))
			go handler(ctx, msg)
		}
	}
}

// fromUpdate extracts a text message from an update. Edits, media,
// joins and other non-text updates are dropped.
func fromUpdate(update tgbotapi.Update) (Message, bool) {
	m := update.Message
	if m == nil || m.Text == "" || m.From == nil {
		return Message{}, false
	}
	return Message{
		ChatID: m.Chat.ID,
		UserID: m.From.ID,
		Text:   m.Text,
	}, true
}
