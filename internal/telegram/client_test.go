package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUpdate(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
		want   Message
		ok     bool
	}{
		{
			name: "text message",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Text: "מחר תדריך בשעה 10:00",
				Chat: &tgbotapi.Chat{ID: 42},
				From: &tgbotapi.User{ID: 7},
			}},
			want: Message{ChatID: 42, UserID: 7, Text: "מחר תדריך בשעה 10:00"},
			ok:   true,
		},
		{
			name:   "no message",
			update: tgbotapi.Update{},
		},
		{
			name: "empty text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: 42},
				From: &tgbotapi.User{ID: 7},
			}},
		},
		{
			name: "no sender",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Text: "hi",
				Chat: &tgbotapi.Chat{ID: 42},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fromUpdate(tt.update)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
