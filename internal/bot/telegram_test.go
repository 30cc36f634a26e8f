package bot

import (
	"bytes"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestIncomingFromUpdate(t *testing.T) {
	update := tgbotapi.Update{
		UpdateID: 10,
		Message: &tgbotapi.Message{
			MessageID: 5,
			From:      &tgbotapi.User{ID: 42, UserName: "listener"},
			Chat:      &tgbotapi.Chat{ID: 100},
			Text:      "https://youtu.be/abc",
		},
	}

	msg, ok := incomingFromUpdate(update)
	assert.True(t, ok)
	assert.Equal(t, Incoming{
		UpdateID:  10,
		ChatID:    100,
		UserID:    42,
		MessageID: 5,
		Username:  "listener",
		Text:      "https://youtu.be/abc",
	}, msg)
}

func TestIncomingFromUpdate_SkipsNonText(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
	}{
		{"no message", tgbotapi.Update{UpdateID: 1}},
		{"no sender", tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}}},
		{"no text", tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := incomingFromUpdate(tt.update)
			assert.False(t, ok)
		})
	}
}

func TestSlogBotLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &slogBotLogger{log: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	logger.Printf("Endpoint: %s", "getUpdates")
	logger.Println("Failed to get updates, retrying in 3 seconds...")

	out := buf.String()
	assert.Contains(t, out, "Endpoint: getUpdates")
	assert.Contains(t, out, "retrying in 3 seconds")
	assert.Contains(t, out, "component=tgbotapi")
}
