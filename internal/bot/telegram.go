package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Long polling defaults
const (
	DefaultPollTimeout = 60
	updateTypeMessage  = "message"
)

// TelegramMessenger implements Messenger on top of the Bot API
type TelegramMessenger struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

var _ Messenger = (*TelegramMessenger)(nil)

// NewTelegramMessenger connects to the Bot API with token. The library's own
// logging is routed into logger.
func NewTelegramMessenger(token string, debug bool, logger *slog.Logger) (*TelegramMessenger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := tgbotapi.SetLogger(&slogBotLogger{log: logger}); err != nil {
		logger.Debug("bot api logger not set", slog.Any("error", err))
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	api.Debug = debug

	return &TelegramMessenger{api: api, logger: logger}, nil
}

// Username returns the bot's own username
func (m *TelegramMessenger) Username() string {
	return m.api.Self.UserName
}

// Updates starts long polling and delivers text messages until ctx is done.
// The returned channel is closed on shutdown.
func (m *TelegramMessenger) Updates(ctx context.Context, timeout int) <-chan Incoming {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	cfg.AllowedUpdates = []string{updateTypeMessage}

	src := m.api.GetUpdatesChan(cfg)
	out := make(chan Incoming)

	go func() {
		defer close(out)
		defer m.api.StopReceivingUpdates()

		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-src:
				if !ok {
					return
				}
				msg, ok := incomingFromUpdate(update)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (m *TelegramMessenger) SendText(chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = true

	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

func (m *TelegramMessenger) EditText(chatID int64, messageID int, text string) error {
	if _, err := m.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (m *TelegramMessenger) Delete(chatID int64, messageID int) error {
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendAudio uploads the file at audio.Path under audio.FileName
func (m *TelegramMessenger) SendAudio(chatID int64, replyTo int, audio Audio) error {
	f, err := os.Open(audio.Path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	cfg := tgbotapi.NewAudio(chatID, tgbotapi.FileReader{Name: audio.FileName, Reader: f})
	cfg.ReplyToMessageID = replyTo
	cfg.AllowSendingWithoutReply = true
	cfg.Title = audio.Title
	cfg.Performer = audio.Performer

	if _, err := m.api.Send(cfg); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// incomingFromUpdate keeps plain text messages from users
func incomingFromUpdate(update tgbotapi.Update) (Incoming, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return Incoming{}, false
	}
	return Incoming{
		UpdateID:  update.UpdateID,
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		MessageID: msg.MessageID,
		Username:  msg.From.UserName,
		Text:      msg.Text,
	}, true
}

// slogBotLogger adapts slog to the library's BotLogger
type slogBotLogger struct {
	log *slog.Logger
}

func (l *slogBotLogger) Println(v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintln(v...)), slog.String("component", "tgbotapi"))
}

func (l *slogBotLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "tgbotapi"))
}
