package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/ytget/audio-bot/internal/download"
	"github.com/ytget/audio-bot/internal/model"
	"github.com/ytget/audio-bot/internal/platform"
	"github.com/ytget/audio-bot/internal/router"
	"github.com/ytget/audio-bot/internal/workspace"
)

// DefaultMaxFileSize is the Bot API upload limit for bots
const DefaultMaxFileSize = 50 * 1024 * 1024

const bytesPerMB = 1024 * 1024

// Options configures a Bot
type Options struct {
	Language    string
	MaxFileSize int64
	Limiter     *RateLimiter // nil disables rate limiting
	Logger      *slog.Logger
}

// Bot dispatches incoming messages to handlers
type Bot struct {
	messenger   Messenger
	downloads   download.Downloader
	workspaces  *workspace.Manager
	limiter     *RateLimiter
	texts       *Localization
	maxFileSize int64
	logger      *slog.Logger

	wg sync.WaitGroup
}

// New creates a bot. All collaborators are required.
func New(messenger Messenger, downloads download.Downloader, workspaces *workspace.Manager, opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Bot{
		messenger:   messenger,
		downloads:   downloads,
		workspaces:  workspaces,
		limiter:     opts.Limiter,
		texts:       NewLocalization(opts.Language),
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Run handles every message from updates on its own goroutine until ctx is
// cancelled or updates is closed, then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates <-chan Incoming) error {
	defer b.wg.Wait()
	b.logger.Info("handling updates", slog.String("language", b.texts.GetCurrentLanguage()))

	// handlers outlive the cancellation of ctx so in-flight requests complete
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutting down, waiting for active requests")
			return ctx.Err()
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleMessage(handlerCtx, msg)
			}()
		}
	}
}

// HandleMessage routes a single message. Panics are recovered and logged.
func (b *Bot) HandleMessage(ctx context.Context, msg Incoming) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic",
				slog.Int64("user_id", msg.UserID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			b.reply(msg, b.texts.GetText(KeyInternalError))
		}
	}()

	route := router.Classify(msg.Text)
	switch route.Kind {
	case router.Greeting:
		b.handleStart(msg)
	case router.YandexMusic, router.YouTube:
		b.handleDownload(ctx, msg, route)
	default:
		b.logger.Debug("ignoring unclassified message", slog.Int64("user_id", msg.UserID))
	}
}

func (b *Bot) handleStart(msg Incoming) {
	text := b.texts.GetText(KeyGreeting) + b.texts.GetText(KeyGreetingYouTube)
	if b.downloads.Available(model.ProviderYandexMusic) {
		text += b.texts.GetText(KeyGreetingYandex)
	}
	text += b.texts.GetText(KeyGreetingFooter)
	b.send(msg, text)
}

func (b *Bot) handleDownload(ctx context.Context, msg Incoming, route router.Route) {
	provider, _ := route.Provider()

	if provider == model.ProviderYandexMusic && !b.downloads.Available(provider) {
		b.reply(msg, b.texts.GetText(KeyYandexUnavailable))
		return
	}

	if b.limiter != nil && !b.limiter.Allow(msg.UserID) {
		b.logger.Info("rate limited", slog.Int64("user_id", msg.UserID), slog.Int("tracked_users", b.limiter.Tracked()))
		b.reply(msg, b.texts.GetText(KeySlowDown))
		return
	}

	req := model.NewDownloadRequest(msg.UserID, msg.ChatID, msg.MessageID, route.URL, provider)
	logger := b.logger.With(
		slog.String("request_id", req.ID),
		slog.Int64("user_id", req.UserID),
		slog.String("provider", provider.String()),
	)

	err := b.workspaces.Run(ctx, msg.UserID, func(ctx context.Context, dir string) error {
		return b.process(ctx, req, msg, route, dir)
	})
	req.Finish(err)

	switch {
	case err == nil:
		logger.Info("request completed", slog.String("title", req.GetDisplayTitle()), slog.Duration("elapsed", req.Elapsed()))
	case errors.Is(err, workspace.ErrBusy):
		logger.Info("request refused, user busy")
		b.reply(msg, b.texts.GetText(KeyBusy))
	default:
		logger.Warn("request failed", slog.Any("error", err), slog.Duration("elapsed", req.Elapsed()))
		b.reply(msg, b.errorText(err))
	}
}

// process runs inside the user's workspace: it announces the download,
// fetches the file, checks its size and uploads it
func (b *Bot) process(ctx context.Context, req *model.DownloadRequest, msg Incoming, route router.Route, dir string) error {
	startKey := KeyStartingYouTube
	if req.Provider == model.ProviderYandexMusic {
		startKey = KeyStartingYandex
	}
	progressID, err := b.messenger.SendText(msg.ChatID, msg.MessageID, b.texts.GetText(startKey))
	if err != nil {
		b.logger.Warn("progress message failed", slog.Any("error", err))
	}
	defer func() {
		if progressID != 0 {
			b.dropMessage(msg.ChatID, progressID)
		}
	}()

	if req.Provider == model.ProviderYandexMusic && !route.HasIDs {
		return model.NewError(model.ErrMalformedURL, "parse yandex url", fmt.Errorf("%w: %q", router.ErrNoYandexIDs, req.URL))
	}

	result, err := b.downloads.Download(ctx, req, dir)
	if err != nil {
		return err
	}

	if err := b.checkSize(result.Path); err != nil {
		return err
	}

	req.Status = model.RequestStatusSending
	if progressID != 0 {
		if err := b.messenger.EditText(msg.ChatID, progressID, b.texts.GetText(KeyAudioReady)); err != nil {
			b.logger.Debug("progress edit failed", slog.Any("error", err))
		}
	}

	audio := Audio{
		Path:      result.Path,
		FileName:  audioFileName(result),
		Title:     result.Title,
		Performer: result.Performer,
	}
	if err := b.messenger.SendAudio(msg.ChatID, msg.MessageID, audio); err != nil {
		return model.NewError(model.ErrDelivery, "send audio", err)
	}
	return nil
}

// fileTooLargeError keeps the sizes for the reply text
type fileTooLargeError struct {
	size, limit int64
}

func (e *fileTooLargeError) Error() string {
	return fmt.Sprintf("file is %d bytes, limit is %d", e.size, e.limit)
}

func (b *Bot) checkSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return model.NewError(model.ErrDownload, "stat output", err)
	}
	if info.Size() > b.maxFileSize {
		return model.NewError(model.ErrDelivery, "check size", &fileTooLargeError{size: info.Size(), limit: b.maxFileSize})
	}
	return nil
}

// errorText translates an error into the reply shown to the user
func (b *Bot) errorText(err error) string {
	var tooLarge *fileTooLargeError
	if errors.As(err, &tooLarge) {
		return b.texts.Format(KeyFileTooLarge, ceilMB(tooLarge.size), tooLarge.limit/bytesPerMB)
	}

	switch model.KindOf(err) {
	case model.ErrConfiguration:
		return b.texts.GetText(KeyConfigurationError)
	case model.ErrMalformedURL:
		if errors.Is(err, router.ErrNoYandexIDs) {
			return b.texts.GetText(KeyInvalidYandexURL)
		}
		return b.texts.GetText(KeyInvalidURL)
	case model.ErrFilesystem:
		return b.texts.GetText(KeyFilesystemError)
	case model.ErrDelivery:
		return b.texts.GetText(KeyDeliveryFailed)
	case model.ErrDownload:
		var merr *model.Error
		if errors.As(err, &merr) {
			return b.texts.Format(KeyDownloadFailed, merr.Cause())
		}
		return b.texts.Format(KeyDownloadFailed, err.Error())
	default:
		return b.texts.GetText(KeyInternalError)
	}
}

func (b *Bot) send(msg Incoming, text string) {
	if _, err := b.messenger.SendText(msg.ChatID, 0, text); err != nil {
		b.logger.Warn("send failed", slog.Int64("chat_id", msg.ChatID), slog.Any("error", err))
	}
}

func (b *Bot) reply(msg Incoming, text string) {
	if _, err := b.messenger.SendText(msg.ChatID, msg.MessageID, text); err != nil {
		b.logger.Warn("reply failed", slog.Int64("chat_id", msg.ChatID), slog.Any("error", err))
	}
}

func (b *Bot) dropMessage(chatID int64, messageID int) {
	if err := b.messenger.Delete(chatID, messageID); err != nil {
		b.logger.Debug("delete message failed", slog.Any("error", err))
	}
}

func ceilMB(size int64) int64 {
	return (size + bytesPerMB - 1) / bytesPerMB
}

// audioFileName names a YouTube attachment after the media title. Other
// providers already name the file on disk the way it should be sent.
func audioFileName(result *download.Result) string {
	if result.Provider != model.ProviderYouTube || result.Title == "" {
		return filepath.Base(result.Path)
	}
	return platform.SanitizeFileName(result.Title) + ".mp3"
}
