package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ytget/audio-bot/internal/bot"
	"github.com/ytget/audio-bot/internal/config"
	"github.com/ytget/audio-bot/internal/download"
	"github.com/ytget/audio-bot/internal/platform"
	"github.com/ytget/audio-bot/internal/transcode"
	"github.com/ytget/audio-bot/internal/workspace"
	"github.com/ytget/audio-bot/internal/yandexmusic"
)

func runBot(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := config.Load(resolveConfigPath(), envFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := newLogger(os.Stdout, settings.Log, verbose)
	slog.SetDefault(logger)
	logger.Info("audio-bot starting", slog.String("version", Version))

	ffmpegPath, found := platform.ResolveFFmpegPath(settings.Download.FFmpegPath)
	if !found {
		logger.Warn("ffmpeg not found, install it or set FFMPEG_PATH", slog.String("path", ffmpegPath))
	}
	ytdlpPath, found := platform.ResolveExecutable(settings.Download.YTDLPPath)
	if !found {
		logger.Warn("yt-dlp not found on PATH, set YTDLP_PATH", slog.String("path", ytdlpPath))
	}

	if err := platform.CreateDirectoryIfNotExists(settings.GetTempDir()); err != nil {
		logger.Error("failed to create temp dir", slog.String("path", settings.GetTempDir()), slog.Any("error", err))
		return err
	}
	workspaces := workspace.NewManager(settings.GetTempDir(), logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transcoder := transcode.NewService(ffmpegPath)
	clients := download.NewProviderClients(
		download.NewYouTubeAdapter(youtubeOptions(settings, ffmpegPath, ytdlpPath)),
		newYandexAdapter(ctx, settings, transcoder, logger),
	)
	downloads := download.NewService(clients, settings.GetMaxParallelDownloads(), logger)

	messenger, err := bot.NewTelegramMessenger(settings.Telegram.Token, settings.Telegram.Debug, logger)
	if err != nil {
		logger.Error("failed to connect to telegram", slog.Any("error", err))
		return err
	}
	logger.Info("authorized on telegram", slog.String("username", messenger.Username()))

	b := bot.New(messenger, downloads, workspaces, bot.Options{
		Language:    settings.GetLanguage(),
		MaxFileSize: settings.GetMaxFileSize(),
		Limiter:     bot.NewRateLimiter(settings.GetRateInterval(), settings.GetRateBurst()),
		Logger:      logger,
	})

	err = b.Run(ctx, messenger.Updates(ctx, bot.DefaultPollTimeout))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("audio-bot stopped")
	return nil
}

func youtubeOptions(settings *config.Settings, ffmpegPath, ytdlpPath string) download.YouTubeOptions {
	return download.YouTubeOptions{
		YTDLPPath:        ytdlpPath,
		FFmpegPath:       ffmpegPath,
		CookiesFile:      settings.Download.CookiesFile,
		ChunkSize:        settings.Download.ChunkSize,
		ExtractorRetries: settings.Download.ExtractRetries,
		FragmentRetries:  settings.Download.FragmentRetries,
		Retries:          settings.Download.Retries,
		SocketTimeout:    settings.GetSocketTimeout(),
		MaxDuration:      settings.GetMaxDuration(),
	}
}

// newYandexAdapter returns nil when no token is configured or the token is
// rejected; the bot then reports the provider as unavailable.
func newYandexAdapter(ctx context.Context, settings *config.Settings, transcoder transcode.Transcoder, logger *slog.Logger) download.Adapter {
	if !settings.YandexEnabled() {
		logger.Info("yandex music disabled, YANDEX_TOKEN is not set")
		return nil
	}

	client := yandexmusic.New(settings.YandexMusic.Token,
		yandexmusic.WithBaseURL(settings.YandexMusic.BaseURL),
		yandexmusic.WithTimeout(settings.GetYandexTimeout()),
	)
	status, err := client.Init(ctx)
	if err != nil {
		logger.Warn("failed to initialize yandex music client", slog.Any("error", err))
		return nil
	}
	logger.Info("yandex music client initialized", slog.String("login", status.Account.Login))
	return download.NewYandexAdapter(client, transcoder)
}

// newLogger builds the process logger from config; verbose forces debug
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
