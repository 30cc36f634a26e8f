package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ytget/audio-bot/internal/model"
)

// Default file locations
const (
	DefaultConfigPath  = "config.toml"
	DefaultEnvFile     = ".env"
	DefaultTempDir     = "temp"
	DefaultCookiesFile = "cookies.txt"
	DefaultYTDLPPath   = "yt-dlp"
)

// Default values
const (
	DefaultMaxParallel     = 2
	DefaultLanguage        = "ru"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultChunkSize       = "10M"
	DefaultMaxDuration     = 3 * time.Hour
	DefaultMaxFileSize     = 50 * 1024 * 1024
	DefaultRateInterval    = 3 * time.Second
	DefaultRateBurst       = 3
	DefaultYandexBaseURL   = "https://api.music.yandex.net"
	DefaultYandexTimeout   = 30 * time.Second
	DefaultExtractRetries  = 3
	DefaultFragmentRetries = 3
	DefaultRetries         = 5
	DefaultSocketTimeout   = 300 * time.Second
)

// Bounds for parallel downloads
const (
	MinParallel = 1
	MaxParallel = 10
)

// Environment variable names
const (
	EnvBotToken    = "BOT_TOKEN"
	EnvYandexToken = "YANDEX_TOKEN"
	EnvFFmpegPath  = "FFMPEG_PATH"
	EnvYTDLPPath   = "YTDLP_PATH"
	EnvTempDir     = "TEMP_DIR"
	EnvCookiesFile = "COOKIES_FILE"
	EnvLanguage    = "BOT_LANGUAGE"
	EnvLogLevel    = "LOG_LEVEL"
)

// Settings holds the process-wide configuration. It is built once at startup
// and read-only afterwards.
type Settings struct {
	Log         LogConfig         `toml:"log"`
	Telegram    TelegramConfig    `toml:"telegram"`
	YandexMusic YandexMusicConfig `toml:"yandex_music"`
	Download    DownloadConfig    `toml:"download"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
}

type TelegramConfig struct {
	Token    string `toml:"token" validate:"required"`
	Language string `toml:"language" validate:"omitempty,oneof=system ru en"`
	Debug    bool   `toml:"debug"`
}

// YandexMusicConfig is optional: an empty token disables the provider.
type YandexMusicConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
	Timeout string `toml:"timeout"`
}

type DownloadConfig struct {
	TempDir         string `toml:"temp_dir"`
	MaxParallel     int    `toml:"max_parallel"`
	CookiesFile     string `toml:"cookies_file"`
	FFmpegPath      string `toml:"ffmpeg_path"`
	YTDLPPath       string `toml:"ytdlp_path"`
	ChunkSize       string `toml:"chunk_size"`
	MaxDuration     string `toml:"max_duration"`
	MaxFileSize     int64  `toml:"max_file_size" validate:"gte=0"`
	ExtractRetries  int    `toml:"extractor_retries" validate:"gte=0"`
	FragmentRetries int    `toml:"fragment_retries" validate:"gte=0"`
	Retries         int    `toml:"retries" validate:"gte=0"`
	SocketTimeout   string `toml:"socket_timeout"`
}

type RateLimitConfig struct {
	Interval string `toml:"interval"`
	Burst    int    `toml:"burst" validate:"gte=0"`
}

// Default returns Settings with every optional value filled in
func Default() *Settings {
	return &Settings{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telegram: TelegramConfig{
			Language: DefaultLanguage,
		},
		YandexMusic: YandexMusicConfig{
			BaseURL: DefaultYandexBaseURL,
			Timeout: DefaultYandexTimeout.String(),
		},
		Download: DownloadConfig{
			TempDir:         DefaultTempDir,
			MaxParallel:     DefaultMaxParallel,
			CookiesFile:     DefaultCookiesFile,
			YTDLPPath:       DefaultYTDLPPath,
			ChunkSize:       DefaultChunkSize,
			MaxDuration:     DefaultMaxDuration.String(),
			MaxFileSize:     DefaultMaxFileSize,
			ExtractRetries:  DefaultExtractRetries,
			FragmentRetries: DefaultFragmentRetries,
			Retries:         DefaultRetries,
			SocketTimeout:   DefaultSocketTimeout.String(),
		},
		RateLimit: RateLimitConfig{
			Interval: DefaultRateInterval.String(),
			Burst:    DefaultRateBurst,
		},
	}
}

// Load reads the TOML file at path (a missing file means defaults), loads the
// given dotenv files (DefaultEnvFile when none), overlays environment
// variables and validates the result. A missing bot token is a
// configuration error.
func Load(path string, envFiles ...string) (*Settings, error) {
	s := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := toml.DecodeFile(path, s); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, model.NewError(model.ErrConfiguration, "parse config", err)
	}

	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewError(model.ErrConfiguration, "load env file", err)
		}
	}

	s.applyEnvOverrides()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyEnvOverrides overlays env vars onto the settings.
// Env vars take precedence over file values.
func (s *Settings) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr(EnvBotToken, &s.Telegram.Token)
	envStr(EnvYandexToken, &s.YandexMusic.Token)
	envStr(EnvFFmpegPath, &s.Download.FFmpegPath)
	envStr(EnvYTDLPPath, &s.Download.YTDLPPath)
	envStr(EnvTempDir, &s.Download.TempDir)
	envStr(EnvCookiesFile, &s.Download.CookiesFile)
	envStr(EnvLanguage, &s.Telegram.Language)
	envStr(EnvLogLevel, &s.Log.Level)
}

// Validate checks struct constraints and duration fields
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Token" && fe.Tag() == "required" {
					return model.NewError(model.ErrConfiguration, "validate config",
						fmt.Errorf("%s is not set", EnvBotToken))
				}
			}
		}
		return model.NewError(model.ErrConfiguration, "validate config", err)
	}

	durations := map[string]string{
		"yandex_music.timeout":    s.YandexMusic.Timeout,
		"download.max_duration":   s.Download.MaxDuration,
		"download.socket_timeout": s.Download.SocketTimeout,
		"rate_limit.interval":     s.RateLimit.Interval,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return model.NewError(model.ErrConfiguration, "validate config", fmt.Errorf("%s: %w", key, err))
		}
	}
	return nil
}

// GetTempDir returns the shared workspace root
func (s *Settings) GetTempDir() string {
	if s.Download.TempDir == "" {
		return DefaultTempDir
	}
	return s.Download.TempDir
}

// GetMaxParallelDownloads returns the worker pool size clamped to 1..10
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.Download.MaxParallel
	if value <= 0 {
		return DefaultMaxParallel
	}
	if value < MinParallel {
		value = MinParallel
	}
	if value > MaxParallel {
		value = MaxParallel
	}
	return value
}

// GetLanguage returns the reply language, resolving "system" to the default
func (s *Settings) GetLanguage() string {
	lang := s.Telegram.Language
	if lang == "" || lang == "system" {
		return DefaultLanguage
	}
	return lang
}

// YandexEnabled reports whether a Yandex Music token was configured
func (s *Settings) YandexEnabled() bool {
	return s.YandexMusic.Token != ""
}

// GetYandexTimeout returns the Yandex Music HTTP timeout
func (s *Settings) GetYandexTimeout() time.Duration {
	return parseDurationOr(s.YandexMusic.Timeout, DefaultYandexTimeout)
}

// GetMaxDuration returns the longest media accepted; zero disables the check
func (s *Settings) GetMaxDuration() time.Duration {
	return parseDurationOr(s.Download.MaxDuration, DefaultMaxDuration)
}

// GetSocketTimeout returns the socket timeout passed to yt-dlp
func (s *Settings) GetSocketTimeout() time.Duration {
	return parseDurationOr(s.Download.SocketTimeout, DefaultSocketTimeout)
}

// GetMaxFileSize returns the largest file uploaded to the chat
func (s *Settings) GetMaxFileSize() int64 {
	if s.Download.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return s.Download.MaxFileSize
}

// GetRateInterval returns the minimum spacing between requests of one user
func (s *Settings) GetRateInterval() time.Duration {
	return parseDurationOr(s.RateLimit.Interval, DefaultRateInterval)
}

// GetRateBurst returns how many requests a user may send back to back
func (s *Settings) GetRateBurst() int {
	if s.RateLimit.Burst <= 0 {
		return DefaultRateBurst
	}
	return s.RateLimit.Burst
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
