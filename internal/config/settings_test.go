package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/audio-bot/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBotToken, EnvYandexToken, EnvFFmpegPath, EnvYTDLPPath, EnvTempDir, EnvCookiesFile, EnvLanguage, EnvLogLevel} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingTokenIsConfigurationError(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"), filepath.Join(dir, "missing.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfiguration)
	assert.Contains(t, err.Error(), EnvBotToken)
}

func TestLoad_DefaultsWithTokenFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBotToken, "123:abc")
	dir := t.TempDir()

	s, err := Load(filepath.Join(dir, "missing.toml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", s.Telegram.Token)
	assert.Equal(t, DefaultTempDir, s.GetTempDir())
	assert.Equal(t, DefaultMaxParallel, s.GetMaxParallelDownloads())
	assert.Equal(t, DefaultLanguage, s.GetLanguage())
	assert.Equal(t, DefaultCookiesFile, s.Download.CookiesFile)
	assert.Equal(t, DefaultMaxDuration, s.GetMaxDuration())
	assert.False(t, s.YandexEnabled())
}

func TestLoad_FileThenEnvFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfgPath := writeFile(t, dir, "config.toml", `
[telegram]
token = "from-file"
language = "en"

[download]
temp_dir = "/var/tmp/bot"
max_parallel = 4
max_duration = "30m"

[rate_limit]
interval = "5s"
burst = 2
`)
	envPath := writeFile(t, dir, "test.env", "YANDEX_TOKEN=ya-from-dotenv\nFFMPEG_PATH=/opt/ffmpeg\n")
	t.Setenv(EnvTempDir, "/srv/override")

	s, err := Load(cfgPath, envPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv(EnvYandexToken)
		os.Unsetenv(EnvFFmpegPath)
	})

	assert.Equal(t, "from-file", s.Telegram.Token)
	assert.Equal(t, "en", s.GetLanguage())
	assert.Equal(t, "/srv/override", s.GetTempDir())
	assert.Equal(t, 4, s.GetMaxParallelDownloads())
	assert.Equal(t, 30*time.Minute, s.GetMaxDuration())
	assert.Equal(t, 5*time.Second, s.GetRateInterval())
	assert.Equal(t, 2, s.GetRateBurst())
	assert.Equal(t, "ya-from-dotenv", s.YandexMusic.Token)
	assert.Equal(t, "/opt/ffmpeg", s.Download.FFmpegPath)
	assert.True(t, s.YandexEnabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[telegram\ntoken = 1"},
		{"bad language", "[telegram]\ntoken = \"t\"\nlanguage = \"de\""},
		{"bad duration", "[telegram]\ntoken = \"t\"\n[download]\nmax_duration = \"forever\""},
		{"bad log format", "[telegram]\ntoken = \"t\"\n[log]\nformat = \"xml\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			path := writeFile(t, dir, "config.toml", tt.content)

			_, err := Load(path, filepath.Join(dir, "missing.env"))
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestMaxParallelDownloads(t *testing.T) {
	s := Default()

	assert.Equal(t, DefaultMaxParallel, s.GetMaxParallelDownloads())

	s.Download.MaxParallel = 5
	assert.Equal(t, 5, s.GetMaxParallelDownloads())

	s.Download.MaxParallel = 0
	assert.Equal(t, DefaultMaxParallel, s.GetMaxParallelDownloads(), "unset falls back to the default")

	s.Download.MaxParallel = 42
	assert.Equal(t, MaxParallel, s.GetMaxParallelDownloads(), "should be clamped to maximum 10")
}

func TestGetters_FallBackOnGarbage(t *testing.T) {
	s := Default()
	s.Download.SocketTimeout = "nope"
	s.YandexMusic.Timeout = ""
	s.Download.MaxFileSize = 0
	s.RateLimit.Burst = 0
	s.Telegram.Language = "system"

	assert.Equal(t, DefaultSocketTimeout, s.GetSocketTimeout())
	assert.Equal(t, DefaultYandexTimeout, s.GetYandexTimeout())
	assert.Equal(t, int64(DefaultMaxFileSize), s.GetMaxFileSize())
	assert.Equal(t, DefaultRateBurst, s.GetRateBurst())
	assert.Equal(t, DefaultLanguage, s.GetLanguage())
}

func TestMaxDurationZeroDisables(t *testing.T) {
	s := Default()
	s.Download.MaxDuration = "0s"
	assert.Zero(t, s.GetMaxDuration())
}
