package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/audio-bot/internal/config"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	c := versionCmd()
	c.SetOut(&out)
	c.Run(c, nil)

	assert.Equal(t, "audio-bot "+Version+"\n", out.String())
}

func TestResolveConfigPath(t *testing.T) {
	t.Cleanup(func() { cfgFile = "" })

	t.Setenv(EnvConfigPath, "")
	cfgFile = ""
	assert.Equal(t, config.DefaultConfigPath, resolveConfigPath())

	t.Setenv(EnvConfigPath, "/etc/audio-bot.toml")
	assert.Equal(t, "/etc/audio-bot.toml", resolveConfigPath())

	cfgFile = "flag.toml"
	assert.Equal(t, "flag.toml", resolveConfigPath())
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{"default info", config.LogConfig{}, false, false, true},
		{"debug", config.LogConfig{Level: "debug"}, false, true, true},
		{"warn", config.LogConfig{Level: "warn"}, false, false, false},
		{"verbose wins", config.LogConfig{Level: "error"}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(&bytes.Buffer{}, tt.cfg, tt.verbose)
			ctx := context.Background()
			assert.Equal(t, tt.wantDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Format: "json"}, false).Info("hello", slog.String("user_id", "1"))

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"user_id":"1"`)
}

func TestYouTubeOptions(t *testing.T) {
	s := config.Default()
	s.Download.CookiesFile = "cookies.txt"
	s.Download.MaxDuration = "90m"

	opts := youtubeOptions(s, "/usr/bin/ffmpeg", "/usr/local/bin/yt-dlp")

	assert.Equal(t, "/usr/bin/ffmpeg", opts.FFmpegPath)
	assert.Equal(t, "/usr/local/bin/yt-dlp", opts.YTDLPPath)
	assert.Equal(t, "cookies.txt", opts.CookiesFile)
	assert.Equal(t, "10M", opts.ChunkSize)
	assert.Equal(t, 3, opts.ExtractorRetries)
	assert.Equal(t, 3, opts.FragmentRetries)
	assert.Equal(t, 5, opts.Retries)
	assert.Equal(t, 300*time.Second, opts.SocketTimeout)
	assert.Equal(t, 90*time.Minute, opts.MaxDuration)
}

func TestNewYandexAdapter_DisabledWithoutToken(t *testing.T) {
	s := config.Default()
	require.False(t, s.YandexEnabled())

	adapter := newYandexAdapter(context.Background(), s, nil, slog.New(slog.DiscardHandler))
	assert.Nil(t, adapter)
}
