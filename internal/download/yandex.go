package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/audio-bot/internal/model"
	"github.com/ytget/audio-bot/internal/platform"
	"github.com/ytget/audio-bot/internal/router"
	"github.com/ytget/audio-bot/internal/transcode"
	"github.com/ytget/audio-bot/internal/yandexmusic"
)

// YandexClient is the part of the Yandex Music client the adapter needs
type YandexClient interface {
	Track(ctx context.Context, trackID, albumID string) (*yandexmusic.Track, error)
	Download(ctx context.Context, trackID, dst string) (string, error)
}

// YandexAdapter downloads tracks from Yandex Music
type YandexAdapter struct {
	client     YandexClient
	transcoder transcode.Transcoder
}

var _ Adapter = (*YandexAdapter)(nil)

// NewYandexAdapter creates an adapter. transcoder converts AAC variants and
// may be nil when only MP3 is expected.
func NewYandexAdapter(client YandexClient, transcoder transcode.Transcoder) *YandexAdapter {
	return &YandexAdapter{client: client, transcoder: transcoder}
}

// Provider returns the provider tag
func (a *YandexAdapter) Provider() model.Provider {
	return model.ProviderYandexMusic
}

// Download fetches the track named by the request URL into dir as
// "<first artist> - <title>.mp3"
func (a *YandexAdapter) Download(ctx context.Context, req *model.DownloadRequest, dir string) (*Result, error) {
	trackID, albumID, ok := router.ExtractYandexIDs(req.URL)
	if !ok {
		return nil, model.NewError(model.ErrMalformedURL, "parse yandex url", fmt.Errorf("%w: %q", router.ErrNoYandexIDs, req.URL))
	}
	if a.client == nil {
		return nil, model.NewError(model.ErrConfiguration, "download yandex", fmt.Errorf("yandex music client is not initialized"))
	}

	track, err := a.client.Track(ctx, trackID, albumID)
	if err != nil {
		return nil, model.NewError(model.ErrDownload, "download yandex", err)
	}
	if !track.IsAvailable() {
		return nil, model.NewError(model.ErrDownload, "download yandex", fmt.Errorf("track %s is not available", trackID))
	}

	name := TrackFileName(track.FirstArtist(), track.Title)
	target := filepath.Join(dir, name)

	codec, err := a.client.Download(ctx, trackID, target)
	if err != nil {
		return nil, model.NewError(model.ErrDownload, "download yandex", err)
	}

	path := target
	if codec != yandexmusic.CodecMP3 {
		path, err = a.convert(ctx, target, codec)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Path:      path,
		Title:     track.Title,
		Performer: track.FirstArtist(),
		Provider:  model.ProviderYandexMusic,
	}, nil
}

// convert renames a non-MP3 download to its real extension and transcodes it
func (a *YandexAdapter) convert(ctx context.Context, target, codec string) (string, error) {
	if a.transcoder == nil {
		return "", model.NewError(model.ErrDownload, "transcode", fmt.Errorf("no transcoder for %s", codec))
	}

	source := platform.ReplaceExtension(target, "."+codecExtension(codec))
	if err := os.Rename(target, source); err != nil {
		return "", model.NewError(model.ErrDownload, "transcode", fmt.Errorf("rename %s: %w", target, err))
	}
	return a.transcoder.ToMP3(ctx, source)
}

// TrackFileName builds "<artist> - <title>.mp3" with path-unsafe characters
// replaced. A missing artist leaves just the title.
func TrackFileName(artist, title string) string {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)

	base := title
	if artist != "" {
		base = artist + " - " + title
	}
	return platform.SanitizeFileName(base) + ".mp3"
}

func codecExtension(codec string) string {
	if codec == yandexmusic.CodecAAC {
		return "m4a"
	}
	return codec
}
