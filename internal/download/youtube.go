package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/damaredayo/goutubedl"
	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/audio-bot/internal/model"
	"github.com/ytget/audio-bot/internal/platform"
)

// yt-dlp settings for audio extraction
const (
	AudioFormatSelector = "bestaudio/best"
	AudioCodecMP3       = "mp3"
	AudioQuality192     = "192K"
	OutputTemplate      = "%(title)s.%(ext)s"
)

var (
	// ErrLiveStream is returned for live broadcasts, which have no end
	ErrLiveStream = errors.New("live streams are not supported")

	// ErrTooLong is returned when media exceeds the configured duration
	ErrTooLong = errors.New("media is too long")
)

// YouTubeOptions configures the yt-dlp invocation
type YouTubeOptions struct {
	YTDLPPath        string
	FFmpegPath       string
	CookiesFile      string
	ChunkSize        string
	ExtractorRetries int
	FragmentRetries  int
	Retries          int
	SocketTimeout    time.Duration
	MaxDuration      time.Duration // zero disables the check
}

// MediaInfo is the metadata gathered before downloading
type MediaInfo struct {
	Title    string
	Uploader string
	Artist   string
	Duration time.Duration
	IsLive   bool
}

// fetchResult is what a finished yt-dlp run reports about its output
type fetchResult struct {
	Filename string
	Title    string
}

// YouTubeAdapter downloads audio from YouTube
type YouTubeAdapter struct {
	opts YouTubeOptions

	probe func(ctx context.Context, url string) (*MediaInfo, error)
	fetch func(ctx context.Context, dir, url string) (*fetchResult, error)
}

var _ Adapter = (*YouTubeAdapter)(nil)

// NewYouTubeAdapter creates an adapter that shells out to yt-dlp
func NewYouTubeAdapter(opts YouTubeOptions) *YouTubeAdapter {
	if opts.YTDLPPath == "" {
		opts.YTDLPPath = "yt-dlp"
	}
	a := &YouTubeAdapter{opts: opts}
	a.probe = a.probeMetadata
	a.fetch = a.runYTDLP
	return a
}

// Provider returns the provider tag
func (a *YouTubeAdapter) Provider() model.Provider {
	return model.ProviderYouTube
}

// Download probes the URL, extracts audio as MP3 into dir and returns the
// path of the produced file
func (a *YouTubeAdapter) Download(ctx context.Context, req *model.DownloadRequest, dir string) (*Result, error) {
	info, err := a.probe(ctx, req.URL)
	if err != nil {
		return nil, model.NewError(model.ErrDownload, "probe youtube", err)
	}
	if err := a.checkMedia(info); err != nil {
		return nil, model.NewError(model.ErrDownload, "probe youtube", err)
	}

	res, err := a.fetch(ctx, dir, req.URL)
	if err != nil {
		return nil, model.NewError(model.ErrDownload, "download youtube", err)
	}

	path, err := resolveOutputPath(dir, res.Filename)
	if err != nil {
		return nil, model.NewError(model.ErrDownload, "download youtube", err)
	}

	title := res.Title
	if title == "" {
		title = info.Title
	}
	performer := info.Artist
	if performer == "" {
		performer = info.Uploader
	}

	return &Result{
		Path:      path,
		Title:     title,
		Performer: performer,
		Provider:  model.ProviderYouTube,
	}, nil
}

// checkMedia refuses live streams and media longer than MaxDuration
func (a *YouTubeAdapter) checkMedia(info *MediaInfo) error {
	if info == nil {
		return nil
	}
	if info.IsLive {
		return ErrLiveStream
	}
	if a.opts.MaxDuration > 0 && info.Duration > a.opts.MaxDuration {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLong, info.Duration.Round(time.Second), a.opts.MaxDuration)
	}
	return nil
}

// probeMetadata reads the media metadata without downloading anything
func (a *YouTubeAdapter) probeMetadata(ctx context.Context, url string) (*MediaInfo, error) {
	goutubedl.Path = a.opts.YTDLPPath
	res, err := goutubedl.New(ctx, url, goutubedl.Options{Type: goutubedl.TypeSingle})
	if err != nil {
		return nil, err
	}
	return parseMediaInfo(res.RawJSON)
}

// parseMediaInfo decodes the yt-dlp JSON dump
func parseMediaInfo(raw []byte) (*MediaInfo, error) {
	info := goutubedl.Info{}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	var extra struct {
		IsLive bool   `json:"is_live"`
		Artist string `json:"artist"`
	}
	if err := json.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	return &MediaInfo{
		Title:    info.Title,
		Uploader: info.Uploader,
		Artist:   extra.Artist,
		Duration: time.Duration(info.Duration * float64(time.Second)),
		IsLive:   extra.IsLive,
	}, nil
}

// runYTDLP performs the download and reports the extracted file name
func (a *YouTubeAdapter) runYTDLP(ctx context.Context, dir, url string) (*fetchResult, error) {
	dl := a.newCommand(dir)

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, err
	}

	out := &fetchResult{}
	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("read extracted info: %w", err)
	}
	if len(info) > 0 {
		if info[0].Filename != nil {
			out.Filename = *info[0].Filename
		}
		if info[0].Title != nil {
			out.Title = *info[0].Title
		}
	}
	return out, nil
}

// newCommand configures yt-dlp for a single-file audio extraction into dir
func (a *YouTubeAdapter) newCommand(dir string) *ytdlp.Command {
	dl := ytdlp.New().
		SetExecutable(a.opts.YTDLPPath).
		Format(AudioFormatSelector).
		ExtractAudio().
		AudioFormat(AudioCodecMP3).
		AudioQuality(AudioQuality192).
		Output(outputTemplate(dir)).
		ExtractorRetries(formatCount(a.opts.ExtractorRetries)).
		FragmentRetries(formatCount(a.opts.FragmentRetries)).
		Retries(formatCount(a.opts.Retries)).
		NoPlaylist().
		NoWarnings().
		PrintJSON().
		ForceOverwrites()

	if a.opts.SocketTimeout > 0 {
		dl.SocketTimeout(a.opts.SocketTimeout.Seconds())
	}
	if a.opts.ChunkSize != "" {
		dl.HTTPChunkSize(a.opts.ChunkSize)
	}
	if a.opts.FFmpegPath != "" {
		dl.FFmpegLocation(a.opts.FFmpegPath)
	}
	if cookies := a.cookiesFile(); cookies != "" {
		dl.Cookies(cookies)
	}
	return dl
}

// cookiesFile returns the cookie file path only when it exists on disk
func (a *YouTubeAdapter) cookiesFile() string {
	if a.opts.CookiesFile == "" || !platform.FileExists(a.opts.CookiesFile) {
		return ""
	}
	return a.opts.CookiesFile
}

func outputTemplate(dir string) string {
	return filepath.Join(dir, OutputTemplate)
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}

// resolveOutputPath maps the pre-conversion file name reported by yt-dlp to
// the MP3 left on disk. An empty name falls back to the only MP3 in dir.
func resolveOutputPath(dir, filename string) (string, error) {
	if filename == "" {
		filename = filepath.Join(dir, "audio.mp3")
	}
	if !filepath.IsAbs(filename) && filepath.Dir(filename) == "." {
		filename = filepath.Join(dir, filename)
	}

	expected := platform.ReplaceExtension(filename, ".mp3")
	path, err := platform.FindFileWithFallback(expected)
	if err != nil {
		return "", err
	}
	if !platform.FileExists(path) {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return path, nil
}
