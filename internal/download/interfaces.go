package download

import (
	"context"

	"github.com/ytget/audio-bot/internal/model"
)

// Result describes the single file produced for a request
type Result struct {
	Path      string
	Title     string
	Performer string
	Provider  model.Provider
}

// Adapter downloads one request's media into dir as an MP3 file.
type Adapter interface {
	Provider() model.Provider
	Download(ctx context.Context, req *model.DownloadRequest, dir string) (*Result, error)
}

// Downloader defines the interface for the download service.
type Downloader interface {
	Download(ctx context.Context, req *model.DownloadRequest, dir string) (*Result, error)

	// Available reports whether a provider is configured
	Available(provider model.Provider) bool
}
