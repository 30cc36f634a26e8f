package download

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ytget/audio-bot/internal/model"
	"github.com/ytget/audio-bot/internal/platform"
)

// Service handles download operations
type Service struct {
	clients     *ProviderClients
	sem         *semaphore.Weighted
	maxParallel int
	activeCount atomic.Int32
	logger      *slog.Logger
}

var _ Downloader = (*Service)(nil)

// NewService creates a new download service running at most maxParallel
// adapters at a time.
func NewService(clients *ProviderClients, maxParallel int, logger *slog.Logger) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		clients:     clients,
		sem:         semaphore.NewWeighted(int64(maxParallel)),
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// MaxParallel returns the pool size
func (s *Service) MaxParallel() int {
	return s.maxParallel
}

// ActiveCount returns the number of adapters currently running
func (s *Service) ActiveCount() int {
	return int(s.activeCount.Load())
}

// Available reports whether a provider is configured
func (s *Service) Available(provider model.Provider) bool {
	_, err := s.clients.For(provider)
	return err == nil
}

// Download waits for a free worker slot, runs the provider adapter and
// verifies the produced file exists. req is updated with status, title and
// output path.
func (s *Service) Download(ctx context.Context, req *model.DownloadRequest, dir string) (*Result, error) {
	adapter, err := s.clients.For(req.Provider)
	if err != nil {
		return nil, err
	}
	if req.Status.IsActive() || req.Status.IsFinished() {
		return nil, model.NewError(model.ErrDownload, "download", fmt.Errorf("request %s is already %s", req.ID, req.Status))
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, model.NewError(model.ErrDownload, "wait for worker", err)
	}
	defer s.sem.Release(1)

	s.activeCount.Add(1)
	defer s.activeCount.Add(-1)

	req.Status = model.RequestStatusDownloading
	logger := s.logger.With(
		slog.String("request_id", req.ID),
		slog.Int64("user_id", req.UserID),
		slog.String("provider", req.Provider.String()),
	)
	logger.Info("download started",
		slog.String("url", req.URL),
		slog.Int("active", s.ActiveCount()),
		slog.Int("workers", s.MaxParallel()),
	)
	started := time.Now()

	result, err := adapter.Download(ctx, req, dir)
	if err != nil {
		logger.Warn("download failed", slog.Any("error", err), slog.Duration("elapsed", time.Since(started)))
		if model.KindOf(err) == nil {
			err = model.NewError(model.ErrDownload, "download", err)
		}
		return nil, err
	}

	if result == nil || !platform.FileExists(result.Path) {
		path := ""
		if result != nil {
			path = result.Path
		}
		return nil, model.NewError(model.ErrDownload, "download", fmt.Errorf("output file not found: %s", path))
	}

	req.Title = result.Title
	req.OutputPath = result.Path
	logger.Info("download finished",
		slog.String("path", result.Path),
		slog.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}
