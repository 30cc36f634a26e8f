package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/audio-bot/internal/model"
)

// fakeAdapter writes a file named after the request and records concurrency
type fakeAdapter struct {
	provider model.Provider
	err      error
	noFile   bool
	delay    time.Duration

	calls   atomic.Int32
	running atomic.Int32
	peak    atomic.Int32
}

func (f *fakeAdapter) Provider() model.Provider { return f.provider }

func (f *fakeAdapter) Download(ctx context.Context, req *model.DownloadRequest, dir string) (*Result, error) {
	f.calls.Add(1)
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}

	path := filepath.Join(dir, req.ID+".mp3")
	if !f.noFile {
		if err := os.WriteFile(path, []byte("ID3"), 0o600); err != nil {
			return nil, err
		}
	}
	return &Result{Path: path, Title: "Title " + req.ID, Provider: f.provider}, nil
}

func newRequest(provider model.Provider) *model.DownloadRequest {
	return model.NewDownloadRequest(1, 1, 1, "https://example.invalid", provider)
}

func TestNewService(t *testing.T) {
	service := NewService(NewProviderClients(&fakeAdapter{}, nil), 2, nil)

	if service.MaxParallel() != 2 {
		t.Errorf("Expected maxParallel to be 2, got %d", service.MaxParallel())
	}

	if service.ActiveCount() != 0 {
		t.Errorf("Expected no active downloads, got %d", service.ActiveCount())
	}

	if NewService(NewProviderClients(nil, nil), 0, nil).MaxParallel() != 1 {
		t.Error("Expected maxParallel to be clamped to 1")
	}
}

func TestService_Available(t *testing.T) {
	youtube := &fakeAdapter{provider: model.ProviderYouTube}

	without := NewService(NewProviderClients(youtube, nil), 1, nil)
	if !without.Available(model.ProviderYouTube) {
		t.Error("Expected youtube to be available")
	}
	if without.Available(model.ProviderYandexMusic) {
		t.Error("Expected yandex music to be unavailable without a client")
	}

	with := NewService(NewProviderClients(youtube, &fakeAdapter{provider: model.ProviderYandexMusic}), 1, nil)
	if !with.Available(model.ProviderYandexMusic) {
		t.Error("Expected yandex music to be available")
	}
}

func TestService_Download(t *testing.T) {
	adapter := &fakeAdapter{provider: model.ProviderYouTube}
	service := NewService(NewProviderClients(adapter, nil), 1, nil)
	req := newRequest(model.ProviderYouTube)

	result, err := service.Download(context.Background(), req, t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if req.OutputPath != result.Path {
		t.Errorf("Expected request output path %q, got %q", result.Path, req.OutputPath)
	}
	if req.Title != result.Title {
		t.Errorf("Expected request title %q, got %q", result.Title, req.Title)
	}
	if req.Status != model.RequestStatusDownloading {
		t.Errorf("Expected status Downloading, got %s", req.Status)
	}
}

func TestService_Download_UnconfiguredYandex(t *testing.T) {
	adapter := &fakeAdapter{provider: model.ProviderYouTube}
	service := NewService(NewProviderClients(adapter, nil), 1, nil)

	_, err := service.Download(context.Background(), newRequest(model.ProviderYandexMusic), t.TempDir())
	if !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("Expected configuration error, got %v", err)
	}
	if adapter.calls.Load() != 0 {
		t.Error("Expected no adapter call")
	}
}

func TestService_Download_Errors(t *testing.T) {
	tests := []struct {
		name    string
		adapter *fakeAdapter
		want    error
	}{
		{"plain error becomes download error", &fakeAdapter{err: errors.New("HTTP Error 403")}, model.ErrDownload},
		{"kind is preserved", &fakeAdapter{err: model.NewError(model.ErrMalformedURL, "op", nil)}, model.ErrMalformedURL},
		{"missing file", &fakeAdapter{noFile: true}, model.ErrDownload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.adapter.provider = model.ProviderYouTube
			service := NewService(NewProviderClients(tt.adapter, nil), 1, nil)

			_, err := service.Download(context.Background(), newRequest(model.ProviderYouTube), t.TempDir())
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_Download_BoundedParallelism(t *testing.T) {
	adapter := &fakeAdapter{provider: model.ProviderYouTube, delay: 20 * time.Millisecond}
	service := NewService(NewProviderClients(adapter, nil), 2, nil)
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Download(context.Background(), newRequest(model.ProviderYouTube), dir); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if adapter.calls.Load() != 6 {
		t.Errorf("Expected 6 calls, got %d", adapter.calls.Load())
	}
	if adapter.peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent downloads, got %d", adapter.peak.Load())
	}
}

func TestService_Download_CancelledWhileWaiting(t *testing.T) {
	adapter := &fakeAdapter{provider: model.ProviderYouTube, delay: 200 * time.Millisecond}
	service := NewService(NewProviderClients(adapter, nil), 1, nil)
	dir := t.TempDir()

	done := make(chan struct{})
	go func() {
		defer close(done)
		service.Download(context.Background(), newRequest(model.ProviderYouTube), dir)
	}()
	defer func() { <-done }()

	for adapter.running.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := service.Download(ctx, newRequest(model.ProviderYouTube), dir)
	if !errors.Is(err, model.ErrDownload) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected download error wrapping deadline, got %v", err)
	}
}

func TestProviderClients_For(t *testing.T) {
	clients := NewProviderClients(&fakeAdapter{provider: model.ProviderYouTube}, nil)

	if _, ok := clients.Yandex(); ok {
		t.Error("Expected yandex slot to be empty")
	}

	if _, err := clients.For("soundcloud"); !errors.Is(err, model.ErrMalformedURL) {
		t.Errorf("Expected malformed url error for unknown provider, got %v", err)
	}

	adapter, err := clients.For(model.ProviderYouTube)
	if err != nil || adapter != clients.YouTube() {
		t.Errorf("Expected youtube adapter, got %v, %v", adapter, err)
	}
}

func TestService_Download_RefusesStartedRequest(t *testing.T) {
	adapter := &fakeAdapter{provider: model.ProviderYouTube}
	service := NewService(NewProviderClients(adapter, nil), 1, nil)

	for _, status := range []model.RequestStatus{model.RequestStatusDownloading, model.RequestStatusSending, model.RequestStatusCompleted, model.RequestStatusError} {
		req := newRequest(model.ProviderYouTube)
		req.Status = status

		_, err := service.Download(context.Background(), req, t.TempDir())
		if !errors.Is(err, model.ErrDownload) {
			t.Errorf("Expected download error for %s request, got %v", status, err)
		}
	}
	if adapter.calls.Load() != 0 {
		t.Errorf("Expected no adapter calls, got %d", adapter.calls.Load())
	}
}
