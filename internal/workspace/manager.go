package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ytget/audio-bot/internal/model"
	"github.com/ytget/audio-bot/internal/platform"
)

// ErrBusy is returned by Run when the user already has an active request
var ErrBusy = errors.New("workspace busy")

// Manager hands out per-user directories under root
type Manager struct {
	root   string
	logger *slog.Logger

	mu     sync.Mutex
	active map[int64]struct{}
}

// NewManager creates a manager rooted at root. A nil logger discards output.
func NewManager(root string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		root:   root,
		logger: logger,
		active: make(map[int64]struct{}),
	}
}

// PathFor returns the directory of a user without creating it
func (m *Manager) PathFor(userID int64) string {
	return filepath.Join(m.root, strconv.FormatInt(userID, 10))
}

// Ensure creates <root>/<userID> if needed and returns its path
func (m *Manager) Ensure(userID int64) (string, error) {
	path := m.PathFor(userID)
	if err := platform.CreateDirectoryIfNotExists(path); err != nil {
		return "", model.NewError(model.ErrFilesystem, "ensure workspace", fmt.Errorf("create %s: %w", path, err))
	}
	return path, nil
}

// Clear removes every regular file directly inside path. Per-file failures
// are logged and returned; they never abort the sweep.
func (m *Manager) Clear(path string) []error {
	files, _ := platform.CountFiles(path)
	errs := platform.ClearDirectory(path)
	for _, err := range errs {
		m.logger.Warn("workspace cleanup failed", slog.String("path", path), slog.Any("error", err))
	}
	m.logger.Debug("workspace cleared",
		slog.String("path", path),
		slog.Int("files", files),
		slog.Int("failed", len(errs)),
	)
	return errs
}

// Acquire takes the execution slot of userID. ok is false when the user
// already holds it. release is idempotent.
func (m *Manager) Acquire(userID int64) (release func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.active[userID]; busy {
		return nil, false
	}
	m.active[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.active, userID)
			m.mu.Unlock()
		})
	}, true
}

// Active returns the number of users holding a slot
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Run executes fn inside the user's workspace. The workspace is cleared when
// fn returns, whether it failed or panicked, and the slot is released after
// that. Returns ErrBusy without calling fn if the slot is taken.
func (m *Manager) Run(ctx context.Context, userID int64, fn func(ctx context.Context, dir string) error) error {
	release, ok := m.Acquire(userID)
	if !ok {
		return ErrBusy
	}
	defer release()
	m.logger.Debug("workspace acquired", slog.Int64("user_id", userID), slog.Int("active_users", m.Active()))

	dir, err := m.Ensure(userID)
	if err != nil {
		return err
	}
	defer m.Clear(dir)

	return fn(ctx, dir)
}
