package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a supported media source
type Provider string

const (
	// ProviderYandexMusic is the streaming-music provider (music.yandex.ru)
	ProviderYandexMusic Provider = "yandex_music"

	// ProviderYouTube is the video-platform provider (youtube.com, youtu.be)
	ProviderYouTube Provider = "youtube"
)

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// RequestIDPrefix is prepended to generated request IDs
const RequestIDPrefix = "req-"

// DownloadRequest represents a single request-response cycle for one user.
// It is created on message receipt and discarded once the reply is sent.
type DownloadRequest struct {
	ID         string
	UserID     int64
	ChatID     int64
	MessageID  int
	URL        string
	Provider   Provider
	Status     RequestStatus
	Title      string    // media title once known
	OutputPath string    // path to the produced file
	LastError  string    // last error message if any
	StartedAt  time.Time // when the request was received
	FinishedAt time.Time // when the request finished
}

// NewDownloadRequest creates a pending request for the given source URL
func NewDownloadRequest(userID, chatID int64, messageID int, url string, provider Provider) *DownloadRequest {
	return &DownloadRequest{
		ID:        GenerateRequestID(),
		UserID:    userID,
		ChatID:    chatID,
		MessageID: messageID,
		URL:       strings.TrimSpace(url),
		Provider:  provider,
		Status:    RequestStatusPending,
		StartedAt: time.Now(),
	}
}

// Finish marks the request finished with either success or the given error.
// A request that already finished keeps its first outcome.
func (r *DownloadRequest) Finish(err error) {
	if r.Status.IsFinished() {
		return
	}
	if err != nil {
		r.Status = RequestStatusError
		r.LastError = err.Error()
	} else {
		r.Status = RequestStatusCompleted
	}
	r.FinishedAt = time.Now()
}

// Elapsed returns how long the request took, or has taken so far
func (r *DownloadRequest) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (r *DownloadRequest) GetDisplayTitle() string {
	if r.Title != "" && !strings.HasPrefix(r.Title, "http") {
		return r.Title
	}

	if r.OutputPath != "" {
		filename := filepath.Base(r.OutputPath)
		if idx := strings.LastIndex(filename, "."); idx > 0 {
			filename = filename[:idx]
		}
		return filename
	}

	return r.URL
}

// GenerateRequestID generates a unique, time ordered request ID
func GenerateRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RequestIDPrefix+"%d", time.Now().UnixNano())
	}
	return RequestIDPrefix + id.String()
}
