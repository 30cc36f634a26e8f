package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDownloadRequest(t *testing.T) {
	req := NewDownloadRequest(42, 100, 7, "  https://youtu.be/abc123 ", ProviderYouTube)

	assert.Equal(t, int64(42), req.UserID)
	assert.Equal(t, int64(100), req.ChatID)
	assert.Equal(t, 7, req.MessageID)
	assert.Equal(t, "https://youtu.be/abc123", req.URL)
	assert.Equal(t, ProviderYouTube, req.Provider)
	assert.Equal(t, RequestStatusPending, req.Status)
	assert.True(t, strings.HasPrefix(req.ID, RequestIDPrefix))
	assert.False(t, req.StartedAt.IsZero())
}

func TestDownloadRequest_Finish(t *testing.T) {
	req := NewDownloadRequest(1, 1, 1, "u", ProviderYouTube)
	req.Finish(nil)
	assert.Equal(t, RequestStatusCompleted, req.Status)
	assert.Empty(t, req.LastError)
	assert.False(t, req.FinishedAt.IsZero())

	req = NewDownloadRequest(1, 1, 1, "u", ProviderYouTube)
	req.Finish(errors.New("boom"))
	assert.Equal(t, RequestStatusError, req.Status)
	assert.Equal(t, "boom", req.LastError)
}

func TestDownloadRequest_FinishKeepsFirstOutcome(t *testing.T) {
	req := NewDownloadRequest(1, 1, 1, "u", ProviderYouTube)
	req.Finish(errors.New("boom"))
	finished := req.FinishedAt

	req.Finish(nil)

	assert.Equal(t, RequestStatusError, req.Status)
	assert.Equal(t, "boom", req.LastError)
	assert.Equal(t, finished, req.FinishedAt)
}

func TestDownloadRequest_Elapsed(t *testing.T) {
	start := time.Now().Add(-3 * time.Second)
	req := &DownloadRequest{StartedAt: start, FinishedAt: start.Add(2 * time.Second)}
	assert.Equal(t, 2*time.Second, req.Elapsed())
}

func TestDownloadRequest_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		output   string
		url      string
		expected string
	}{
		{"Song Title", "", "https://youtube.com/watch?v=123", "Song Title"},
		{"", "/tmp/42/Artist - Song.mp3", "https://youtube.com/watch?v=123", "Artist - Song"},
		{"", "", "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
		{"https://youtu.be/x", "", "https://youtu.be/x", "https://youtu.be/x"},
	}

	for _, test := range tests {
		req := &DownloadRequest{Title: test.title, OutputPath: test.output, URL: test.url}
		result := req.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', output='%s' = '%s', expected '%s'",
				test.title, test.output, result, test.expected)
		}
	}
}

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	assert.NotEqual(t, id1, id2)
	assert.True(t, strings.HasPrefix(id1, RequestIDPrefix))
	// req- + 36 chars for UUID
	assert.Len(t, id1, len(RequestIDPrefix)+36)
}
