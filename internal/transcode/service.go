package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ytget/audio-bot/internal/model"
	"github.com/ytget/audio-bot/internal/platform"
)

// FFmpeg constants for MP3 output
const (
	AudioCodec   = "libmp3lame"
	AudioBitrate = "192k"

	FFmpegCommand      = "ffmpeg"
	OutputExtensionMP3 = ".mp3"

	// stderrTailBytes bounds the ffmpeg output kept in error messages
	stderrTailBytes = 512
)

// Transcoder converts a media file to MP3
type Transcoder interface {
	ToMP3(ctx context.Context, inputPath string) (string, error)
}

// Service runs ffmpeg as an external process
type Service struct {
	ffmpegPath string
}

// NewService creates a transcoder using the given ffmpeg binary.
// An empty path means "ffmpeg" on PATH.
func NewService(ffmpegPath string) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	return &Service{ffmpegPath: ffmpegPath}
}

// FFmpegPath returns the binary this service runs
func (s *Service) FFmpegPath() string {
	return s.ffmpegPath
}

// ToMP3 writes an MP3 next to inputPath and removes the input on success.
// An input that already is MP3 is returned unchanged.
func (s *Service) ToMP3(ctx context.Context, inputPath string) (string, error) {
	if !platform.FileExists(inputPath) {
		return "", model.NewError(model.ErrDownload, "transcode", fmt.Errorf("input file does not exist: %s", inputPath))
	}

	if strings.EqualFold(filepath.Ext(inputPath), OutputExtensionMP3) {
		return inputPath, nil
	}

	outputPath := generateOutputPath(inputPath)
	args := s.BuildFFmpegArgs(inputPath, outputPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", model.NewError(model.ErrDownload, "transcode",
			fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), stderrTailBytes)))
	}

	if !platform.FileExists(outputPath) {
		return "", model.NewError(model.ErrDownload, "transcode", fmt.Errorf("ffmpeg produced no output: %s", outputPath))
	}

	os.Remove(inputPath)
	return outputPath, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func (s *Service) BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vn",                  // Drop video and cover streams
		"-acodec", AudioCodec, // Audio codec
		"-b:a", AudioBitrate, // Audio bitrate
		"-loglevel", "error",
		outputPath,
	}
}

// generateOutputPath swaps the extension for .mp3
func generateOutputPath(inputPath string) string {
	return platform.ReplaceExtension(inputPath, OutputExtensionMP3)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
