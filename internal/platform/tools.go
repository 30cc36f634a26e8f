package platform

import (
	"os/exec"
	"runtime"
)

// Operating system constants
const (
	OSWindows = "windows"
)

// External tool names and fallbacks
const (
	FFmpegCommand         = "ffmpeg"
	FallbackFFmpegUnix    = "/usr/bin/ffmpeg"
	FallbackFFmpegWindows = `C:\ffmpeg\bin\ffmpeg.exe`
)

// lookPath is replaced in tests
var lookPath = exec.LookPath

// ResolveFFmpegPath locates the ffmpeg binary. Priority: the explicit value
// from configuration, then a PATH lookup, then a hardcoded per-OS fallback.
// The second result reports whether the returned path points at an existing
// file; callers treat a miss as a warning, not a failure.
func ResolveFFmpegPath(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, FileExists(explicit)
	}

	if path, err := lookPath(FFmpegCommand); err == nil {
		return path, true
	}

	fallback := FallbackFFmpegUnix
	if runtime.GOOS == OSWindows {
		fallback = FallbackFFmpegWindows
	}
	return fallback, FileExists(fallback)
}

// ResolveExecutable returns the absolute path of name when it is on PATH,
// or name itself when it is not.
func ResolveExecutable(name string) (string, bool) {
	path, err := lookPath(name)
	if err != nil {
		return name, false
	}
	return path, true
}
