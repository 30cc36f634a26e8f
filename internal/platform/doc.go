// Package platform contains OS integration and external tooling glue:
// filesystem helpers for the per-user workspaces, output file lookup after
// yt-dlp post-processing, and ffmpeg discovery.
package platform
