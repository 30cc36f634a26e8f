// Package transcode converts provider output to MP3 by running ffmpeg.
package transcode
