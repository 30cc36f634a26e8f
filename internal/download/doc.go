// Package download runs provider adapters on a bounded worker pool. The
// YouTube adapter drives yt-dlp (via github.com/lrstanley/go-ytdlp) with a
// metadata probe through github.com/damaredayo/goutubedl; the Yandex Music
// adapter fetches tracks through the yandexmusic client and transcodes
// non-MP3 variants with ffmpeg.
package download
