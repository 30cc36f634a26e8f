// Package router classifies incoming chat text into the handler that should
// serve it. Classification is a pure function of the text.
package router

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ytget/audio-bot/internal/model"
)

// Kind is the tag of a Route
type Kind int

const (
	// Unclassified text gets no reply
	Unclassified Kind = iota
	// Greeting is the /start (or /help) command
	Greeting
	// YandexMusic is a music.yandex.* link
	YandexMusic
	// YouTube is a youtube.com / youtu.be link
	YouTube
)

func (k Kind) String() string {
	switch k {
	case Greeting:
		return "greeting"
	case YandexMusic:
		return "yandex_music"
	case YouTube:
		return "youtube"
	default:
		return "unclassified"
	}
}

// Substrings used for classification. Domains are disjoint, so order only
// matters between commands and links.
var (
	YandexMusicHosts = []string{"music.yandex.ru", "music.yandex.com"}
	YouTubeHosts     = []string{"youtube.com", "youtu.be"}
	GreetingCommands = []string{"/start", "/help"}
)

var yandexTrackPattern = regexp.MustCompile(`album/(\d+)/track/(\d+)`)

// ErrNoYandexIDs marks a Yandex Music link without an album/track pair
var ErrNoYandexIDs = errors.New("no album/track ids in url")

// Route is the tagged result of Classify. TrackID/AlbumID are only set for
// YandexMusic routes whose URL matched the album/track pattern; HasIDs tells
// whether they did.
type Route struct {
	Kind    Kind
	URL     string
	TrackID string
	AlbumID string
	HasIDs  bool
}

// Provider maps a download route to its provider tag
func (r Route) Provider() (model.Provider, bool) {
	switch r.Kind {
	case YandexMusic:
		return model.ProviderYandexMusic, true
	case YouTube:
		return model.ProviderYouTube, true
	default:
		return "", false
	}
}

// Classify maps free text to a Route. The first matching rule wins.
func Classify(text string) Route {
	text = strings.TrimSpace(text)
	if text == "" {
		return Route{Kind: Unclassified}
	}

	if isCommand(text, GreetingCommands) {
		return Route{Kind: Greeting}
	}

	if containsAny(text, YandexMusicHosts) {
		trackID, albumID, ok := ExtractYandexIDs(text)
		return Route{Kind: YandexMusic, URL: text, TrackID: trackID, AlbumID: albumID, HasIDs: ok}
	}

	if containsAny(text, YouTubeHosts) {
		return Route{Kind: YouTube, URL: text}
	}

	return Route{Kind: Unclassified}
}

// ExtractYandexIDs pulls the (trackID, albumID) pair out of a Yandex Music
// track URL. Both are empty and ok is false when the URL does not match.
func ExtractYandexIDs(url string) (trackID, albumID string, ok bool) {
	m := yandexTrackPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return m[2], m[1], true
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// isCommand matches "/start", "/start@my_bot" and "/start payload"
func isCommand(text string, commands []string) bool {
	if text[0] != '/' {
		return false
	}
	cmd := strings.SplitN(text, " ", 2)[0]
	cmd = strings.SplitN(cmd, "@", 2)[0]
	cmd = strings.ToLower(cmd)
	for _, c := range commands {
		if cmd == c {
			return true
		}
	}
	return false
}
