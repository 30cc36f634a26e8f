package yandexmusic

import (
	"encoding/json"
	"encoding/xml"
	"strconv"
)

// Codecs returned by download-info
const (
	CodecMP3 = "mp3"
	CodecAAC = "aac"
)

// envelope wraps every JSON response of the API
type envelope[T any] struct {
	Result T `json:"result"`
}

// AccountStatus is the subset of /account/status used to validate a token
type AccountStatus struct {
	Account struct {
		UID   int64  `json:"uid"`
		Login string `json:"login"`
	} `json:"account"`
}

type Artist struct {
	ID   flexibleID `json:"id"`
	Name string     `json:"name"`
}

type Album struct {
	ID    flexibleID `json:"id"`
	Title string     `json:"title"`
}

// Track is the subset of track metadata needed to name and fetch the file
type Track struct {
	ID         flexibleID `json:"id"`
	Title      string     `json:"title"`
	Version    string     `json:"version"`
	DurationMs int64      `json:"durationMs"`
	Available  *bool      `json:"available"`
	Artists    []Artist   `json:"artists"`
	Albums     []Album    `json:"albums"`
}

// FirstArtist returns the name of the first credited artist, or "" if none
func (t *Track) FirstArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// IsAvailable reports false only when the API says so explicitly
func (t *Track) IsAvailable() bool {
	return t.Available == nil || *t.Available
}

// DownloadInfo is one variant of a track's audio
type DownloadInfo struct {
	Codec           string `json:"codec"`
	BitrateInKbps   int    `json:"bitrateInKbps"`
	DownloadInfoURL string `json:"downloadInfoUrl"`
	Direct          bool   `json:"direct"`
	Preview         bool   `json:"preview"`
}

// downloadLocation is the XML document behind DownloadInfoURL
type downloadLocation struct {
	XMLName xml.Name `xml:"download-info"`
	Host    string   `xml:"host"`
	Path    string   `xml:"path"`
	TS      string   `xml:"ts"`
	Region  string   `xml:"region"`
	S       string   `xml:"s"`
}

// flexibleID accepts ids encoded either as JSON numbers or strings
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

func (id flexibleID) String() string {
	return string(id)
}

// Int returns the id as a number, or 0 when it is not numeric
func (id flexibleID) Int() int64 {
	n, _ := strconv.ParseInt(string(id), 10, 64)
	return n
}
