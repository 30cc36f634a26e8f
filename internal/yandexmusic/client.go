package yandexmusic

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"
)

// API defaults
const (
	DefaultBaseURL = "https://api.music.yandex.net"
	DefaultTimeout = 30 * time.Second

	// signSalt is the fixed salt of the direct-link signature
	signSalt = "XGRlBW9FXlekgbPrRHuSiA"

	userAgent = "Yandex-Music-API"

	// maxErrorBody bounds how much of an error response is kept
	maxErrorBody = 256
)

var (
	// ErrTrackNotFound is returned when the API has no track for the ids
	ErrTrackNotFound = errors.New("track not found")

	// ErrNoDownloadInfo is returned when a track has no downloadable variant
	ErrNoDownloadInfo = errors.New("no download info available")
)

// Client talks to the Yandex Music API with an OAuth token.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of every HTTP round trip
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client. It does not touch the network; call Init to verify
// the token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init validates the token against /account/status
func (c *Client) Init(ctx context.Context) (*AccountStatus, error) {
	if c.token == "" {
		return nil, errors.New("yandex music token is empty")
	}

	var status AccountStatus
	if err := c.getJSON(ctx, c.baseURL+"/account/status", &status); err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	return &status, nil
}

// Track fetches metadata of a single track identified by trackID:albumID
func (c *Client) Track(ctx context.Context, trackID, albumID string) (*Track, error) {
	form := url.Values{}
	form.Set("track-ids", trackID+":"+albumID)

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/tracks", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tracks []Track
	if err := c.doJSON(req, &tracks); err != nil {
		return nil, fmt.Errorf("get track %s:%s: %w", trackID, albumID, err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("get track %s:%s: %w", trackID, albumID, ErrTrackNotFound)
	}
	return &tracks[0], nil
}

// DownloadInfo lists the downloadable variants of a track
func (c *Client) DownloadInfo(ctx context.Context, trackID string) ([]DownloadInfo, error) {
	var infos []DownloadInfo
	if err := c.getJSON(ctx, c.baseURL+"/tracks/"+url.PathEscape(trackID)+"/download-info", &infos); err != nil {
		return nil, fmt.Errorf("get download info for %s: %w", trackID, err)
	}
	return infos, nil
}

// SelectBest picks the highest-bitrate full-length MP3 variant, then AAC.
// Previews are skipped.
func SelectBest(infos []DownloadInfo) (DownloadInfo, bool) {
	candidates := make([]DownloadInfo, 0, len(infos))
	for _, info := range infos {
		if info.Preview || info.DownloadInfoURL == "" {
			continue
		}
		if info.Codec == CodecMP3 || info.Codec == CodecAAC {
			candidates = append(candidates, info)
		}
	}
	if len(candidates) == 0 {
		return DownloadInfo{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i].Codec == CodecMP3, candidates[j].Codec == CodecMP3
		if ci != cj {
			return ci
		}
		return candidates[i].BitrateInKbps > candidates[j].BitrateInKbps
	})
	return candidates[0], true
}

// DirectLink resolves a download-info variant into a signed URL
func (c *Client) DirectLink(ctx context.Context, info DownloadInfo) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, info.DownloadInfoURL, nil)
	if err != nil {
		return "", err
	}

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("resolve direct link: %w", err)
	}

	var loc downloadLocation
	if err := xml.Unmarshal(body, &loc); err != nil {
		return "", fmt.Errorf("parse download location: %w", err)
	}
	if loc.Host == "" || loc.Path == "" {
		return "", fmt.Errorf("parse download location: incomplete response")
	}

	return BuildDirectLink(loc.Host, loc.Path, loc.TS, loc.S), nil
}

// BuildDirectLink assembles https://host/get-mp3/<sign>/<ts><path>
func BuildDirectLink(host, path, ts, s string) string {
	sum := md5.Sum([]byte(signSalt + strings.TrimPrefix(path, "/") + s))
	return fmt.Sprintf("https://%s/get-mp3/%s/%s%s", host, hex.EncodeToString(sum[:]), ts, path)
}

// Download writes the best available variant of a track to dst and returns
// the codec that was written.
func (c *Client) Download(ctx context.Context, trackID, dst string) (string, error) {
	infos, err := c.DownloadInfo(ctx, trackID)
	if err != nil {
		return "", err
	}

	best, ok := SelectBest(infos)
	if !ok {
		return "", fmt.Errorf("track %s: %w", trackID, ErrNoDownloadInfo)
	}

	link, err := c.DirectLink(ctx, best)
	if err != nil {
		return "", err
	}

	if err := c.fetchToFile(ctx, link, dst); err != nil {
		return "", err
	}
	return best.Codec, nil
}

func (c *Client) fetchToFile(ctx context.Context, link, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch audio: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return f.Close()
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	body, err := c.do(req)
	if err != nil {
		return err
	}

	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Result) == 0 {
		return fmt.Errorf("decode response: missing result")
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}
	return body, nil
}

// StatusError is a non-200 API response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
