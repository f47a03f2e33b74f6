package mediacms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1"
	maxErrorBody   = 4096
)

// HTTPDoer describes the HTTP client used by the MediaCMS client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithTimeout sets the timeout of the default http.Client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.httpClient.(*http.Client); ok && timeout > 0 {
			hc.Timeout = timeout
		}
	}
}

// Client implements domain.MediaSource for one MediaCMS server.
// It holds no state beyond the base URL and token; every call is a single round trip.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPDoer
	logger     *slog.Logger
}

var _ domain.MediaSource = (*Client)(nil)

// NewClient creates a new MediaCMS API client.
// An empty token makes every request anonymous (guest mode).
func NewClient(baseURL, token string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFactory returns a domain.SourceFactory that builds clients sharing the given options
func NewFactory(logger *slog.Logger, opts ...Option) domain.SourceFactory {
	return func(conn domain.Connection) domain.MediaSource {
		return NewClient(conn.URL, conn.Token, logger, opts...)
	}
}

// BaseURL returns the server base URL without the API prefix
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request against the API and returns the response body.
// Transport failures become *domain.NetworkError, non-2xx responses *domain.HTTPStatusError,
// and 401/403 responses are additionally wrapped in *domain.AuthenticationError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("mediacms request", "method", method, "url", reqURL, "authenticated", c.token != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("mediacms request failed", "error", err, "url", reqURL)
		return nil, &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "read " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := newStatusError(resp.StatusCode, respBody)
		c.logger.Error("mediacms request error", "status", resp.StatusCode, "path", path, "detail", statusErr.Detail)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			msg := statusErr.Detail
			if msg == "" {
				msg = "authentication required"
			}
			return nil, &domain.AuthenticationError{Message: msg, Err: statusErr}
		}
		return nil, statusErr
	}

	return respBody, nil
}

// newStatusError builds an HTTPStatusError, pulling "detail" out of JSON bodies
func newStatusError(status int, body []byte) *domain.HTTPStatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	statusErr := &domain.HTTPStatusError{StatusCode: status, Body: string(body)}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		statusErr.Detail = strings.TrimSpace(er.Detail)
	}
	return statusErr
}

// ListVideos returns a page of videos, most recent first as ordered by the server
func (c *Client) ListVideos(ctx context.Context, limit, offset int) ([]domain.Video, error) {
	videos, _, err := c.VideoPage(ctx, offset, limit)
	return videos, err
}

// VideoPage returns a page of videos and the server-reported total,
// or UnknownTotal when the server sent a bare array.
func (c *Client) VideoPage(ctx context.Context, offset, limit int) ([]domain.Video, int, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	query.Set("skip", strconv.Itoa(offset))

	body, err := c.doRequest(ctx, http.MethodGet, "/media", query, nil)
	if err != nil {
		return nil, 0, err
	}

	items, total, err := decodeList[Media](body)
	if err != nil {
		return nil, 0, err
	}
	return MapVideos(items, c.baseURL), total, nil
}

// GetVideo returns a single video. Unknown tokens yield an error matching domain.ErrItemNotFound.
func (c *Client) GetVideo(ctx context.Context, token string) (*domain.Video, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/media/"+url.PathEscape(token), nil, nil)
	if err != nil {
		return nil, err
	}

	var item Media
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	v := MapVideo(item, c.baseURL)
	return &v, nil
}

// SearchVideos returns videos matching query. An empty query is sent as-is.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]domain.Video, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/search", params, nil)
	if err != nil {
		return nil, err
	}

	items, _, err := decodeList[Media](body)
	if err != nil {
		return nil, err
	}
	return MapVideos(items, c.baseURL), nil
}

// ListPlaylists returns the server's playlists
func (c *Client) ListPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/playlists", nil, nil)
	if err != nil {
		return nil, err
	}

	items, _, err := decodeList[Playlist](body)
	if err != nil {
		return nil, err
	}
	return MapPlaylists(items, c.baseURL), nil
}

// GetPlaylist returns a single playlist with its media when the server includes them
func (c *Client) GetPlaylist(ctx context.Context, token string) (*domain.Playlist, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/playlists/"+url.PathEscape(token), nil, nil)
	if err != nil {
		return nil, err
	}

	var p Playlist
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	pl := MapPlaylist(p, c.baseURL)
	return &pl, nil
}

// GetCurrentUser returns the identity behind the client's bearer token
func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	if c.token == "" {
		return nil, &domain.AuthenticationError{Message: "not logged in", Err: domain.ErrAuthFailed}
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/whoami", nil, nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapUser(u, c.baseURL), nil
}

// ResolveStreamURL prefers the original media URL from encodings_info and
// falls back to the video's own URL on this server.
func (c *Client) ResolveStreamURL(video domain.Video) string {
	if video.OriginalMediaURL != "" {
		return absoluteURL(c.baseURL, video.OriginalMediaURL)
	}
	return c.baseURL + video.URL
}
