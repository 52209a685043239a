package jellyseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// listPageSize is the number of requests fetched by ListRequests.
const listPageSize = 100

// Sentinel errors for Jellyseerr API responses.
var (
	ErrNotFound     = errors.New("jellyseerr: request not found")
	ErrUnauthorized = errors.New("jellyseerr: invalid api key")
	ErrUnavailable  = errors.New("jellyseerr: service unavailable")
)

// Client is a Jellyseerr API v1 client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With("component", "jellyseerr")
		}
	}
}

// New creates a new Jellyseerr client. baseURL is the server root, without /api/v1.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: slog.Default().With("component", "jellyseerr"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRequests returns the current requests, newest first.
// It accepts both the paged {"results": [...]} shape and a bare array.
func (c *Client) ListRequests(ctx context.Context) ([]Request, error) {
	params := url.Values{
		"take": {strconv.Itoa(listPageSize)},
		"sort": {"added"},
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/request", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Request
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode request list: %w", err)
		}
		return list, nil
	}

	var page pageResponse
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode request page: %w", err)
	}
	return page.Results, nil
}

// GetRequest fetches one request with its media download status.
func (c *Client) GetRequest(ctx context.Context, id int64) (*RequestDetail, error) {
	var env detailEnvelope
	if err := c.do(ctx, http.MethodGet, "/request/"+strconv.FormatInt(id, 10), nil, nil, &env); err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, err)
	}
	if env.ID == id {
		return &env.RequestDetail, nil
	}
	// Some proxies wrap single lookups in a page.
	for i := range env.Results {
		if env.Results[i].ID == id {
			return &env.Results[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindByTMDBID returns the first request tracking tmdbID, or nil.
// An empty mediaType matches any kind.
func (c *Client) FindByTMDBID(ctx context.Context, tmdbID int64, mediaType MediaType) (*Request, error) {
	list, err := c.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	return Find(list, tmdbID, mediaType), nil
}

// CreateRequest submits a new media request.
func (c *Client) CreateRequest(ctx context.Context, payload CreateRequest) (*Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var created Request
	if err := c.do(ctx, http.MethodPost, "/request", nil, body, &created); err != nil {
		return nil, fmt.Errorf("create request for %s %d: %w", payload.MediaType, payload.MediaID, err)
	}

	c.log.Info("request created", "media_type", payload.MediaType, "tmdb_id", payload.MediaID, "request_id", created.ID)
	return &created, nil
}

// do performs an API request. body may be nil; result is decoded from JSON.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, result any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.log.Debug("api request complete", "method", method, "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
