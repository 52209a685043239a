package jellyfin

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
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	clientName    = "jellylink"
	clientVersion = "1.0.0"
	deviceName    = "jellylink-server"

	// itemFields are the optional fields requested on list and detail calls.
	itemFields = "ProviderIds,Overview,Genres,ProductionYear,ImageTags,MediaSources"
)

// Sentinel errors for Jellyfin API responses.
var (
	ErrUnauthorized     = errors.New("jellyfin: invalid credentials")
	ErrNotAuthenticated = errors.New("jellyfin: not authenticated")
	ErrNotFound         = errors.New("jellyfin: item not found")
)

// Client is a Jellyfin API client bound to one user session.
type Client struct {
	baseURL    string
	username   string
	password   string
	deviceID   string
	httpClient *http.Client
	log        *slog.Logger

	mu        sync.RWMutex
	token     string
	userID    string
	sessionID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDeviceID pins the device id reported to Jellyfin.
// Without it a random id is generated per process.
func WithDeviceID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.deviceID = id
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With("component", "jellyfin")
		}
	}
}

// New creates a new Jellyfin client. Call Authenticate before any other method.
func New(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		deviceID: "jellylink-" + uuid.NewString(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default().With("component", "jellyfin"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AccessToken returns the session token, or "" before authentication.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SessionID returns the id of the session created by Authenticate.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Authenticate logs in with username and password and stores the session token.
func (c *Client) Authenticate(ctx context.Context) error {
	body, err := json.Marshal(authRequest{Username: c.username, Pw: c.password})
	if err != nil {
		return fmt.Errorf("marshal auth body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Emby-Authorization", c.authHeader(""))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute auth request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication failed: %s", resp.Status)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}
	if auth.AccessToken == "" || auth.User.ID == "" {
		return errors.New("auth response missing token or user")
	}

	c.mu.Lock()
	c.token = auth.AccessToken
	c.userID = auth.User.ID
	c.sessionID = auth.SessionInfo.ID
	c.mu.Unlock()

	c.log.Info("authenticated", "user", auth.User.Name, "user_id", auth.User.ID)
	return nil
}

// Logout ends the current session. It is a no-op when not authenticated.
func (c *Client) Logout(ctx context.Context) error {
	if c.AccessToken() == "" {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/Sessions/Logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	c.mu.Lock()
	c.token, c.userID, c.sessionID = "", "", ""
	c.mu.Unlock()
	return nil
}

// SearchItems lists library items matching the filter.
func (c *Client) SearchItems(ctx context.Context, f ItemFilter) ([]Item, error) {
	userID, err := c.user()
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"userId":    {userID},
		"Recursive": {"true"},
		"SortBy":    {"SortName"},
		"SortOrder": {"Ascending"},
		"Fields":    {itemFields},
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		params.Set("IncludeItemTypes", strings.Join(types, ","))
	}
	if f.SearchTerm != "" {
		params.Set("SearchTerm", f.SearchTerm)
	}
	if f.StartIndex > 0 {
		params.Set("StartIndex", strconv.Itoa(f.StartIndex))
	}
	if f.Limit > 0 {
		params.Set("Limit", strconv.Itoa(f.Limit))
	}
	if f.HasExternalID {
		params.Set("Filters", "HasExternalId")
	}

	var result pagedResult[Item]
	if err := c.do(ctx, http.MethodGet, "/Items", params, &result); err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return result.Items, nil
}

// GetItem fetches the full record of an item, including its media sources.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	userID, err := c.user()
	if err != nil {
		return nil, err
	}

	var item Item
	path := "/Users/" + url.PathEscape(userID) + "/Items/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodGet, path, nil, &item); err != nil {
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return &item, nil
}

// Seasons lists the seasons of a series.
func (c *Client) Seasons(ctx context.Context, seriesID string) ([]Season, error) {
	userID, err := c.user()
	if err != nil {
		return nil, err
	}

	params := url.Values{"userId": {userID}}

	var result pagedResult[Season]
	if err := c.do(ctx, http.MethodGet, "/Shows/"+url.PathEscape(seriesID)+"/Seasons", params, &result); err != nil {
		return nil, fmt.Errorf("list seasons of %s: %w", seriesID, err)
	}
	return result.Items, nil
}

// Episodes lists the episodes of one season of a series.
func (c *Client) Episodes(ctx context.Context, seriesID, seasonID string) ([]Episode, error) {
	userID, err := c.user()
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"userId":   {userID},
		"seasonId": {seasonID},
	}

	var result pagedResult[Episode]
	if err := c.do(ctx, http.MethodGet, "/Shows/"+url.PathEscape(seriesID)+"/Episodes", params, &result); err != nil {
		return nil, fmt.Errorf("list episodes of %s/%s: %w", seriesID, seasonID, err)
	}
	return result.Items, nil
}

// ImageURL returns the URL of an item image such as "Primary" or "Backdrop".
func (c *Client) ImageURL(itemID, imageType string) string {
	return c.baseURL + "/Items/" + url.PathEscape(itemID) + "/Images/" + imageType
}

func (c *Client) user() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.userID == "" {
		return "", ErrNotAuthenticated
	}
	return c.userID, nil
}

// authHeader builds the MediaBrowser authorization header. token may be empty.
func (c *Client) authHeader(token string) string {
	h := fmt.Sprintf(`MediaBrowser Client="%s", Device="%s", DeviceId="%s", Version="%s"`,
		clientName, deviceName, c.deviceID, clientVersion)
	if token != "" {
		h += fmt.Sprintf(`, Token="%s"`, token)
	}
	return h
}

// do performs an authenticated request and decodes a JSON response into result.
// result may be nil for endpoints without a body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, result any) error {
	token := c.AccessToken()
	if token == "" {
		return ErrNotAuthenticated
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Emby-Authorization", c.authHeader(token))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	c.log.Debug("api request complete", "method", method, "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
