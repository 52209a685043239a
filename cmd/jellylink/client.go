package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/jellylink/internal/addon"
	"github.com/vmunix/jellylink/internal/stream"
)

// Client wraps HTTP calls to the jellylink server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new jellylink API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Request creation answers with a redirect to the progress page; report it instead of following.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// RequestDetail mirrors the server's request progress document.
type RequestDetail struct {
	RequestID   int64  `json:"requestId"`
	TMDBID      int64  `json:"tmdbId"`
	MediaType   string `json:"mediaType"`
	Status      string `json:"status"`
	ETA         string `json:"eta,omitempty"`
	TimeLeft    string `json:"timeLeft,omitempty"`
	Size        int64  `json:"size"`
	SizeLeft    int64  `json:"sizeLeft"`
	Percent     int    `json:"percent"`
	Downloaded  string `json:"downloaded,omitempty"`
	Title       string `json:"title,omitempty"`
	Overview    string `json:"overview,omitempty"`
	ReleaseYear int    `json:"releaseYear,omitempty"`
}

type catalogResponse struct {
	Metas []addon.MetaPreview `json:"metas"`
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func serverError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var ae apiError
	if json.Unmarshal(body, &ae) == nil && ae.Error != "" {
		return fmt.Errorf("server error %d: %s (%s)", resp.StatusCode, ae.Error, ae.Code)
	}
	return fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// Health checks the server liveness endpoint.
func (c *Client) Health() error {
	var out map[string]string
	return c.get("/healthz", &out)
}

// Manifest fetches the add-on manifest.
func (c *Client) Manifest() (*addon.Manifest, error) {
	var m addon.Manifest
	if err := c.get("/manifest.json", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Catalog lists one page of the catalog for kind.
func (c *Client) Catalog(kind, catalogID, search string, skip int) ([]addon.MetaPreview, error) {
	path := "/catalog/" + url.PathEscape(kind) + "/" + url.PathEscape(catalogID)

	extra := url.Values{}
	if search != "" {
		extra.Set("search", search)
	}
	if skip > 0 {
		extra.Set("skip", strconv.Itoa(skip))
	}
	if len(extra) > 0 {
		path += "/" + url.PathEscape(extra.Encode())
	}

	var resp catalogResponse
	if err := c.get(path+".json", &resp); err != nil {
		return nil, err
	}
	return resp.Metas, nil
}

// Streams fetches the stream decision for a catalog id.
func (c *Client) Streams(kind, id string) ([]stream.Stream, error) {
	var resp stream.Result
	if err := c.get("/stream/"+url.PathEscape(kind)+"/"+url.PathEscape(id)+".json", &resp); err != nil {
		return nil, err
	}
	return resp.Streams, nil
}

// RequestDetail fetches progress of the request for a TMDB id.
func (c *Client) RequestDetail(tmdbID int64, mediaType string) (*RequestDetail, error) {
	path := "/jellyseerr/request/" + strconv.FormatInt(tmdbID, 10)
	if mediaType != "" {
		path += "?type=" + url.QueryEscape(mediaType)
	}

	var d RequestDetail
	if err := c.get(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateRequest asks the server to file a Jellyseerr request and returns the
// progress page it redirects to.
func (c *Client) CreateRequest(tmdbID int64, mediaType string, season int) (string, error) {
	q := url.Values{}
	q.Set("tmdbid", strconv.FormatInt(tmdbID, 10))
	q.Set("type", mediaType)
	if season > 0 {
		q.Set("season", strconv.Itoa(season))
	}

	resp, err := c.httpClient.Get(c.baseURL + "/jellyseerr/request?" + q.Encode())
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		return "", serverError(resp)
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.New("server redirect without location")
	}
	return loc, nil
}
