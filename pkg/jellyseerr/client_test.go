package jellyseerr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "test-key")
}

func TestClient_ListRequests_Paged(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/request", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("take"))
		_, _ = w.Write([]byte(`{"pageInfo":{"pages":1},"results":[
			{"id": 7, "media": {"tmdbId": 1396, "mediaType": "tv"}},
			{"id": 8, "media": {"tmdbId": 278, "mediaType": "movie"}}
		]}`))
	})

	list, err := c.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(7), list[0].ID)
	assert.Equal(t, int64(1396), list[0].Media.TMDBID)
	assert.Equal(t, MediaTypeMovie, list[1].Media.MediaType)
}

func TestClient_ListRequests_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(` [{"id": 3, "media": {"tmdbId": 42, "mediaType": "movie"}}]`))
	})

	list, err := c.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(42), list[0].Media.TMDBID)
}

func TestClient_FindByTMDBID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id": 3, "media": {"tmdbId": 42, "mediaType": "movie"}}]}`))
	})

	found, err := c.FindByTMDBID(context.Background(), 42, "")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(3), found.ID)

	missing, err := c.FindByTMDBID(context.Background(), 43, "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClient_GetRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/request/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 7, "media": {
			"tmdbId": 1396, "mediaType": "tv", "status": 3,
			"downloadStatus": [{"status": "downloading", "timeLeft": "00:10:00", "size": 1000, "sizeLeft": 250}]
		}}`))
	})

	detail, err := c.GetRequest(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1396), detail.Media.TMDBID)
	assert.JSONEq(t, `3`, string(detail.Media.Status))
	assert.Contains(t, string(detail.Media.DownloadStatus), "downloading")
}

func TestClient_GetRequest_WrappedInResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"id": 6, "media": {"tmdbId": 1}},
			{"id": 7, "media": {"tmdbId": 2, "status": "processing"}}
		]}`))
	})

	detail, err := c.GetRequest(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Media.TMDBID)
}

func TestClient_GetRequest_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetRequest(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.ListRequests(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Unavailable(t *testing.T) {
	c := New("http://127.0.0.1:1", "test-key")

	_, err := c.ListRequests(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_CreateRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tv", payload["mediaType"])
		assert.EqualValues(t, 1396, payload["mediaId"])
		assert.Equal(t, []any{float64(2)}, payload["seasons"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 11, "media": {"tmdbId": 1396, "mediaType": "tv"}}`))
	})

	created, err := c.CreateRequest(context.Background(), CreateRequest{
		MediaType:  MediaTypeTV,
		MediaID:    1396,
		ProfileID:  3,
		RootFolder: "/tv",
		Seasons:    []int{2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
}

func TestClient_CreateRequest_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "Request for this media already exists."}`))
	})

	_, err := c.CreateRequest(context.Background(), CreateRequest{MediaType: MediaTypeMovie, MediaID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestFind(t *testing.T) {
	list := []Request{
		{ID: 1, Media: Media{TMDBID: 10, MediaType: MediaTypeMovie}},
		{ID: 2, Media: Media{TMDBID: 10, MediaType: MediaTypeTV}},
		{ID: 3, Media: Media{TMDBID: 11}},
	}

	assert.Equal(t, int64(1), Find(list, 10, "").ID)
	assert.Equal(t, int64(1), Find(list, 10, MediaTypeMovie).ID)
	assert.Equal(t, int64(2), Find(list, 10, MediaTypeTV).ID)
	assert.Equal(t, int64(3), Find(list, 11, MediaTypeTV).ID, "unknown media type matches any kind")
	assert.Nil(t, Find(list, 12, ""))
	assert.Nil(t, Find(nil, 10, ""))
}
