package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/jellylink/internal/addon"
	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/internal/stream"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/jellyseerr"
	"github.com/vmunix/jellylink/pkg/tmdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAddon struct {
	catalogQuery addon.CatalogQuery
	catalogErr   error
	streamKind   catalogid.Kind
	streamID     string
}

func (f *fakeAddon) Manifest() addon.Manifest {
	return addon.Manifest{ID: "org.jellylink", Version: "1.0.0"}
}

func (f *fakeAddon) Catalog(_ context.Context, q addon.CatalogQuery) ([]addon.MetaPreview, error) {
	f.catalogQuery = q
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return []addon.MetaPreview{{ID: "tt0078748", Type: string(q.Kind), Name: "Alien"}}, nil
}

func (f *fakeAddon) Streams(_ context.Context, kind catalogid.Kind, rawID string) stream.Result {
	f.streamKind, f.streamID = kind, rawID
	return stream.Result{Streams: []stream.Stream{{Name: "n", Description: "d", URL: "http://jf/videos/x"}}}
}

type fakeRequests struct {
	existing  *jellyseerr.Request
	findErr   error
	detail    *jellyseerr.RequestDetail
	detailErr error
	createErr error

	findType jellyseerr.MediaType
	created  []jellyseerr.CreateRequest
}

func (f *fakeRequests) FindByTMDBID(_ context.Context, tmdbID int64, mt jellyseerr.MediaType) (*jellyseerr.Request, error) {
	f.findType = mt
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.existing != nil && f.existing.Media.TMDBID == tmdbID {
		return f.existing, nil
	}
	return nil, nil
}

func (f *fakeRequests) GetRequest(_ context.Context, _ int64) (*jellyseerr.RequestDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeRequests) CreateRequest(_ context.Context, p jellyseerr.CreateRequest) (*jellyseerr.Request, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	return &jellyseerr.Request{ID: 99, Media: jellyseerr.Media{TMDBID: p.MediaID, MediaType: p.MediaType}}, nil
}

type fakeMetadata struct{}

func (fakeMetadata) GetMovie(_ context.Context, id int64) (*tmdb.Movie, error) {
	if id == 278 {
		return &tmdb.Movie{ID: 278, Title: "The Shawshank Redemption", ReleaseDate: "1994-09-23", PosterPath: "/p.jpg"}, nil
	}
	return nil, tmdb.ErrNotFound
}

func (fakeMetadata) GetTV(_ context.Context, id int64) (*tmdb.TV, error) {
	return &tmdb.TV{ID: id, Name: "Breaking Bad", FirstAirDate: "2008-01-20"}, nil
}

func testConfig() Config {
	return Config{
		FrontendURL: "http://frontend.local/",
		Defaults: RequestDefaults{
			ServerID: 0, ProfileID: 3, UserID: 1,
			MovieRoot: "/movies", TVRoot: "/tv",
		},
	}
}

func newTestServer(a *fakeAddon, req *fakeRequests) http.Handler {
	deps := Deps{Addon: a, Metadata: fakeMetadata{}}
	if req != nil {
		deps.Requests = req
	}
	return New(testConfig(), deps, testLogger()).Handler()
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestManifest(t *testing.T) {
	rec := do(t, newTestServer(&fakeAddon{}, nil), http.MethodGet, "/manifest.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var m addon.Manifest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, "org.jellylink", m.ID)
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestServer(&fakeAddon{}, nil), http.MethodOptions, "/stream/movie/tt1.json")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}

func TestCatalog(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantQuery  addon.CatalogQuery
	}{
		{"plain", "/catalog/movie/jellyfin-movies.json", http.StatusOK,
			addon.CatalogQuery{Kind: catalogid.KindMovie}},
		{"extra path", "/catalog/series/jellyfin-series/search=breaking%20bad&skip=40.json", http.StatusOK,
			addon.CatalogQuery{Kind: catalogid.KindSeries, Search: "breaking bad", Skip: 40}},
		{"negative skip", "/catalog/movie/jellyfin-movies/skip=-5.json", http.StatusOK,
			addon.CatalogQuery{Kind: catalogid.KindMovie}},
		{"unknown type", "/catalog/anime/jellyfin-movies.json", http.StatusNotFound, addon.CatalogQuery{}},
		{"unknown catalog", "/catalog/movie/other.json", http.StatusNotFound, addon.CatalogQuery{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAddon{}
			rec := do(t, newTestServer(a, nil), http.MethodGet, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantQuery, a.catalogQuery)
				assert.Contains(t, rec.Body.String(), `"metas":[`)
			}
		})
	}
}

func TestCatalog_ErrorIsEmpty(t *testing.T) {
	rec := do(t, newTestServer(&fakeAddon{catalogErr: errors.New("jellyfin down")}, nil),
		http.MethodGet, "/catalog/movie/jellyfin-movies.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"metas":[]}`, rec.Body.String())
}

func TestStream(t *testing.T) {
	a := &fakeAddon{}
	rec := do(t, newTestServer(a, nil), http.MethodGet, "/stream/series/tt0903747:1:2.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalogid.KindSeries, a.streamKind)
	assert.Equal(t, "tt0903747:1:2", a.streamID)
	assert.JSONEq(t, `{"streams":[{"name":"n","description":"d","url":"http://jf/videos/x"}]}`, rec.Body.String())
}

func TestStream_UnknownTypeIsEmpty(t *testing.T) {
	a := &fakeAddon{}
	rec := do(t, newTestServer(a, nil), http.MethodGet, "/stream/channel/tt1.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"streams":[]}`, rec.Body.String())
	assert.Empty(t, a.streamID)
}

func TestJellyseerrRoutesRequireTracker(t *testing.T) {
	h := newTestServer(&fakeAddon{}, nil)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/jellyseerr/request?tmdbid=1&type=movie").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/jellyseerr/request/1").Code)
}

func TestCreateRequest_Movie(t *testing.T) {
	req := &fakeRequests{}
	rec := do(t, newTestServer(&fakeAddon{}, req), http.MethodGet, "/jellyseerr/request?tmdbid=278&type=movie")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://frontend.local/request/278", rec.Header().Get("Location"))
	require.Len(t, req.created, 1)
	assert.Equal(t, jellyseerr.CreateRequest{
		MediaType:  jellyseerr.MediaTypeMovie,
		MediaID:    278,
		ProfileID:  3,
		UserID:     1,
		RootFolder: "/movies",
	}, req.created[0])
	assert.Equal(t, jellyseerr.MediaTypeMovie, req.findType)
}

func TestCreateRequest_SeriesAlias(t *testing.T) {
	req := &fakeRequests{}
	rec := do(t, newTestServer(&fakeAddon{}, req), http.MethodGet, "/jellyseerr/request?tmdbid=1396&type=series&season=2&episode=5")

	assert.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, req.created, 1)
	assert.Equal(t, jellyseerr.MediaTypeTV, req.created[0].MediaType)
	assert.Equal(t, []int{2}, req.created[0].Seasons)
	assert.Equal(t, "/tv", req.created[0].RootFolder)
}

func TestCreateRequest_ExistingIsNotDuplicated(t *testing.T) {
	req := &fakeRequests{existing: &jellyseerr.Request{ID: 5, Media: jellyseerr.Media{TMDBID: 278}}}
	rec := do(t, newTestServer(&fakeAddon{}, req), http.MethodGet, "/jellyseerr/request?tmdbid=278&type=movie")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Empty(t, req.created)
}

func TestCreateRequest_Validation(t *testing.T) {
	tests := []struct {
		name, query, code string
	}{
		{"missing tmdbid", "type=movie", "INVALID_TMDBID"},
		{"bad tmdbid", "tmdbid=abc&type=movie", "INVALID_TMDBID"},
		{"bad type", "tmdbid=1&type=anime", "INVALID_TYPE"},
		{"tv without season", "tmdbid=1&type=tv", "INVALID_SEASON"},
		{"bad episode", "tmdbid=1&type=tv&season=1&episode=x", "INVALID_EPISODE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &fakeRequests{}
			rec := do(t, newTestServer(&fakeAddon{}, req), http.MethodGet, "/jellyseerr/request?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Empty(t, req.created)
		})
	}
}

func TestCreateRequest_UpstreamFailure(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeAddon{}, &fakeRequests{findErr: jellyseerr.ErrUnavailable}),
			http.MethodGet, "/jellyseerr/request?tmdbid=278&type=movie")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("create", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeAddon{}, &fakeRequests{createErr: errors.New("quota exceeded")}),
			http.MethodGet, "/jellyseerr/request?tmdbid=278&type=movie")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestCreateRequest_RateLimited(t *testing.T) {
	h := newTestServer(&fakeAddon{}, &fakeRequests{})

	for range requestsPerMinute {
		require.Equal(t, http.StatusFound, do(t, h, http.MethodGet, "/jellyseerr/request?tmdbid=278&type=movie").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/jellyseerr/request?tmdbid=278&type=movie").Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz").Code)
}

func TestRequestDetail(t *testing.T) {
	req := &fakeRequests{
		existing: &jellyseerr.Request{ID: 5, Media: jellyseerr.Media{TMDBID: 278, MediaType: jellyseerr.MediaTypeMovie}},
		detail: &jellyseerr.RequestDetail{
			ID: 5,
			Media: jellyseerr.MediaDetail{
				TMDBID:         278,
				MediaType:      jellyseerr.MediaTypeMovie,
				Status:         json.RawMessage(`3`),
				DownloadStatus: json.RawMessage(`[{"timeLeft":"00:10:00","size":1000,"sizeLeft":250}]`),
			},
		},
	}
	rec := do(t, newTestServer(&fakeAddon{}, req), http.MethodGet, "/jellyseerr/request/278")

	require.Equal(t, http.StatusOK, rec.Code)
	var body requestDetailResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(5), body.RequestID)
	assert.Equal(t, "Processing", body.Status)
	assert.Equal(t, "00:10:00", body.TimeLeft)
	assert.Equal(t, 75, body.Percent)
	assert.Equal(t, "The Shawshank Redemption", body.Title)
	assert.Equal(t, 1994, body.ReleaseYear)
	assert.True(t, strings.HasSuffix(body.Poster, "/p.jpg"))
}

func TestRequestDetail_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		req    *fakeRequests
		want   int
	}{
		{"bad id", "/jellyseerr/request/abc", &fakeRequests{}, http.StatusBadRequest},
		{"bad type", "/jellyseerr/request/1?type=anime", &fakeRequests{}, http.StatusBadRequest},
		{"no request", "/jellyseerr/request/1", &fakeRequests{}, http.StatusNotFound},
		{"list down", "/jellyseerr/request/1", &fakeRequests{findErr: jellyseerr.ErrUnavailable}, http.StatusBadGateway},
		{"detail gone", "/jellyseerr/request/1", &fakeRequests{
			existing:  &jellyseerr.Request{ID: 2, Media: jellyseerr.Media{TMDBID: 1}},
			detailErr: jellyseerr.ErrNotFound,
		}, http.StatusNotFound},
		{"detail down", "/jellyseerr/request/1", &fakeRequests{
			existing:  &jellyseerr.Request{ID: 2, Media: jellyseerr.Media{TMDBID: 1}},
			detailErr: errors.New("timeout"),
		}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(&fakeAddon{}, tt.req), http.MethodGet, tt.target)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	h := New(testConfig(), Deps{Addon: &fakeAddon{}, Gatherer: reg}, testLogger()).Handler()

	rec := do(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jellylink_http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="GET /healthz"`)
}
