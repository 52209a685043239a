// Package api serves the Stremio add-on protocol and the Jellyseerr request routes.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmunix/jellylink/internal/addon"
	"github.com/vmunix/jellylink/internal/stream"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/jellyseerr"
	"github.com/vmunix/jellylink/pkg/tmdb"
)

// requestsPerMinute caps request creation per client IP.
const requestsPerMinute = 10

// Addon is the add-on pipeline.
type Addon interface {
	Manifest() addon.Manifest
	Catalog(ctx context.Context, q addon.CatalogQuery) ([]addon.MetaPreview, error)
	Streams(ctx context.Context, kind catalogid.Kind, rawID string) stream.Result
}

// Requests is the subset of the Jellyseerr API behind the request routes.
type Requests interface {
	FindByTMDBID(ctx context.Context, tmdbID int64, mediaType jellyseerr.MediaType) (*jellyseerr.Request, error)
	GetRequest(ctx context.Context, id int64) (*jellyseerr.RequestDetail, error)
	CreateRequest(ctx context.Context, payload jellyseerr.CreateRequest) (*jellyseerr.Request, error)
}

// Metadata enriches request details with TMDB data.
type Metadata interface {
	GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
	GetTV(ctx context.Context, tmdbID int64) (*tmdb.TV, error)
}

// RequestDefaults are the Jellyseerr fields of newly created requests.
type RequestDefaults struct {
	ServerID  int
	ProfileID int
	UserID    int
	Is4K      bool
	MovieRoot string
	TVRoot    string
}

// Config holds API server configuration.
type Config struct {
	FrontendURL string
	Defaults    RequestDefaults
}

// Deps are the collaborators of the server. Requests and Gatherer are optional:
// without Requests the Jellyseerr routes are not registered, without Gatherer
// there is no /metrics.
type Deps struct {
	Addon    Addon
	Requests Requests
	Metadata Metadata
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API server.
type Server struct {
	cfg  Config
	deps Deps
	log  *slog.Logger
}

// New creates a new API server.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:  cfg,
		deps: deps,
		log:  logger.With("component", "api"),
	}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Add-on protocol
	mux.HandleFunc("GET /manifest.json", s.manifest)
	mux.HandleFunc("GET /catalog/{type}/{id}", s.catalog)
	mux.HandleFunc("GET /catalog/{type}/{id}/{extra}", s.catalog)
	mux.HandleFunc("GET /stream/{type}/{id}", s.stream)

	// Jellyseerr
	if s.deps.Requests != nil {
		limit := httprate.LimitByIP(requestsPerMinute, time.Minute)
		mux.Handle("GET /jellyseerr/request", limit(http.HandlerFunc(s.createRequest)))
		mux.HandleFunc("GET /jellyseerr/request/{tmdbid}", s.requestDetail)
	}

	// System
	mux.HandleFunc("GET /healthz", s.healthz)
	if s.deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the full middleware chain around a fresh mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return logRequests(instrument(cors(mux)), s.log)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}
