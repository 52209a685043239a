// Package app assembles the clients and services of a jellylink process
// from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vmunix/jellylink/internal/addon"
	"github.com/vmunix/jellylink/internal/api"
	"github.com/vmunix/jellylink/internal/config"
	"github.com/vmunix/jellylink/internal/locator"
	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/internal/server"
	"github.com/vmunix/jellylink/internal/stream"
	"github.com/vmunix/jellylink/internal/xref"
	"github.com/vmunix/jellylink/pkg/jellyfin"
	"github.com/vmunix/jellylink/pkg/jellyseerr"
	"github.com/vmunix/jellylink/pkg/tmdb"
)

// App holds the wired components. Jellyseerr and Registry are nil when
// the corresponding feature is disabled.
type App struct {
	Jellyfin   *jellyfin.Client
	TMDB       *tmdb.Client
	Jellyseerr *jellyseerr.Client
	Titles     *xref.Resolver
	Addon      *addon.Service
	API        *api.Server
	Registry   *prometheus.Registry

	closeStore func() error
	log        *slog.Logger
}

// New builds every component. It opens the title cache but does not
// contact Jellyfin; call Connect before serving.
func New(ctx context.Context, cfg *config.Config, version string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{log: logger.With("component", "app")}

	a.Jellyfin = jellyfin.New(cfg.Jellyfin.URL, cfg.Jellyfin.Username, cfg.Jellyfin.Password,
		jellyfin.WithDeviceID(cfg.Jellyfin.DeviceID),
		jellyfin.WithLogger(logger),
	)
	a.TMDB = tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithRateLimit(cfg.TMDB.RateLimit, cfg.TMDB.Burst),
		tmdb.WithLogger(logger),
	)

	// A nil *jellyseerr.Client must not leak into the interfaces below.
	var (
		tracker  stream.Tracker
		requests api.Requests
	)
	if cfg.Jellyseerr.Enabled {
		a.Jellyseerr = jellyseerr.New(cfg.Jellyseerr.URL, cfg.Jellyseerr.APIKey, jellyseerr.WithLogger(logger))
		tracker, requests = a.Jellyseerr, a.Jellyseerr
	}

	store, closeStore, err := OpenXrefStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("xref cache: %w", err)
	}
	a.closeStore = closeStore

	a.Titles = xref.NewResolver(a.TMDB, store, logger)
	loc := locator.New(a.Jellyfin, a.Titles, logger)
	engine := stream.NewEngine(a.Jellyfin, tracker, cfg.Server.PublicURL, logger)
	a.Addon = addon.New(addon.Config{
		ID:           cfg.Addon.ID,
		Name:         cfg.Addon.Name,
		Version:      version,
		CatalogLimit: cfg.Addon.CatalogLimit,
	}, addon.Deps{
		Library:  a.Jellyfin,
		Metadata: a.TMDB,
		Titles:   a.Titles,
		Locator:  loc,
		Engine:   engine,
	}, logger)

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics.Register(a.Registry)
		gatherer = a.Registry
	}

	a.API = api.New(api.Config{
		FrontendURL: cfg.Jellyseerr.FrontendURL,
		Defaults: api.RequestDefaults{
			ServerID:  cfg.Jellyseerr.ServerID,
			ProfileID: cfg.Jellyseerr.ProfileID,
			UserID:    cfg.Jellyseerr.UserID,
			Is4K:      cfg.Jellyseerr.Is4K,
			MovieRoot: cfg.Jellyseerr.MovieRoot,
			TVRoot:    cfg.Jellyseerr.TVRoot,
		},
	}, api.Deps{
		Addon:    a.Addon,
		Requests: requests,
		Metadata: a.TMDB,
		Gatherer: gatherer,
	}, logger)

	return a, nil
}

// Connect opens the Jellyfin session, retrying while the server is unreachable.
// Bad credentials fail immediately.
func (a *App) Connect(ctx context.Context, attempts uint) error {
	err := server.Connect(ctx, a.Jellyfin, server.ConnectOptions{
		Attempts:  attempts,
		Delay:     time.Second,
		Permanent: func(err error) bool { return errors.Is(err, jellyfin.ErrUnauthorized) },
	}, a.log)
	if err != nil {
		return fmt.Errorf("jellyfin: %w", err)
	}
	return nil
}

// Close ends the Jellyfin session and closes the title cache.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Jellyfin.Logout(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.closeStore(); err != nil {
		errs = append(errs, fmt.Errorf("close xref cache: %w", err))
	}
	return errors.Join(errs...)
}

// OpenXrefStore builds the title cache for the configured backend.
// The returned close func is never nil.
func OpenXrefStore(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (xref.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.CacheRedis:
		rs, err := xref.NewRedisStore(ctx, xref.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, noop, err
		}
		return xref.NewTiered(rs, logger), rs.Close, nil

	case config.CacheSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, noop, fmt.Errorf("create cache dir: %w", err)
		}
		ss, err := xref.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return xref.NewTiered(ss, logger), ss.Close, nil

	default:
		return xref.NewMemoryStore(), noop, nil
	}
}
