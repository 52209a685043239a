// Package addon runs the add-on pipeline behind the catalog and stream resources.
package addon

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/internal/stream"
	"github.com/vmunix/jellylink/internal/xref"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/jellyfin"
	"github.com/vmunix/jellylink/pkg/tmdb"
)

const defaultCatalogLimit = 20

// Library is the subset of the Jellyfin API used for catalogs.
type Library interface {
	SearchItems(ctx context.Context, f jellyfin.ItemFilter) ([]jellyfin.Item, error)
	ImageURL(itemID, imageType string) string
}

// Metadata supplies TMDB artwork for catalog entries.
type Metadata interface {
	GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
	GetTV(ctx context.Context, tmdbID int64) (*tmdb.TV, error)
}

// TitleResolver maps title-ids to TMDB ids.
type TitleResolver interface {
	Resolve(ctx context.Context, titleID string, kind catalogid.Kind) (*xref.Mapping, error)
}

// Locator finds the library item for a catalog id whose title is already resolved.
type Locator interface {
	Locate(ctx context.Context, id catalogid.ID, mapping *xref.Mapping) (*jellyfin.Item, error)
}

// Decider turns a located title into streams.
type Decider interface {
	Decide(ctx context.Context, in stream.Input) stream.Result
}

// Config holds the manifest identity and catalog paging.
type Config struct {
	ID           string
	Name         string
	Version      string
	CatalogLimit int
}

// Deps are the collaborators of a Service.
type Deps struct {
	Library  Library
	Metadata Metadata
	Titles   TitleResolver
	Locator  Locator
	Engine   Decider
}

// Service answers manifest, catalog and stream requests.
type Service struct {
	cfg      Config
	deps     Deps
	manifest Manifest
	log      *slog.Logger
}

// New creates a Service.
func New(cfg Config, deps Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CatalogLimit <= 0 {
		cfg.CatalogLimit = defaultCatalogLimit
	}
	return &Service{
		cfg:      cfg,
		deps:     deps,
		manifest: buildManifest(cfg),
		log:      logger.With("component", "addon"),
	}
}

// Manifest returns the add-on manifest.
func (s *Service) Manifest() Manifest {
	return s.manifest
}

// Streams resolves a raw catalog id into streams. It never fails: malformed
// ids, upstream errors and panics all end in an empty result.
func (s *Service) Streams(ctx context.Context, kind catalogid.Kind, rawID string) (res stream.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("stream pipeline panic", "id", rawID, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			res = stream.Empty()
		}
		metrics.StreamDecisionsTotal.WithLabelValues(res.Outcome).Inc()
	}()

	id, err := catalogid.Parse(rawID)
	if err != nil {
		s.log.Debug("malformed catalog id", "id", rawID, "error", err)
		return stream.Empty()
	}
	if id.Kind() != kind {
		s.log.Debug("catalog id does not match requested type", "id", rawID, "type", kind)
	}

	var tmdbID int64
	mapping, err := s.deps.Titles.Resolve(ctx, id.TitleID, id.Kind())
	if err != nil {
		s.log.Warn("title resolution failed", "id", rawID, "error", err)
	} else if mapping != nil {
		tmdbID = mapping.TMDBID
	}

	var item *jellyfin.Item
	if mapping != nil {
		item, err = s.deps.Locator.Locate(ctx, id, mapping)
		metrics.ObserveUpstream("jellyfin", err)
		if err != nil {
			s.log.Warn("library lookup failed", "id", rawID, "error", err)
			item = nil
		}
	}

	res = s.deps.Engine.Decide(ctx, stream.Input{ID: id, Item: item, TMDBID: tmdbID})
	s.log.Info("stream resolved", "id", rawID, "outcome", res.Outcome, "tmdb_id", tmdbID)
	return res
}
