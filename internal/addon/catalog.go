package addon

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sourcegraph/conc/iter"

	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/jellyfin"
)

const metaWorkers = 4

// MetaPreview is a catalog entry in Stremio's shape.
type MetaPreview struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Poster      string   `json:"poster,omitempty"`
	Background  string   `json:"background,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	ReleaseInfo string   `json:"releaseInfo,omitempty"`
	Description string   `json:"description,omitempty"`
}

// CatalogQuery is a parsed catalog request.
type CatalogQuery struct {
	Kind   catalogid.Kind
	Search string
	Skip   int
}

// Catalog lists library titles of one kind as meta previews.
// Items without an IMDb id are skipped because clients cannot address them.
func (s *Service) Catalog(ctx context.Context, q CatalogQuery) ([]MetaPreview, error) {
	itemType := jellyfin.ItemTypeMovie
	if q.Kind == catalogid.KindSeries {
		itemType = jellyfin.ItemTypeSeries
	}

	items, err := s.deps.Library.SearchItems(ctx, jellyfin.ItemFilter{
		Types:         []jellyfin.ItemType{itemType},
		SearchTerm:    q.Search,
		StartIndex:    q.Skip,
		Limit:         s.cfg.CatalogLimit,
		HasExternalID: true,
	})
	metrics.ObserveUpstream("jellyfin", err)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	addressable := make([]jellyfin.Item, 0, len(items))
	for _, it := range items {
		if it.ProviderIDs.Imdb != "" {
			addressable = append(addressable, it)
		}
	}

	mapper := iter.Mapper[jellyfin.Item, MetaPreview]{MaxGoroutines: metaWorkers}
	metas := mapper.Map(addressable, func(it *jellyfin.Item) MetaPreview {
		return s.toMeta(ctx, q.Kind, it)
	})

	s.log.Debug("catalog built", "kind", q.Kind, "search", q.Search, "skip", q.Skip, "items", len(items), "metas", len(metas))
	return metas, nil
}

// toMeta converts an item, preferring TMDB artwork and falling back to Jellyfin images.
func (s *Service) toMeta(ctx context.Context, kind catalogid.Kind, it *jellyfin.Item) MetaPreview {
	m := MetaPreview{
		ID:          it.ProviderIDs.Imdb,
		Type:        string(kind),
		Name:        it.Name,
		Genres:      it.Genres,
		Description: it.Overview,
	}
	if it.ProductionYear > 0 {
		m.ReleaseInfo = strconv.Itoa(it.ProductionYear)
	}

	if s.deps.Metadata != nil {
		if id, err := strconv.ParseInt(it.ProviderIDs.Tmdb, 10, 64); err == nil && id > 0 {
			m.Poster, m.Background = s.artwork(ctx, kind, id)
		}
	}
	if m.Poster == "" {
		m.Poster = s.deps.Library.ImageURL(it.ID, "Primary")
	}
	if m.Background == "" {
		m.Background = s.deps.Library.ImageURL(it.ID, "Backdrop")
	}
	return m
}

func (s *Service) artwork(ctx context.Context, kind catalogid.Kind, tmdbID int64) (poster, backdrop string) {
	if kind == catalogid.KindSeries {
		tv, err := s.deps.Metadata.GetTV(ctx, tmdbID)
		metrics.ObserveUpstream("tmdb", err)
		if err != nil {
			s.log.Debug("tmdb series artwork unavailable", "tmdb_id", tmdbID, "error", err)
			return "", ""
		}
		return tv.PosterURL("w500"), tv.BackdropURL("w1280")
	}

	movie, err := s.deps.Metadata.GetMovie(ctx, tmdbID)
	metrics.ObserveUpstream("tmdb", err)
	if err != nil {
		s.log.Debug("tmdb movie artwork unavailable", "tmdb_id", tmdbID, "error", err)
		return "", ""
	}
	return movie.PosterURL("w500"), movie.BackdropURL("w1280")
}
