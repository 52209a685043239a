// Package locator finds the Jellyfin item behind a catalog title-id.
package locator

//go:generate mockgen -source=locator.go -destination=mocks/locator.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vmunix/jellylink/internal/xref"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/jellyfin"
	"github.com/vmunix/jellylink/pkg/titlematch"
)

// Library is the subset of the Jellyfin API the locator needs.
type Library interface {
	SearchItems(ctx context.Context, f jellyfin.ItemFilter) ([]jellyfin.Item, error)
	GetItem(ctx context.Context, itemID string) (*jellyfin.Item, error)
	Seasons(ctx context.Context, seriesID string) ([]jellyfin.Season, error)
	Episodes(ctx context.Context, seriesID, seasonID string) ([]jellyfin.Episode, error)
}

// TitleResolver maps a title-id to its canonical title.
type TitleResolver interface {
	Resolve(ctx context.Context, titleID string, kind catalogid.Kind) (*xref.Mapping, error)
}

// Locator walks title-id → canonical title → library item.
// Every step returns nil when its link is missing; errors are upstream failures.
type Locator struct {
	lib    Library
	titles TitleResolver
	log    *slog.Logger
}

// New creates a Locator.
func New(lib Library, titles TitleResolver, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		lib:    lib,
		titles: titles,
		log:    logger.With("component", "locator"),
	}
}

// Locate dispatches on the shape of id. Episode ids with non-numeric
// season or episode never match. A nil mapping is resolved here; callers
// that already hold one pass it through.
func (l *Locator) Locate(ctx context.Context, id catalogid.ID, mapping *xref.Mapping) (*jellyfin.Item, error) {
	if !id.IsEpisode() {
		if mapping == nil {
			return l.LocateMovie(ctx, id.TitleID)
		}
		return l.movie(ctx, id.TitleID, mapping)
	}
	season, ok := id.SeasonNumber()
	if !ok {
		return nil, nil
	}
	episode, ok := id.EpisodeNumber()
	if !ok {
		return nil, nil
	}
	if mapping == nil {
		return l.LocateEpisode(ctx, id.TitleID, season, episode)
	}
	return l.episode(ctx, id.TitleID, mapping, season, episode)
}

// LocateMovie finds the movie whose IMDb provider id equals titleID.
func (l *Locator) LocateMovie(ctx context.Context, titleID string) (*jellyfin.Item, error) {
	mapping, err := l.resolve(ctx, titleID, catalogid.KindMovie)
	if err != nil || mapping == nil {
		return nil, err
	}
	return l.movie(ctx, titleID, mapping)
}

// LocateEpisode finds a series by titleID, then its season and episode by
// index number, and returns the full episode record including media sources.
func (l *Locator) LocateEpisode(ctx context.Context, titleID string, season, episode int) (*jellyfin.Item, error) {
	mapping, err := l.resolve(ctx, titleID, catalogid.KindSeries)
	if err != nil || mapping == nil {
		return nil, err
	}
	return l.episode(ctx, titleID, mapping, season, episode)
}

func (l *Locator) resolve(ctx context.Context, titleID string, kind catalogid.Kind) (*xref.Mapping, error) {
	mapping, err := l.titles.Resolve(ctx, titleID, kind)
	if err != nil {
		return nil, fmt.Errorf("resolve title: %w", err)
	}
	return mapping, nil
}

func (l *Locator) movie(ctx context.Context, titleID string, mapping *xref.Mapping) (*jellyfin.Item, error) {
	return l.find(ctx, titleID, mapping, jellyfin.ItemTypeMovie)
}

func (l *Locator) episode(ctx context.Context, titleID string, mapping *xref.Mapping, season, episode int) (*jellyfin.Item, error) {
	series, err := l.find(ctx, titleID, mapping, jellyfin.ItemTypeSeries)
	if err != nil || series == nil {
		return nil, err
	}

	seasons, err := l.lib.Seasons(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	seasonID, ok := indexed(seasons, season, func(s jellyfin.Season) (*int, string) { return s.IndexNumber, s.ID })
	if !ok {
		l.log.Debug("season not in library", "title_id", titleID, "season", season)
		return nil, nil
	}

	episodes, err := l.lib.Episodes(ctx, series.ID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	episodeID, ok := indexed(episodes, episode, func(e jellyfin.Episode) (*int, string) { return e.IndexNumber, e.ID })
	if !ok {
		l.log.Debug("episode not in library", "title_id", titleID, "season", season, "episode", episode)
		return nil, nil
	}

	item, err := l.lib.GetItem(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return item, nil
}

// find searches the library for the canonical title and keeps only the
// candidate carrying the same IMDb id.
func (l *Locator) find(ctx context.Context, titleID string, mapping *xref.Mapping, itemType jellyfin.ItemType) (*jellyfin.Item, error) {
	if mapping.Title == "" {
		return nil, nil
	}

	items, err := l.lib.SearchItems(ctx, jellyfin.ItemFilter{
		Types:      []jellyfin.ItemType{itemType},
		SearchTerm: mapping.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("search library: %w", err)
	}

	for i := range items {
		if strings.EqualFold(items[i].ProviderIDs.Imdb, titleID) {
			return &items[i], nil
		}
	}

	if len(items) > 0 {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.Name
		}
		if best := titlematch.Best(mapping.Title, names); best.Index >= 0 {
			l.log.Debug("closest title has no matching imdb id",
				"title_id", titleID,
				"title", mapping.Title,
				"candidate", best.Title,
				"candidate_imdb", items[best.Index].ProviderIDs.Imdb,
				"score", best.Score,
				"confidence", best.Confidence.String())
		}
	}
	return nil, nil
}

// indexed returns the id of the first element whose index number equals n.
func indexed[T any](list []T, n int, key func(T) (*int, string)) (string, bool) {
	for _, v := range list {
		idx, id := key(v)
		if idx != nil && *idx == n {
			return id, true
		}
	}
	return "", false
}
