// Package xref maps catalog title-ids to TMDB ids and caches the answers.
package xref

//go:generate mockgen -source=xref.go -destination=mocks/xref.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/tmdb"
)

// Mapping is the TMDB identity of a catalog title.
type Mapping struct {
	TMDBID int64  `json:"tmdb_id"`
	Title  string `json:"title"`
}

// Finder looks titles up by external id. *tmdb.Client satisfies it.
type Finder interface {
	FindByExternalID(ctx context.Context, imdbID string) (*tmdb.FindResult, error)
}

// Resolver resolves title-ids through a Store, falling back to a Finder on a miss.
type Resolver struct {
	finder Finder
	store  Store
	log    *slog.Logger
}

// NewResolver creates a resolver. A nil store gets a fresh MemoryStore.
func NewResolver(finder Finder, store Store, logger *slog.Logger) *Resolver {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		finder: finder,
		store:  store,
		log:    logger.With("component", "xref"),
	}
}

// Key is the cache key of a title-id for a kind.
func Key(kind catalogid.Kind, titleID string) string {
	return string(kind) + ":" + titleID
}

// Resolve returns the mapping of titleID, or nil when TMDB has no title of that kind.
// Errors are upstream failures; they are never cached.
func (r *Resolver) Resolve(ctx context.Context, titleID string, kind catalogid.Kind) (*Mapping, error) {
	key := Key(kind, titleID)
	if m, ok := r.store.Get(ctx, key); ok {
		metrics.ObserveCache(true)
		return &m, nil
	}
	metrics.ObserveCache(false)

	found, err := r.finder.FindByExternalID(ctx, titleID)
	if errors.Is(err, tmdb.ErrNotFound) {
		metrics.ObserveUpstream("tmdb", nil)
		r.log.Debug("no tmdb title", "title_id", titleID, "kind", kind)
		return nil, nil
	}
	metrics.ObserveUpstream("tmdb", err)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", titleID, err)
	}

	m, ok := pick(found, kind)
	if !ok {
		r.log.Debug("no tmdb title of kind", "title_id", titleID, "kind", kind)
		return nil, nil
	}

	r.store.Put(ctx, key, m)
	r.log.Debug("resolved title", "title_id", titleID, "tmdb_id", m.TMDBID, "title", m.Title)
	return &m, nil
}

// pick takes the first result of the requested kind.
func pick(found *tmdb.FindResult, kind catalogid.Kind) (Mapping, bool) {
	if found == nil {
		return Mapping{}, false
	}
	switch kind {
	case catalogid.KindMovie:
		if len(found.MovieResults) == 0 {
			return Mapping{}, false
		}
		mr := found.MovieResults[0]
		title := mr.Title
		if title == "" {
			title = mr.OriginalTitle
		}
		return Mapping{TMDBID: mr.ID, Title: title}, true
	case catalogid.KindSeries:
		if len(found.TVResults) == 0 {
			return Mapping{}, false
		}
		tr := found.TVResults[0]
		title := tr.Name
		if title == "" {
			title = tr.OriginalName
		}
		return Mapping{TMDBID: tr.ID, Title: title}, true
	}
	return Mapping{}, false
}
