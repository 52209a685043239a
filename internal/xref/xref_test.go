package xref_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/jellylink/internal/xref"
	"github.com/vmunix/jellylink/internal/xref/mocks"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/tmdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func matrixResult() *tmdb.FindResult {
	return &tmdb.FindResult{
		MovieResults: []tmdb.MovieResult{{ID: 603, Title: "The Matrix"}, {ID: 1, Title: "Other"}},
	}
}

func TestResolve_MovieMissThenHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	finder.EXPECT().
		FindByExternalID(gomock.Any(), "tt0133093").
		Return(matrixResult(), nil).
		Times(1)

	r := xref.NewResolver(finder, nil, testLogger())

	first, err := r.Resolve(context.Background(), "tt0133093", catalogid.KindMovie)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(603), first.TMDBID)
	assert.Equal(t, "The Matrix", first.Title)

	// Second call is answered from the cache: Times(1) fails the test otherwise.
	second, err := r.Resolve(context.Background(), "tt0133093", catalogid.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_SeriesUsesTVResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	finder.EXPECT().
		FindByExternalID(gomock.Any(), "tt0903747").
		Return(&tmdb.FindResult{
			MovieResults: []tmdb.MovieResult{{ID: 9, Title: "Wrong kind"}},
			TVResults:    []tmdb.TVResult{{ID: 1396, OriginalName: "Breaking Bad"}},
		}, nil)

	r := xref.NewResolver(finder, nil, testLogger())

	m, err := r.Resolve(context.Background(), "tt0903747", catalogid.KindSeries)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, int64(1396), m.TMDBID)
	assert.Equal(t, "Breaking Bad", m.Title, "falls back to the original name")
}

func TestResolve_KindMismatchIsNoMapping(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	finder.EXPECT().
		FindByExternalID(gomock.Any(), "tt0133093").
		Return(matrixResult(), nil).
		Times(2)

	store := xref.NewMemoryStore()
	r := xref.NewResolver(finder, store, testLogger())

	for range 2 {
		m, err := r.Resolve(context.Background(), "tt0133093", catalogid.KindSeries)
		require.NoError(t, err)
		assert.Nil(t, m)
	}
	assert.Zero(t, store.Len(), "absence is never cached")
}

func TestResolve_NotFoundIsNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	finder.EXPECT().
		FindByExternalID(gomock.Any(), "tt9999999").
		Return(nil, tmdb.ErrNotFound)

	r := xref.NewResolver(finder, nil, testLogger())

	m, err := r.Resolve(context.Background(), "tt9999999", catalogid.KindMovie)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestResolve_ErrorsAreRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	gomock.InOrder(
		finder.EXPECT().
			FindByExternalID(gomock.Any(), "tt0133093").
			Return(nil, errors.New("connection refused")),
		finder.EXPECT().
			FindByExternalID(gomock.Any(), "tt0133093").
			Return(matrixResult(), nil),
	)

	r := xref.NewResolver(finder, nil, testLogger())

	m, err := r.Resolve(context.Background(), "tt0133093", catalogid.KindMovie)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, m)

	m, err = r.Resolve(context.Background(), "tt0133093", catalogid.KindMovie)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, int64(603), m.TMDBID)
}

func TestResolve_ConcurrentMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	finder.EXPECT().
		FindByExternalID(gomock.Any(), "tt0133093").
		Return(matrixResult(), nil).
		MinTimes(1).
		MaxTimes(8)

	store := xref.NewMemoryStore()
	r := xref.NewResolver(finder, store, testLogger())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := r.Resolve(context.Background(), "tt0133093", catalogid.KindMovie)
			assert.NoError(t, err)
			if assert.NotNil(t, m) {
				assert.Equal(t, int64(603), m.TMDBID)
			}
		}()
	}
	wg.Wait()

	got, ok := store.Get(context.Background(), xref.Key(catalogid.KindMovie, "tt0133093"))
	require.True(t, ok)
	assert.Equal(t, xref.Mapping{TMDBID: 603, Title: "The Matrix"}, got)
	assert.Equal(t, 1, store.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "movie:tt1", xref.Key(catalogid.KindMovie, "tt1"))
	assert.Equal(t, "series:tt1", xref.Key(catalogid.KindSeries, "tt1"))
}
