// Package catalogid parses Stremio catalog identifiers.
//
// A catalog identifier is either a bare title-id ("tt0111161") naming a movie,
// or "title-id:season:episode" naming a single episode of a series.
package catalogid

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformed is returned when an identifier has neither one nor three
// colon-separated components.
var ErrMalformed = errors.New("malformed catalog id")

// Kind is the media kind an identifier refers to.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// ID is a parsed catalog identifier.
// Season and Episode hold the raw text so that request links can echo it back.
// The three-component shape is recorded separately since either text may be empty.
type ID struct {
	TitleID string
	Season  string
	Episode string

	episode bool
}

// Parse decodes a catalog identifier.
// Non-numeric season or episode text is accepted here; it just never matches
// an ordinal downstream.
func Parse(raw string) (ID, error) {
	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return ID{}, ErrMalformed
		}
		return ID{TitleID: parts[0]}, nil
	case 3:
		if parts[0] == "" {
			return ID{}, ErrMalformed
		}
		return ID{TitleID: parts[0], Season: parts[1], Episode: parts[2], episode: true}, nil
	default:
		return ID{}, ErrMalformed
	}
}

// IsEpisode reports whether the identifier names an episode.
func (id ID) IsEpisode() bool {
	return id.episode || id.Season != "" || id.Episode != ""
}

// Kind returns KindSeries for episode identifiers and KindMovie otherwise.
func (id ID) Kind() Kind {
	if id.IsEpisode() {
		return KindSeries
	}
	return KindMovie
}

// SeasonNumber returns the season ordinal, or false if it is not a non-negative integer.
func (id ID) SeasonNumber() (int, bool) {
	return ordinal(id.Season)
}

// EpisodeNumber returns the episode ordinal, or false if it is not a non-negative integer.
func (id ID) EpisodeNumber() (int, bool) {
	return ordinal(id.Episode)
}

// String rebuilds the catalog form of the identifier.
func (id ID) String() string {
	if !id.IsEpisode() {
		return id.TitleID
	}
	return id.TitleID + ":" + id.Season + ":" + id.Episode
}

func ordinal(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
