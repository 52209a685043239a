// Package jellyfin provides a minimal client for the Jellyfin media server API.
package jellyfin

// ItemType is a Jellyfin BaseItemKind.
type ItemType string

const (
	ItemTypeMovie   ItemType = "Movie"
	ItemTypeSeries  ItemType = "Series"
	ItemTypeSeason  ItemType = "Season"
	ItemTypeEpisode ItemType = "Episode"
)

// ProviderIDs are the external identifiers Jellyfin stores for an item.
type ProviderIDs struct {
	Imdb string `json:"Imdb,omitempty"`
	Tmdb string `json:"Tmdb,omitempty"`
	Tvdb string `json:"Tvdb,omitempty"`
}

// MediaSource is one encoded file backing an item.
type MediaSource struct {
	ID        string `json:"Id"`
	Path      string `json:"Path,omitempty"`
	Container string `json:"Container,omitempty"`
	Size      int64  `json:"Size,omitempty"`
}

// Item is a library item as returned by /Items and /Users/{id}/Items/{id}.
// List endpoints leave MediaSources empty unless asked for; series never have any.
type Item struct {
	ID                string            `json:"Id"`
	Name              string            `json:"Name"`
	OriginalTitle     string            `json:"OriginalTitle,omitempty"`
	Type              ItemType          `json:"Type"`
	ProviderIDs       ProviderIDs       `json:"ProviderIds"`
	MediaSources      []MediaSource     `json:"MediaSources,omitempty"`
	IndexNumber       *int              `json:"IndexNumber,omitempty"`
	ParentIndexNumber *int              `json:"ParentIndexNumber,omitempty"`
	SeriesID          string            `json:"SeriesId,omitempty"`
	SeasonID          string            `json:"SeasonId,omitempty"`
	Overview          string            `json:"Overview,omitempty"`
	ProductionYear    int               `json:"ProductionYear,omitempty"`
	Genres            []string          `json:"Genres,omitempty"`
	ImageTags         map[string]string `json:"ImageTags,omitempty"`
}

// HasPlayableSource reports whether the item is backed by at least one file.
func (i *Item) HasPlayableSource() bool {
	return i != nil && len(i.MediaSources) > 0
}

// Season is a season entry of /Shows/{id}/Seasons.
type Season struct {
	ID          string `json:"Id"`
	Name        string `json:"Name"`
	IndexNumber *int   `json:"IndexNumber,omitempty"`
	SeriesID    string `json:"SeriesId"`
}

// Episode is an episode entry of /Shows/{id}/Episodes.
type Episode struct {
	ID                string `json:"Id"`
	Name              string `json:"Name"`
	IndexNumber       *int   `json:"IndexNumber,omitempty"`
	ParentIndexNumber *int   `json:"ParentIndexNumber,omitempty"`
	SeriesID          string `json:"SeriesId"`
	SeasonID          string `json:"SeasonId"`
}

// ItemFilter narrows a /Items search.
type ItemFilter struct {
	Types         []ItemType
	SearchTerm    string
	StartIndex    int
	Limit         int
	HasExternalID bool
}

type pagedResult[T any] struct {
	Items            []T `json:"Items"`
	TotalRecordCount int `json:"TotalRecordCount"`
}

type authRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type authResponse struct {
	AccessToken string `json:"AccessToken"`
	User        struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	} `json:"User"`
	SessionInfo struct {
		ID string `json:"Id"`
	} `json:"SessionInfo"`
}
