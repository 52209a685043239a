// Package jellyseerr provides a client for the Jellyseerr request API.
package jellyseerr

import "encoding/json"

// MediaType is the Jellyseerr media kind.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Request is one entry of the request list.
type Request struct {
	ID    int64 `json:"id"`
	Media Media `json:"media"`
}

// Media is the media block shared by list and detail responses.
type Media struct {
	TMDBID    int64     `json:"tmdbId"`
	MediaType MediaType `json:"mediaType"`
}

// Find returns the first request in list tracking tmdbID. TMDB movie and TV
// ids are separate namespaces, so a request reporting a different media type
// is skipped; an empty mediaType on either side matches any kind.
func Find(list []Request, tmdbID int64, mediaType MediaType) *Request {
	for i := range list {
		r := &list[i]
		if r.Media.TMDBID != tmdbID {
			continue
		}
		if mediaType != "" && r.Media.MediaType != "" && r.Media.MediaType != mediaType {
			continue
		}
		return r
	}
	return nil
}

// RequestDetail is a single request as returned by /request/{id}.
//
// Status and DownloadStatus are left raw: Jellyseerr reports status as a
// numeric lifecycle code or a phase label, and downloadStatus as an object,
// an array of objects, or not at all.
type RequestDetail struct {
	ID    int64       `json:"id"`
	Media MediaDetail `json:"media"`
}

// MediaDetail is the media block of a request detail.
type MediaDetail struct {
	TMDBID         int64           `json:"tmdbId"`
	MediaType      MediaType       `json:"mediaType"`
	Status         json.RawMessage `json:"status,omitempty"`
	DownloadStatus json.RawMessage `json:"downloadStatus,omitempty"`
}

// CreateRequest is the payload of POST /request.
type CreateRequest struct {
	MediaType  MediaType `json:"mediaType"`
	MediaID    int64     `json:"mediaId"`
	ServerID   int       `json:"serverId"`
	Is4K       bool      `json:"is4k"`
	ProfileID  int       `json:"profileId"`
	RootFolder string    `json:"rootFolder,omitempty"`
	UserID     int       `json:"userId,omitempty"`
	Tags       []int     `json:"tags,omitempty"`
	Seasons    []int     `json:"seasons,omitempty"`
}

type pageResponse struct {
	Results []Request `json:"results"`
}

type detailEnvelope struct {
	RequestDetail
	Results []RequestDetail `json:"results"`
}

type errorResponse struct {
	Message string `json:"message"`
}
