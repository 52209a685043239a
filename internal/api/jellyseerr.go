package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/internal/progress"
	"github.com/vmunix/jellylink/pkg/jellyseerr"
)

// requestDetailResponse is the progress of one request joined with TMDB metadata.
type requestDetailResponse struct {
	RequestID   int64                `json:"requestId"`
	TMDBID      int64                `json:"tmdbId"`
	MediaType   jellyseerr.MediaType `json:"mediaType"`
	Status      string               `json:"status"`
	ETA         string               `json:"eta,omitempty"`
	TimeLeft    string               `json:"timeLeft,omitempty"`
	Size        int64                `json:"size"`
	SizeLeft    int64                `json:"sizeLeft"`
	Percent     int                  `json:"percent"`
	Downloaded  string               `json:"downloaded,omitempty"`
	Title       string               `json:"title,omitempty"`
	Overview    string               `json:"overview,omitempty"`
	Poster      string               `json:"poster,omitempty"`
	Backdrop    string               `json:"backdrop,omitempty"`
	ReleaseYear int                  `json:"releaseYear,omitempty"`
}

// createRequest files a Jellyseerr request unless one exists, then sends the
// client to the progress page.
func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tmdbID, err := strconv.ParseInt(q.Get("tmdbid"), 10, 64)
	if err != nil || tmdbID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_TMDBID", "invalid or missing tmdbid")
		return
	}
	mediaType, ok := parseMediaType(q.Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be 'movie' or 'tv'")
		return
	}

	payload := jellyseerr.CreateRequest{
		MediaType:  mediaType,
		MediaID:    tmdbID,
		ServerID:   s.cfg.Defaults.ServerID,
		ProfileID:  s.cfg.Defaults.ProfileID,
		UserID:     s.cfg.Defaults.UserID,
		Is4K:       s.cfg.Defaults.Is4K,
		RootFolder: s.cfg.Defaults.MovieRoot,
	}
	if mediaType == jellyseerr.MediaTypeTV {
		season, err := strconv.Atoi(q.Get("season"))
		if err != nil || season < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_SEASON", "missing or invalid season for tv")
			return
		}
		if ep := q.Get("episode"); ep != "" {
			if _, err := strconv.Atoi(ep); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_EPISODE", "invalid episode number")
				return
			}
		}
		payload.RootFolder = s.cfg.Defaults.TVRoot
		payload.Seasons = []int{season}
	}

	existing, err := s.deps.Requests.FindByTMDBID(r.Context(), tmdbID, mediaType)
	metrics.ObserveUpstream("jellyseerr", err)
	if err != nil {
		s.log.Warn("list requests failed", "tmdb_id", tmdbID, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "jellyseerr unavailable")
		return
	}

	if existing == nil {
		created, err := s.deps.Requests.CreateRequest(r.Context(), payload)
		metrics.ObserveUpstream("jellyseerr", err)
		if err != nil {
			s.log.Warn("create request failed", "tmdb_id", tmdbID, "type", mediaType, "error", err)
			writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "could not create request")
			return
		}
		s.log.Info("request filed",
			"tmdb_id", tmdbID,
			"type", mediaType,
			"seasons", payload.Seasons,
			"episode", q.Get("episode"),
			"request_id", created.ID)
	}

	http.Redirect(w, r, s.progressURL(tmdbID), http.StatusFound)
}

// requestDetail returns normalized progress for the request tracking a TMDB id.
func (s *Server) requestDetail(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(r.PathValue("tmdbid"), 10, 64)
	if err != nil || tmdbID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_TMDBID", "invalid tmdbid")
		return
	}
	var mediaType jellyseerr.MediaType
	if t := r.URL.Query().Get("type"); t != "" {
		mt, ok := parseMediaType(t)
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be 'movie' or 'tv'")
			return
		}
		mediaType = mt
	}

	found, err := s.deps.Requests.FindByTMDBID(r.Context(), tmdbID, mediaType)
	metrics.ObserveUpstream("jellyseerr", err)
	if err != nil {
		s.log.Warn("list requests failed", "tmdb_id", tmdbID, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "jellyseerr unavailable")
		return
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no request found for tmdbid "+strconv.FormatInt(tmdbID, 10))
		return
	}

	detail, err := s.deps.Requests.GetRequest(r.Context(), found.ID)
	metrics.ObserveUpstream("jellyseerr", err)
	if errors.Is(err, jellyseerr.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "request disappeared")
		return
	}
	if err != nil {
		s.log.Warn("get request failed", "request_id", found.ID, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "jellyseerr unavailable")
		return
	}

	rec := progress.Normalize(*detail)
	resp := requestDetailResponse{
		RequestID:  detail.ID,
		TMDBID:     tmdbID,
		MediaType:  detail.Media.MediaType,
		Status:     rec.Status,
		ETA:        rec.ETA,
		TimeLeft:   rec.TimeLeft,
		Size:       rec.Size,
		SizeLeft:   rec.SizeLeft,
		Percent:    rec.Percent(),
		Downloaded: rec.Downloaded(),
	}
	if resp.MediaType == "" {
		resp.MediaType = found.Media.MediaType
	}
	s.enrich(r, &resp)

	writeJSON(w, http.StatusOK, resp)
}

// enrich adds TMDB title and artwork. Failures leave the fields empty.
func (s *Server) enrich(r *http.Request, resp *requestDetailResponse) {
	if s.deps.Metadata == nil {
		return
	}

	if resp.MediaType == jellyseerr.MediaTypeTV {
		tv, err := s.deps.Metadata.GetTV(r.Context(), resp.TMDBID)
		metrics.ObserveUpstream("tmdb", err)
		if err != nil {
			s.log.Debug("tmdb series lookup failed", "tmdb_id", resp.TMDBID, "error", err)
			return
		}
		resp.Title, resp.Overview = tv.Name, tv.Overview
		resp.Poster, resp.Backdrop = tv.PosterURL("w500"), tv.BackdropURL("w1280")
		resp.ReleaseYear = tv.Year()
		return
	}

	movie, err := s.deps.Metadata.GetMovie(r.Context(), resp.TMDBID)
	metrics.ObserveUpstream("tmdb", err)
	if err != nil {
		s.log.Debug("tmdb movie lookup failed", "tmdb_id", resp.TMDBID, "error", err)
		return
	}
	resp.Title, resp.Overview = movie.Title, movie.Overview
	resp.Poster, resp.Backdrop = movie.PosterURL("w500"), movie.BackdropURL("w1280")
	resp.ReleaseYear = movie.Year()
}

func (s *Server) progressURL(tmdbID int64) string {
	return strings.TrimSuffix(s.cfg.FrontendURL, "/") + "/request/" + strconv.FormatInt(tmdbID, 10)
}

// parseMediaType accepts Jellyseerr media types and the catalog kind "series".
func parseMediaType(s string) (jellyseerr.MediaType, bool) {
	switch s {
	case "movie":
		return jellyseerr.MediaTypeMovie, true
	case "tv", "series":
		return jellyseerr.MediaTypeTV, true
	}
	return "", false
}
