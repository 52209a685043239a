package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vmunix/jellylink/internal/addon"
	"github.com/vmunix/jellylink/internal/stream"
	"github.com/vmunix/jellylink/pkg/catalogid"
)

type catalogResponse struct {
	Metas []addon.MetaPreview `json:"metas"`
}

func (s *Server) manifest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Addon.Manifest())
}

// catalog serves /catalog/{type}/{id}.json and /catalog/{type}/{id}/{extra}.json,
// where extra is a query string such as "search=alien&skip=20".
func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r.PathValue("type"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown catalog type")
		return
	}
	id := strings.TrimSuffix(r.PathValue("id"), ".json")
	if id != addon.CatalogMovies && id != addon.CatalogSeries {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown catalog")
		return
	}

	extra := r.URL.Query()
	if raw := r.PathValue("extra"); raw != "" {
		parsed, err := url.ParseQuery(strings.TrimSuffix(raw, ".json"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_EXTRA", "malformed catalog extra")
			return
		}
		extra = parsed
	}
	skip, _ := strconv.Atoi(extra.Get("skip"))

	metas, err := s.deps.Addon.Catalog(r.Context(), addon.CatalogQuery{
		Kind:   kind,
		Search: extra.Get("search"),
		Skip:   max(skip, 0),
	})
	if err != nil {
		s.log.Warn("catalog failed", "type", kind, "error", err)
		metas = nil
	}
	if metas == nil {
		metas = []addon.MetaPreview{}
	}
	writeJSON(w, http.StatusOK, catalogResponse{Metas: metas})
}

// stream always answers 200; the worst case is an empty stream list.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r.PathValue("type"))
	if !ok {
		writeJSON(w, http.StatusOK, stream.Empty())
		return
	}
	id := strings.TrimSuffix(r.PathValue("id"), ".json")
	writeJSON(w, http.StatusOK, s.deps.Addon.Streams(r.Context(), kind, id))
}

func parseKind(s string) (catalogid.Kind, bool) {
	switch catalogid.Kind(s) {
	case catalogid.KindMovie:
		return catalogid.KindMovie, true
	case catalogid.KindSeries:
		return catalogid.KindSeries, true
	}
	return "", false
}
