// Package stream decides what a catalog title resolves to: a playable
// Jellyfin stream, the progress of an existing Jellyseerr request, or a link
// that files a new one.
package stream

//go:generate mockgen -source=stream.go -destination=mocks/stream.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vmunix/jellylink/internal/metrics"
	"github.com/vmunix/jellylink/internal/progress"
	"github.com/vmunix/jellylink/pkg/catalogid"
	"github.com/vmunix/jellylink/pkg/jellyfin"
	"github.com/vmunix/jellylink/pkg/jellyseerr"
)

// Stream is one Stremio stream object. Exactly one of URL and ExternalURL is set.
type Stream struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	ExternalURL string `json:"externalUrl,omitempty"`
}

// Result is the body of a stream response.
type Result struct {
	Streams []Stream `json:"streams"`
	Outcome string   `json:"-"`
}

// Empty returns a result with no streams. It serializes as {"streams":[]}.
func Empty() Result {
	return Result{Streams: []Stream{}, Outcome: metrics.OutcomeEmpty}
}

// MediaServer provides the stream origin and the session token.
type MediaServer interface {
	BaseURL() string
	AccessToken() string
}

// Tracker is the subset of the Jellyseerr API the engine reads.
type Tracker interface {
	ListRequests(ctx context.Context) ([]jellyseerr.Request, error)
	GetRequest(ctx context.Context, id int64) (*jellyseerr.RequestDetail, error)
}

// Input is everything the engine knows about one catalog title.
// Item is nil when the library does not hold the title; TMDBID is 0 when unknown.
type Input struct {
	ID     catalogid.ID
	Item   *jellyfin.Item
	TMDBID int64
}

// Engine applies the decision order: playable, already requested, request link, empty.
type Engine struct {
	media     MediaServer
	tracker   Tracker
	publicURL string
	log       *slog.Logger
}

// NewEngine creates an engine. A nil tracker disables the request branches.
func NewEngine(media MediaServer, tracker Tracker, publicURL string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		media:     media,
		tracker:   tracker,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		log:       logger.With("component", "stream"),
	}
}

// Decide never fails; every degraded path ends in a well-formed Result.
func (e *Engine) Decide(ctx context.Context, in Input) Result {
	if s, ok := e.playable(in.Item); ok {
		return Result{Streams: []Stream{s}, Outcome: metrics.OutcomePlayable}
	}

	if in.TMDBID == 0 || e.tracker == nil {
		return Empty()
	}

	link := RequestLink(e.publicURL, in.TMDBID, in.ID)

	if s, ok := e.requested(ctx, in, link); ok {
		return Result{Streams: []Stream{s}, Outcome: metrics.OutcomeRequested}
	}

	return Result{
		Streams: []Stream{{
			Name:        "Request on Jellyseerr",
			Description: fmt.Sprintf("Click to queue %s in Jellyseerr", in.ID),
			ExternalURL: link,
		}},
		Outcome: metrics.OutcomeRequestLink,
	}
}

func (e *Engine) playable(item *jellyfin.Item) (Stream, bool) {
	if !item.HasPlayableSource() {
		return Stream{}, false
	}
	id, err := FormatItemID(item.ID)
	if err != nil {
		e.log.Warn("library item id is not a uuid", "item_id", item.ID, "error", err)
		return Stream{}, false
	}

	q := "static=true" +
		"&api_key=" + url.QueryEscape(e.media.AccessToken()) +
		"&mediaSourceId=" + url.QueryEscape(item.MediaSources[0].ID)
	return Stream{
		Name:        item.Name,
		Description: fmt.Sprintf("Play “%s” on Jellyfin", item.Name),
		URL:         e.media.BaseURL() + "/videos/" + id + "/stream.mkv?" + q,
	}, true
}

func (e *Engine) requested(ctx context.Context, in Input, link string) (Stream, bool) {
	list, err := e.tracker.ListRequests(ctx)
	metrics.ObserveUpstream("jellyseerr", err)
	if err != nil {
		e.log.Warn("list requests failed", "tmdb_id", in.TMDBID, "error", err)
		return Stream{}, false
	}

	found := jellyseerr.Find(list, in.TMDBID, MediaType(in.ID.Kind()))
	if found == nil {
		return Stream{}, false
	}

	detail, err := e.tracker.GetRequest(ctx, found.ID)
	metrics.ObserveUpstream("jellyseerr", err)
	if err != nil {
		e.log.Warn("get request failed", "request_id", found.ID, "error", err)
		return Stream{}, false
	}

	rec := progress.Normalize(*detail)
	return Stream{
		Name:        "Requested for Download",
		Description: Describe(rec),
		ExternalURL: link,
	}, true
}

// Describe renders the progress block of a requested title.
// Without a time-left figure no percentage is shown.
func Describe(rec progress.Record) string {
	var b strings.Builder
	b.WriteString("Requested ✅")
	if rec.Status != "" {
		b.WriteString("\nStatus: " + rec.Status)
	}
	if !rec.HasTimeLeft {
		b.WriteString("\nCurrently being processed.")
		return b.String()
	}

	eta := rec.ETA
	if eta == "" {
		eta = "n/a"
	}
	fmt.Fprintf(&b, "\nTime Left: %s\nETA: %s\nPercent Downloaded: %d%%", rec.TimeLeft, eta, rec.Percent())
	if d := rec.Downloaded(); d != "" {
		b.WriteString(" (" + d + ")")
	}
	return b.String()
}

// FormatItemID converts a Jellyfin item id (32 hex digits) to the
// hyphenated 8-4-4-4-12 form used in stream paths.
func FormatItemID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("format item id %q: %w", id, err)
	}
	return u.String(), nil
}

// MediaType maps a catalog kind to the Jellyseerr media type.
func MediaType(kind catalogid.Kind) jellyseerr.MediaType {
	if kind == catalogid.KindSeries {
		return jellyseerr.MediaTypeTV
	}
	return jellyseerr.MediaTypeMovie
}

// RequestLink builds the mediated request URL for a TMDB id. Season and
// episode are echoed as given in the catalog id.
func RequestLink(publicURL string, tmdbID int64, id catalogid.ID) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(publicURL, "/"))
	b.WriteString("/jellyseerr/request?tmdbid=")
	b.WriteString(strconv.FormatInt(tmdbID, 10))
	b.WriteString("&type=")
	b.WriteString(string(MediaType(id.Kind())))
	if id.Season != "" {
		b.WriteString("&season=" + url.QueryEscape(id.Season))
	}
	if id.Episode != "" {
		b.WriteString("&episode=" + url.QueryEscape(id.Episode))
	}
	return b.String()
}
