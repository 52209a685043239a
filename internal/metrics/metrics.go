// Package metrics holds the Prometheus collectors of the add-on server.
// Collectors are always safe to update; they only become visible once Register is called.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jellylink"

// Decision outcomes of the stream pipeline.
const (
	OutcomePlayable    = "playable"
	OutcomeRequested   = "requested"
	OutcomeRequestLink = "request_link"
	OutcomeEmpty       = "empty"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route pattern and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5},
	}, []string{"method", "path"})

	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Calls to Jellyfin, TMDB and Jellyseerr by outcome.",
	}, []string{"service", "outcome"})

	XrefCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "xref_cache_total",
		Help:      "Title cross-reference cache lookups by result.",
	}, []string{"result"})

	StreamDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_decisions_total",
		Help:      "Stream pipeline results by outcome.",
	}, []string{"outcome"})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		UpstreamRequestsTotal,
		XrefCacheTotal,
		StreamDecisionsTotal,
	)
}

// ObserveCache counts one cross-reference cache lookup.
func ObserveCache(hit bool) {
	if hit {
		XrefCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	XrefCacheTotal.WithLabelValues("miss").Inc()
}

// ObserveUpstream counts one call to an upstream service.
func ObserveUpstream(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
}
