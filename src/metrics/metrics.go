package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed labels
const (
	FeedRealtime = "realtime"
	FeedIntraday = "intraday"
	FeedFiveDay  = "five_day"
)

var (
	// UpstreamRequests counts feed calls by outcome ("ok" or "degraded").
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spread_observer",
		Name:      "upstream_requests_total",
		Help:      "Upstream quote feed requests by feed and outcome.",
	}, []string{"feed", "outcome"})

	// CacheLookups counts five-day cache lookups ("hit" or "miss").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spread_observer",
		Name:      "history_cache_lookups_total",
		Help:      "Five-day history cache lookups by result.",
	}, []string{"result"})

	// SnapshotDuration observes full snapshot cycles by resulting state.
	SnapshotDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "spread_observer",
		Name:      "snapshot_duration_seconds",
		Help:      "Time spent computing a snapshot.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"state"})
)

// ObserveFetch records one feed call.
func ObserveFetch(feed string, degraded bool) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	UpstreamRequests.WithLabelValues(feed, outcome).Inc()
}
