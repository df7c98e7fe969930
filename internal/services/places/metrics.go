package places

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes
const (
	outcomeMatch     = "match"
	outcomeNoMatch   = "no_match"
	outcomeStatus    = "status_error"
	outcomeTransport = "transport_error"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tresty_places_searches_total",
			Help: "Places text searches by outcome",
		},
		[]string{"outcome"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tresty_places_search_duration_seconds",
			Help:    "Places text search latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tresty_places_cache_lookups_total",
			Help: "Enrichment cache lookups by record kind and result",
		},
		[]string{"kind", "result"},
	)
)
