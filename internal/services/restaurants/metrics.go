package restaurants

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tresty_dataset_refreshes_total",
			Help: "Restaurant dataset refresh attempts by result.",
		},
		[]string{"result"},
	)

	restaurantsIndexed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tresty_restaurants_indexed",
			Help: "Number of restaurants in the current dataset index.",
		},
	)
)
