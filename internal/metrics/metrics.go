package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_transitions_total",
		Help: "Drill-down state machine transitions by kind and outcome",
	}, []string{"kind", "outcome"})
	GeometryFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_geometry_fetch_duration_ms",
		Help:    "Geometry resource fetch and decode duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	GeometryCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_geometry_cache_hits_total",
		Help: "Geometry cache hits by layer (lru, redis)",
	}, []string{"layer"})
	GeometryCacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_geometry_cache_misses_total",
		Help: "Geometry cache misses by layer (lru, redis)",
	}, []string{"layer"})
	StaleResponsesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_stale_responses_total",
		Help: "Geometry responses discarded because a newer transition superseded them",
	})
	MarkersRendered = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "atlas_markers_rendered",
		Help: "Markers in the current marker layer by mode",
	}, []string{"mode"})
	AggregationDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_aggregation_duration_ms",
		Help:    "Aggregation pipeline duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 500},
	}, []string{"op"})
	DatasetRowsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atlas_dataset_rows",
		Help: "Listing rows loaded at startup",
	})
)

func init() {
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(GeometryFetchDurationMs)
	prometheus.MustRegister(GeometryCacheHitsTotal)
	prometheus.MustRegister(GeometryCacheMissesTotal)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(MarkersRendered)
	prometheus.MustRegister(AggregationDurationMs)
	prometheus.MustRegister(DatasetRowsLoaded)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
