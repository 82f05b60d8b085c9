package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes recorded in LookupsTotal.
const (
	StatusFound        = "found"
	StatusEmpty        = "empty"
	StatusMissingQuery = "missing_query"
	StatusNoResult     = "no_result"
	StatusTimeout      = "timeout"
	StatusError        = "error"
)

// Cache results recorded in CacheRequests.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	LookupsTotal      *prometheus.CounterVec
	GeocodeErrors     prometheus.Counter
	GeocodeSeconds    *prometheus.HistogramVec
	ResolveSeconds    prometheus.Histogram
	DatasetPoints     prometheus.Gauge
	SnapshotBuiltAt   prometheus.Gauge
	SnapshotRefreshes *prometheus.CounterVec
	CacheRequests     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LookupsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "cellmap_lookups_total",
			Help: "Total number of coverage lookups by outcome.",
		}, []string{"status"}),
		GeocodeErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "cellmap_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		GeocodeSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cellmap_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ResolveSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "cellmap_resolve_duration_seconds",
			Help:    "Duration of nearest coverage point searches.",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		DatasetPoints: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "cellmap_dataset_points",
			Help: "Number of coverage points in the published snapshot.",
		}),
		SnapshotBuiltAt: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "cellmap_snapshot_built_timestamp_seconds",
			Help: "Unix time at which the published snapshot was built.",
		}),
		SnapshotRefreshes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "cellmap_snapshot_refreshes_total",
			Help: "Total number of dataset snapshot reloads by status.",
		}, []string{"status"}),
		CacheRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "cellmap_geocoding_cache_requests_total",
			Help: "Total number of geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}
