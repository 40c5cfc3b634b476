package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	DetectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weready_detection_seconds",
		Help:    "Time spent on one hallucination detection call.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language", "method"})

	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weready_detections_total",
		Help: "Total number of detection calls.",
	}, []string{"language", "method"})

	UnverifiedPackagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weready_unverified_packages_total",
		Help: "Total number of package references that failed registry verification.",
	})

	RegistryLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weready_registry_lookup_seconds",
		Help:    "Time spent on one package registry existence lookup.",
		Buckets: prometheus.DefBuckets,
	}, []string{"registry", "outcome"})

	RegistryFailOpenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weready_registry_failopen_total",
		Help: "Total number of registry lookups resolved as verified due to transport failure.",
	}, []string{"registry"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weready_result_cache_hits_total",
		Help: "Total number of detection results served from the result cache.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weready_result_cache_misses_total",
		Help: "Total number of result cache lookups that missed.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weready_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
