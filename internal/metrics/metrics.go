package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	CatalogWalksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_walks_total",
			Help: "Total number of catalog walks by status",
		},
		[]string{"status"},
	)

	CatalogWalkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_catalog_walk_duration_seconds",
			Help:    "Duration of a full catalog walk in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogDirectoriesVisited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_directories_visited_total",
			Help: "Total number of directories listed by the catalog walker",
		},
	)

	CatalogListErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_list_errors_total",
			Help: "Total number of subdirectories that could not be listed",
		},
	)

	CatalogUnusableDirectories = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_unusable_directories_total",
			Help: "Total number of directories whose matching images could not be decoded",
		},
	)

	CatalogEntriesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_catalog_entries_per_walk",
			Help:    "Number of catalog entries produced by one walk",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 250, 500, 1000, 5000},
		},
	)

	ProbeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_probe_failures_total",
			Help: "Total number of images whose dimensions could not be read",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_thumbnail_cache_total",
			Help: "Thumbnail lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_catalog_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail decode, resize and encode time in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	ThumbnailErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_thumbnail_errors_total",
			Help: "Failed thumbnail generations by stage",
		},
		[]string{"stage"},
	)
)

// Intake metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_uploads_total",
			Help: "Uploaded files by status",
		},
		[]string{"status"},
	)

	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_deletes_total",
			Help: "Delete requests by status",
		},
		[]string{"status"},
	)
)

// Event metrics
var (
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_events_published_total",
			Help: "Catalog change events published by type",
		},
		[]string{"type"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_filesystem_operation_errors_total",
			Help: "Failed filesystem operations by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_filesystem_retry_attempts_total",
			Help: "Retry attempts after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_filesystem_retry_failures_total",
			Help: "Operations that still failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)
)
