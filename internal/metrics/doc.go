// Package metrics provides Prometheus instrumentation for the image catalog.
//
// All metrics are prefixed with "image_catalog_" and registered on the default
// registry through promauto, so importing the package is enough to export
// them. The HTTP server exposes them on METRICS_PORT at /metrics.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Catalog Metrics
//   - CatalogWalksTotal: walks by status (success, error, canceled)
//   - CatalogWalkDuration: wall time of one full walk
//   - CatalogDirectoriesVisited: directories listed by the walker
//   - CatalogListErrors: subdirectories that could not be listed
//   - CatalogEntriesReturned: entries produced per walk
//   - ProbeFailures: images whose dimensions could not be read
//
// ## Thumbnail Metrics
//   - ThumbnailCacheTotal: lookups by result (hit, miss)
//   - ThumbnailGenerationDuration: encode time by backend
//   - ThumbnailErrors: failed generations by stage
//
// ## Intake Metrics
//   - UploadsTotal, DeletesTotal: outcomes of the mutating endpoints
//
// ## Event Metrics
//   - WebsocketClients, EventsPublished
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by
// NewFilesystemObserver, labelled by operation and volume.
package metrics
