package metrics

// InitializeMetrics pre-populates the expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, status := range []string{"success", "error", "canceled"} {
		CatalogWalksTotal.WithLabelValues(status)
	}

	for _, result := range []string{"hit", "miss"} {
		ThumbnailCacheTotal.WithLabelValues(result)
	}
	for _, backend := range []string{"imaging", "vips"} {
		ThumbnailGenerationDuration.WithLabelValues(backend)
	}
	for _, stage := range []string{"probe", "open", "encode", "write", "rename"} {
		ThumbnailErrors.WithLabelValues(stage)
	}

	for _, status := range []string{"success", "rejected", "error"} {
		UploadsTotal.WithLabelValues(status)
	}
	for _, status := range []string{"success", "not_found", "invalid", "error"} {
		DeletesTotal.WithLabelValues(status)
	}

	for _, eventType := range []string{"image_added", "image_removed"} {
		EventsPublished.WithLabelValues(eventType)
	}

	volumes := []string{"media", "unknown"}
	ops := []string{"stat", "open", "readdir", "remove"}
	for _, vol := range volumes {
		for _, op := range ops {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
