/*
Package filesystem provides the filesystem collaborator used by the catalog:
a go-billy Filesystem rooted at the media directory, decorated with retry
logic for NFS stale file handle errors.

# Purpose

Media libraries are frequently NFS mounts. ESTALE (errno 116) is transient on
those mounts and retrying the same call usually succeeds. Catalog logic never
retries anything itself; this package is where retries live.

# Usage

	fs := filesystem.NewMediaFS("/srv/images", filesystem.DefaultRetryConfig())

	infos, err := fs.ReadDir("")          // catalog root
	f, err := fs.Open("trips/beach.jpg")  // relative to the root

Tests can wrap any billy.Filesystem:

	fs := filesystem.WithRetry(osfs.New(t.TempDir()), "test", cfg)

# Retry Behavior

Stat, Open, ReadDir and Remove are retried with exponential backoff:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only ESTALE triggers a retry. All other errors are returned immediately.

# Metrics

Operations are reported to the package Observer (set once at startup with
SetObserver); the metrics package provides the Prometheus implementation.
*/
package filesystem
