package catalog

import "errors"

var (
	// ErrCatalogUnavailable is returned when the catalog root cannot be listed.
	ErrCatalogUnavailable = errors.New("catalog root unavailable")

	// ErrNotFound is returned when a path names nothing on disk.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPath is returned for paths that are not catalogued images:
	// directories, thumbnails, other file types, or paths leaving the root.
	ErrInvalidPath = errors.New("invalid path")
)
