// Package handlers provides the HTTP handlers for the image catalog.
//
// It includes handlers for:
//   - The paginated catalog (/get-images, /api/catalog)
//   - Serving originals and thumbnails
//   - Uploading and deleting images
//   - Client configuration and websocket change events
//   - Health checks, version and metrics
package handlers
