package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"image-catalog/internal/catalog"
	"image-catalog/internal/events"
	"image-catalog/internal/logging"
	"image-catalog/internal/media"
	"image-catalog/internal/mediatypes"

	"github.com/gorilla/mux"
)

// ServeImage serves an original image from the media directory.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	name, err := catalog.CleanPath(mux.Vars(r)["path"])
	if err != nil || hiddenPath(name) || !(catalog.Filter{}).Match(name) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.serveFile(w, r, name, mediatypes.GetMimeType(mediatypes.Ext(name)))
}

// ServeThumbnail serves a cached thumbnail. Thumbnails are always JPEG.
func (h *Handlers) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	name, err := catalog.CleanPath(mux.Vars(r)["path"])
	if err != nil || hiddenPath(name) || !media.IsThumbnail(name) || !mediatypes.IsImage(name) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	h.serveFile(w, r, name, "image/jpeg")
}

// hiddenPath reports whether any segment of a cleaned path is hidden.
func hiddenPath(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if mediatypes.IsHidden(part) {
			return true
		}
	}
	return false
}

// serveFile streams name from the media filesystem with range support.
func (h *Handlers) serveFile(w http.ResponseWriter, r *http.Request, name, contentType string) {
	info, err := h.fs.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		logging.Error("Failed to stat %s: %v", name, err)
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}

	f, err := h.fs.Open(name)
	if err != nil {
		logging.Error("Failed to open %s: %v", name, err)
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Debug("Failed to close %s: %v", name, err)
		}
	}()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// DeleteImage removes an image and its thumbnail.
func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["path"]

	err := h.catalog.Delete(raw)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNotFound):
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	case errors.Is(err, catalog.ErrInvalidPath):
		writeJSONError(w, "Invalid image path", http.StatusBadRequest)
		return
	default:
		logging.Error("Failed to delete %s: %v", raw, err)
		writeJSONError(w, "Failed to delete image", http.StatusInternalServerError)
		return
	}

	if name, err := catalog.CleanPath(raw); err == nil {
		h.publish(events.ImageRemoved, name)
	}
	writeJSONStatus(w, "deleted")
}
