package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"image-catalog/internal/catalog"
	"image-catalog/internal/logging"
)

// URL prefixes under which originals and thumbnails are served.
const (
	imagesPrefix     = "/images/"
	thumbnailsPrefix = "/thumbnails/"
)

// CatalogImage is one entry of a catalog response. Placeholders have no
// thumbnail and no resolution.
type CatalogImage struct {
	Path          string  `json:"path"`
	ThumbnailPath *string `json:"thumbnailPath"`
	Resolution    *string `json:"resolution"`
	IsDirectory   bool    `json:"isDirectory"`
}

// CatalogResponse is the JSON body of a catalog page.
type CatalogResponse struct {
	Images      []CatalogImage `json:"images"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalImages int            `json:"totalImages"`
}

// mediaURL escapes each element of a root-relative path under prefix.
func mediaURL(prefix, rel string) string {
	rel = strings.TrimPrefix(rel, ".")
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return strings.TrimSuffix(prefix, "/")
	}
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return prefix + strings.Join(parts, "/")
}

// NewCatalogResponse converts a catalog page to its wire form.
func NewCatalogResponse(page catalog.Page) CatalogResponse {
	resp := CatalogResponse{
		Images:      make([]CatalogImage, 0, len(page.Entries)),
		CurrentPage: page.PageNumber,
		TotalPages:  page.TotalPages,
		TotalImages: page.TotalEntries,
	}

	for _, entry := range page.Entries {
		switch e := entry.(type) {
		case *catalog.ImageEntry:
			thumb := mediaURL(thumbnailsPrefix, e.Thumbnail)
			res := e.Resolution.String()
			resp.Images = append(resp.Images, CatalogImage{
				Path:          mediaURL(imagesPrefix, e.Source),
				ThumbnailPath: &thumb,
				Resolution:    &res,
			})
		case *catalog.DirectoryEntry:
			resp.Images = append(resp.Images, CatalogImage{
				Path:        mediaURL(imagesPrefix, e.Source),
				IsDirectory: true,
			})
		}
	}
	return resp
}

// parsePage reads the page query parameter. Missing or malformed values
// mean page 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// GetImages returns one page of the catalog.
func (h *Handlers) GetImages(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page := parsePage(r)

	result, err := h.catalog.Catalog(r.Context(), search, page)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Debug("Catalog request canceled by client")
			return
		}
		writeJSONError(w, "Cannot read catalog", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, NewCatalogResponse(result))
}
