package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"image-catalog/internal/catalog"
	"image-catalog/internal/events"
	"image-catalog/internal/logging"
	"image-catalog/internal/media"
	"image-catalog/internal/metrics"
)

// Multipart field names accepted for uploaded files.
var uploadFields = []string{"images", "image"}

// uploadMemory is the part of a multipart body kept in memory before
// spilling to temporary files.
const uploadMemory = 8 << 20

// UploadedImage describes one stored upload.
type UploadedImage struct {
	Path          string `json:"path"`
	ThumbnailPath string `json:"thumbnailPath"`
}

// UploadResponse is the JSON body of a successful upload.
type UploadResponse struct {
	Status string          `json:"status"`
	Images []UploadedImage `json:"images"`
}

var uploadSeq atomic.Uint64

// Upload stores the multipart files of the request into the media
// directory and generates their thumbnails.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, fmt.Sprintf("Upload exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "Invalid multipart upload", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Debug("Failed to remove multipart temp files: %v", err)
		}
	}()

	dir, err := uploadDir(r.FormValue("dir"))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, "Invalid upload directory", http.StatusBadRequest)
		return
	}

	var files []*multipart.FileHeader
	for _, field := range uploadFields {
		files = append(files, r.MultipartForm.File[field]...)
	}
	if len(files) == 0 {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	// Validate every name before storing anything.
	names := make([]string, len(files))
	for i, fh := range files {
		name := path.Base(strings.ReplaceAll(fh.Filename, `\`, "/"))
		if !(catalog.Filter{}).Match(name) {
			metrics.UploadsTotal.WithLabelValues("rejected").Inc()
			writeJSONError(w, fmt.Sprintf("Unsupported file: %s", fh.Filename), http.StatusBadRequest)
			return
		}
		if err := checkImageHeader(fh); err != nil {
			metrics.UploadsTotal.WithLabelValues("rejected").Inc()
			logging.Debug("Rejected upload %s: %v", fh.Filename, err)
			writeJSONError(w, fmt.Sprintf("Not a readable image: %s", fh.Filename), http.StatusBadRequest)
			return
		}
		names[i] = path.Join(dir, name)
	}

	resp := UploadResponse{Status: "uploaded", Images: make([]UploadedImage, 0, len(files))}
	for i, fh := range files {
		if err := h.store(fh, names[i]); err != nil {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			logging.Error("Failed to store upload %s: %v", names[i], err)
			writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
			return
		}

		thumb, err := h.catalog.Ingest(r.Context(), names[i])
		if err != nil {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			logging.Error("Failed to generate thumbnail for %s: %v", names[i], err)
			// An image without a thumbnail would fail every catalog walk.
			if err := h.fs.Remove(names[i]); err != nil {
				logging.Warn("Failed to remove unusable upload %s: %v", names[i], err)
			}
			writeJSONError(w, "Failed to generate thumbnail", http.StatusInternalServerError)
			return
		}

		metrics.UploadsTotal.WithLabelValues("success").Inc()
		logging.Info("Stored upload %s (%d bytes)", names[i], fh.Size)
		h.publish(events.ImageAdded, names[i])
		resp.Images = append(resp.Images, UploadedImage{
			Path:          mediaURL(imagesPrefix, names[i]),
			ThumbnailPath: mediaURL(thumbnailsPrefix, thumb),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// checkImageHeader checks that an uploaded file has a decodable image header.
func checkImageHeader(fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = media.ReadResolution(f)
	return err
}

// uploadDir validates the optional target directory of an upload.
func uploadDir(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	dir, err := catalog.CleanPath(raw)
	if err != nil {
		return "", err
	}
	if hiddenPath(dir) {
		return "", catalog.ErrInvalidPath
	}
	return dir, nil
}

// store copies an uploaded file to name through a hidden temporary file so
// concurrent catalog walks never see a partial image. Replacing an image
// keeps its cached thumbnail.
func (h *Handlers) store(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if dir := path.Dir(name); dir != "." {
		if err := h.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp := path.Join(path.Dir(name), fmt.Sprintf(".upload-%d-%d", time.Now().UnixNano(), uploadSeq.Add(1)))
	dst, err := h.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = h.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := dst.Close(); err != nil {
		_ = h.fs.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := h.fs.Rename(tmp, name); err != nil {
		_ = h.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
