package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every application route. A non-empty staticDir is
// served for all remaining paths.
func NewRouter(h *Handlers, staticDir string) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Catalog
	r.HandleFunc("/get-images", h.GetImages).Methods("GET")
	r.HandleFunc("/config", h.GetConfig).Methods("GET")
	r.HandleFunc("/upload", h.Upload).Methods("POST")
	r.HandleFunc("/ws", h.StreamEvents).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", h.GetImages).Methods("GET")
	api.HandleFunc("/image/{path:.*}", h.DeleteImage).Methods("DELETE")

	// Media files
	r.HandleFunc("/images/{path:.*}", h.ServeImage).Methods("GET", "HEAD")
	r.HandleFunc("/thumbnails/{path:.*}", h.ServeThumbnail).Methods("GET", "HEAD")

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}
