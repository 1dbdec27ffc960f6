package handlers

import (
	"net/http"
)

// ClientConfig is the configuration handed to the browser client.
type ClientConfig struct {
	CopyURL string `json:"copyUrl"`
}

// GetConfig returns the client configuration. Without a configured copy
// URL the request origin is used.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	copyURL := h.copyURL
	if copyURL == "" {
		copyURL = requestOrigin(r)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, ClientConfig{CopyURL: copyURL})
}
