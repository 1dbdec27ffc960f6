package handlers

import (
	"time"

	"image-catalog/internal/catalog"
	"image-catalog/internal/events"

	"github.com/go-git/go-billy/v5"
)

// Options configures the handlers beyond the catalog service.
type Options struct {
	// CopyURL is the base URL clients use for copied links. Empty means the
	// request origin.
	CopyURL string
	// MaxUploadBytes bounds the size of an upload request body.
	MaxUploadBytes int64
	// Hub serves websocket clients. Nil disables /ws.
	Hub *events.Hub
	// Publisher receives upload and delete events. Nil when a watcher
	// reports changes instead.
	Publisher events.Publisher
}

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	catalog   *catalog.Service
	fs        billy.Filesystem
	copyURL   string
	maxUpload int64
	hub       *events.Hub
	publisher events.Publisher
	started   time.Time
}

// New creates the handlers for svc.
func New(svc *catalog.Service, opts Options) *Handlers {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handlers{
		catalog:   svc,
		fs:        svc.Filesystem(),
		copyURL:   opts.CopyURL,
		maxUpload: maxUpload,
		hub:       opts.Hub,
		publisher: opts.Publisher,
		started:   time.Now(),
	}
}

func (h *Handlers) publish(eventType, path string) {
	if h.publisher != nil {
		h.publisher.Publish(events.NewEvent(eventType, path))
	}
}
