package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"

	"github.com/gorilla/websocket"
)

// Event types.
const (
	ImageAdded   = "image_added"
	ImageRemoved = "image_removed"
)

// WriteWait bounds every write to a websocket client.
const WriteWait = 10 * time.Second

// Event describes one change to the catalog. Path is relative to the
// catalog root.
type Event struct {
	Type string    `json:"type"`
	Path string    `json:"path"`
	Time time.Time `json:"time"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType, path string) Event {
	return Event{Type: eventType, Path: path, Time: time.Now().UTC()}
}

// Publisher accepts catalog events.
type Publisher interface {
	Publish(Event)
}

// Hub tracks websocket clients and broadcasts events to them. All writes to
// client connections happen on the Run goroutine.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run delivers events until ctx is canceled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			metrics.WebsocketClients.Set(float64(count))
			logging.Debug("Websocket client connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client)
			count := len(h.clients)
			h.mutex.Unlock()
			metrics.WebsocketClients.Set(float64(count))
			logging.Debug("Websocket client disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				err := client.SetWriteDeadline(time.Now().Add(WriteWait))
				if err == nil {
					err = client.WriteMessage(websocket.TextMessage, message)
				}
				if err != nil {
					logging.Warn("Error sending event to websocket client: %v", err)
					h.remove(client)
				}
			}
			count := len(h.clients)
			h.mutex.Unlock()
			metrics.WebsocketClients.Set(float64(count))
		}
	}
}

// remove drops and closes client. Callers hold the write lock.
func (h *Hub) remove(client *websocket.Conn) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		if err := client.Close(); err != nil {
			logging.Debug("Error closing websocket client: %v", err)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mutex.Lock()
		for client := range h.clients {
			h.remove(client)
		}
		h.mutex.Unlock()
		metrics.WebsocketClients.Set(0)
	})
}

// Register adds a client. After the hub has stopped the connection is closed
// instead.
func (h *Hub) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		_ = client.Close()
	}
}

// Unregister removes and closes a client.
func (h *Hub) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish implements Publisher. Events published while the buffer is full
// are dropped.
func (h *Hub) Publish(e Event) {
	message, err := json.Marshal(e)
	if err != nil {
		logging.Error("Failed to encode event: %v", err)
		return
	}

	select {
	case h.broadcast <- message:
		metrics.EventsPublished.WithLabelValues(e.Type).Inc()
	case <-h.done:
	default:
		logging.Warn("Event buffer full, dropping %s event for %s", e.Type, e.Path)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
