package handlers

import (
	"net/http"
	"time"

	"image-catalog/internal/events"
	"image-catalog/internal/logging"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamEvents upgrades the connection to a websocket and relays catalog
// change events until the client goes away.
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeJSONError(w, "Events are disabled", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		logging.Debug("Websocket upgrade failed: %v", err)
		return
	}

	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(events.WriteWait)); err != nil {
					return
				}
			}
		}
	}()

	// Clients only listen; reading drains control frames and detects close.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
