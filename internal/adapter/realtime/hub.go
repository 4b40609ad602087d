// Package realtime pushes notification events to connected web clients over
// websockets.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielBingham/communities-sub006/internal/port"
)

// Hub owns the live websocket connections, keyed by user id. One user may
// hold several connections (tabs, devices); Publish writes to all of them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]map[*websocket.Conn]struct{}
	presence *Presence
	logger   *slog.Logger

	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func NewHub(logger *slog.Logger, presence *Presence) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:    make(map[string]map[*websocket.Conn]struct{}),
		presence: presence,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The session layer upstream already vetted the request.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: 10 * time.Second,
	}
}

// ServeHTTP upgrades the request and parks the connection until the client
// goes away. The authenticated user id arrives in the X-User-ID header,
// placed there by the session middleware in front of this service.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("user")
	}
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.register(r.Context(), userID, conn)
	defer h.unregister(r.Context(), userID, conn)

	// Read loop exists only to observe the close; inbound frames are dropped.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends ev to every live connection of its recipient. An offline
// recipient is not an error; a recipient whose every connection rejects the
// write is.
func (h *Hub) Publish(ctx context.Context, ev port.RealtimeEvent) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns[ev.RecipientID]))
	for c := range h.conns[ev.RecipientID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode realtime event: %w", err)
	}

	delivered := 0
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("dropping broken websocket connection",
				"recipient", ev.RecipientID,
				"error", err,
			)
			h.unregister(ctx, ev.RecipientID, conn)
			conn.Close()
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("no live connection accepted the event for %s", ev.RecipientID)
	}
	return nil
}

// Online reports whether recipientID currently has a live connection,
// consulting shared presence when configured.
func (h *Hub) Online(ctx context.Context, recipientID string) bool {
	h.mu.RLock()
	local := len(h.conns[recipientID]) > 0
	h.mu.RUnlock()
	if local {
		return true
	}
	if h.presence != nil {
		return h.presence.IsOnline(ctx, recipientID)
	}
	return false
}

func (h *Hub) register(ctx context.Context, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.conns[userID] = set
	}
	set[conn] = struct{}{}
	h.mu.Unlock()

	if h.presence != nil {
		h.presence.SetOnline(ctx, userID)
	}
	h.logger.Debug("websocket connected", "user", userID)
}

func (h *Hub) unregister(ctx context.Context, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	remaining := len(h.conns[userID])
	h.mu.Unlock()

	if h.presence != nil && remaining == 0 {
		h.presence.SetOffline(ctx, userID)
	}
}

var _ port.RealtimePublisher = (*Hub)(nil)
