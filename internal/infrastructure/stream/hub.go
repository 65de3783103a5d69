// Package stream broadcasts finished document results to websocket clients,
// so a reviewer dashboard can render results as the run progresses instead of
// waiting for the batch to finish.
package stream

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storycurator/curator/internal/domain"
)

// Hub fans each published document result out to every connected client.
// Slow clients miss results rather than stalling the review run.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[chan domain.DocumentResult]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[chan domain.DocumentResult]struct{}),
	}
}

// Publish delivers a finished document result to all connected clients.
// Safe to call from concurrent review workers.
func (h *Hub) Publish(result domain.DocumentResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- result:
		default:
			// Drop if client is slow
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and streams results as JSON messages
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch := make(chan domain.DocumentResult, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}()

	// The read loop only exists to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case result := <-ch:
			if err := conn.WriteJSON(result); err != nil {
				h.logger.Debug("client write failed", zap.Error(err))
				return
			}
		}
	}
}
