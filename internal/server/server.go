// Package server exposes matches over WebSocket: one connection plays the
// human seat of one match against the autonomous opponent.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The browser client is served from anywhere during development.
		return true
	},
}

// Hub tracks connected clients and tears their matches down when they drop.
type Hub struct {
	logger  *zap.Logger
	manager *Manager

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a hub over the given match manager.
func NewHub(manager *Manager, logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		manager:    manager,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes client registration until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			delete(h.clients, client)
			close(client.send)
			if client.engine != nil {
				h.manager.Remove(client.engine.GameID())
			}
			h.logger.Debug("client disconnected", zap.Int("clients", len(h.clients)))

		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.manager.CloseAll()
			return
		}
	}
}

// Stop shuts the hub down and closes every match.
func (h *Hub) Stop() {
	close(h.done)
}

// ServeWS upgrades an HTTP request into a game connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := newClient(h, conn, h.logger)
	h.register <- client

	go client.writePump()
	go client.readPump(context.Background())
}

// Handler returns the HTTP mux for the hub.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
