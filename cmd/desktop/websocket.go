// Package main provides WebSocket broadcasting of sync events to the local UI.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rentnest/rentnest/backend/internal/models"
	syncpkg "github.com/rentnest/rentnest/backend/internal/sync"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Only allow connections from localhost
		return r.Host == "localhost" || strings.HasPrefix(r.Host, "localhost:")
	},
}

// WebSocket event types pushed during a sync pass.
const (
	EventSyncStarted      = "sync.started"
	EventSyncCompleted    = "sync.completed"
	EventSyncFailed       = "sync.failed"
	EventConflictDetected = "sync.conflict_detected"
)

// WSEnvelope wraps all WebSocket messages.
type WSEnvelope struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// WSClient represents one connected UI client.
type WSClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *WSHub
}

// WSHub maintains active client connections and broadcasts sync events.
// It implements syncpkg.EventHandler.
type WSHub struct {
	clients    map[string]*WSClient
	broadcast  chan []byte
	register   chan *WSClient
	unregister chan *WSClient
	mu         sync.RWMutex
}

// NewWSHub creates and starts a hub.
func NewWSHub() *WSHub {
	hub := &WSHub{
		clients:    make(map[string]*WSClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
	go hub.run()
	return hub
}

// run manages client connections and broadcasts.
func (h *WSHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s", client.id)

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client send buffer is full, close connection
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event envelope to all connected clients.
func (h *WSHub) Broadcast(messageType string, data map[string]interface{}) {
	envelope := WSEnvelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("[WS] Failed to marshal message: %v", err)
		return
	}
	h.broadcast <- raw
}

// SyncStarted implements syncpkg.EventHandler.
func (h *WSHub) SyncStarted(resources []string) {
	h.Broadcast(EventSyncStarted, map[string]interface{}{
		"resources": resources,
	})
}

// SyncCompleted implements syncpkg.EventHandler.
func (h *WSHub) SyncCompleted(result *syncpkg.SyncResult) {
	h.Broadcast(EventSyncCompleted, map[string]interface{}{
		"synced":    result.Stats.Synced,
		"errors":    result.Stats.Errors,
		"conflicts": result.Stats.Conflicts,
		"queued":    result.TotalConflictsQueued,
		"duration":  result.Duration.Milliseconds(),
	})
}

// SyncFailed implements syncpkg.EventHandler.
func (h *WSHub) SyncFailed(err error) {
	h.Broadcast(EventSyncFailed, map[string]interface{}{
		"error": err.Error(),
	})
}

// ConflictDetected implements syncpkg.EventHandler.
func (h *WSHub) ConflictDetected(c *models.ConflictRecord) {
	h.Broadcast(EventConflictDetected, map[string]interface{}{
		"conflict_id": c.ID,
		"resource":    c.Resource,
		"record_id":   c.RecordKey(),
		"fields":      c.Fields,
	})
}

// readPump discards client messages and detects disconnects.
func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages to the WebSocket connection.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocket upgrades connections and registers them with the hub.
func HandleWebSocket(hub *WSHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WS] Failed to upgrade: %v", err)
			return
		}

		client := &WSClient{
			id:   uuid.New().String(),
			conn: conn,
			send: make(chan []byte, 64),
			hub:  hub,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
