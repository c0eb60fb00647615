package realtime

import (
	"encoding/json"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
	syncpkg "github.com/roomcast/roomcast/internal/sync"
)

// Hub fans coordinator events out to connected admin dashboards over
// WebSocket. It implements sync.EventSink.
type Hub struct {
	clients    map[*HubClient]bool
	broadcast  chan []byte
	register   chan *HubClient
	unregister chan *HubClient
	mu         stdsync.RWMutex
}

// HubClient is one dashboard connection.
type HubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Event is the envelope every dashboard message travels in.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// compile-time check that Hub implements sync.EventSink
var _ syncpkg.EventSink = (*Hub)(nil)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*HubClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *HubClient),
		unregister: make(chan *HubClient),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Info().Int("client_count", len(h.clients)).Msg("dashboard client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Info().Int("client_count", len(h.clients)).Msg("dashboard client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer, drop it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ServeWS upgrades an HTTP request to a dashboard connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &HubClient{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *HubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *HubClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) publish(eventType string, data any, at time.Time) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: at})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to marshal hub event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Warn().Str("type", eventType).Msg("hub broadcast buffer full, dropping event")
	}
}

// sync.EventSink implementation

func (h *Hub) GroupUpdated(g model.SyncGroup, at time.Time) {
	h.publish("group-updated", g, at)
}

func (h *Hub) ConductorRevoked(groupID, displayID int, reason syncpkg.AssignReason, at time.Time) {
	h.publish("conductor-changed", map[string]any{
		"group_id":         groupID,
		"old_conductor_id": displayID,
		"new_conductor_id": nil,
		"reason":           reason,
	}, at)
}

func (h *Hub) ConductorAssigned(groupID, displayID int, reason syncpkg.AssignReason, at time.Time) {
	h.publish("conductor-changed", map[string]any{
		"group_id":         groupID,
		"old_conductor_id": nil,
		"new_conductor_id": displayID,
		"reason":           reason,
	}, at)
}

func (h *Hub) CommandApplied(groupID int, cmd syncpkg.Command, at time.Time) {
	h.publish("command", map[string]any{
		"group_id": groupID,
		"command":  cmd,
	}, at)
}
