package websocket

import (
	"sync"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/pkg/config"
)

type broadcastMessage struct {
	eventType string
	payload   []byte
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	settings   *Settings
}

func NewHub(cfg *config.WebSocketConfig) *Hub {
	settings := NewSettings(cfg)

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage, settings.BroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		settings:   settings,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Infof("WebSocket client connected (total: %d)", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Infof("WebSocket client disconnected (total: %d)", h.ClientCount())

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) deliver(message broadcastMessage) {
	var stale []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.wants(message.eventType) {
			continue
		}
		select {
		case client.send <- message.payload:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	// Clients with a full send buffer are not keeping up; drop them.
	if len(stale) > 0 {
		h.mu.Lock()
		for _, client := range stale {
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		}
		h.mu.Unlock()
	}
}

// Broadcast queues a message for every client subscribed to eventType.
func (h *Hub) Broadcast(eventType string, payload []byte) {
	select {
	case h.broadcast <- broadcastMessage{eventType: eventType, payload: payload}:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) bool {
	if h.ClientCount() >= h.settings.MaxConnections {
		return false
	}
	h.register <- client
	return true
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
