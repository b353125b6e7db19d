// Package websocket pushes delivery events to connected clients. Clients
// subscribe to conversations; every committed message delivery in a
// subscribed conversation is fanned out as a delivery event.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mailfold/mailfold-backend/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeDelivery    MessageType = "delivery"
	MessageTypeError       MessageType = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type           MessageType `json:"type"`
	ConversationID uint        `json:"conversation_id,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// DeliveryPayload describes one committed delivery to subscribers
type DeliveryPayload struct {
	NotificationID uint   `json:"notification_id"`
	Sender         string `json:"sender"`
	Subject        string `json:"subject,omitempty"`
	DeliveredAt    string `json:"delivered_at"`
}

// Hub maintains the set of active clients and broadcasts delivery events
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Conversation subscriptions: conversationID -> set of clients
	subscriptions map[uint]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscribe to conversation
	subscribe chan *subscriptionRequest

	// Unsubscribe from conversation
	unsubscribeConversation chan *subscriptionRequest

	// Broadcast to conversation subscribers
	broadcast chan *broadcastMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *slog.Logger
}

type subscriptionRequest struct {
	client         *Client
	conversationID uint
}

type broadcastMessage struct {
	conversationID uint
	message        []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:                 make(map[*Client]bool),
		subscriptions:           make(map[uint]map[*Client]bool),
		register:                make(chan *Client),
		unregister:              make(chan *Client),
		subscribe:               make(chan *subscriptionRequest),
		unsubscribeConversation: make(chan *subscriptionRequest),
		broadcast:               make(chan *broadcastMessage, 256),
		logger:                  logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				// Remove from all subscriptions
				for conversationID, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, conversationID)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.conversationID] == nil {
				h.subscriptions[req.conversationID] = make(map[*Client]bool)
			}
			h.subscriptions[req.conversationID][req.client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to conversation", slog.Uint64("conversation_id", uint64(req.conversationID)))
			}

		case req := <-h.unsubscribeConversation:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.conversationID]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.conversationID)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from conversation", slog.Uint64("conversation_id", uint64(req.conversationID)))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			subscribers := h.subscriptions[msg.conversationID]
			for client := range subscribers {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to a conversation
func (h *Hub) Subscribe(client *Client, conversationID uint) {
	h.subscribe <- &subscriptionRequest{client: client, conversationID: conversationID}
}

// Unsubscribe unsubscribes a client from a conversation
func (h *Hub) Unsubscribe(client *Client, conversationID uint) {
	h.unsubscribeConversation <- &subscriptionRequest{client: client, conversationID: conversationID}
}

// BroadcastDelivery broadcasts a delivery event to the conversation's
// subscribers. Deliveries outside any conversation have no subscribers and
// are dropped.
func (h *Hub) BroadcastDelivery(n *models.Notification) {
	if n.ConversationID == nil {
		return
	}

	msg := WSMessage{
		Type:           MessageTypeDelivery,
		ConversationID: *n.ConversationID,
		Payload: &DeliveryPayload{
			NotificationID: n.ID,
			Sender:         n.Sender().String(),
			Subject:        n.Subject,
			DeliveredAt:    n.CreatedAt.Format(time.RFC3339),
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastMessage{
		conversationID: *n.ConversationID,
		message:        data,
	}
}
