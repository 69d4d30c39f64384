package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/logger"
)

const sendBufferSize = 256

// ServerMessage is the frame pushed to owner sessions.
type ServerMessage struct {
	Type         string             `json:"type"`
	RestaurantID uint               `json:"restaurant_id,omitempty"`
	Reservation  *model.Reservation `json:"reservation,omitempty"`
}

// ClientMessage is what a session may send; only "ping" is understood.
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one websocket session of a restaurant owner.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	RestaurantID  uint
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	rateMu        sync.Mutex
}

// NewClient builds a session subscribed to one restaurant's reservation events.
func NewClient(hub *Hub, conn *Conn, userID, restaurantID uint) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		UserID:        userID,
		RestaurantID:  restaurantID,
		Send:          make(chan []byte, sendBufferSize),
		LastResetTime: time.Now(),
	}
}

type broadcastMessage struct {
	restaurantID uint
	payload      []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub fans reservation events out to the sessions of the owning restaurant.
type Hub struct {
	// restaurant id -> sessions (an owner may be connected from several devices)
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
	direct     chan *directMessage
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
		direct:     make(chan *directMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.RestaurantID] = append(h.clients[client.RestaurantID], client)
			sessions := len(h.clients[client.RestaurantID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"restaurant_id":  client.RestaurantID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.deliver(message)

		case message := <-h.direct:
			h.reply(message)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.RestaurantID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.RestaurantID)
	} else {
		h.clients[client.RestaurantID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"restaurant_id":      client.RestaurantID,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) deliver(message *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[message.restaurantID] {
		select {
		case client.Send <- message.payload:
		default:
			// slow session; drop it rather than block the hub
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id":       client.UserID,
				"restaurant_id": message.restaurantID,
			})
		}
	}
}

func (h *Hub) reply(message *directMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[message.client.RestaurantID] {
		if c != message.client {
			continue
		}
		select {
		case c.Send <- message.payload:
		default:
		}
		return
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, list := range h.clients {
		for _, client := range list {
			close(client.Send)
		}
		delete(h.clients, id)
	}
}

// PublishReservation queues an event for the restaurant's sessions. Events are dropped when the
// hub is saturated; the reservation itself is already committed.
func (h *Hub) PublishReservation(event model.ReservationEvent) {
	reservation := event.Reservation
	h.queue(event.RestaurantID, ServerMessage{
		Type:         string(event.Type),
		RestaurantID: event.RestaurantID,
		Reservation:  &reservation,
	})
}

func (h *Hub) queue(restaurantID uint, message ServerMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{restaurantID: restaurantID, payload: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"restaurant_id": restaurantID,
			"type":          message.Type,
		})
	}
}

// Register subscribes a session. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		close(client.Send)
		return
	default:
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Sessions reports how many sessions are subscribed to a restaurant.
func (h *Hub) Sessions(restaurantID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[restaurantID])
}

// HandleClientMessage answers pings and rate limits chatty sessions.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type != "ping" {
		return
	}
	data, _ := json.Marshal(ServerMessage{Type: "pong"})
	select {
	case h.direct <- &directMessage{client: client, payload: data}:
	case <-h.done:
	}
}
