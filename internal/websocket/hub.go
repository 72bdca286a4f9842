package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/pkg/logger"
)

const (
	// per client, per second
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// ClientMessage is sent by subscribers to narrow the feed. An empty origin
// restores the full feed.
type ClientMessage struct {
	Type   string            `json:"type"` // filter
	Origin model.MatchOrigin `json:"origin"`
}

// MatchAlert is pushed to subscribers for every committed match record.
type MatchAlert struct {
	Type                string              `json:"type"`
	ID                  uint                `json:"id"`
	PersonID            uint                `json:"person_id"`
	BlacklistedPersonID uint                `json:"blacklisted_person_id"`
	Kind                screening.MatchKind `json:"kind"`
	Score               float64             `json:"score"`
	Origin              model.MatchOrigin   `json:"origin"`
	SearchDate          time.Time           `json:"search_date"`
}

// Client is one websocket session. A user may hold several.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte

	mu     sync.RWMutex
	origin model.MatchOrigin

	rateMu        sync.Mutex
	messageCount  int
	lastResetTime time.Time
}

func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

func (c *Client) wants(origin model.MatchOrigin) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin == "" || c.origin == origin
}

type broadcastMessage struct {
	origin  model.MatchOrigin
	payload []byte
}

// Hub fans committed match records out to every subscribed session.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes every
// remaining session. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Match feed client registered", logger.Fields{
				"user_id":        client.UserID,
				"total_sessions": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Match feed client unregistered", logger.Fields{
				"user_id":        client.UserID,
				"total_sessions": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !client.wants(message.origin) {
					continue
				}
				select {
				case client.Send <- message.payload:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", logger.Fields{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifyMatches queues one alert per record. Alerts are dropped, not
// blocked on, when the broadcast queue is full.
func (h *Hub) NotifyMatches(records []model.MatchRecord) {
	for _, record := range records {
		data, err := json.Marshal(MatchAlert{
			Type:                "match",
			ID:                  record.ID,
			PersonID:            record.PersonID,
			BlacklistedPersonID: record.BlacklistedPersonID,
			Kind:                record.Kind,
			Score:               record.Score,
			Origin:              record.Origin,
			SearchDate:          record.SearchDate,
		})
		if err != nil {
			logger.Error("Failed to marshal match alert", err, logger.Fields{
				"match_id": record.ID,
			})
			continue
		}

		select {
		case h.broadcast <- broadcastMessage{origin: record.Origin, payload: data}:
		default:
			logger.Warn("Broadcast channel full, match alert dropped", logger.Fields{
				"match_id": record.ID,
			})
		}
	}
}

// Register adds a session. After shutdown the session's Send channel is
// closed instead, so its WritePump exits.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a session. It returns immediately after shutdown, when
// Run has already closed every session.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount reports the number of live sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage applies a subscriber's filter request.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", logger.Fields{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", logger.Fields{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type != "filter" {
		return
	}
	if msg.Origin != "" && msg.Origin != model.OriginPerson && msg.Origin != model.OriginBlacklist {
		logger.Warn("Unknown origin filter", logger.Fields{
			"user_id": client.UserID,
			"origin":  msg.Origin,
		})
		return
	}

	client.mu.Lock()
	client.origin = msg.Origin
	client.mu.Unlock()
}
