package websocket

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Buffered events per client.
	sendBufferSize = 64
)

// Timing holds the keep-alive intervals. PingInterval must be less than
// PongWait.
type Timing struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

// DefaultTiming returns the intervals used when none are configured.
func DefaultTiming() Timing {
	return Timing{PingInterval: 54 * time.Second, PongWait: 60 * time.Second}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.Event

	// Viewer is the username behind this connection.
	Viewer string

	// Subscriptions maps dataset names to true.
	Subscriptions map[string]bool

	timing Timing

	// mu protects Subscriptions and closed
	mu     sync.RWMutex
	closed bool

	// logger for this client
	logger *slog.Logger
}

// NewClient creates a new WebSocket client subscribed to the given datasets
func NewClient(hub *Hub, conn *websocket.Conn, viewer string, timing Timing, logger *slog.Logger, datasets ...string) *Client {
	if timing.PongWait <= 0 || timing.PingInterval <= 0 || timing.PingInterval >= timing.PongWait {
		timing = DefaultTiming()
	}
	subs := lo.SliceToMap(lo.Compact(datasets), func(d string) (string, bool) { return d, true })
	return &Client{
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan domain.Event, sendBufferSize),
		Viewer:        viewer,
		Subscriptions: subs,
		timing:        timing,
		logger:        logger.With("viewer", viewer),
	}
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// AddSubscription adds a subscription to a dataset
func (c *Client) AddSubscription(dataset string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Subscriptions[dataset] = true
}

// RemoveSubscription removes a subscription from a dataset
func (c *Client) RemoveSubscription(dataset string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Subscriptions, dataset)
}

// HasSubscription checks if the client is subscribed to a dataset
func (c *Client) HasSubscription(dataset string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Subscriptions[dataset]
}

// GetSubscriptions returns a copy of all subscriptions
func (c *Client) GetSubscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Keys(c.Subscriptions)
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Leave(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timing.PongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.timing.PongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.timing.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// Client message types
const (
	MessageSubscribe   = "SUBSCRIBE_TO_DATASET"
	MessageUnsubscribe = "UNSUBSCRIBE_FROM_DATASET"
	MessagePing        = "PING"
)

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SubscribePayload is the payload for subscribe/unsubscribe messages
type SubscribePayload struct {
	Dataset string `json:"dataset"`
}

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case MessageSubscribe:
		if dataset, ok := c.datasetFrom(msg.Payload); ok {
			c.Hub.subscribe(c, dataset)
		}

	case MessageUnsubscribe:
		if dataset, ok := c.datasetFrom(msg.Payload); ok {
			c.Hub.unsubscribe(c, dataset)
		}

	case MessagePing:
		// Client-side keep-alive, respond with pong
		c.sendPong()

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) datasetFrom(payload json.RawMessage) (string, bool) {
	var p SubscribePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal subscription payload", "error", err)
		return "", false
	}

	dataset := strings.TrimSpace(p.Dataset)
	if dataset == "" {
		c.logger.Warn("empty dataset in subscription request")
		return "", false
	}
	return dataset, true
}

func (c *Client) sendPong() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- domain.Event{Type: domain.EventPong}:
	default:
		// Channel full, skip pong response
	}
}
