package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// Hub maintains the set of active Clients and broadcasts messages to them.
type Hub struct {
	// Clients maps viewers to their active connections
	// A single viewer can have multiple connections (multiple tabs/devices)
	clients map[string]map[*Client]bool

	// Rooms maps dataset names to subscribed clients
	rooms map[string]map[*Client]bool

	// Broadcast channel for events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast sends an event to the hub's internal broadcast channel.
// This method implements the ports.EventBroadcaster interface.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"dataset", event.Dataset,
		)
		return nil
	}
}

// Run starts the hub's event loop until ctx is done. This MUST be run as a
// goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Join hands a client to the running hub. It reports false once the hub has
// stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave hands a client back for unregistration.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.Viewer] == nil {
		h.clients[client.Viewer] = make(map[*Client]bool)
	}
	h.clients[client.Viewer][client] = true

	for _, dataset := range client.GetSubscriptions() {
		h.joinRoom(client, dataset)
	}

	h.logger.Info("client registered",
		"viewer", client.Viewer,
		"total_connections", len(h.clients[client.Viewer]),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	viewerClients, ok := h.clients[client.Viewer]
	if !ok || !viewerClients[client] {
		return
	}

	// 1. Remove from the global viewer map
	delete(viewerClients, client)
	if len(viewerClients) == 0 {
		delete(h.clients, client.Viewer)
	}

	// 2. Remove from all subscribed rooms
	for _, dataset := range client.GetSubscriptions() {
		h.leaveRoom(client, dataset)
	}

	// 3. Safely close the send channel
	client.CloseSend()

	h.logger.Info("client unregistered",
		"viewer", client.Viewer,
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, viewerClients := range h.clients {
		for client := range viewerClients {
			client.CloseSend()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
}

// broadcastEvent sends an event to every client in the dataset's room. An
// event without a dataset goes to every client.
func (h *Hub) broadcastEvent(event domain.Event) {
	h.mu.RLock()
	var clients []*Client
	if event.Dataset == "" {
		for _, viewerClients := range h.clients {
			for client := range viewerClients {
				clients = append(clients, client)
			}
		}
	} else {
		// Copy the client list to avoid holding the lock while sending
		for client := range h.rooms[event.Dataset] {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"dataset", event.Dataset,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// Client's send buffer is full, unregister them
			h.logger.Warn("client send buffer full, unregistering",
				"viewer", client.Viewer,
			)
			h.unregisterClient(client)
		}
	}
}

// subscribe adds a client to a dataset's room
func (h *Hub) subscribe(client *Client, dataset string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client.Viewer][client] {
		return
	}

	client.AddSubscription(dataset)
	h.joinRoom(client, dataset)

	h.logger.Debug("client subscribed to dataset",
		"viewer", client.Viewer,
		"dataset", dataset,
	)
}

// unsubscribe removes a client from a dataset's room
func (h *Hub) unsubscribe(client *Client, dataset string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveRoom(client, dataset)
	client.RemoveSubscription(dataset)

	h.logger.Debug("client unsubscribed from dataset",
		"viewer", client.Viewer,
		"dataset", dataset,
	)
}

// joinRoom and leaveRoom expect h.mu to be held.
func (h *Hub) joinRoom(client *Client, dataset string) {
	if h.rooms[dataset] == nil {
		h.rooms[dataset] = make(map[*Client]bool)
	}
	h.rooms[dataset][client] = true
}

func (h *Hub) leaveRoom(client *Client, dataset string) {
	if room, ok := h.rooms[dataset]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, dataset)
		}
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, viewerClients := range h.clients {
		count += len(viewerClients)
	}
	return count
}

// GetRoomCount returns the number of active rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of clients subscribed to a dataset
func (h *Hub) GetClientsInRoom(dataset string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[dataset])
}
