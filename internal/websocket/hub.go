package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/vivaha/backend/internal/feed"
)

// Outbound event names. Every payload is a full snapshot, never a delta.
const (
	EventConversations = "conversations"
	EventMessages      = "messages"
	EventUnreadCount   = "unread_count"
	EventError         = "error"
)

// Inbound event names.
const (
	EventSubscribeMessages   = "subscribe_messages"
	EventUnsubscribeMessages = "unsubscribe_messages"
)

// WSMessage is the frame exchanged over the socket.
type WSMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub maintains the set of active clients. Each client carries its own feed
// subscriptions; the hub only tracks membership so connections can be
// registered and torn down from one place.
type Hub struct {
	// Registered clients keyed by account id; one account may hold several
	// connections (multiple tabs or devices).
	clients map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Snapshot source wired into every client on register
	feed feed.Feed

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(f feed.Feed) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		feed:       f,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
			log.Printf("Client registered: %s", client.accountID)

		case client := <-h.unregister:
			h.drop(client)
			log.Printf("Client unregistered: %s", client.accountID)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	if h.clients[client.accountID] == nil {
		h.clients[client.accountID] = make(map[*Client]bool)
	}
	h.clients[client.accountID][client] = true
	h.mu.Unlock()

	if err := client.startFeeds(h.feed); err != nil {
		log.Printf("failed to start feeds for %s: %v", client.accountID, err)
	}
}

// drop tears a connection down. The client is marked closed before its send
// channel is, so a snapshot already in flight from the feed is discarded
// instead of hitting a closed channel.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	conns, ok := h.clients[client.accountID]
	registered := ok && conns[client]
	if registered {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.accountID)
		}
	}
	h.mu.Unlock()

	if !registered {
		return
	}

	// outside h.mu: cancelling a feed subscription waits for any in-flight
	// snapshot delivery to finish
	client.stopFeeds()
	client.markClosed()
	close(client.send)
}

// SendToUser pushes a frame to every connection the account holds.
func (h *Hub) SendToUser(accountID string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[accountID] {
		select {
		case client.send <- data:
		default:
			// client's send channel is full, skip
		}
	}

	return nil
}

// OnlineUsers returns the account ids with at least one open connection.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	accountIDs := make([]string, 0, len(h.clients))
	for accountID := range h.clients {
		accountIDs = append(accountIDs, accountID)
	}

	return accountIDs
}
