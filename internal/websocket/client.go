package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vivaha/backend/internal/feed"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/repository"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Deadline on the membership check before a thread subscription
	checkTimeout = 5 * time.Second
)

// Client is one WebSocket connection. On register it receives the
// conversation-list and unread-count feeds; thread feeds are attached and
// detached as the peer opens and closes conversations.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	accountID   string
	email       string
	connectedAt time.Time

	convRepo *repository.ConversationRepository
	feed     feed.Feed

	mu           sync.Mutex
	closed       bool
	cancelConvs  func()
	cancelUnread func()
	cancelMsgs   map[string]func() // by conversation id
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, accountID, email string, convRepo *repository.ConversationRepository) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		accountID:   accountID,
		email:       email,
		connectedAt: time.Now(),
		convRepo:    convRepo,
		cancelMsgs:  make(map[string]func()),
	}
}

// startFeeds attaches the always-on subscriptions: the conversation list and
// the unread total. Called by the hub on register.
func (c *Client) startFeeds(f feed.Feed) error {
	c.mu.Lock()
	c.feed = f
	c.mu.Unlock()

	cancelConvs, err := f.SubscribeToConversations(c.accountID, func(conversations []models.Conversation) {
		c.push(EventConversations, conversations)
	})
	if err != nil {
		return err
	}

	cancelUnread, err := f.SubscribeToUnreadCount(c.accountID, func(total int) {
		c.push(EventUnreadCount, total)
	})
	if err != nil {
		cancelConvs()
		return err
	}

	c.mu.Lock()
	c.cancelConvs = cancelConvs
	c.cancelUnread = cancelUnread
	c.mu.Unlock()
	return nil
}

// stopFeeds cancels every subscription. Called by the hub on unregister.
// Cancels are invoked outside c.mu: a blocking cancel waits for an in-flight
// delivery, and that delivery may be in push waiting for the same lock.
func (c *Client) stopFeeds() {
	c.mu.Lock()
	cancels := make([]func(), 0, 2+len(c.cancelMsgs))
	if c.cancelConvs != nil {
		cancels = append(cancels, c.cancelConvs)
		c.cancelConvs = nil
	}
	if c.cancelUnread != nil {
		cancels = append(cancels, c.cancelUnread)
		c.cancelUnread = nil
	}
	for id, cancel := range c.cancelMsgs {
		cancels = append(cancels, cancel)
		delete(c.cancelMsgs, id)
	}
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// markClosed stops push from writing to the send channel. The hub calls it
// before closing the channel on unregister.
func (c *Client) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// push marshals a frame onto the send channel, dropping it when the channel
// is full or the connection is being torn down. The next snapshot carries
// the complete state anyway. The closed check and the send happen under the
// same lock markClosed takes, so push never races the hub closing the
// channel.
func (c *Client) push(event string, payload any) {
	data, err := json.Marshal(WSMessage{Event: event, Payload: payload})
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(message string) {
	c.push(EventError, message)
}

// ReadPump pumps control frames from the WebSocket connection to the client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps frames from the send channel to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type subscribePayload struct {
	ConversationID string `json:"conversationId"`
}

// messagesPayload is the frame body for thread snapshots.
type messagesPayload struct {
	ConversationID string           `json:"conversationId"`
	Messages       []models.Message `json:"messages"`
}

// handleMessage handles incoming WebSocket frames. Writes go through REST;
// the socket only manages thread subscriptions.
func (c *Client) handleMessage(data []byte) {
	var wsMsg WSMessage
	if err := json.Unmarshal(data, &wsMsg); err != nil {
		c.sendError("Invalid message format")
		return
	}

	switch wsMsg.Event {
	case EventSubscribeMessages:
		c.handleSubscribeMessages(wsMsg.Payload)

	case EventUnsubscribeMessages:
		c.handleUnsubscribeMessages(wsMsg.Payload)

	default:
		c.sendError("Unknown event type")
	}
}

func decodePayload[T any](payload any) (T, error) {
	var out T
	data, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

func (c *Client) handleSubscribeMessages(payload any) {
	req, err := decodePayload[subscribePayload](payload)
	if err != nil || req.ConversationID == "" {
		c.sendError("Invalid subscribe payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	member, err := c.convRepo.IsParticipant(ctx, c.accountID, req.ConversationID)
	cancel()
	if err != nil || !member {
		c.sendError("Conversation not found")
		return
	}

	c.mu.Lock()
	f := c.feed
	_, already := c.cancelMsgs[req.ConversationID]
	c.mu.Unlock()
	if already || f == nil {
		return
	}

	cancelFn, err := f.SubscribeToMessages(req.ConversationID, func(messages []models.Message) {
		c.push(EventMessages, messagesPayload{ConversationID: req.ConversationID, Messages: messages})
	})
	if err != nil {
		c.sendError("Failed to subscribe")
		return
	}

	c.mu.Lock()
	c.cancelMsgs[req.ConversationID] = cancelFn
	c.mu.Unlock()
}

func (c *Client) handleUnsubscribeMessages(payload any) {
	req, err := decodePayload[subscribePayload](payload)
	if err != nil || req.ConversationID == "" {
		c.sendError("Invalid unsubscribe payload")
		return
	}

	c.mu.Lock()
	cancelFn, ok := c.cancelMsgs[req.ConversationID]
	if ok {
		delete(c.cancelMsgs, req.ConversationID)
	}
	c.mu.Unlock()

	if ok {
		cancelFn()
	}
}
