package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vivaha/backend/internal/feed"
	"github.com/vivaha/backend/internal/models"
)

func newTestClient(accountID string) *Client {
	return &Client{
		accountID:  accountID,
		send:       make(chan []byte, 4),
		cancelMsgs: make(map[string]func()),
	}
}

func TestHubSendToUser(t *testing.T) {
	h := NewHub(feed.NewMemory())

	c1 := newTestClient("VM0001")
	c2 := newTestClient("VM0002")
	h.clients["VM0001"] = map[*Client]bool{c1: true}
	h.clients["VM0002"] = map[*Client]bool{c2: true}

	msg := WSMessage{Event: EventUnreadCount, Payload: 3}
	if err := h.SendToUser("VM0001", msg); err != nil {
		t.Fatalf("SendToUser error: %v", err)
	}

	select {
	case b := <-c1.send:
		var got WSMessage
		json.Unmarshal(b, &got)
		if got.Event != EventUnreadCount {
			t.Fatalf("unexpected event: %v", got.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timed out waiting for message to VM0001")
	}

	select {
	case b := <-c2.send:
		t.Fatalf("VM0002 received a frame meant for VM0001: %s", b)
	default:
	}
}

func TestHubSendToAllConnectionsOfUser(t *testing.T) {
	h := NewHub(feed.NewMemory())

	tab1 := newTestClient("VM0001")
	tab2 := newTestClient("VM0001")
	h.clients["VM0001"] = map[*Client]bool{tab1: true, tab2: true}

	if err := h.SendToUser("VM0001", WSMessage{Event: EventConversations}); err != nil {
		t.Fatalf("SendToUser error: %v", err)
	}

	for _, c := range []*Client{tab1, tab2} {
		select {
		case <-c.send:
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timed out waiting for frame on one of the connections")
		}
	}
}

func TestClientFeedsPushSnapshots(t *testing.T) {
	f := feed.NewMemory()
	now := time.Now()
	f.SetConversations("VM0001", []models.Conversation{
		{ConversationID: "conv_1", OwnerID: "VM0001", OtherUserID: "VM0002", LastMessageTime: &now, UnreadCount: 2},
	})

	c := newTestClient("VM0001")
	if err := c.startFeeds(f); err != nil {
		t.Fatalf("startFeeds: %v", err)
	}
	defer c.stopFeeds()

	events := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case b := <-c.send:
			var got WSMessage
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("bad frame: %v", err)
			}
			events[got.Event] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timed out waiting for initial snapshots")
		}
	}

	if !events[EventConversations] || !events[EventUnreadCount] {
		t.Fatalf("missing initial snapshots, got %v", events)
	}
}

func TestDropWithInFlightSnapshot(t *testing.T) {
	f := feed.NewMemory()
	h := NewHub(f)

	c := NewClient(h, nil, "VM0001", "a@vivaha.local", nil)
	h.add(c)
	h.drop(c)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("snapshot delivered after drop panicked: %v", r)
		}
	}()

	// models a delivery whose store query was already running when the
	// connection went away
	c.push(EventConversations, []models.Conversation{})
}

func TestDropTwiceIsSafe(t *testing.T) {
	h := NewHub(feed.NewMemory())

	c := NewClient(h, nil, "VM0001", "a@vivaha.local", nil)
	h.add(c)
	h.drop(c)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("second drop panicked: %v", r)
		}
	}()
	h.drop(c)
}

func TestOnlineUsers(t *testing.T) {
	h := NewHub(feed.NewMemory())
	h.clients["VM0001"] = map[*Client]bool{newTestClient("VM0001"): true}
	h.clients["VM0002"] = map[*Client]bool{newTestClient("VM0002"): true}

	online := h.OnlineUsers()
	if len(online) != 2 {
		t.Fatalf("got %d online users, want 2", len(online))
	}
}
