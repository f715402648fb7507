package feed

import (
	"testing"
	"time"

	"github.com/vivaha/backend/internal/models"
)

func tsPtr(t time.Time) *time.Time { return &t }

func TestSortConversations_MostRecentFirst(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	conversations := []models.Conversation{
		{ConversationID: "c3", LastMessageTime: tsPtr(base.Add(3 * time.Minute))},
		{ConversationID: "c1", LastMessageTime: tsPtr(base.Add(1 * time.Minute))},
		{ConversationID: "c2", LastMessageTime: tsPtr(base.Add(2 * time.Minute))},
	}

	SortConversations(conversations)

	want := []string{"c3", "c2", "c1"}
	for i, id := range want {
		if conversations[i].ConversationID != id {
			t.Fatalf("position %d: got %s, want %s", i, conversations[i].ConversationID, id)
		}
	}
}

func TestSortConversations_UndatedSortLast(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	conversations := []models.Conversation{
		{ConversationID: "empty-b"},
		{ConversationID: "dated", LastMessageTime: tsPtr(base)},
		{ConversationID: "empty-a"},
	}

	SortConversations(conversations)

	want := []string{"dated", "empty-a", "empty-b"}
	for i, id := range want {
		if conversations[i].ConversationID != id {
			t.Fatalf("position %d: got %s, want %s", i, conversations[i].ConversationID, id)
		}
	}
}

func TestMemory_ConversationSubscription(t *testing.T) {
	m := NewMemory()
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	var snapshots [][]models.Conversation
	cancel, err := m.SubscribeToConversations("u1", func(conversations []models.Conversation) {
		snapshots = append(snapshots, conversations)
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	// immediate snapshot of the (empty) current state
	if len(snapshots) != 1 || len(snapshots[0]) != 0 {
		t.Fatalf("expected one empty initial snapshot, got %v", snapshots)
	}

	m.SetConversations("u1", []models.Conversation{
		{ConversationID: "c1", LastMessageTime: tsPtr(base.Add(time.Minute))},
		{ConversationID: "c2", LastMessageTime: tsPtr(base.Add(2 * time.Minute))},
	})

	if len(snapshots) != 2 {
		t.Fatalf("expected second snapshot after change, got %d", len(snapshots))
	}
	latest := snapshots[len(snapshots)-1]
	if latest[0].ConversationID != "c2" || latest[1].ConversationID != "c1" {
		t.Fatalf("snapshot not ordered most recent first: %v", latest)
	}
}

func TestMemory_UnsubscribeStopsCallbacks(t *testing.T) {
	m := NewMemory()

	calls := 0
	cancel, err := m.SubscribeToConversations("u1", func([]models.Conversation) {
		calls++
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	cancel()
	cancel() // second call must be a no-op

	m.SetConversations("u1", []models.Conversation{{ConversationID: "c1"}})

	if calls != 1 {
		t.Fatalf("expected only the initial snapshot after unsubscribe, got %d calls", calls)
	}
}

func TestMemory_MessagesOrderedOldestFirst(t *testing.T) {
	m := NewMemory()
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	var latest []models.Message
	cancel, err := m.SubscribeToMessages("c1", func(messages []models.Message) {
		latest = messages
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	if len(latest) != 0 {
		t.Fatalf("empty conversation must push an empty snapshot, got %v", latest)
	}

	m.SetMessages("c1", []models.Message{
		{MessageID: "m2", ConversationID: "c1", Timestamp: base.Add(time.Minute)},
		{MessageID: "m1", ConversationID: "c1", Timestamp: base},
	})

	if len(latest) != 2 || latest[0].MessageID != "m1" || latest[1].MessageID != "m2" {
		t.Fatalf("messages not ordered oldest first: %v", latest)
	}
}

func TestMemory_UnreadCountSum(t *testing.T) {
	m := NewMemory()

	var counts []int
	cancel, err := m.SubscribeToUnreadCount("u1", func(count int) {
		counts = append(counts, count)
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	m.SetConversations("u1", []models.Conversation{
		{ConversationID: "c1", UnreadCount: 2},
		{ConversationID: "c2", UnreadCount: 3},
	})

	if len(counts) == 0 || counts[len(counts)-1] != 5 {
		t.Fatalf("expected final unread count 5, got %v", counts)
	}
}

func TestNewLive_RequiresTransport(t *testing.T) {
	if _, err := NewLive(nil, nil, nil); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
