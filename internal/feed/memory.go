package feed

import (
	"sync"

	"github.com/vivaha/backend/internal/models"
)

// Memory is an in-process feed for tests. It holds the data itself and
// pushes snapshots synchronously, so a test can mutate state and assert on
// the delivered snapshot without sleeping.
type Memory struct {
	mu            sync.Mutex
	nextID        int
	conversations map[string][]models.Conversation // by owner
	messages      map[string][]models.Message      // by conversation
	convSubs      map[string]map[int]func([]models.Conversation)
	msgSubs       map[string]map[int]func([]models.Message)
	unreadSubs    map[string]map[int]func(int)
}

func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string][]models.Conversation),
		messages:      make(map[string][]models.Message),
		convSubs:      make(map[string]map[int]func([]models.Conversation)),
		msgSubs:       make(map[string]map[int]func([]models.Message)),
		unreadSubs:    make(map[string]map[int]func(int)),
	}
}

// SetConversations replaces a user's conversation set and pushes snapshots.
func (m *Memory) SetConversations(userID string, conversations []models.Conversation) {
	m.mu.Lock()
	m.conversations[userID] = append([]models.Conversation(nil), conversations...)
	m.mu.Unlock()
	m.pushConversations(userID)
	m.pushUnread(userID)
}

// SetMessages replaces a conversation's messages and pushes snapshots.
func (m *Memory) SetMessages(conversationID string, messages []models.Message) {
	m.mu.Lock()
	m.messages[conversationID] = append([]models.Message(nil), messages...)
	m.mu.Unlock()
	m.pushMessages(conversationID)
}

// AppendMessage adds one message and pushes the thread snapshot.
func (m *Memory) AppendMessage(msg models.Message) {
	m.mu.Lock()
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	m.mu.Unlock()
	m.pushMessages(msg.ConversationID)
}

func (m *Memory) SubscribeToConversations(userID string, fn func([]models.Conversation)) (func(), error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if m.convSubs[userID] == nil {
		m.convSubs[userID] = make(map[int]func([]models.Conversation))
	}
	m.convSubs[userID][id] = fn
	m.mu.Unlock()

	fn(m.conversationSnapshot(userID))

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.convSubs[userID], id)
			m.mu.Unlock()
		})
	}, nil
}

func (m *Memory) SubscribeToMessages(conversationID string, fn func([]models.Message)) (func(), error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if m.msgSubs[conversationID] == nil {
		m.msgSubs[conversationID] = make(map[int]func([]models.Message))
	}
	m.msgSubs[conversationID][id] = fn
	m.mu.Unlock()

	fn(m.messageSnapshot(conversationID))

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.msgSubs[conversationID], id)
			m.mu.Unlock()
		})
	}, nil
}

func (m *Memory) SubscribeToUnreadCount(userID string, fn func(int)) (func(), error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if m.unreadSubs[userID] == nil {
		m.unreadSubs[userID] = make(map[int]func(int))
	}
	m.unreadSubs[userID][id] = fn
	m.mu.Unlock()

	fn(m.unreadTotal(userID))

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.unreadSubs[userID], id)
			m.mu.Unlock()
		})
	}, nil
}

func (m *Memory) conversationSnapshot(userID string) []models.Conversation {
	m.mu.Lock()
	snapshot := append([]models.Conversation(nil), m.conversations[userID]...)
	m.mu.Unlock()
	SortConversations(snapshot)
	return snapshot
}

func (m *Memory) messageSnapshot(conversationID string) []models.Message {
	m.mu.Lock()
	snapshot := append([]models.Message(nil), m.messages[conversationID]...)
	m.mu.Unlock()
	SortMessages(snapshot)
	return snapshot
}

func (m *Memory) unreadTotal(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, conv := range m.conversations[userID] {
		total += conv.UnreadCount
	}
	return total
}

func (m *Memory) pushConversations(userID string) {
	snapshot := m.conversationSnapshot(userID)
	for _, fn := range m.subscribersConv(userID) {
		fn(snapshot)
	}
}

func (m *Memory) pushMessages(conversationID string) {
	snapshot := m.messageSnapshot(conversationID)
	for _, fn := range m.subscribersMsg(conversationID) {
		fn(snapshot)
	}
}

func (m *Memory) pushUnread(userID string) {
	total := m.unreadTotal(userID)
	m.mu.Lock()
	subs := make([]func(int), 0, len(m.unreadSubs[userID]))
	for _, fn := range m.unreadSubs[userID] {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(total)
	}
}

func (m *Memory) subscribersConv(userID string) []func([]models.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := make([]func([]models.Conversation), 0, len(m.convSubs[userID]))
	for _, fn := range m.convSubs[userID] {
		subs = append(subs, fn)
	}
	return subs
}

func (m *Memory) subscribersMsg(conversationID string) []func([]models.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := make([]func([]models.Message), 0, len(m.msgSubs[conversationID]))
	for _, fn := range m.msgSubs[conversationID] {
		subs = append(subs, fn)
	}
	return subs
}
