package chatclient

import (
	"context"
	"sync"

	"github.com/vivaha/backend/internal/feed"
	"github.com/vivaha/backend/internal/models"
)

// ConversationList is the live conversation screen. It holds the latest feed
// snapshot and the per-item delete action. Deletes are not applied
// optimistically: the item disappears when the feed pushes the rewritten
// set.
type ConversationList struct {
	session Session
	api     API

	mu            sync.Mutex
	conversations []models.Conversation
	loading       bool
	closed        bool
	errMsg        string

	cancel    func()
	closeOnce sync.Once
}

// OpenConversationList subscribes to the caller's conversation feed. An
// unauthenticated session returns ErrNotAuthenticated so the caller can
// redirect instead of rendering an empty list.
func OpenConversationList(session Session, f feed.Feed, api API) (*ConversationList, error) {
	if !session.authenticated() {
		return nil, ErrNotAuthenticated
	}

	l := &ConversationList{
		session: session,
		api:     api,
		loading: true,
	}

	cancel, err := f.SubscribeToConversations(session.AccountID, l.onSnapshot)
	if err != nil {
		return nil, err
	}
	l.cancel = cancel

	return l, nil
}

func (l *ConversationList) onSnapshot(conversations []models.Conversation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		// a snapshot raced with Close; the view is gone
		return
	}
	l.conversations = conversations
	l.loading = false
}

// Conversations returns the latest snapshot, most recent first.
func (l *ConversationList) Conversations() []models.Conversation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conversations
}

func (l *ConversationList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *ConversationList) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

// Delete removes a conversation server-side. On success the item stays
// visible until the next feed push; on failure the list keeps rendering with
// the error surfaced.
func (l *ConversationList) Delete(ctx context.Context, conversationID string) error {
	err := l.api.DeleteConversation(ctx, conversationID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.errMsg = userMessage(err, MsgDeleteFailed)
		return err
	}
	l.errMsg = ""
	return nil
}

// Close releases the feed subscription. Safe to call more than once; the
// subscription is cancelled exactly once.
func (l *ConversationList) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		l.cancel()
	})
}
