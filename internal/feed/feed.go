// Package feed delivers live conversation and message data as full
// snapshots. Every change pushes the complete current state to each
// subscriber rather than a delta, which keeps consumers free of merge logic
// at the cost of re-sending small lists. Person-to-person chat volumes make
// that trade cheap.
package feed

import (
	"errors"
	"sort"

	"github.com/vivaha/backend/internal/models"
)

// ErrNotConfigured distinguishes a missing or misconfigured transport from
// "no conversations yet". Constructors fail with it immediately; a feed never
// silently yields empty snapshots forever.
var ErrNotConfigured = errors.New("feed transport not configured")

// Feed exposes the three snapshot subscriptions. Each Subscribe call invokes
// the callback once immediately with the current state, then once per
// change-set. The returned cancel func releases the subscription; after it
// returns no further callbacks are delivered.
type Feed interface {
	// SubscribeToConversations pushes the user's conversations ordered by
	// last message time descending. Conversations with no messages sort
	// after all dated ones, tie-broken by conversation id.
	SubscribeToConversations(userID string, fn func([]models.Conversation)) (func(), error)

	// SubscribeToMessages pushes one conversation's messages ordered by
	// timestamp ascending. An empty conversation pushes an empty snapshot.
	SubscribeToMessages(conversationID string, fn func([]models.Message)) (func(), error)

	// SubscribeToUnreadCount pushes the sum of unread counts across the
	// user's conversations. Bursts of changes may coalesce into a single
	// callback invocation.
	SubscribeToUnreadCount(userID string, fn func(int)) (func(), error)
}

// SortConversations applies the feed ordering in place: last message time
// descending, undated conversations last, conversation id as the stable
// tie-break.
func SortConversations(conversations []models.Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessageTime, conversations[j].LastMessageTime
		switch {
		case a == nil && b == nil:
			return conversations[i].ConversationID < conversations[j].ConversationID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return conversations[i].ConversationID < conversations[j].ConversationID
	})
}

// SortMessages applies the thread ordering in place: timestamp ascending,
// message id as the stable tie-break.
func SortMessages(messages []models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Timestamp.Before(messages[j].Timestamp)
		}
		return messages[i].MessageID < messages[j].MessageID
	})
}
