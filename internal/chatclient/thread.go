package chatclient

import (
	"context"
	"strings"
	"sync"

	"github.com/vivaha/backend/internal/feed"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/task"
)

// Thread is the open chat screen against a single conversation: the live
// message snapshot, text and image sending, and the report and delete
// actions. Opening a thread marks the conversation read once, best-effort;
// a failed mark-read never disturbs the screen.
type Thread struct {
	session        Session
	api            API
	conversationID string
	runner         *task.Runner

	Images *ImageSender

	mu        sync.Mutex
	messages  []models.Message
	loading   bool
	closed    bool
	sending   bool
	reporting bool
	deleting  bool
	deleted   bool
	errMsg    string

	cancel    func()
	closeOnce sync.Once
}

// OpenThread subscribes to the conversation's messages and fires the
// mark-read side effect. An unauthenticated session returns
// ErrNotAuthenticated.
func OpenThread(session Session, f feed.Feed, api API, runner *task.Runner, conversationID string) (*Thread, error) {
	if !session.authenticated() {
		return nil, ErrNotAuthenticated
	}

	t := &Thread{
		session:        session,
		api:            api,
		conversationID: conversationID,
		runner:         runner,
		Images:         NewImageSender(api, conversationID),
		loading:        true,
	}

	cancel, err := f.SubscribeToMessages(conversationID, t.onSnapshot)
	if err != nil {
		return nil, err
	}
	t.cancel = cancel

	runner.FireAndForget("mark-conversation-read", func(ctx context.Context) error {
		return api.MarkConversationRead(ctx, conversationID)
	})

	return t, nil
}

func (t *Thread) onSnapshot(messages []models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.messages = messages
	t.loading = false
}

// Messages returns the latest snapshot, oldest first.
func (t *Thread) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.messages
}

func (t *Thread) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Thread) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// Mine reports whether the message was sent by the thread's own session,
// which decides which side of the screen it renders on.
func (t *Thread) Mine(m models.Message) bool {
	return m.SenderID == t.session.AccountID
}

// SendText sends a text message. Blank or whitespace-only input and sends
// issued while a previous one is in flight are dropped without a network
// call. The sent message appears when the feed pushes the next snapshot; no
// optimistic append.
func (t *Thread) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	t.mu.Lock()
	if t.sending {
		t.mu.Unlock()
		return nil
	}
	t.sending = true
	t.mu.Unlock()

	err := t.api.SendMessage(ctx, models.SendMessageRequest{
		ConversationID: t.conversationID,
		Text:           text,
		Type:           models.MessageTypeText,
		DeviceType:     "web",
	})

	t.mu.Lock()
	t.sending = false
	if err != nil {
		t.errMsg = userMessage(err, MsgSendFailed)
	} else {
		t.errMsg = ""
	}
	t.mu.Unlock()
	return err
}

// Sending reports whether a text send is in flight.
func (t *Thread) Sending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sending
}

// Report files a report against the other participant. An unknown reason is
// rejected locally; only one report may be in flight at a time.
func (t *Thread) Report(ctx context.Context, reason models.ReportReason, description string) error {
	if !reason.IsValid() {
		t.mu.Lock()
		t.errMsg = "Please select a reason"
		t.mu.Unlock()
		return nil
	}

	t.mu.Lock()
	if t.reporting {
		t.mu.Unlock()
		return nil
	}
	t.reporting = true
	t.mu.Unlock()

	err := t.api.ReportConversation(ctx, t.conversationID, reason, description)

	t.mu.Lock()
	t.reporting = false
	if err != nil {
		t.errMsg = userMessage(err, MsgReportFailed)
	} else {
		t.errMsg = ""
	}
	t.mu.Unlock()
	return err
}

// Delete removes the conversation server-side. On success the thread is
// closed and Deleted reports true so the caller navigates back; on failure
// the thread stays open with the error surfaced.
func (t *Thread) Delete(ctx context.Context) error {
	t.mu.Lock()
	if t.deleting {
		t.mu.Unlock()
		return nil
	}
	t.deleting = true
	t.mu.Unlock()

	err := t.api.DeleteConversation(ctx, t.conversationID)

	t.mu.Lock()
	t.deleting = false
	if err != nil {
		t.errMsg = userMessage(err, MsgDeleteFailed)
		t.mu.Unlock()
		return err
	}
	t.deleted = true
	t.mu.Unlock()

	t.Close()
	return nil
}

// Deleted reports whether the conversation was deleted through this thread.
func (t *Thread) Deleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleted
}

// Close releases the message subscription. Safe to call more than once; the
// subscription is cancelled exactly once.
func (t *Thread) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		t.cancel()
	})
}
