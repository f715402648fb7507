package chatclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vivaha/backend/internal/feed"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/task"
)

func testRunner() *task.Runner {
	return task.NewRunner(time.Second, time.Millisecond, 1)
}

func TestOpenThreadRequiresSession(t *testing.T) {
	_, err := OpenThread(Session{}, feed.NewMemory(), &fakeAPI{}, testRunner(), "conv_1")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestOpenThreadMarksRead(t *testing.T) {
	api := &fakeAPI{}
	runner := testRunner()

	th, err := OpenThread(testSession(), feed.NewMemory(), api, runner, "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	defer th.Close()

	runner.Wait()
	if api.markCount() != 1 {
		t.Errorf("mark-read called %d times, want 1", api.markCount())
	}
}

func TestOpenThreadMarkReadFailureIsSilent(t *testing.T) {
	api := &fakeAPI{markErr: errors.New("network down")}
	runner := testRunner()

	th, err := OpenThread(testSession(), feed.NewMemory(), api, runner, "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	defer th.Close()

	runner.Wait()
	if th.Err() != "" {
		t.Errorf("mark-read failure surfaced to the view: %q", th.Err())
	}
}

func TestThreadSnapshotsAndAlignment(t *testing.T) {
	f := feed.NewMemory()
	f.SetMessages("conv_1", []models.Message{
		{MessageID: "m1", ConversationID: "conv_1", SenderID: "VM0001", ReceiverID: "VM0002", Text: "hello", Type: models.MessageTypeText, Timestamp: time.Now().Add(-time.Minute)},
		{MessageID: "m2", ConversationID: "conv_1", SenderID: "VM0002", ReceiverID: "VM0001", Text: "hi", Type: models.MessageTypeText, Timestamp: time.Now()},
	})

	th, err := OpenThread(testSession(), f, &fakeAPI{}, testRunner(), "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	defer th.Close()

	msgs := th.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if th.Loading() {
		t.Error("still loading after the first snapshot")
	}
	if !th.Mine(msgs[0]) {
		t.Error("own message must render as mine")
	}
	if th.Mine(msgs[1]) {
		t.Error("the other side's message must not render as mine")
	}

	f.AppendMessage(models.Message{MessageID: "m3", ConversationID: "conv_1", SenderID: "VM0002", ReceiverID: "VM0001", Text: "again", Type: models.MessageTypeText, Timestamp: time.Now()})
	if got := len(th.Messages()); got != 3 {
		t.Errorf("got %d messages after push, want 3", got)
	}
}

func TestThreadSendTextGuards(t *testing.T) {
	api := &fakeAPI{}
	th, err := OpenThread(testSession(), feed.NewMemory(), api, testRunner(), "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	defer th.Close()

	if err := th.SendText(context.Background(), ""); err != nil {
		t.Fatalf("blank send: %v", err)
	}
	if err := th.SendText(context.Background(), "   \n\t"); err != nil {
		t.Fatalf("whitespace send: %v", err)
	}
	if api.sendCount() != 0 {
		t.Fatalf("blank input reached the API %d times", api.sendCount())
	}

	if err := th.SendText(context.Background(), "  hello  "); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if api.sendCount() != 1 {
		t.Fatalf("sent %d messages, want 1", api.sendCount())
	}
	if api.sent[0].Text != "hello" {
		t.Errorf("sent text = %q, want trimmed %q", api.sent[0].Text, "hello")
	}
	if api.sent[0].Type != models.MessageTypeText {
		t.Errorf("sent type = %q, want text", api.sent[0].Type)
	}
}

func TestThreadSendTextInsufficientTokens(t *testing.T) {
	api := &fakeAPI{sendErr: &APIError{Code: models.CodeInsufficientTokens, Message: "insufficient tokens"}}
	th, err := OpenThread(testSession(), feed.NewMemory(), api, testRunner(), "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	defer th.Close()

	if err := th.SendText(context.Background(), "hello"); err == nil {
		t.Fatal("expected send error")
	}
	if th.Err() != MsgUpsell {
		t.Errorf("err = %q, want the upsell message", th.Err())
	}
}

func TestThreadReport(t *testing.T) {
	api := &fakeAPI{}
	th, err := OpenThread(testSession(), feed.NewMemory(), api, testRunner(), "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	defer th.Close()

	if err := th.Report(context.Background(), models.ReportReason("bogus"), ""); err != nil {
		t.Fatalf("invalid reason: %v", err)
	}
	if len(api.reported) != 0 {
		t.Fatal("invalid reason must be rejected locally")
	}
	if th.Err() != "Please select a reason" {
		t.Errorf("err = %q, want the reason prompt", th.Err())
	}

	if err := th.Report(context.Background(), models.ReportReasonHarassment, "details"); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(api.reported) != 1 {
		t.Fatalf("reported %d times, want 1", len(api.reported))
	}
	if th.Err() != "" {
		t.Errorf("err after success = %q, want empty", th.Err())
	}
}

func TestThreadDelete(t *testing.T) {
	api := &fakeAPI{deleteErr: &APIError{Message: "conversation not found"}}
	th, err := OpenThread(testSession(), feed.NewMemory(), api, testRunner(), "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}

	if err := th.Delete(context.Background()); err == nil {
		t.Fatal("expected delete error")
	}
	if th.Deleted() {
		t.Error("failed delete must not mark the thread deleted")
	}
	if th.Err() != "conversation not found" {
		t.Errorf("err = %q, want the server message", th.Err())
	}

	api.mu.Lock()
	api.deleteErr = nil
	api.mu.Unlock()

	if err := th.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !th.Deleted() {
		t.Error("successful delete must mark the thread deleted")
	}
}

func TestThreadCloseIsIdempotent(t *testing.T) {
	f := feed.NewMemory()
	th, err := OpenThread(testSession(), f, &fakeAPI{}, testRunner(), "conv_1")
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}

	th.Close()
	th.Close()

	before := len(th.Messages())
	f.AppendMessage(models.Message{MessageID: "m9", ConversationID: "conv_1", SenderID: "VM0002", ReceiverID: "VM0001", Text: "late", Type: models.MessageTypeText, Timestamp: time.Now()})
	if got := len(th.Messages()); got != before {
		t.Errorf("closed thread still received snapshots: %d -> %d", before, got)
	}
}
