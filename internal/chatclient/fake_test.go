package chatclient

import (
	"context"
	"sync"

	"github.com/vivaha/backend/internal/models"
)

// fakeAPI records every call and returns scripted results.
type fakeAPI struct {
	mu sync.Mutex

	sent       []models.SendMessageRequest
	marked     []string
	uploaded   []string
	reported   []string
	deleted    []string

	sendErr   error
	markErr   error
	uploadErr error
	uploadURL string
	reportErr error
	deleteErr error
}

func (f *fakeAPI) SendMessage(ctx context.Context, req models.SendMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return f.sendErr
}

func (f *fakeAPI) MarkConversationRead(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, conversationID)
	return f.markErr
}

func (f *fakeAPI) UploadImage(ctx context.Context, conversationID, dataURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, conversationID)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURL, nil
}

func (f *fakeAPI) ReportConversation(ctx context.Context, conversationID string, reason models.ReportReason, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reported = append(f.reported, conversationID)
	return f.reportErr
}

func (f *fakeAPI) DeleteConversation(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, conversationID)
	return f.deleteErr
}

func (f *fakeAPI) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeAPI) markCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.marked)
}

func testSession() Session {
	return Session{Token: "token", UserID: "0b5c9e1a", AccountID: "VM0001"}
}
