package chatclient

import (
	"context"
	"strings"
	"sync"

	"github.com/vivaha/backend/internal/models"
)

// MaxImageBytes is the client-side cap on a selected chat image.
const MaxImageBytes = 10 << 20 // 10 MiB

type ImageState int

const (
	ImageIdle ImageState = iota
	ImageSelected
	ImageUploading
)

// SelectedFile describes a file the user picked for sending.
type SelectedFile struct {
	Name    string
	MIME    string
	Size    int64
	DataURL string
}

// ImageSender is the thread's image sub-flow: Idle until a valid file is
// selected, Uploading while the asset is pushed, back to Idle once the
// message is sent or any step fails. Validation violations never leave Idle.
type ImageSender struct {
	api            API
	conversationID string

	mu      sync.Mutex
	state   ImageState
	preview *SelectedFile
	errMsg  string
}

func NewImageSender(api API, conversationID string) *ImageSender {
	return &ImageSender{api: api, conversationID: conversationID}
}

func (s *ImageSender) State() ImageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Preview returns the currently selected file, nil when Idle.
func (s *ImageSender) Preview() *SelectedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *ImageSender) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Select validates the picked file and moves Idle -> Selected. A non-image
// MIME type or an oversize file keeps the sender Idle with a user-visible
// error and no preview change.
func (s *ImageSender) Select(file SelectedFile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == ImageUploading {
		return false
	}

	if !strings.HasPrefix(file.MIME, "image/") {
		s.errMsg = "Please select an image file"
		return false
	}
	if file.Size > MaxImageBytes {
		s.errMsg = "Image must be smaller than 10 MB"
		return false
	}

	s.state = ImageSelected
	s.preview = &file
	s.errMsg = ""
	return true
}

// Clear abandons the current selection.
func (s *ImageSender) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ImageUploading {
		return
	}
	s.state = ImageIdle
	s.preview = nil
	s.errMsg = ""
}

// Send uploads the selected image and then sends the image message. Every
// outcome ends Idle with the preview cleared: an upload failure surfaces the
// error (upsell for the token gate), and a send failure after a successful
// upload also clears the preview even though the hosted asset is now
// unreferenced — the orphaned upload is an accepted tradeoff.
func (s *ImageSender) Send(ctx context.Context) error {
	s.mu.Lock()
	if s.state != ImageSelected || s.preview == nil {
		s.mu.Unlock()
		return nil
	}
	file := *s.preview
	s.state = ImageUploading
	s.mu.Unlock()

	imageURL, err := s.api.UploadImage(ctx, s.conversationID, file.DataURL)
	if err != nil {
		s.finish(userMessage(err, MsgUploadFailed))
		return err
	}

	err = s.api.SendMessage(ctx, models.SendMessageRequest{
		ConversationID: s.conversationID,
		Type:           models.MessageTypeImage,
		ImageURL:       &imageURL,
		DeviceType:     "web",
	})
	if err != nil {
		s.finish(userMessage(err, MsgSendFailed))
		return err
	}

	s.finish("")
	return nil
}

func (s *ImageSender) finish(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ImageIdle
	s.preview = nil
	s.errMsg = errMsg
}
