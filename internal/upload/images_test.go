package upload

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func newTestStore(t *testing.T, maxSize int64) *ImageStore {
	t.Helper()
	store, err := NewImageStore(t.TempDir(), "/uploads/chat", maxSize)
	if err != nil {
		t.Fatalf("NewImageStore failed: %v", err)
	}
	return store
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid png", dataURL("image/png", []byte{1, 2, 3}), false},
		{"Missing prefix", "image/png;base64,AQID", true},
		{"Missing comma", "data:image/png;base64", true},
		{"Not base64 encoded", "data:image/png,AQID", true},
		{"Empty media type", "data:;base64,AQID", true},
		{"Invalid base64 payload", "data:image/png;base64,!!!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDataURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDataURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestImageStore_Save(t *testing.T) {
	store := newTestStore(t, 1024)

	url, err := store.Save(dataURL("image/png", []byte("fake png bytes")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/chat/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected URL %q", url)
	}

	name := strings.TrimPrefix(url, "/uploads/chat/")
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Fatalf("stored bytes differ: %q", data)
	}
}

func TestImageStore_Save_RejectsNonImage(t *testing.T) {
	store := newTestStore(t, 1024)

	_, err := store.Save(dataURL("application/pdf", []byte("pdf")))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func TestImageStore_Save_RejectsOversized(t *testing.T) {
	store := newTestStore(t, 8)

	_, err := store.Save(dataURL("image/jpeg", []byte("way more than eight bytes")))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
