package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotAnImage = errors.New("file is not an image")
	ErrTooLarge   = errors.New("image exceeds the maximum allowed size")
	ErrBadDataURL = errors.New("malformed data URL")
)

// ImageStore validates and persists chat images submitted as data URLs,
// handing back the hosted URL the message will reference.
type ImageStore struct {
	dir     string
	baseURL string
	maxSize int64
}

// NewImageStore creates the upload directory if needed.
func NewImageStore(dir, baseURL string, maxSize int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &ImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxSize: maxSize}, nil
}

// Save decodes a data URL, enforces the image-only MIME and size limits, and
// writes the bytes under a fresh uuid name. Returns the public URL.
func (s *ImageStore) Save(dataURL string) (string, error) {
	mediaType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(mediaType, "image/") {
		return "", ErrNotAnImage
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	name := uuid.New().String() + extensionFor(mediaType)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Dir returns the directory served as static content.
func (s *ImageStore) Dir() string {
	return s.dir
}

// ParseDataURL splits a "data:<mediatype>;base64,<payload>" string into its
// media type and decoded bytes.
func ParseDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, ErrBadDataURL
	}

	rest := strings.TrimPrefix(dataURL, "data:")
	sep := strings.IndexByte(rest, ',')
	if sep < 0 {
		return "", nil, ErrBadDataURL
	}

	meta := rest[:sep]
	payload := rest[sep+1:]

	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrBadDataURL
	}
	mediaType := strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		return "", nil, ErrBadDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}

	return mediaType, data, nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
