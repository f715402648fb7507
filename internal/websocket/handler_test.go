package websocket

import (
	"net/http/httptest"
	"testing"
)

func TestHandlerCheckOrigin(t *testing.T) {
	h := NewHandler(nil, nil, nil, []string{"https://app.vivaha.example", "*.vivaha.example"})

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"exact match", "https://app.vivaha.example", true},
		{"wildcard subdomain", "https://admin.vivaha.example", true},
		{"other host", "https://evil.example", false},
		{"missing origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestHandlerCheckOriginOpenByDefault(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	if !h.checkOrigin(req) {
		t.Error("empty allow-list must not reject handshakes")
	}
}
