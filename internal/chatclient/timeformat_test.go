package chatclient

import (
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, time.January, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "Just now"},
		{"under a minute", now.Add(-59 * time.Second), "Just now"},
		{"five minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"fifty nine minutes", now.Add(-59 * time.Minute), "59m ago"},
		{"three hours", now.Add(-3 * time.Hour), "3h ago"},
		{"same calendar day morning", time.Date(2024, time.January, 10, 1, 0, 0, 0, time.UTC), "13h ago"},
		{"previous day within 24h keeps hour bucket", time.Date(2024, time.January, 9, 18, 0, 0, 0, time.UTC), "20h ago"},
		{"same time yesterday", time.Date(2024, time.January, 9, 14, 0, 0, 0, time.UTC), "Yesterday"},
		{"over 24h but one midnight", now.Add(-25 * time.Hour), "Yesterday"},
		{"five days", time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC), "5d ago"},
		{"six days", time.Date(2024, time.January, 4, 12, 0, 0, 0, time.UTC), "6d ago"},
		{"a week ago", time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC), "Jan 3, 2024"},
		{"last year", time.Date(2023, time.November, 20, 12, 0, 0, 0, time.UTC), "Nov 20, 2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRelativeTime(now, tt.t)
			if got != tt.want {
				t.Errorf("FormatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}
