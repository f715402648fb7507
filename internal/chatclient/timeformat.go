package chatclient

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders a conversation timestamp the way the list shows
// it: "Just now" under a minute, minute and hour buckets under a day,
// "Yesterday" for exactly one calendar day back, day counts up to six days,
// and a plain date beyond that. Pure function of (now, t).
func FormatRelativeTime(now, t time.Time) string {
	diff := now.Sub(t)

	if diff < time.Minute {
		return "Just now"
	}
	if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	}
	if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}

	days := calendarDaysBetween(t, now)
	if days == 1 {
		return "Yesterday"
	}
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("Jan 2, 2006")
}

// calendarDaysBetween counts midnight boundaries between t and now in t's
// location, so 25 hours ago is still "Yesterday" when only one midnight
// passed.
func calendarDaysBetween(t, now time.Time) int {
	tDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Location())
	return int(nowDay.Sub(tDay) / (24 * time.Hour))
}
