// Package activity filters the notification log by time window. The filter
// is stateless: identical inputs always produce identical output.
package activity

import (
	"fmt"
	"time"

	"github.com/mwaheed/tradepilot/internal/backend"
)

type Mode string

const (
	ModeToday  Mode = "today"
	ModeWeek   Mode = "week"
	ModeMonth  Mode = "month"
	ModeCustom Mode = "custom"
	ModeAll    Mode = "all"
)

// ParseMode maps a query-string value to a Mode. An empty value means no
// filtering.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeToday, ModeWeek, ModeMonth, ModeCustom, ModeAll:
		return Mode(s), nil
	case "":
		return ModeAll, nil
	default:
		return "", fmt.Errorf("unknown activity filter %q", s)
	}
}

// Filter returns the entries inside the selected window, preserving input
// order (the source is newest-first and is not re-sorted). customDays only
// applies to ModeCustom and is clamped to at least one day.
func Filter(entries []backend.Notification, mode Mode, customDays int, now time.Time) []backend.Notification {
	if mode == ModeAll {
		return entries
	}

	var cutoff time.Time
	switch mode {
	case ModeWeek:
		cutoff = now.AddDate(0, 0, -7)
	case ModeMonth:
		cutoff = now.AddDate(0, 0, -30)
	case ModeCustom:
		if customDays < 1 {
			customDays = 1
		}
		cutoff = now.AddDate(0, 0, -customDays)
	}

	filtered := make([]backend.Notification, 0, len(entries))
	for _, e := range entries {
		if mode == ModeToday {
			if sameDay(e.Timestamp, now) {
				filtered = append(filtered, e)
			}
			continue
		}
		if !e.Timestamp.Before(cutoff) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// sameDay compares calendar dates in the viewer's local zone, taken from now.
func sameDay(t, now time.Time) bool {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
