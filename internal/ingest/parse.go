package ingest

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; day-first wins for ambiguous dates.
var dateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
}

// ParseDate returns nil when s matches none of the accepted layouts.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseClock parses a task start or end cell into HH:MM:SS. It accepts
// "9:30", "9.30", "09:30:00" and "2025-06-02 09:30", and returns nil otherwise.
func ParseClock(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	attempts := []struct {
		layout string
		value  string
	}{
		{"15:04", strings.ReplaceAll(s, ".", ":")},
		{"15:04:05", s},
		{"15.04", s},
		{"2006-01-02 15:04", s},
	}
	for _, a := range attempts {
		if t, err := time.Parse(a.layout, a.value); err == nil {
			clock := t.Format("15:04:05")
			return &clock
		}
	}
	return nil
}

// isoWeek returns the ISO 8601 week number of d, or nil for a nil date.
func isoWeek(d *time.Time) *int {
	if d == nil {
		return nil
	}
	_, w := d.ISOWeek()
	return &w
}
