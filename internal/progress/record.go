// Package progress implements the cross-partition merge-and-aggregate
// engine for CKD stage progression: per-partition normalization and
// earliest-date reduction, an order-independent minimum merge across
// partitions, and transition duration statistics over the merged result.
package progress

import (
	"time"

	"ckd-progress/internal/staging"
)

// Record is one classified condition: a patient was recorded at a staged
// (1-6) level on a date. Records are transient, scoped to one partition.
type Record struct {
	PatientID string
	Stage     staging.Stage
	Date      time.Time
}

// Window is a closed date interval. Both bounds are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// dateLayouts covers the date shapes Synthea exports have used: plain
// dates and full RFC 3339 timestamps.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses a raw date string and truncates it to a UTC calendar
// day. The bool result is false for missing or unparsable input.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
