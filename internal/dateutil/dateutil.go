// Package dateutil provides the day-level date handling shared by the
// scraper and the sync pipeline.
//
// All calendar days flow through the fixed DD/MM/YYYY text layout: the
// upstream site renders dates that way, and the persisted store keys
// synced events by it. Days are represented as UTC midnight times.
package dateutil

import (
	"fmt"
	"iter"
	"time"
)

// Layout is the day layout used across the pipeline: zero-padded day
// and month with a four-digit year.
const Layout = "02/01/2006"

// parseLayout additionally accepts single-digit day and month segments
// as they appear on the upstream calendar. FormatDay always zero-pads.
const parseLayout = "2/1/2006"

// MalformedDateError reports day text that does not have the
// DD/MM/YYYY shape.
type MalformedDateError struct {
	Text string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: want DD/MM/YYYY", e.Text)
}

// ParseDay parses DD/MM/YYYY day text into a UTC midnight time.
func ParseDay(text string) (time.Time, error) {
	t, err := time.Parse(parseLayout, text)
	if err != nil {
		return time.Time{}, &MalformedDateError{Text: text}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDay is the inverse of ParseDay, zero-padding day and month.
func FormatDay(day time.Time) string {
	return day.Format(Layout)
}

// Days enumerates every calendar day from start to end inclusive. The
// sequence is restartable: ranging over it twice yields the same days.
// If start is after end the sequence holds start alone; callers are
// expected to pass an ordered range.
func Days(start, end time.Time) iter.Seq[time.Time] {
	start = truncate(start)
	end = truncate(end)
	return func(yield func(time.Time) bool) {
		if end.Before(start) {
			yield(start)
			return
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
