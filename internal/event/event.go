package event

import (
	"fmt"
	"time"

	"github.com/mkarlsen/fedsync/internal/dateutil"
)

// SourceTag marks persisted rows owned by the external calendar
// pipeline. Reconciliation only ever touches rows carrying this tag.
const SourceTag = "external-calendar"

// ExternalEvent is one listing scraped from the upstream calendar. The
// date range is inclusive; StartDate <= EndDate.
type ExternalEvent struct {
	Name        string
	SourceURL   string
	StartDate   time.Time
	EndDate     time.Time
	Discipline  string
	Location    string
	Tier        string
	Description string
}

// DayInstance is the atomic unit persisted and compared: a single
// calendar day of an ExternalEvent.
type DayInstance struct {
	Name        string
	SourceURL   string
	Date        time.Time
	Discipline  string
	Location    string
	Tier        string
	Description string
}

// DateText renders the instance's day in the pipeline's fixed layout.
func (d DayInstance) DateText() string {
	return dateutil.FormatDay(d.Date)
}

// Key is the natural key identifying the same occurrence across runs.
func (d DayInstance) Key() string {
	return Key(d.SourceURL, d.DateText())
}

// Key builds the (sourceURL, dayText) natural key.
func Key(sourceURL, dayText string) string {
	return sourceURL + "|" + dayText
}

// Expand splits the event into one DayInstance per day of its
// inclusive range. Multi-day events get their ordinal position
// appended to the name; single-day events keep the name unchanged.
func (e ExternalEvent) Expand() []DayInstance {
	var days []time.Time
	for d := range dateutil.Days(e.StartDate, e.EndDate) {
		days = append(days, d)
	}

	out := make([]DayInstance, 0, len(days))
	for i, d := range days {
		name := e.Name
		if len(days) > 1 {
			name = fmt.Sprintf("%s (Day %d/%d)", e.Name, i+1, len(days))
		}
		out = append(out, DayInstance{
			Name:        name,
			SourceURL:   e.SourceURL,
			Date:        d,
			Discipline:  e.Discipline,
			Location:    e.Location,
			Tier:        e.Tier,
			Description: e.Description,
		})
	}
	return out
}
