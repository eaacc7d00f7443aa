package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mkarlsen/fedsync/internal/dateutil"
	"github.com/mkarlsen/fedsync/internal/event"
	"github.com/mkarlsen/fedsync/internal/metrics"
)

// dayPattern matches the D/M/YYYY dates rendered inside the listing's
// date display elements.
var dayPattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)

// rawEntry is one event row lifted from the listing before detail
// enrichment and day expansion.
type rawEntry struct {
	name      string
	link      string
	startText string
	endText   string
}

// CalendarURL builds the month listing URL. The month segment is
// unpadded and the discipline path segment is present only when a
// discipline filter is given.
func (c *Client) CalendarURL(year int, month time.Month, discipline string) string {
	path := fmt.Sprintf("/event-calendar/month/%d-%d", year, int(month))
	if discipline != "" {
		path = fmt.Sprintf("/event-calendar/month/%s/%d-%d", url.PathEscape(discipline), year, int(month))
	}
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

// FetchMonth scrapes one month's calendar listing and returns the
// expanded per-day instances. When a discipline filter is given it is
// part of the listing URL and overrides whatever discipline the detail
// pages report. Fetch failures degrade to an empty result so one bad
// month never aborts a whole run.
func (c *Client) FetchMonth(ctx context.Context, year int, month time.Month, discipline string) []event.DayInstance {
	pageURL := c.CalendarURL(year, month, discipline)
	doc, err := c.fetch(ctx, c.calendarClient, pageURL)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("calendar", "error").Inc()
		c.log.Warn("calendar fetch failed", "url", pageURL, "err", err)
		return nil
	}
	metrics.PagesFetched.WithLabelValues("calendar", "ok").Inc()

	entries := parseCalendar(doc, c.baseURL)
	return c.expandEntries(ctx, entries, year, month, discipline)
}

// parseCalendar extracts the raw event entries from a listing page.
// Entries without a link or a non-empty name are listing noise and are
// skipped silently; relative links are resolved against base.
func parseCalendar(doc *goquery.Document, base *url.URL) []rawEntry {
	var entries []rawEntry
	doc.Find(".event-item").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a[href]").First()
		href, ok := link.Attr("href")
		name := strings.TrimSpace(link.Text())
		if !ok || strings.TrimSpace(href) == "" || name == "" {
			return
		}

		abs := href
		if u, err := url.Parse(href); err == nil {
			abs = base.ResolveReference(u).String()
		}

		start := dateText(sel.Find("span.date-start").First())
		if start == "" {
			start = cellDate(sel)
		}
		end := dateText(sel.Find("span.date-end").First())
		if end == "" {
			end = start
		}

		entries = append(entries, rawEntry{name: name, link: abs, startText: start, endText: end})
	})
	return entries
}

// dateText scans a date display element for a D/M/YYYY match, falling
// back to the text before the first space. Returns "" when the element
// is absent or empty.
func dateText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return ""
	}
	if m := dayPattern.FindString(text); m != "" {
		return m
	}
	if i := strings.IndexByte(text, ' '); i > 0 {
		return text[:i]
	}
	return text
}

// cellDate reads the YYYY-MM-DD data-date attribute of the enclosing
// calendar cell, converting it to the pipeline's day layout.
func cellDate(sel *goquery.Selection) string {
	raw, ok := sel.Closest("td[data-date]").Attr("data-date")
	if !ok {
		return ""
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return dateutil.FormatDay(t)
}

// expandEntries enriches entries with their detail pages (fetched
// concurrently, bounded) and expands each into per-day instances.
func (c *Client) expandEntries(ctx context.Context, entries []rawEntry, year int, month time.Month, discipline string) []event.DayInstance {
	details := make([]Detail, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.detailLimit)
	for i, en := range entries {
		g.Go(func() error {
			details[i] = c.FetchDetail(gctx, en.link, en.name)
			return nil
		})
	}
	_ = g.Wait()

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var out []event.DayInstance
	for i, en := range entries {
		start, err := dateutil.ParseDay(en.startText)
		if err != nil {
			// No parseable start anywhere on the row: pin the event to
			// the first day of the requested month.
			start = monthStart
		}
		end, err := dateutil.ParseDay(en.endText)
		if err != nil {
			end = start
		}
		if end.Before(start) {
			end = start
		}

		ev := event.ExternalEvent{
			Name:        en.name,
			SourceURL:   en.link,
			StartDate:   start,
			EndDate:     end,
			Discipline:  details[i].Discipline,
			Location:    details[i].Location,
			Tier:        details[i].Tier,
			Description: details[i].Description,
		}
		if discipline != "" {
			ev.Discipline = discipline
		}
		out = append(out, ev.Expand()...)
	}

	metrics.EventsScraped.Add(float64(len(out)))
	return out
}
