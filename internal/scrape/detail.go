package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkarlsen/fedsync/internal/event"
	"github.com/mkarlsen/fedsync/internal/metrics"
)

// Detail holds the optional fields lifted from an event's detail page.
type Detail struct {
	Discipline  string
	Location    string
	Tier        string
	Description string
}

// FetchDetail fetches one event's detail page. Any fetch failure is
// soft: the zero Detail comes back and the event keeps only its
// listing fields.
func (c *Client) FetchDetail(ctx context.Context, pageURL, name string) Detail {
	doc, err := c.fetch(ctx, c.detailClient, pageURL)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("detail", "error").Inc()
		c.log.Warn("detail fetch failed", "url", pageURL, "event", name, "err", err)
		return Detail{}
	}
	metrics.PagesFetched.WithLabelValues("detail", "ok").Inc()

	d := parseDetail(doc)
	d.Tier = event.InferTier(name)
	return d
}

// parseDetail walks the page's definition list taking the first
// location and the first discipline term/value pair in document order.
func parseDetail(doc *goquery.Document) Detail {
	var d Detail
	doc.Find("dl dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		term := strings.ToLower(strings.TrimSpace(dt.Text()))
		value := strings.TrimSpace(dt.NextFiltered("dd").Text())
		if value == "" {
			return true
		}
		switch {
		case d.Location == "" && strings.Contains(term, "location:"):
			d.Location = value
		case d.Discipline == "" && strings.Contains(term, "sports"):
			d.Discipline = value
		}
		return d.Location == "" || d.Discipline == ""
	})

	if p := strings.TrimSpace(doc.Find(".event-description p").First().Text()); p != "" {
		d.Description = p
	}
	return d
}
