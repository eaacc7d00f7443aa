package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultBaseURL is the national body's public site.
	DefaultBaseURL = "https://www.nationalequestrian.org.au"

	// UserAgent identifies fedsync to the upstream site.
	UserAgent = "fedsync/1.0 (github.com/mkarlsen/fedsync)"

	// CalendarTimeout bounds month listing page fetches.
	CalendarTimeout = 15 * time.Second

	// DetailTimeout bounds per-event detail page fetches.
	DetailTimeout = 10 * time.Second

	// DefaultDetailConcurrency caps concurrent detail fetches within
	// one month scrape.
	DefaultDetailConcurrency = 8
)

// Client fetches and parses the upstream public event calendar.
type Client struct {
	baseURL        *url.URL
	calendarClient *http.Client
	detailClient   *http.Client
	userAgent      string
	detailLimit    int
	log            *slog.Logger
}

// Options configures a Client. Zero values fall back to the defaults
// above.
type Options struct {
	BaseURL           string
	UserAgent         string
	DetailConcurrency int
	Logger            *slog.Logger
}

// New creates a Client for the calendar at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = UserAgent
	}
	limit := opts.DetailConcurrency
	if limit <= 0 {
		limit = DefaultDetailConcurrency
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:        u,
		calendarClient: &http.Client{Timeout: CalendarTimeout},
		detailClient:   &http.Client{Timeout: DetailTimeout},
		userAgent:      ua,
		detailLimit:    limit,
		log:            log,
	}, nil
}

// fetch retrieves pageURL with the given client and parses the body.
func (c *Client) fetch(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
