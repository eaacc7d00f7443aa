// Package aggregate fans one sync run out across every month of the
// target years and merges the results into a deduplicated snapshot.
package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkarlsen/fedsync/internal/event"
)

// DefaultFetchConcurrency caps concurrent month-page scrapes within
// one run.
const DefaultFetchConcurrency = 6

// Scraper is the single-month scrape dependency.
type Scraper interface {
	FetchMonth(ctx context.Context, year int, month time.Month, discipline string) []event.DayInstance
}

// Aggregator collects the full external snapshot for a sync run.
type Aggregator struct {
	scraper Scraper
	limit   int
	log     *slog.Logger
}

// New creates an Aggregator; limit <= 0 falls back to
// DefaultFetchConcurrency.
func New(s Scraper, limit int, log *slog.Logger) *Aggregator {
	if limit <= 0 {
		limit = DefaultFetchConcurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{scraper: s, limit: limit, log: log}
}

type monthJob struct {
	year       int
	month      time.Month
	discipline string
}

// Collect scrapes every (year, month) page, plus every per-discipline
// page when disciplines is non-empty, and returns the deduplicated day
// instances. The per-discipline pages are unioned with the unfiltered
// run because upstream surfaces some events only there; duplicates
// resolve last-write-wins in completion order.
func (a *Aggregator) Collect(ctx context.Context, years []int, disciplines []string) []event.DayInstance {
	var jobs []monthJob
	for _, y := range years {
		for m := time.January; m <= time.December; m++ {
			jobs = append(jobs, monthJob{year: y, month: m})
			for _, d := range disciplines {
				jobs = append(jobs, monthJob{year: y, month: m, discipline: d})
			}
		}
	}

	var (
		mu  sync.Mutex
		all []event.DayInstance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for _, job := range jobs {
		g.Go(func() error {
			got := a.scraper.FetchMonth(gctx, job.year, job.month, job.discipline)
			mu.Lock()
			all = append(all, got...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	deduped := Dedup(all)
	a.log.Info("aggregation complete",
		"pages", len(jobs),
		"instances", len(all),
		"deduplicated", len(deduped),
	)
	return deduped
}

// Dedup keeps one instance per (sourceURL, dayText) natural key; later
// entries replace earlier ones sharing a key.
func Dedup(instances []event.DayInstance) []event.DayInstance {
	index := make(map[string]int, len(instances))
	out := make([]event.DayInstance, 0, len(instances))
	for _, inst := range instances {
		key := inst.Key()
		if i, ok := index[key]; ok {
			out[i] = inst
			continue
		}
		index[key] = len(out)
		out = append(out, inst)
	}
	return out
}
