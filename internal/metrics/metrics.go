// Package metrics holds the Prometheus collectors for the sync
// pipeline. Collectors are package-level and registered via Register.
package metrics

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	regOK atomic.Bool

	// PagesFetched counts upstream page fetches by kind
	// (calendar|detail) and result (ok|error).
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedsync",
			Subsystem: "scrape",
			Name:      "pages_total",
			Help:      "Number of upstream pages fetched.",
		}, []string{"kind", "result"},
	)
	// EventsScraped counts day instances produced by month scrapes,
	// before deduplication.
	EventsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedsync",
			Subsystem: "scrape",
			Name:      "events_total",
			Help:      "Number of per-day event instances scraped.",
		},
	)
	// SyncRuns counts completed sync attempts by result (ok|error).
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedsync",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Number of sync attempts.",
		}, []string{"result"},
	)
	// SyncMutations counts store writes by action (add|update|delete).
	SyncMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedsync",
			Subsystem: "sync",
			Name:      "mutations_total",
			Help:      "Number of event store mutations applied by reconciliation.",
		}, []string{"action"},
	)
	// SyncDuration observes end-to-end sync run duration.
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fedsync",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of successful sync runs.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers all collectors with the provided registerer. It is
// safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	collectors := []prometheus.Collector{
		PagesFetched,
		EventsScraped,
		SyncRuns,
		SyncMutations,
		SyncDuration,
	}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}
