package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/fedsync/internal/event"
	"github.com/mkarlsen/fedsync/internal/metrics"
	"github.com/mkarlsen/fedsync/internal/store"
)

// LeaseTTL is how long a run lease is honored before a newer run may
// steal it from a crashed owner.
const LeaseTTL = 30 * time.Minute

// Aggregator produces the deduplicated external snapshot for a run.
type Aggregator interface {
	Collect(ctx context.Context, years []int, disciplines []string) []event.DayInstance
}

// CacheInvalidator is notified after a reconciliation has changed the
// events collection. Fire-and-forget; no result is consumed.
type CacheInvalidator interface {
	InvalidateEvents(ctx context.Context)
}

// NopInvalidator is the default CacheInvalidator.
type NopInvalidator struct{}

func (NopInvalidator) InvalidateEvents(context.Context) {}

// Service is the synchronization pipeline's public surface.
type Service struct {
	store       store.Store
	agg         Aggregator
	invalidator CacheInvalidator
	log         *slog.Logger
	now         func() time.Time
	owner       string
}

// New creates a Service. inv may be nil; a no-op invalidator is used.
func New(st store.Store, agg Aggregator, inv CacheInvalidator, log *slog.Logger) *Service {
	if inv == nil {
		inv = NopInvalidator{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:       st,
		agg:         agg,
		invalidator: inv,
		log:         log,
		now:         time.Now,
		owner:       uuid.NewString(),
	}
}

// Ping verifies the configuration store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.store.Get(ctx, ConfigCollection, configDocID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) loadConfig(ctx context.Context) (*Config, error) {
	doc, err := s.store.Get(ctx, ConfigCollection, configDocID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sync config: %w", err)
	}
	var cfg Config
	if err := fromDoc(doc.Data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding sync config: %w", err)
	}
	return &cfg, nil
}

func (s *Service) loadMetadata(ctx context.Context) (*Metadata, error) {
	doc, err := s.store.Get(ctx, MetadataCollection, metadataDocID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sync metadata: %w", err)
	}
	var meta Metadata
	if err := fromDoc(doc.Data, &meta); err != nil {
		return nil, fmt.Errorf("decoding sync metadata: %w", err)
	}
	return &meta, nil
}

// Status returns the most recent sync metadata, or nil when no sync
// has ever run.
func (s *Service) Status(ctx context.Context) (*Metadata, error) {
	return s.loadMetadata(ctx)
}

// CheckSyncNeeded reports whether a sync should execute now. force
// overrides the active and interval gates but still requires a
// configuration to exist.
func (s *Service) CheckSyncNeeded(ctx context.Context, force bool) (CheckResult, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return CheckResult{}, err
	}
	if cfg == nil {
		return CheckResult{State: StateNeverConfigured}, nil
	}

	res := CheckResult{Config: cfg}
	meta, err := s.loadMetadata(ctx)
	if err != nil {
		return CheckResult{}, err
	}
	if meta != nil && !meta.LastSyncDate.IsZero() {
		last := meta.LastSyncDate
		res.LastSyncDate = &last
	}

	interval := time.Duration(cfg.SyncIntervalDays) * 24 * time.Hour
	switch {
	case !cfg.IsActive:
		res.State = StateDisabled
	case res.LastSyncDate == nil:
		res.State = StateDue
	case s.now().Sub(*res.LastSyncDate) < interval:
		res.State = StateUpToDate
	default:
		res.State = StateDue
	}

	res.ShouldRun = res.State == StateDue || force
	return res, nil
}

// UpdateConfigParams carries the admin-editable configuration fields.
type UpdateConfigParams struct {
	Disciplines      []string `json:"disciplines"`
	YearsAhead       int      `json:"yearsAhead"`
	SyncIntervalDays int      `json:"syncIntervalDays"`
	IsActive         bool     `json:"isActive"`
}

// UpdateConfig validates and upserts the sync configuration. Out-of-
// range values fail with a ValidationError naming the field; nothing
// is partially applied.
func (s *Service) UpdateConfig(ctx context.Context, p UpdateConfigParams) (*Config, error) {
	if p.YearsAhead < 1 || p.YearsAhead > 5 {
		return nil, &ValidationError{Field: "yearsAhead", Message: "must be between 1 and 5"}
	}
	if p.SyncIntervalDays < 1 || p.SyncIntervalDays > 30 {
		return nil, &ValidationError{Field: "syncIntervalDays", Message: "must be between 1 and 30"}
	}

	now := s.now().UTC()
	cfg := Config{
		Disciplines:      p.Disciplines,
		YearsAhead:       p.YearsAhead,
		SyncIntervalDays: p.SyncIntervalDays,
		IsActive:         p.IsActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	existing, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		cfg.CreatedAt = existing.CreatedAt
	}

	data, err := toDoc(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding sync config: %w", err)
	}
	if err := s.store.Set(ctx, ConfigCollection, configDocID, data); err != nil {
		return nil, fmt.Errorf("writing sync config: %w", err)
	}

	s.log.Info("sync config updated",
		"yearsAhead", cfg.YearsAhead,
		"syncIntervalDays", cfg.SyncIntervalDays,
		"isActive", cfg.IsActive,
		"disciplines", cfg.Disciplines,
	)
	return &cfg, nil
}

// RunSync executes one sync attempt. Gate refusals come back as a
// non-success Result without touching metadata; once the pipeline
// starts, metadata is written on every exit path.
func (s *Service) RunSync(ctx context.Context, force bool) Result {
	check, err := s.CheckSyncNeeded(ctx, force)
	if err != nil {
		// Configuration store unreachable: pipeline-fatal.
		metrics.SyncRuns.WithLabelValues("error").Inc()
		s.writeMetadata(ctx, false, 0, nil, nil)
		s.log.Error("sync failed before start", "err", err)
		return Result{Success: false, State: check.State, Message: "sync failed: " + err.Error()}
	}
	switch {
	case check.State == StateNeverConfigured:
		return Result{
			Success: false,
			State:   StateNeverConfigured,
			Message: "sync is not configured; save a sync configuration first",
		}
	case !check.ShouldRun && check.State == StateDisabled:
		return Result{Success: false, State: StateDisabled, Message: "sync is disabled"}
	case !check.ShouldRun:
		return Result{Success: false, State: StateUpToDate, Message: "sync is up to date"}
	}

	release, ok := s.acquireLease(ctx)
	if !ok {
		return Result{Success: false, State: StateRunning, Message: "a sync run is already in progress"}
	}
	defer release()

	started := s.now()
	cfg := *check.Config
	years := targetYears(started.Year(), cfg.YearsAhead)

	s.log.Info("sync starting", "years", years, "disciplines", cfg.Disciplines, "force", force)
	instances := s.agg.Collect(ctx, years, cfg.Disciplines)

	stats, itemErrs, err := s.reconcile(ctx, instances)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		s.writeMetadata(ctx, false, 0, nil, nil)
		s.log.Error("sync failed", "err", err)
		return Result{Success: false, State: check.State, Message: "sync failed: " + err.Error()}
	}

	s.writeMetadata(ctx, true, stats.Total, years, cfg.Disciplines)
	s.invalidator.InvalidateEvents(ctx)

	metrics.SyncRuns.WithLabelValues("ok").Inc()
	metrics.SyncDuration.Observe(s.now().Sub(started).Seconds())

	msg := fmt.Sprintf("sync completed: %d added, %d updated, %d deleted of %d events",
		stats.Added, stats.Updated, stats.Deleted, stats.Total)
	if len(itemErrs) > 0 {
		msg = fmt.Sprintf("%s (%d item errors)", msg, len(itemErrs))
	}
	s.log.Info("sync completed",
		"added", stats.Added,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
		"total", stats.Total,
		"itemErrors", len(itemErrs),
	)

	return Result{
		Success: true,
		State:   check.State,
		Message: msg,
		Added:   stats.Added,
		Updated: stats.Updated,
		Deleted: stats.Deleted,
		Total:   stats.Total,
		Errors:  itemErrs,
	}
}

type leaseDoc struct {
	Owner string    `json:"owner"`
	Since time.Time `json:"since"`
}

// acquireLease takes the run lease, refusing while another live run
// holds it. Leases older than LeaseTTL are treated as abandoned and
// stolen.
func (s *Service) acquireLease(ctx context.Context) (func(), bool) {
	doc, err := s.store.Get(ctx, MetadataCollection, leaseDocID)
	switch {
	case err == nil:
		var l leaseDoc
		if derr := fromDoc(doc.Data, &l); derr == nil {
			if s.now().Sub(l.Since) < LeaseTTL {
				return nil, false
			}
			s.log.Warn("stealing stale sync lease", "owner", l.Owner, "since", l.Since)
		}
	case !errors.Is(err, store.ErrNotFound):
		s.log.Warn("reading sync lease failed", "err", err)
	}

	data, err := toDoc(leaseDoc{Owner: s.owner, Since: s.now().UTC()})
	if err != nil {
		return nil, false
	}
	if err := s.store.Set(ctx, MetadataCollection, leaseDocID, data); err != nil {
		s.log.Warn("writing sync lease failed", "err", err)
		return nil, false
	}

	return func() {
		if err := s.store.Delete(ctx, MetadataCollection, leaseDocID); err != nil {
			s.log.Warn("releasing sync lease failed", "err", err)
		}
	}, true
}

// writeMetadata records the attempt outcome; best-effort, a write
// failure is logged but cannot fail the run further.
func (s *Service) writeMetadata(ctx context.Context, success bool, count int, years []int, disciplines []string) {
	meta := Metadata{
		LastSyncDate:    s.now().UTC(),
		LastSyncSuccess: success,
		EventsCount:     count,
		YearsSync:       years,
		DisciplinesSync: disciplines,
	}
	data, err := toDoc(meta)
	if err == nil {
		err = s.store.Set(ctx, MetadataCollection, metadataDocID, data)
	}
	if err != nil {
		s.log.Error("writing sync metadata failed", "err", err)
	}
}

// targetYears is the inclusive horizon from the current year through
// current+ahead.
func targetYears(current, ahead int) []int {
	years := make([]int, 0, ahead+1)
	for y := current; y <= current+ahead; y++ {
		years = append(years, y)
	}
	return years
}
