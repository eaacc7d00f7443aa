package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/mkarlsen/fedsync/internal/event"
	"github.com/mkarlsen/fedsync/internal/metrics"
)

// ReconcileStats counts the mutations applied by one reconciliation
// pass.
type ReconcileStats struct {
	Added   int
	Updated int
	Deleted int
	Total   int
}

// reconcile converges the pipeline-tagged rows of the events
// collection to the external snapshot: matched rows are updated, new
// keys inserted, and rows whose key vanished upstream deleted. Per-item
// store failures are collected and the pass continues; only the initial
// existing-rows query is fatal.
func (s *Service) reconcile(ctx context.Context, instances []event.DayInstance) (ReconcileStats, []string, error) {
	existing, err := s.store.Query(ctx, EventsCollection, fieldSource, event.SourceTag)
	if err != nil {
		return ReconcileStats{}, nil, fmt.Errorf("loading synced events: %w", err)
	}

	// Natural key -> document id for every row this pipeline owns.
	// Matched keys are removed as they are accounted for; whatever
	// remains afterwards vanished upstream and is deleted.
	remaining := make(map[string]string, len(existing))
	for _, doc := range existing {
		link, _ := doc.Data[fieldLink].(string)
		date, _ := doc.Data[fieldDate].(string)
		remaining[event.Key(link, date)] = doc.ID
	}

	var (
		stats ReconcileStats
		errs  []string
	)
	now := s.now().UTC().Format(time.RFC3339)

	for _, inst := range instances {
		key := inst.Key()
		if id, ok := remaining[key]; ok {
			if err := s.store.Update(ctx, EventsCollection, id, eventPatch(inst, now)); err != nil {
				errs = append(errs, fmt.Sprintf("updating %q (%s): %v", inst.Name, inst.DateText(), err))
			} else {
				stats.Updated++
				metrics.SyncMutations.WithLabelValues("update").Inc()
			}
			delete(remaining, key)
			continue
		}

		data := eventPatch(inst, now)
		data[fieldSource] = event.SourceTag
		data[fieldCreatedAt] = now
		if _, err := s.store.Add(ctx, EventsCollection, data); err != nil {
			errs = append(errs, fmt.Sprintf("adding %q (%s): %v", inst.Name, inst.DateText(), err))
		} else {
			stats.Added++
			metrics.SyncMutations.WithLabelValues("add").Inc()
		}
	}

	for key, id := range remaining {
		if err := s.store.Delete(ctx, EventsCollection, id); err != nil {
			errs = append(errs, fmt.Sprintf("deleting %s: %v", key, err))
		} else {
			stats.Deleted++
			metrics.SyncMutations.WithLabelValues("delete").Inc()
		}
	}

	stats.Total = len(instances)
	return stats, errs, nil
}

// eventPatch is the set of fields a sync run owns on a persisted
// event. Everything here is overwritten on update; source tag and
// creation time are only written on insert.
func eventPatch(inst event.DayInstance, now string) map[string]any {
	return map[string]any{
		fieldName:        inst.Name,
		fieldDate:        inst.DateText(),
		fieldLink:        inst.SourceURL,
		fieldDescription: inst.Description,
		fieldLocation:    inst.Location,
		fieldDiscipline:  inst.Discipline,
		fieldTier:        inst.Tier,
		fieldUpdatedAt:   now,
	}
}
