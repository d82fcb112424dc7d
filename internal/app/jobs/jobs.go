package jobs

import (
	"context"
	"fmt"
	"time"

	"tomaai-api/internal/app/metrics"
	"tomaai-api/internal/domain/billing"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const pruneSchedule = "@daily"

// Task is an extra job registered next to the built-in ones.
type Task struct {
	Name string
	Spec string
	Run  func()
}

// Start schedules the maintenance jobs and starts the cron runner.
// Callers stop it with Stop() on shutdown.
func Start(db *gorm.DB, retention time.Duration, extra ...Task) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(pruneSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-retention)
		n, err := PruneProcessedEvents(ctx, db, cutoff)
		if err != nil {
			log.Error().Err(err).Msg("prune processed webhook events failed")
			return
		}
		log.Info().Int64("removed", n).Time("cutoff", cutoff).Msg("pruned processed webhook events")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule prune job: %w", err)
	}

	for _, t := range extra {
		if _, err := c.AddFunc(t.Spec, t.Run); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", t.Name, err)
		}
	}

	c.Start()
	return c, nil
}

// PruneProcessedEvents deletes dedupe rows older than before. Stripe stops
// redelivering an event after three days, so old ids are never seen again.
func PruneProcessedEvents(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("processed_at < ?", before).
		Delete(&billing.ProcessedEvent{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete processed events: %w", res.Error)
	}
	metrics.ProcessedEventsPruned.Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}
