package contentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// Sweeper periodically removes workspaces abandoned by crashed uploads.
type Sweeper struct {
	store     *Store
	maxAge    time.Duration
	scheduler gocron.Scheduler
}

func NewSweeper(store *Store, interval, maxAge time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	sw := &Sweeper{store: store, maxAge: maxAge, scheduler: scheduler}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sw.RunOnce, context.Background()),
		gocron.WithName("scratch-sweeper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule scratch sweep: %w", err)
	}
	return sw, nil
}

// RunOnce sweeps immediately and logs the result.
func (sw *Sweeper) RunOnce(ctx context.Context) {
	removed, err := sw.store.Sweep(ctx, sw.maxAge)
	entry := log.WithFields(log.Fields{
		"removed": removed,
		"max_age": sw.maxAge.String(),
	})
	if err != nil {
		entry.WithError(err).Warn("scratch sweep finished with errors")
		return
	}
	if removed > 0 {
		entry.Info("removed abandoned scratch workspaces")
	}
}

func (sw *Sweeper) Start() {
	sw.scheduler.Start()
}

func (sw *Sweeper) Stop() error {
	return sw.scheduler.Shutdown()
}
