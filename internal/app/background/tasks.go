package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/usecase"
)

type Scheduler interface {
	ScheduleFetches(ctx context.Context) (usecase.ScheduleReport, error)
}

type Sweeper interface {
	SweepOlderThanDays(ctx context.Context, days int) (usecase.RetentionReport, error)
}

type HealthWatcher interface {
	Watch(ctx context.Context, interval time.Duration)
}

// BackgroundTasks runs the periodic jobs of a process. Nil jobs are skipped.
type BackgroundTasks struct {
	Scheduler         Scheduler
	SchedulerInterval time.Duration

	Retention         Sweeper
	RetentionDays     int
	RetentionInterval time.Duration

	Health         HealthWatcher
	HealthInterval time.Duration

	Log *slog.Logger
	wg  sync.WaitGroup
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.Log == nil {
		bt.Log = slog.Default()
	}
	if bt.Scheduler != nil {
		bt.spawn(func() { bt.startFetchScheduling(ctx) })
	}
	if bt.Retention != nil {
		bt.spawn(func() { bt.startRetentionSweep(ctx) })
	}
	if bt.Health != nil {
		bt.spawn(func() { bt.Health.Watch(ctx, bt.HealthInterval) })
	}
}

// Wait blocks until every started job returned.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

func (bt *BackgroundTasks) spawn(f func()) {
	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		f()
	}()
}

func (bt *BackgroundTasks) startFetchScheduling(ctx context.Context) {
	every(ctx, bt.SchedulerInterval, func() {
		if _, err := bt.Scheduler.ScheduleFetches(ctx); err != nil {
			bt.Log.Error("fetch scheduling failed", "error", err)
		}
	})
}

func (bt *BackgroundTasks) startRetentionSweep(ctx context.Context) {
	every(ctx, bt.RetentionInterval, func() {
		report, err := bt.Retention.SweepOlderThanDays(ctx, bt.RetentionDays)
		if err != nil {
			bt.Log.Error("retention sweep finished with errors", "deleted", report.Total, "failed", report.Failed, "error", err)
		}
	})
}

// every runs f immediately and then on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, f func()) {
	f()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f()
		}
	}
}
