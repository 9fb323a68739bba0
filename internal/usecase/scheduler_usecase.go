package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type ScheduleReport struct {
	Scheduled int
	Failed    int
}

// SchedulerUsecase enqueues one fetch task per active pair.
type SchedulerUsecase struct {
	pairs   domain.CurrencyPairRepository
	queue   domain.FetchTaskQueue
	log     *slog.Logger
	metrics *metrics.RateMetrics
	newID   func() string
}

func NewSchedulerUsecase(pairs domain.CurrencyPairRepository, queue domain.FetchTaskQueue, log *slog.Logger, m *metrics.RateMetrics) *SchedulerUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &SchedulerUsecase{
		pairs:   pairs,
		queue:   queue,
		log:     log,
		metrics: m,
		newID:   uuid.NewString,
	}
}

// ScheduleFetches keeps going past a pair whose enqueue fails; only a
// failure to list the pairs aborts the run.
func (u *SchedulerUsecase) ScheduleFetches(ctx context.Context) (ScheduleReport, error) {
	var report ScheduleReport

	active, err := u.pairs.ListActive()
	if err != nil {
		return report, fmt.Errorf("list active pairs: %w", err)
	}

	for _, cp := range active {
		task := domain.FetchRateTask{
			TaskID:     u.newID(),
			Base:       cp.Pair.Base.Code(),
			Quote:      cp.Pair.Quote.Code(),
			EnqueuedAt: time.Now().UTC(),
		}
		err := u.queue.EnqueueFetch(ctx, task)
		u.metrics.RecordScheduled(cp.Pair.Code(), err)
		if err != nil {
			report.Failed++
			u.log.Error("failed to enqueue fetch task", "pair", cp.Pair.Code(), "task_id", task.TaskID, "error", err)
			continue
		}
		report.Scheduled++
		u.log.Debug("fetch task enqueued", "pair", cp.Pair.Code(), "task_id", task.TaskID)
	}

	u.log.Info("fetch tasks scheduled", "scheduled", report.Scheduled, "failed", report.Failed)
	return report, nil
}
