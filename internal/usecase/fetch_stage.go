package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
)

// FetchStage turns a fetch task into a save task. It never writes history;
// the save stage is the only write path.
type FetchStage struct {
	source  domain.RateSource
	saves   domain.SaveTaskQueue
	log     *slog.Logger
	metrics *metrics.RateMetrics
}

func NewFetchStage(source domain.RateSource, saves domain.SaveTaskQueue, log *slog.Logger, m *metrics.RateMetrics) *FetchStage {
	if log == nil {
		log = slog.Default()
	}
	return &FetchStage{
		source:  source,
		saves:   saves,
		log:     log.With("stage", domain.StageFetch),
		metrics: m,
	}
}

func (s *FetchStage) Handle(ctx context.Context, task domain.FetchRateTask) (err error) {
	started := time.Now()
	log := s.log.With("task_id", task.TaskID, "base", task.Base, "quote", task.Quote)
	s.metrics.RecordTaskState(domain.StageFetch, "received")
	defer func() {
		s.metrics.RecordTaskDuration(domain.StageFetch, started, err)
		if err != nil {
			s.metrics.RecordTaskState(domain.StageFetch, "failed")
			log.Error("fetch task failed", "error", err, "retriable", domain.IsRetriable(err))
		}
	}()

	pair, err := domain.NewPair(task.Base, task.Quote)
	if err != nil {
		return err
	}

	rate, err := s.source.GetRate(ctx, pair)
	if err != nil {
		return fmt.Errorf("get rate %s from %s: %w", pair, s.source.Name(), err)
	}

	save := domain.SaveRateTask{
		TaskID:    task.TaskID,
		Base:      pair.Base.Code(),
		Quote:     pair.Quote.Code(),
		Rate:      rate.Value(),
		Timestamp: rate.Timestamp(),
	}
	if err := s.saves.EnqueueSave(ctx, save); err != nil {
		return fmt.Errorf("enqueue save task for %s: %w", pair, err)
	}

	s.metrics.RecordTaskState(domain.StageFetch, "emitted")
	log.Info("rate fetched", "rate", rate.Value(), "timestamp", rate.Timestamp())
	return nil
}
