package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
)

// SaveStage is the terminal pipeline stage: route, validate, append.
// Redelivered tasks produce duplicate rows, which readers tolerate.
type SaveStage struct {
	registry *domain.PairRegistry
	history  domain.HistoryRepository
	log      *slog.Logger
	metrics  *metrics.RateMetrics
}

func NewSaveStage(registry *domain.PairRegistry, history domain.HistoryRepository, log *slog.Logger, m *metrics.RateMetrics) *SaveStage {
	if log == nil {
		log = slog.Default()
	}
	return &SaveStage{
		registry: registry,
		history:  history,
		log:      log.With("stage", domain.StageSave),
		metrics:  m,
	}
}

func (s *SaveStage) Handle(ctx context.Context, task domain.SaveRateTask) (err error) {
	started := time.Now()
	log := s.log.With("task_id", task.TaskID, "base", task.Base, "quote", task.Quote)
	s.transition(log, domain.SaveStateReceived)
	defer func() {
		s.metrics.RecordTaskDuration(domain.StageSave, started, err)
		if err != nil {
			s.metrics.RecordTaskState(domain.StageSave, string(domain.SaveStateFailed))
			log.Error("save task failed", "state", domain.SaveStateFailed, "error", err, "retriable", domain.IsRetriable(err))
		}
	}()

	pair, err := domain.NewPair(task.Base, task.Quote)
	if err != nil {
		return err
	}

	// Routing comes first so an unsupported pair never reaches storage.
	target, err := s.registry.ResolveTarget(pair)
	if err != nil {
		return err
	}
	s.transition(log.With("target", target), domain.SaveStateRouted)

	rate, err := domain.NewRate(task.Rate, task.Timestamp)
	if err != nil {
		return err
	}

	if err := s.history.ForTarget(target).Append(ctx, domain.NewRateRecord(rate)); err != nil {
		return err
	}

	s.transition(log.With("target", target, "rate", rate.Value()), domain.SaveStateAppended)
	s.metrics.RecordSaved(pair.Code(), rate.Value())
	return nil
}

func (s *SaveStage) transition(log *slog.Logger, state domain.SaveState) {
	s.metrics.RecordTaskState(domain.StageSave, string(state))
	log.Debug("save task state", "state", state)
}
