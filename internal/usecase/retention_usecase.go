package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
)

const DefaultRetentionDays = 30

type RetentionReport struct {
	Cutoff  time.Time
	Deleted map[string]int64
	Total   int64
	Failed  []string
}

type RetentionUsecase struct {
	registry *domain.PairRegistry
	history  domain.HistoryRepository
	log      *slog.Logger
	metrics  *metrics.RateMetrics
	now      func() time.Time
}

func NewRetentionUsecase(registry *domain.PairRegistry, history domain.HistoryRepository, log *slog.Logger, m *metrics.RateMetrics) *RetentionUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &RetentionUsecase{
		registry: registry,
		history:  history,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sweep deletes records older than cutoff from every registered target. A
// failing target does not stop the sweep; its error is joined into the
// returned error next to the partial report.
func (u *RetentionUsecase) Sweep(ctx context.Context, cutoff time.Time) (RetentionReport, error) {
	report := RetentionReport{
		Cutoff:  cutoff,
		Deleted: make(map[string]int64),
	}

	var errs []error
	for _, pair := range u.registry.Pairs() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		code := pair.Code()
		target, err := u.registry.ResolveTarget(pair)
		if err != nil {
			errs = append(errs, err)
			report.Failed = append(report.Failed, code)
			continue
		}

		deleted, err := u.history.ForTarget(target).DeleteOlderThan(ctx, cutoff)
		u.metrics.RecordRetention(code, deleted, err)
		if err != nil {
			u.log.Error("retention sweep failed for pair", "pair", code, "target", target, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", code, err))
			report.Failed = append(report.Failed, code)
			continue
		}

		report.Deleted[code] = deleted
		report.Total += deleted
	}

	u.log.Info("retention sweep finished",
		"cutoff", cutoff, "deleted", report.Total, "failed_pairs", len(report.Failed))
	return report, errors.Join(errs...)
}

func (u *RetentionUsecase) SweepOlderThanDays(ctx context.Context, days int) (RetentionReport, error) {
	if days <= 0 {
		return RetentionReport{}, fmt.Errorf("%w: retention days must be positive, got %d", domain.ErrValidation, days)
	}
	return u.Sweep(ctx, u.now().AddDate(0, 0, -days))
}
