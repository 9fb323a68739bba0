package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
)

type Provenance string

const (
	ProvenanceHistorical Provenance = "historical"
	ProvenanceExternal   Provenance = "external"
)

// DateMissPolicy decides what a dated query returns when its minute bucket
// is empty.
type DateMissPolicy string

const (
	// DateMissLatest answers with the latest stored rate.
	DateMissLatest DateMissPolicy = "latest"
	// DateMissExternal asks the rate source for a current rate.
	DateMissExternal DateMissPolicy = "external"
	// DateMissNotFound reports domain.ErrRateNotFound.
	DateMissNotFound DateMissPolicy = "not_found"
)

func ParseDateMissPolicy(s string) (DateMissPolicy, error) {
	switch p := DateMissPolicy(s); p {
	case "":
		return DateMissLatest, nil
	case DateMissLatest, DateMissExternal, DateMissNotFound:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown date miss policy %q", domain.ErrValidation, s)
	}
}

type RateQuote struct {
	Pair       domain.Pair
	Value      float64
	Timestamp  time.Time
	Provenance Provenance
}

type RangeResult struct {
	Pair    domain.Pair
	From    time.Time
	To      time.Time
	Records []domain.RateRecord
}

type StatisticsResult struct {
	Pair  domain.Pair
	Stats domain.Statistics
}

// RateQueryUsecase answers read queries. It never writes history.
type RateQueryUsecase struct {
	registry *domain.PairRegistry
	history  domain.HistoryRepository
	source   domain.RateSource
	policy   DateMissPolicy
	log      *slog.Logger
	metrics  *metrics.RateMetrics
}

func NewRateQueryUsecase(
	registry *domain.PairRegistry,
	history domain.HistoryRepository,
	source domain.RateSource,
	policy DateMissPolicy,
	log *slog.Logger,
	m *metrics.RateMetrics,
) *RateQueryUsecase {
	if log == nil {
		log = slog.Default()
	}
	if policy == "" {
		policy = DateMissLatest
	}
	return &RateQueryUsecase{
		registry: registry,
		history:  history,
		source:   source,
		policy:   policy,
		log:      log,
		metrics:  m,
	}
}

func (u *RateQueryUsecase) store(pair domain.Pair) (domain.HistoryStore, error) {
	target, err := u.registry.ResolveTarget(pair)
	if err != nil {
		return nil, err
	}
	return u.history.ForTarget(target), nil
}

// GetRate returns the rate stored in date's minute bucket, or the latest
// stored rate when date is nil. With nothing stored it asks the rate source.
func (u *RateQueryUsecase) GetRate(ctx context.Context, pair domain.Pair, date *time.Time) (*RateQuote, error) {
	store, err := u.store(pair)
	if err != nil {
		return nil, err
	}

	if date != nil {
		rec, err := store.AtOrNear(ctx, *date)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return u.historical(pair, rec), nil
		}

		switch u.policy {
		case DateMissNotFound:
			return nil, fmt.Errorf("%w: %s at %s", domain.ErrRateNotFound, pair, date.Format(time.DateTime))
		case DateMissExternal:
			u.log.Debug("no rate in requested minute, asking rate source", "pair", pair.Code(), "date", *date)
			return u.external(ctx, pair)
		}
		u.log.Debug("no rate in requested minute, using latest", "pair", pair.Code(), "date", *date)
	}

	rec, err := store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return u.historical(pair, rec), nil
	}

	return u.external(ctx, pair)
}

func (u *RateQueryUsecase) historical(pair domain.Pair, rec *domain.RateRecord) *RateQuote {
	u.metrics.RecordQuery(pair.Code(), string(ProvenanceHistorical))
	return &RateQuote{
		Pair:       pair,
		Value:      rec.Value,
		Timestamp:  rec.Timestamp,
		Provenance: ProvenanceHistorical,
	}
}

func (u *RateQueryUsecase) external(ctx context.Context, pair domain.Pair) (*RateQuote, error) {
	rate, err := u.source.GetRate(ctx, pair)
	if err != nil {
		u.log.Warn("rate source lookup failed", "pair", pair.Code(), "source", u.source.Name(), "error", err)
		return nil, err
	}
	u.metrics.RecordQuery(pair.Code(), string(ProvenanceExternal))
	return &RateQuote{
		Pair:       pair,
		Value:      rate.Value(),
		Timestamp:  rate.Timestamp(),
		Provenance: ProvenanceExternal,
	}, nil
}

func (u *RateQueryUsecase) GetRange(ctx context.Context, pair domain.Pair, from, to time.Time) (*RangeResult, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range start %s is after end %s", domain.ErrValidation,
			from.Format(time.DateTime), to.Format(time.DateTime))
	}
	store, err := u.store(pair)
	if err != nil {
		return nil, err
	}
	records, err := store.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RangeResult{Pair: pair, From: from, To: to, Records: records}, nil
}

func (u *RateQueryUsecase) GetStatistics(ctx context.Context, pair domain.Pair) (*StatisticsResult, error) {
	store, err := u.store(pair)
	if err != nil {
		return nil, err
	}
	stats, err := store.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return &StatisticsResult{Pair: pair, Stats: stats}, nil
}

func (u *RateQueryUsecase) SupportedCurrencies() []string {
	return domain.SupportedCurrencies()
}

func (u *RateQueryUsecase) SupportedPairs() []domain.Pair {
	return u.registry.Pairs()
}
