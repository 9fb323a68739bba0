package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-rate-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionSweepAcrossPairs(t *testing.T) {
	ctx := context.Background()
	registry := domain.MustDefaultPairRegistry()
	history := memory.NewHistoryRepository()
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	usdEur := history.ForTarget("exchange_rate_usd_eur")
	for i := 0; i < 10; i++ {
		require.NoError(t, usdEur.Append(ctx, domain.NewRateRecord(mustRate(0.8, cutoff.Add(-time.Duration(i+1)*time.Hour)))))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, usdEur.Append(ctx, domain.NewRateRecord(mustRate(0.9, cutoff.Add(time.Duration(i)*time.Hour)))))
	}
	eurUsd := history.ForTarget("exchange_rate_eur_usd")
	require.NoError(t, eurUsd.Append(ctx, domain.NewRateRecord(mustRate(1.1, cutoff.Add(-time.Minute)))))

	sweeper := usecase.NewRetentionUsecase(registry, history, discardLogger(), nil)
	report, err := sweeper.Sweep(ctx, cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(11), report.Total)
	assert.Equal(t, int64(10), report.Deleted["USDEUR"])
	assert.Equal(t, int64(1), report.Deleted["EURUSD"])
	assert.Len(t, report.Deleted, 6)
	assert.Empty(t, report.Failed)

	recs, err := usdEur.Range(ctx, cutoff.AddDate(-1, 0, 0), time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestRetentionSweepContinuesPastFailure(t *testing.T) {
	ctx := context.Background()
	registry := domain.MustDefaultPairRegistry()
	inner := memory.NewHistoryRepository()
	cutoff := t0

	require.NoError(t, inner.ForTarget("exchange_rate_usd_gbp").Append(ctx,
		domain.NewRateRecord(mustRate(0.73, cutoff.Add(-time.Hour)))))

	history := &failingHistory{err: domain.ErrStorageUnavailable, failOn: "exchange_rate_usd_eur", inner: inner}
	report, err := usecase.NewRetentionUsecase(registry, history, discardLogger(), nil).Sweep(ctx, cutoff)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, []string{"USDEUR"}, report.Failed)
	assert.Equal(t, int64(1), report.Deleted["USDGBP"])
	assert.Equal(t, int64(1), report.Total)
}

func TestSweepOlderThanDaysValidatesInput(t *testing.T) {
	sweeper := usecase.NewRetentionUsecase(domain.MustDefaultPairRegistry(), memory.NewHistoryRepository(), discardLogger(), nil)

	_, err := sweeper.SweepOlderThanDays(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	report, err := sweeper.SweepOlderThanDays(context.Background(), usecase.DefaultRetentionDays)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), report.Cutoff, time.Minute)
}
