package memory

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func appendRate(t *testing.T, s domain.HistoryStore, v float64, ts time.Time) {
	t.Helper()
	r, err := domain.NewRate(v, ts)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), domain.NewRateRecord(r)))
}

func TestLatestIgnoresInsertionOrder(t *testing.T) {
	s := NewHistoryRepository().ForTarget("exchange_rate_usd_eur")
	ctx := context.Background()

	rec, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	appendRate(t, s, 0.91, t0.Add(2*time.Minute))
	appendRate(t, s, 0.85, t0)
	appendRate(t, s, 0.99, t0.Add(5*time.Minute))
	appendRate(t, s, 0.88, t0.Add(time.Minute))

	rec, err = s.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 0.99, rec.Value)
	assert.Equal(t, t0.Add(5*time.Minute), rec.Timestamp)
}

func TestLatestThenAtOrNearScenario(t *testing.T) {
	s := NewHistoryRepository().ForTarget("exchange_rate_usd_eur")
	ctx := context.Background()

	appendRate(t, s, 0.85, t0)
	rec, _ := s.Latest(ctx)
	assert.Equal(t, 0.85, rec.Value)

	appendRate(t, s, 0.90, t0.Add(time.Minute))
	rec, _ = s.Latest(ctx)
	assert.Equal(t, 0.90, rec.Value)
	assert.Equal(t, t0.Add(time.Minute), rec.Timestamp)

	rec, err := s.AtOrNear(ctx, t0)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 0.85, rec.Value)
	assert.Equal(t, t0, rec.Timestamp)
}

func TestAtOrNearMinuteBucket(t *testing.T) {
	s := NewHistoryRepository().ForTarget("t")
	ctx := context.Background()

	appendRate(t, s, 1.10, t0.Add(15*time.Second))

	rec, err := s.AtOrNear(ctx, t0.Add(59*time.Second))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1.10, rec.Value)

	rec, err = s.AtOrNear(ctx, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = s.AtOrNear(ctx, t0.Add(-time.Second))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAtOrNearPrefersMostRecentlyRecorded(t *testing.T) {
	s := NewHistoryRepository().ForTarget("t")
	ctx := context.Background()

	older := domain.RateRecord{Value: 1.0, Timestamp: t0.Add(40 * time.Second), RecordedAt: t0.Add(time.Hour)}
	newer := domain.RateRecord{Value: 2.0, Timestamp: t0.Add(10 * time.Second), RecordedAt: t0.Add(2 * time.Hour)}
	require.NoError(t, s.Append(ctx, newer))
	require.NoError(t, s.Append(ctx, older))

	rec, err := s.AtOrNear(ctx, t0)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2.0, rec.Value)
}

func TestRangeInclusiveAscending(t *testing.T) {
	s := NewHistoryRepository().ForTarget("t")
	ctx := context.Background()

	for i := 5; i >= 0; i-- {
		appendRate(t, s, float64(i+1), t0.Add(time.Duration(i)*time.Minute))
	}

	recs, err := s.Range(ctx, t0.Add(time.Minute), t0.Add(4*time.Minute))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, rec := range recs {
		assert.Equal(t, t0.Add(time.Duration(i+1)*time.Minute), rec.Timestamp)
	}

	recs, err = s.Range(ctx, t0.Add(time.Hour), t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStatistics(t *testing.T) {
	s := NewHistoryRepository().ForTarget("t")
	ctx := context.Background()

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{}, stats)

	appendRate(t, s, 0.8, t0)
	appendRate(t, s, 0.9, t0.Add(time.Minute))
	appendRate(t, s, 1.0, t0.Add(2*time.Minute))

	stats, err = s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 0.8, stats.Min)
	assert.Equal(t, 1.0, stats.Max)
	assert.InDelta(t, 0.9, stats.Avg, 1e-9)
}

func TestDeleteOlderThan(t *testing.T) {
	s := NewHistoryRepository().ForTarget("t")
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -30)

	for i := 0; i < 10; i++ {
		appendRate(t, s, 1.0, cutoff.Add(-time.Duration(i+1)*time.Hour))
	}
	for i := 0; i < 5; i++ {
		appendRate(t, s, 2.0, cutoff.Add(time.Duration(i)*time.Hour))
	}

	deleted, err := s.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(10), deleted)

	recs, err := s.Range(ctx, cutoff.AddDate(-1, 0, 0), now)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
	for _, rec := range recs {
		assert.False(t, rec.Timestamp.Before(cutoff))
	}
}

func TestForTargetIsolatesStores(t *testing.T) {
	repo := NewHistoryRepository()
	appendRate(t, repo.ForTarget("a"), 1.0, t0)

	rec, err := repo.ForTarget("b").Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, []domain.StorageTarget{"a", "b"}, repo.Touched())
}

func TestCurrencyPairRepository(t *testing.T) {
	repo := NewCurrencyPairRepository()
	p, _ := domain.NewPair("USD", "EUR")

	cp := domain.NewCurrencyPair(p)
	require.NoError(t, repo.Create(cp))
	assert.Equal(t, int64(1), cp.ID)
	assert.ErrorIs(t, repo.Create(domain.NewCurrencyPair(p)), domain.ErrPairAlreadyExists)

	cp.Deactivate()
	require.NoError(t, repo.Update(cp))
	active, _ := repo.ListActive()
	assert.Empty(t, active)

	require.NoError(t, repo.Delete(cp.ID))
	_, err := repo.GetByID(cp.ID)
	assert.ErrorIs(t, err, domain.ErrPairNotFound)
}
