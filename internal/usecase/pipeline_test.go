package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rate-service/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 3, 10, 15, 0, 0, time.UTC)

func TestFetchStageEmitsSaveTask(t *testing.T) {
	ctx := context.Background()
	source := newMockRateSource("mock")
	queue := new(MockSaveQueue)
	stage := usecase.NewFetchStage(source, queue, discardLogger(), nil)

	source.On("GetRate", ctx, mustPair("USD", "EUR")).Return(mustRate(0.86, t0), nil).Once()
	queue.On("EnqueueSave", ctx, domain.SaveRateTask{
		TaskID: "task-1", Base: "USD", Quote: "EUR", Rate: 0.86, Timestamp: t0,
	}).Return(nil).Once()

	err := stage.Handle(ctx, domain.FetchRateTask{TaskID: "task-1", Base: "usd", Quote: "eur"})
	require.NoError(t, err)

	source.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestFetchStagePropagatesSourceFailure(t *testing.T) {
	ctx := context.Background()
	source := newMockRateSource("mock")
	queue := new(MockSaveQueue)
	stage := usecase.NewFetchStage(source, queue, discardLogger(), nil)

	source.On("GetRate", ctx, mustPair("USD", "GBP")).
		Return(domain.Rate{}, domain.ErrSourceUnavailable).Once()

	err := stage.Handle(ctx, domain.FetchRateTask{TaskID: "t", Base: "USD", Quote: "GBP"})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.True(t, domain.IsRetriable(err))
	queue.AssertNotCalled(t, "EnqueueSave", mock.Anything, mock.Anything)
}

func TestFetchStageRejectsInvalidCurrency(t *testing.T) {
	source := newMockRateSource("mock")
	queue := new(MockSaveQueue)
	stage := usecase.NewFetchStage(source, queue, discardLogger(), nil)

	err := stage.Handle(context.Background(), domain.FetchRateTask{Base: "USD", Quote: "XXX"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, domain.IsRetriable(err))
	source.AssertNotCalled(t, "GetRate", mock.Anything, mock.Anything)
}

func TestFetchStageReportsEnqueueFailure(t *testing.T) {
	ctx := context.Background()
	source := newMockRateSource("mock")
	queue := new(MockSaveQueue)
	stage := usecase.NewFetchStage(source, queue, discardLogger(), nil)

	source.On("GetRate", ctx, mock.Anything).Return(mustRate(1.18, t0), nil)
	queue.On("EnqueueSave", ctx, mock.Anything).Return(errors.New("broker unreachable"))

	err := stage.Handle(ctx, domain.FetchRateTask{Base: "EUR", Quote: "USD"})
	require.Error(t, err)
	assert.True(t, domain.IsRetriable(err))
}

func TestSaveStageAppendsToRoutedTarget(t *testing.T) {
	ctx := context.Background()
	registry := domain.MustDefaultPairRegistry()
	history := memory.NewHistoryRepository()
	m := metrics.NewRateMetrics(prometheus.NewRegistry())
	stage := usecase.NewSaveStage(registry, history, discardLogger(), m)

	err := stage.Handle(ctx, domain.SaveRateTask{TaskID: "t", Base: "USD", Quote: "EUR", Rate: 0.85, Timestamp: t0})
	require.NoError(t, err)

	rec, err := history.ForTarget("exchange_rate_usd_eur").Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 0.85, rec.Value)
	assert.Equal(t, t0, rec.Timestamp)
	assert.False(t, rec.RecordedAt.IsZero())

	for _, state := range []string{"received", "routed", "appended"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskStatesTotal.WithLabelValues("save", state)), state)
	}
}

func TestSaveStageUnsupportedPairTouchesNoStore(t *testing.T) {
	registry := domain.MustDefaultPairRegistry()
	history := memory.NewHistoryRepository()
	stage := usecase.NewSaveStage(registry, history, discardLogger(), nil)

	err := stage.Handle(context.Background(), domain.SaveRateTask{Base: "RUB", Quote: "GBP", Rate: 0.011, Timestamp: t0})
	assert.ErrorIs(t, err, domain.ErrUnsupportedPair)
	assert.False(t, domain.IsRetriable(err))
	assert.Empty(t, history.Touched())
}

func TestSaveStageRejectsInvalidRate(t *testing.T) {
	registry := domain.MustDefaultPairRegistry()
	history := memory.NewHistoryRepository()
	stage := usecase.NewSaveStage(registry, history, discardLogger(), nil)

	err := stage.Handle(context.Background(), domain.SaveRateTask{Base: "USD", Quote: "EUR", Rate: -1, Timestamp: t0})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, history.Touched())
}

func TestSaveStageStorageFailureIsRetriable(t *testing.T) {
	registry := domain.MustDefaultPairRegistry()
	history := &failingHistory{err: domain.ErrStorageUnavailable}
	stage := usecase.NewSaveStage(registry, history, discardLogger(), nil)

	err := stage.Handle(context.Background(), domain.SaveRateTask{Base: "USD", Quote: "EUR", Rate: 0.9, Timestamp: t0})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.True(t, domain.IsRetriable(err))
}

func TestSaveStageToleratesRedelivery(t *testing.T) {
	ctx := context.Background()
	registry := domain.MustDefaultPairRegistry()
	history := memory.NewHistoryRepository()
	stage := usecase.NewSaveStage(registry, history, discardLogger(), nil)
	task := domain.SaveRateTask{TaskID: "dup", Base: "GBP", Quote: "USD", Rate: 1.37, Timestamp: t0}

	require.NoError(t, stage.Handle(ctx, task))
	require.NoError(t, stage.Handle(ctx, task))

	recs, err := history.ForTarget("exchange_rate_gbp_usd").Range(ctx, t0, t0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	rec, err := history.ForTarget("exchange_rate_gbp_usd").AtOrNear(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, 1.37, rec.Value)
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	registry := domain.MustDefaultPairRegistry()
	history := memory.NewHistoryRepository()
	save := usecase.NewSaveStage(registry, history, discardLogger(), nil)

	source := newMockRateSource("mock")
	source.On("GetRate", ctx, mustPair("USD", "RUB")).Return(mustRate(75.5, t0), nil)

	fetch := usecase.NewFetchStage(source, saveQueueFunc(func(ctx context.Context, task domain.SaveRateTask) error {
		return save.Handle(ctx, task)
	}), discardLogger(), nil)

	require.NoError(t, fetch.Handle(ctx, domain.FetchRateTask{TaskID: "e2e", Base: "USD", Quote: "RUB"}))

	rec, err := history.ForTarget("exchange_rate_usd_rub").Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 75.5, rec.Value)
}

type saveQueueFunc func(ctx context.Context, task domain.SaveRateTask) error

func (f saveQueueFunc) EnqueueSave(ctx context.Context, task domain.SaveRateTask) error {
	return f(ctx, task)
}
