package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
	name string
}

func newMockRateSource(name string) *MockRateSource {
	return &MockRateSource{name: name}
}

func (m *MockRateSource) GetRate(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(domain.Rate), args.Error(1)
}

func (m *MockRateSource) IsAvailable(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockRateSource) Name() string {
	return m.name
}

// --- Mock queues ---
type MockSaveQueue struct {
	mock.Mock
}

func (m *MockSaveQueue) EnqueueSave(ctx context.Context, task domain.SaveRateTask) error {
	return m.Called(ctx, task).Error(0)
}

type MockFetchQueue struct {
	mock.Mock
}

func (m *MockFetchQueue) EnqueueFetch(ctx context.Context, task domain.FetchRateTask) error {
	return m.Called(ctx, task).Error(0)
}

// --- Failing history ---
type failingHistory struct {
	err    error
	failOn domain.StorageTarget
	inner  domain.HistoryRepository
}

func (f *failingHistory) ForTarget(target domain.StorageTarget) domain.HistoryStore {
	if f.failOn != "" && target != f.failOn {
		return f.inner.ForTarget(target)
	}
	return failingStore{err: f.err}
}

type failingStore struct {
	err error
}

func (s failingStore) Append(context.Context, domain.RateRecord) error { return s.err }
func (s failingStore) Latest(context.Context) (*domain.RateRecord, error) {
	return nil, s.err
}
func (s failingStore) AtOrNear(context.Context, time.Time) (*domain.RateRecord, error) {
	return nil, s.err
}
func (s failingStore) Range(context.Context, time.Time, time.Time) ([]domain.RateRecord, error) {
	return nil, s.err
}
func (s failingStore) Statistics(context.Context) (domain.Statistics, error) {
	return domain.Statistics{}, s.err
}
func (s failingStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustPair(base, quote string) domain.Pair {
	p, err := domain.NewPair(base, quote)
	if err != nil {
		panic(err)
	}
	return p
}

func mustRate(v float64, ts time.Time) domain.Rate {
	r, err := domain.NewRate(v, ts)
	if err != nil {
		panic(err)
	}
	return r
}
