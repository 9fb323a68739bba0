package ratesource

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

const MockName = "mock"

var mockRates = map[string]float64{
	"USDEUR": 0.86,
	"EURUSD": 1.18,
	"USDGBP": 0.73,
	"GBPUSD": 1.37,
	"USDJPY": 110.50,
	"JPYUSD": 0.009,
	"USDCAD": 1.25,
	"CADUSD": 0.80,
	"USDAUD": 1.35,
	"AUDUSD": 0.74,
	"USDCHF": 0.92,
	"CHFUSD": 1.09,
	"USDCNY": 6.45,
	"CNYUSD": 0.155,
	"USDRUB": 75.50,
	"RUBUSD": 0.013,
}

// MockProvider serves a fixed table of rates for development. Pairs outside
// the table get a random value in [0.5, 2.5).
type MockProvider struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewMockProvider(seed int64) *MockProvider {
	return &MockProvider{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (p *MockProvider) Name() string {
	return MockName
}

func (p *MockProvider) GetRate(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rate{}, err
	}
	value, ok := mockRates[pair.Code()]
	if !ok {
		p.mu.Lock()
		value = 0.5 + p.rnd.Float64()*2
		p.mu.Unlock()
	}
	return domain.NewRate(value, p.now())
}

func (p *MockProvider) IsAvailable(ctx context.Context) bool {
	return true
}
