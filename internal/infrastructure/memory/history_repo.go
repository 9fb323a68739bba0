package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/shopspring/decimal"
)

// HistoryRepository keeps every storage target in process memory. It backs
// the "memory" storage driver and the usecase tests.
type HistoryRepository struct {
	mu     sync.Mutex
	stores map[domain.StorageTarget]*HistoryStore
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		stores: make(map[domain.StorageTarget]*HistoryStore),
	}
}

func (r *HistoryRepository) ForTarget(target domain.StorageTarget) domain.HistoryStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[target]
	if !ok {
		store = &HistoryStore{target: target}
		r.stores[target] = store
	}
	return store
}

// Touched lists the targets that have been opened, for tests asserting that
// a code path never reached storage.
func (r *HistoryRepository) Touched() []domain.StorageTarget {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.StorageTarget, 0, len(r.stores))
	for target := range r.stores {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type HistoryStore struct {
	target  domain.StorageTarget
	mu      sync.RWMutex
	records []domain.RateRecord
	nextID  int64
}

func (s *HistoryStore) Append(ctx context.Context, record domain.RateRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.ID = s.nextID
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	s.records = append(s.records, record)
	return nil
}

func (s *HistoryStore) Latest(ctx context.Context) (*domain.RateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.RateRecord
	for i := range s.records {
		rec := &s.records[i]
		if best == nil || rec.Timestamp.After(best.Timestamp) ||
			(rec.Timestamp.Equal(best.Timestamp) && newer(rec, best)) {
			best = rec
		}
	}
	return clone(best), nil
}

func (s *HistoryStore) AtOrNear(ctx context.Context, t time.Time) (*domain.RateRecord, error) {
	start, end := domain.MinuteBucket(t)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.RateRecord
	for i := range s.records {
		rec := &s.records[i]
		if rec.Timestamp.Before(start) || !rec.Timestamp.Before(end) {
			continue
		}
		if best == nil || newer(rec, best) {
			best = rec
		}
	}
	return clone(best), nil
}

func (s *HistoryStore) Range(ctx context.Context, from, to time.Time) ([]domain.RateRecord, error) {
	s.mu.RLock()
	out := make([]domain.RateRecord, 0)
	for _, rec := range s.records {
		if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
			continue
		}
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *HistoryStore) Statistics(ctx context.Context) (domain.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return domain.Statistics{}, nil
	}

	sum := decimal.Zero
	minV := decimal.NewFromFloat(s.records[0].Value)
	maxV := minV
	for _, rec := range s.records {
		v := decimal.NewFromFloat(rec.Value)
		sum = sum.Add(v)
		if v.LessThan(minV) {
			minV = v
		}
		if v.GreaterThan(maxV) {
			maxV = v
		}
	}
	count := int64(len(s.records))
	avg := sum.DivRound(decimal.NewFromInt(count), 8)

	return domain.Statistics{
		Min:   minV.InexactFloat64(),
		Max:   maxV.InexactFloat64(),
		Avg:   avg.InexactFloat64(),
		Count: count,
	}, nil
}

func (s *HistoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, rec := range s.records {
		if rec.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return deleted, nil
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func newer(a, b *domain.RateRecord) bool {
	if a.RecordedAt.Equal(b.RecordedAt) {
		return a.ID > b.ID
	}
	return a.RecordedAt.After(b.RecordedAt)
}

func clone(rec *domain.RateRecord) *domain.RateRecord {
	if rec == nil {
		return nil
	}
	cp := *rec
	return &cp
}
