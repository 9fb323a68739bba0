package memory

import (
	"sort"
	"sync"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

type CurrencyPairRepository struct {
	mu     sync.RWMutex
	pairs  map[int64]domain.CurrencyPair
	nextID int64
}

func NewCurrencyPairRepository() *CurrencyPairRepository {
	return &CurrencyPairRepository{pairs: make(map[int64]domain.CurrencyPair)}
}

func (r *CurrencyPairRepository) Create(pair *domain.CurrencyPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.pairs {
		if existing.Pair.Equals(pair.Pair) {
			return domain.ErrPairAlreadyExists
		}
	}
	r.nextID++
	pair.ID = r.nextID
	r.pairs[pair.ID] = *pair
	return nil
}

func (r *CurrencyPairRepository) GetByID(id int64) (*domain.CurrencyPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pairs[id]
	if !ok {
		return nil, domain.ErrPairNotFound
	}
	return &p, nil
}

func (r *CurrencyPairRepository) FindByPair(pair domain.Pair) (*domain.CurrencyPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pairs {
		if p.Pair.Equals(pair) {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrPairNotFound
}

func (r *CurrencyPairRepository) Update(pair *domain.CurrencyPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pairs[pair.ID]; !ok {
		return domain.ErrPairNotFound
	}
	r.pairs[pair.ID] = *pair
	return nil
}

func (r *CurrencyPairRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pairs[id]; !ok {
		return domain.ErrPairNotFound
	}
	delete(r.pairs, id)
	return nil
}

func (r *CurrencyPairRepository) ListActive() ([]*domain.CurrencyPair, error) {
	return r.list(true)
}

func (r *CurrencyPairRepository) ListAll() ([]*domain.CurrencyPair, error) {
	return r.list(false)
}

func (r *CurrencyPairRepository) list(onlyActive bool) ([]*domain.CurrencyPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.CurrencyPair, 0, len(r.pairs))
	for _, p := range r.pairs {
		if onlyActive && !p.Active {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
