package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// StorageTarget names the table that holds one pair's history.
type StorageTarget string

func (t StorageTarget) String() string {
	return string(t)
}

// RegistryEntry is one row of the routing table.
type RegistryEntry struct {
	Base   string
	Quote  string
	Target string
}

var targetPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// DefaultRegistryEntries is the routing table shipped with the service.
func DefaultRegistryEntries() []RegistryEntry {
	return []RegistryEntry{
		{Base: "USD", Quote: "EUR", Target: "exchange_rate_usd_eur"},
		{Base: "EUR", Quote: "USD", Target: "exchange_rate_eur_usd"},
		{Base: "USD", Quote: "GBP", Target: "exchange_rate_usd_gbp"},
		{Base: "GBP", Quote: "USD", Target: "exchange_rate_gbp_usd"},
		{Base: "USD", Quote: "RUB", Target: "exchange_rate_usd_rub"},
		{Base: "RUB", Quote: "USD", Target: "exchange_rate_rub_usd"},
	}
}

// DefaultTargetFor derives the conventional table name for a pair.
func DefaultTargetFor(pair Pair) StorageTarget {
	return StorageTarget("exchange_rate_" + strings.ToLower(pair.Base.Code()) + "_" + strings.ToLower(pair.Quote.Code()))
}

// PairRegistry is a closed routing table from pair code to storage target.
// It is immutable after construction and safe for concurrent reads.
type PairRegistry struct {
	targets map[string]StorageTarget
	pairs   map[string]Pair
	codes   []string
}

func NewPairRegistry(entries []RegistryEntry) (*PairRegistry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: pair registry must contain at least one entry", ErrValidation)
	}

	r := &PairRegistry{
		targets: make(map[string]StorageTarget, len(entries)),
		pairs:   make(map[string]Pair, len(entries)),
		codes:   make([]string, 0, len(entries)),
	}
	seenTargets := make(map[StorageTarget]string, len(entries))

	for _, e := range entries {
		pair, err := NewPair(e.Base, e.Quote)
		if err != nil {
			return nil, fmt.Errorf("registry entry %s/%s: %w", e.Base, e.Quote, err)
		}
		code := pair.Code()
		if _, dup := r.targets[code]; dup {
			return nil, fmt.Errorf("%w: duplicate registry entry for %s", ErrValidation, code)
		}

		target := StorageTarget(strings.TrimSpace(e.Target))
		if target == "" {
			target = DefaultTargetFor(pair)
		}
		if !targetPattern.MatchString(string(target)) {
			return nil, fmt.Errorf("%w: storage target %q for %s is not a valid table name", ErrValidation, target, code)
		}
		if owner, dup := seenTargets[target]; dup {
			return nil, fmt.Errorf("%w: storage target %q is shared by %s and %s", ErrValidation, target, owner, code)
		}
		seenTargets[target] = code

		r.targets[code] = target
		r.pairs[code] = pair
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)

	return r, nil
}

// MustDefaultPairRegistry panics if the built-in table is broken.
func MustDefaultPairRegistry() *PairRegistry {
	r, err := NewPairRegistry(DefaultRegistryEntries())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *PairRegistry) ResolveTarget(pair Pair) (StorageTarget, error) {
	target, ok := r.targets[pair.Code()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPair, pair)
	}
	return target, nil
}

func (r *PairRegistry) IsSupported(pair Pair) bool {
	_, ok := r.targets[pair.Code()]
	return ok
}

// SupportedPairs returns pair codes in ascending order.
func (r *PairRegistry) SupportedPairs() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// Pairs returns the registered pairs in SupportedPairs order.
func (r *PairRegistry) Pairs() []Pair {
	out := make([]Pair, 0, len(r.codes))
	for _, code := range r.codes {
		out = append(out, r.pairs[code])
	}
	return out
}

// Targets returns every storage target in SupportedPairs order.
func (r *PairRegistry) Targets() []StorageTarget {
	out := make([]StorageTarget, 0, len(r.codes))
	for _, code := range r.codes {
		out = append(out, r.targets[code])
	}
	return out
}
