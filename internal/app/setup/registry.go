package setup

import (
	"github.com/LavaJover/shvark-rate-service/internal/config"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

// BuildRegistry uses the configured routing table, or the built-in one when
// none is configured.
func BuildRegistry(cfg config.Registry) (*domain.PairRegistry, error) {
	if len(cfg.Pairs) == 0 {
		return domain.NewPairRegistry(domain.DefaultRegistryEntries())
	}
	entries := make([]domain.RegistryEntry, 0, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		entries = append(entries, domain.RegistryEntry{
			Base:   p.Base,
			Quote:  p.Quote,
			Target: p.Target,
		})
	}
	return domain.NewPairRegistry(entries)
}
