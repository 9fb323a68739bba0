package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
)

// RateSourceChain asks the primary provider first and walks the fallbacks
// in order until one answers.
type RateSourceChain struct {
	providers []domain.RateSource
	log       *slog.Logger
	metrics   *metrics.RateMetrics
}

func NewRateSourceChain(log *slog.Logger, m *metrics.RateMetrics, primary domain.RateSource, fallbacks ...domain.RateSource) *RateSourceChain {
	if log == nil {
		log = slog.Default()
	}
	providers := []domain.RateSource{primary}
	seen := map[string]bool{primary.Name(): true}
	for _, f := range fallbacks {
		if f == nil || seen[f.Name()] {
			continue
		}
		seen[f.Name()] = true
		providers = append(providers, f)
	}
	return &RateSourceChain{providers: providers, log: log, metrics: m}
}

func (c *RateSourceChain) Name() string {
	return c.providers[0].Name()
}

func (c *RateSourceChain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

func (c *RateSourceChain) GetRate(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	var errs []error
	for i, p := range c.providers {
		started := time.Now()
		rate, err := p.GetRate(ctx, pair)
		c.metrics.RecordSourceRequest(p.Name(), started, err)
		if err == nil {
			if i > 0 {
				c.log.Warn("Using fallback rate provider",
					"primary", c.providers[0].Name(),
					"fallback", p.Name(),
					"pair", pair.Code(),
					"error", errs[0])
				c.metrics.RecordFallback(c.providers[0].Name(), p.Name())
			}
			return rate, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return domain.Rate{}, fmt.Errorf("all rate providers failed for %s: %w", pair, errors.Join(errs...))
}

func (c *RateSourceChain) IsAvailable(ctx context.Context) bool {
	for _, p := range c.providers {
		if p.IsAvailable(ctx) {
			return true
		}
	}
	return false
}

// HealthCheck probes every provider with USD/EUR and returns the failures
// keyed by provider name.
func (c *RateSourceChain) HealthCheck(ctx context.Context) map[string]error {
	probe := domain.Pair{Base: domain.MustCurrency("USD"), Quote: domain.MustCurrency("EUR")}
	failures := make(map[string]error)
	for _, p := range c.providers {
		if _, err := p.GetRate(ctx, probe); err != nil {
			failures[p.Name()] = err
		}
	}
	return failures
}

func (c *RateSourceChain) String() string {
	return "chain(" + strings.Join(c.Providers(), ",") + ")"
}
