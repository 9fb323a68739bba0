package ratesource

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New builds a provider by its configuration name.
func New(name string, opts Options) (domain.RateSource, error) {
	switch name {
	case FreeCurrencyName:
		return NewFreeCurrencyProvider(opts.BaseURL, opts.APIKey, opts.Timeout), nil
	case MockName:
		return NewMockProvider(time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown rate provider %q", name)
	}
}
