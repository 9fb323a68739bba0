package domain

import "context"

// RateSource returns the current rate for a pair. Failures wrap
// ErrSourceUnavailable or ErrInvalidResponse.
type RateSource interface {
	GetRate(ctx context.Context, pair Pair) (Rate, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}
