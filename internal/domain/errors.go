package domain

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrUnsupportedPair    = errors.New("unsupported currency pair")
	ErrSourceUnavailable  = errors.New("rate source unavailable")
	ErrInvalidResponse    = errors.New("invalid rate source response")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPairAlreadyExists  = errors.New("currency pair already exists")
	ErrPairNotFound       = errors.New("currency pair not found")
	ErrRateNotFound       = errors.New("exchange rate not found")
)

// IsRetriable reports whether redelivering the task that produced err can
// succeed. Validation and routing failures are configuration or input
// problems and stay failed no matter how often they are retried.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrUnsupportedPair) {
		return false
	}
	return true
}
