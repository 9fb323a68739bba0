package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxRateValue rejects quotes that are clearly erroneous.
const MaxRateValue = 1_000_000.0

// Rate is an immutable exchange rate observation.
type Rate struct {
	value     float64
	timestamp time.Time
}

// NewRate validates value and binds it to timestamp. A zero timestamp means
// "observed now".
func NewRate(value float64, timestamp time.Time) (Rate, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Rate{}, fmt.Errorf("%w: rate must be a finite number", ErrValidation)
	}
	if value <= 0 {
		return Rate{}, fmt.Errorf("%w: rate must be positive, got %v", ErrValidation, value)
	}
	if value > MaxRateValue {
		return Rate{}, fmt.Errorf("%w: rate %v exceeds upper bound %v", ErrValidation, value, MaxRateValue)
	}
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	return Rate{value: value, timestamp: timestamp}, nil
}

func (r Rate) Value() float64 {
	return r.value
}

func (r Rate) Timestamp() time.Time {
	return r.timestamp
}

// Equals compares value and timestamp at second precision.
func (r Rate) Equals(other Rate) bool {
	return r.value == other.value && r.timestamp.Unix() == other.timestamp.Unix()
}

func (r Rate) String() string {
	return fmt.Sprintf("%v@%s", r.value, r.timestamp.Format(time.DateTime))
}
