package domain

import (
	"context"
	"time"
)

// BucketResolution is the granularity of point-in-time lookups.
const BucketResolution = time.Minute

// RateRecord is one persisted observation. Records are append-only.
type RateRecord struct {
	ID         int64
	Value      float64
	Timestamp  time.Time
	RecordedAt time.Time
}

func NewRateRecord(rate Rate) RateRecord {
	return RateRecord{
		Value:      rate.Value(),
		Timestamp:  rate.Timestamp(),
		RecordedAt: time.Now().UTC(),
	}
}

type Statistics struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int64
}

// MinuteBucket returns the half-open interval [start, end) that t falls into.
func MinuteBucket(t time.Time) (time.Time, time.Time) {
	start := t.Truncate(BucketResolution)
	return start, start.Add(BucketResolution)
}

// HistoryStore is the time series of a single storage target.
type HistoryStore interface {
	Append(ctx context.Context, record RateRecord) error
	// Latest returns nil when the store is empty.
	Latest(ctx context.Context) (*RateRecord, error)
	// AtOrNear returns the record in t's minute bucket with the latest
	// RecordedAt, or nil.
	AtOrNear(ctx context.Context, t time.Time) (*RateRecord, error)
	// Range is inclusive on both ends and ascending by Timestamp.
	Range(ctx context.Context, from, to time.Time) ([]RateRecord, error)
	Statistics(ctx context.Context) (Statistics, error)
	// DeleteOlderThan removes records with Timestamp strictly before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type HistoryRepository interface {
	ForTarget(target StorageTarget) HistoryStore
}
