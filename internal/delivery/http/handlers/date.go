package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

const maxDateAge = 10 * 365 * 24 * time.Hour

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// parseQueryDate reads a point-in-time query date. The result is truncated
// to the minute.
func parseQueryDate(raw string, now time.Time) (time.Time, error) {
	t, _, err := parseDate(raw, now)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(time.Minute), nil
}

// parseRangeEnd reads the inclusive upper bound of a range. A date without a
// time of day covers that whole day.
func parseRangeEnd(raw string, now time.Time) (time.Time, error) {
	t, dateOnly, err := parseDate(raw, now)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// parseDate reads raw in one of dateLayouts. Dates without a zone are UTC
// and must lie within the last ten years relative to now.
func parseDate(raw string, now time.Time) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			continue
		}
		t = t.UTC()
		if t.After(now) {
			return time.Time{}, false, fmt.Errorf("%w: date %s is in the future", domain.ErrValidation, raw)
		}
		if now.Sub(t) > maxDateAge {
			return time.Time{}, false, fmt.Errorf("%w: date %s is more than ten years old", domain.ErrValidation, raw)
		}
		return t, layout == time.DateOnly || layout == "02.01.2006", nil
	}
	return time.Time{}, false, fmt.Errorf("%w: unrecognised date %q, use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", domain.ErrValidation, raw)
}
