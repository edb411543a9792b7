package inference

import (
	"math"
	"time"

	"gorate/domain/rate"
)

const (
	day           = 24 * time.Hour
	secondsPerDay = 86400
)

// Fit converts a set of event timestamps into Gamma posterior parameters
// under the given prior. Only the count and the earliest and latest instants
// matter, so input order is irrelevant and the slice is left untouched.
//
// An empty set falls back to the prior with N = 0 and T = 0. Otherwise the
// span T is the number of whole days between the first and last event,
// floored at one day so a single event (or a burst within one day) never
// produces a zero denominator.
func Fit(timestamps []time.Time, prior rate.Prior) rate.PosteriorParameters {
	if len(timestamps) == 0 {
		return rate.PosteriorParameters{Alpha: prior.Alpha, Beta: prior.Beta}
	}

	first, last := timestamps[0].UTC(), timestamps[0].UTC()
	for _, ts := range timestamps[1:] {
		ts = ts.UTC()
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}

	span := math.Max(1, float64(wholeDaysBetween(first, last)))
	n := len(timestamps)
	return rate.PosteriorParameters{
		Alpha: prior.Alpha + float64(n),
		Beta:  prior.Beta + span,
		N:     n,
		T:     span,
	}
}

// FitCounts is Fit for callers that already hold an event count and an
// elapsed span in days. The span is truncated to whole days and floored at 1.
func FitCounts(n int, spanDays float64, prior rate.Prior) rate.PosteriorParameters {
	if n <= 0 {
		return rate.PosteriorParameters{Alpha: prior.Alpha, Beta: prior.Beta}
	}

	span := 1.0
	if spanDays >= 1 && !math.IsInf(spanDays, 1) {
		span = math.Floor(spanDays)
	}
	return rate.PosteriorParameters{
		Alpha: prior.Alpha + float64(n),
		Beta:  prior.Beta + span,
		N:     n,
		T:     span,
	}
}

// wholeDaysBetween counts complete 24-hour periods from a to b (a <= b),
// truncating toward zero. It works in Unix seconds since time.Duration
// saturates past about 292 years.
func wholeDaysBetween(a, b time.Time) int64 {
	secs := b.Unix() - a.Unix()
	if b.Nanosecond() < a.Nanosecond() {
		secs--
	}
	return secs / secondsPerDay
}
