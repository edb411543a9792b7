package inference

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorate/domain/rate"
)

var base = time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)

func dailyEvents(n int) []time.Time {
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = base.Add(time.Duration(i) * day)
	}
	return ts
}

// ============================================================================
// TEST: Fit
// ============================================================================

func TestFit_EmptyFallsBackToPrior(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("empty input returns the prior with N=0, T=0", prop.ForAll(
		func(alpha0, beta0 float64) bool {
			post := Fit(nil, rate.Prior{Alpha: alpha0, Beta: beta0})
			return post == rate.PosteriorParameters{Alpha: alpha0, Beta: beta0, N: 0, T: 0}
		},
		gen.Float64Range(0.01, 100),
		gen.Float64Range(0.01, 100),
	))

	properties.TestingRun(t)

	post := Fit([]time.Time{}, rate.DefaultPrior())
	assert.True(t, post.ColdStart())
}

// TestFit_CountAndSpan verifies alpha = 1+N and beta = 1+T for N events
// spanning exactly T whole days
func TestFit_CountAndSpan(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("alpha = 1+N, beta = 1+T", prop.ForAll(
		func(n, spanDays int, seed uint64) bool {
			rng := rand.New(rand.NewPCG(seed, 7))
			last := base.Add(time.Duration(spanDays) * day)
			ts := []time.Time{last, base}
			for len(ts) < n {
				offset := time.Duration(rng.Int64N(int64(spanDays) * int64(day)))
				ts = append(ts, base.Add(offset))
			}
			rng.Shuffle(len(ts), func(i, j int) { ts[i], ts[j] = ts[j], ts[i] })

			post := Fit(ts, rate.DefaultPrior())
			return post.Alpha == float64(1+n) &&
				post.Beta == float64(1+spanDays) &&
				post.N == n &&
				post.T == float64(spanDays)
		},
		gen.IntRange(2, 300),
		gen.IntRange(1, 730),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestFit_SpanFlooredAtOneDay(t *testing.T) {
	tests := []struct {
		name  string
		gap   time.Duration
		wantT float64
	}{
		{"three hours", 3 * time.Hour, 1},
		{"twenty three hours", 23 * time.Hour, 1},
		{"just under two days", 47*time.Hour + 59*time.Minute, 1},
		{"exactly two days", 48 * time.Hour, 2},
		{"two and a half days", 60 * time.Hour, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := Fit([]time.Time{base, base.Add(tt.gap)}, rate.DefaultPrior())
			assert.Equal(t, tt.wantT, post.T)
			assert.Equal(t, 1+tt.wantT, post.Beta)
			assert.Equal(t, 3.0, post.Alpha)
		})
	}

	single := Fit([]time.Time{base}, rate.DefaultPrior())
	assert.Equal(t, rate.PosteriorParameters{Alpha: 2, Beta: 2, N: 1, T: 1}, single)
}

func TestFit_OrderIndependentAndPure(t *testing.T) {
	ts := dailyEvents(10)
	ts = append(ts, base.Add(36*time.Hour), base.Add(5*time.Minute))
	original := slices.Clone(ts)

	forward := Fit(ts, rate.DefaultPrior())
	assert.Equal(t, original, ts, "Fit must not reorder its input")

	reversed := slices.Clone(ts)
	slices.Reverse(reversed)
	assert.Equal(t, forward, Fit(reversed, rate.DefaultPrior()))
}

// TestFit_NormalizesZones checks that the same instants in different zones fit identically
func TestFit_NormalizesZones(t *testing.T) {
	rome := time.FixedZone("CET", 3600)
	tokyo := time.FixedZone("JST", 9*3600)

	utc := []time.Time{base, base.Add(4 * day)}
	mixed := []time.Time{base.In(rome), base.Add(4 * day).In(tokyo)}

	assert.Equal(t, Fit(utc, rate.DefaultPrior()), Fit(mixed, rate.DefaultPrior()))
}

// TestFit_MultiCenturySpan checks spans longer than time.Duration can hold
func TestFit_MultiCenturySpan(t *testing.T) {
	first := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	post := Fit([]time.Time{last, first}, rate.DefaultPrior())
	assert.Equal(t, 155229.0, post.T)
	assert.Equal(t, 155230.0, post.Beta)

	// The ~292 year saturation point of time.Duration must not cap the span
	far := first.AddDate(300, 0, 0)
	want := float64(far.Unix()-first.Unix()) / secondsPerDay
	assert.Equal(t, want, Fit([]time.Time{first, far}, rate.DefaultPrior()).T)
}

func TestWholeDaysBetween_SubSecond(t *testing.T) {
	a := time.Date(2025, 3, 1, 0, 0, 0, 500_000_000, time.UTC)

	assert.Equal(t, int64(0), wholeDaysBetween(a, a.Add(day-time.Millisecond)))
	assert.Equal(t, int64(1), wholeDaysBetween(a, a.Add(day)))
	assert.Equal(t, int64(2), wholeDaysBetween(a, a.Add(3*day-time.Nanosecond)))
}

func TestFit_CustomPrior(t *testing.T) {
	prior := rate.Prior{Alpha: 0.5, Beta: 2.25}
	post := Fit(dailyEvents(4), prior)

	assert.Equal(t, 4.5, post.Alpha)
	assert.Equal(t, 5.25, post.Beta)
}

func TestFitCounts(t *testing.T) {
	prior := rate.DefaultPrior()

	assert.Equal(t, Fit(dailyEvents(10), prior), FitCounts(10, 9, prior))
	assert.Equal(t, rate.PosteriorParameters{Alpha: 1, Beta: 1}, FitCounts(0, 12, prior))
	assert.Equal(t, rate.PosteriorParameters{Alpha: 1, Beta: 1}, FitCounts(-3, 12, prior))

	post := FitCounts(3, 0.25, prior)
	require.Equal(t, 1.0, post.T)
	assert.Equal(t, 2.0, post.Beta)

	post = FitCounts(3, 6.9, prior)
	assert.Equal(t, 6.0, post.T)
}
