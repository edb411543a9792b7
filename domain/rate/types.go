package rate

import (
	"fmt"
	"math"
)

// ============================================================================
// PRIOR AND POSTERIOR
// ============================================================================

// Prior is the Gamma(shape, rate) belief about the event rate before any
// observation. Both parameters must be strictly positive.
type Prior struct {
	Alpha float64 `json:"alpha"` // shape
	Beta  float64 `json:"beta"`  // rate, per day
}

// DefaultPrior returns the weakly informative Gamma(1, 1) prior.
func DefaultPrior() Prior {
	return Prior{Alpha: 1, Beta: 1}
}

// Validate reports whether both parameters are finite and strictly positive
// and the implied mean and variance are finite.
func (p Prior) Validate() error {
	if !isPositive(p.Alpha) {
		return fmt.Errorf("prior alpha must be positive, got %v", p.Alpha)
	}
	if !isPositive(p.Beta) {
		return fmt.Errorf("prior beta must be positive, got %v", p.Beta)
	}
	return CheckMoments(p.Alpha, p.Beta)
}

// CheckMoments rejects Gamma(alpha, beta) parameters whose mean alpha/beta or
// variance alpha/beta² overflows float64.
func CheckMoments(alpha, beta float64) error {
	if !isFinite(alpha / beta) {
		return fmt.Errorf("mean alpha/beta overflows for alpha=%v, beta=%v", alpha, beta)
	}
	if !isFinite(alpha / (beta * beta)) {
		return fmt.Errorf("variance alpha/beta² overflows for alpha=%v, beta=%v", alpha, beta)
	}
	return nil
}

// PosteriorParameters is the Gamma posterior after observing N events over a
// span of T days.
// INVARIANTS:
// - Alpha = prior.Alpha + N
// - Beta  = prior.Beta + T
// - N == 0 implies T == 0 (cold start)
type PosteriorParameters struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	N     int     `json:"n"`
	T     float64 `json:"t"` // elapsed span in days
}

// ColdStart reports whether the posterior carries no observation evidence.
func (p PosteriorParameters) ColdStart() bool {
	return p.N == 0
}

// ============================================================================
// QUERIES AND CURVE POINTS
// ============================================================================

// PredictiveQuery asks for the probability of exactly K events over the next
// Horizon days.
type PredictiveQuery struct {
	K       int     `json:"k"`
	Horizon float64 `json:"horizon"`
}

// Validate checks K >= 0 and Horizon > 0.
func (q PredictiveQuery) Validate() error {
	if q.K < 0 {
		return fmt.Errorf("k must be non-negative, got %d", q.K)
	}
	if !isPositive(q.Horizon) {
		return fmt.Errorf("horizon must be positive, got %v", q.Horizon)
	}
	return nil
}

// PMFPoint is one bar of a predictive histogram.
type PMFPoint struct {
	K           int     `json:"k"`
	Probability float64 `json:"probability"`
}

// DensityPoint is one sample of the posterior rate density.
type DensityPoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// ============================================================================
// REFERENCE POPULATION
// ============================================================================

// ReferenceDistribution is the Gamma(Shape, Rate) population that user rates
// are ranked against. The default (2, 1) is a calibration constant with a
// mean of two events per day.
type ReferenceDistribution struct {
	Shape float64 `json:"shape"`
	Rate  float64 `json:"rate"`
}

// DefaultReference returns the Gamma(2, 1) reference population.
func DefaultReference() ReferenceDistribution {
	return ReferenceDistribution{Shape: 2, Rate: 1}
}

// Validate checks that both parameters are finite and strictly positive.
func (d ReferenceDistribution) Validate() error {
	if !isPositive(d.Shape) {
		return fmt.Errorf("reference shape must be positive, got %v", d.Shape)
	}
	if !isPositive(d.Rate) {
		return fmt.Errorf("reference rate must be positive, got %v", d.Rate)
	}
	return nil
}

// IntegerShape reports whether Shape is a whole number, in which case the
// sum-of-exponentials sampler is exact.
func (d ReferenceDistribution) IntegerShape() bool {
	return d.Shape == math.Trunc(d.Shape) && d.Shape >= 1
}

// Mean is Shape/Rate.
func (d ReferenceDistribution) Mean() float64 {
	return d.Shape / d.Rate
}

// ============================================================================
// SUMMARY
// ============================================================================

// DailyCount is the number of events on one UTC calendar day.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// RateSummary bundles every numeric output a presentation layer consumes for
// one event stream.
type RateSummary struct {
	Stream            string              `json:"stream,omitempty"`
	Prior             Prior               `json:"prior"`
	Posterior         PosteriorParameters `json:"posterior"`
	PosteriorMean     float64             `json:"posterior_mean"`
	PosteriorVariance float64             `json:"posterior_variance"`
	PosteriorStdDev   float64             `json:"posterior_std_dev"`
	Horizon           float64             `json:"horizon"`
	PredictiveMean    float64             `json:"predictive_mean"`
	Predictive        []PMFPoint          `json:"predictive"`
	Curve             []DensityPoint      `json:"curve"`
	Percentile        float64             `json:"percentile"`
	SessionID         string              `json:"session_id,omitempty"`
	ActiveDays        int                 `json:"active_days"`
	Daily             []DailyCount        `json:"daily,omitempty"`
}

func isPositive(v float64) bool {
	return v > 0 && isFinite(v)
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
