package inference

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestDensity_OutsideSupport(t *testing.T) {
	for _, x := range []float64{0, -0.5, -100, math.Inf(-1), math.NaN()} {
		assert.Equal(t, 0.0, Density(x, 11, 10), "x=%v", x)
	}
}

// TestDensity_MatchesGonumGamma cross-checks against distuv.Gamma, including
// shapes where Γ(alpha) overflows
func TestDensity_MatchesGonumGamma(t *testing.T) {
	params := [][2]float64{{1, 1}, {2, 1}, {11, 10}, {0.7, 3}, {250, 180}, {1200, 1000}}
	for _, p := range params {
		g := distuv.Gamma{Alpha: p[0], Beta: p[1]}
		for _, x := range []float64{0.05, 0.5, 1, 1.1, 1.25, 2, 4} {
			want := g.Prob(x)
			got := Density(x, p[0], p[1])
			assert.InDelta(t, want, got, 1e-12+1e-8*want, "alpha=%v beta=%v x=%v", p[0], p[1], x)
		}
	}
}

func TestDensity_NonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("density is finite and non-negative", prop.ForAll(
		func(x, alpha, beta float64) bool {
			d := Density(x, alpha, beta)
			return d >= 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
		},
		gen.Float64Range(-50, 50),
		gen.Float64Range(0.01, 5000),
		gen.Float64Range(0.01, 5000),
	))

	properties.TestingRun(t)
}

func TestDensity_InvalidParametersDegradeToZero(t *testing.T) {
	assert.Equal(t, 0.0, Density(1, 3, -1))
	assert.Equal(t, 0.0, Density(1, math.NaN(), 1))
	assert.Equal(t, 0.0, Density(1, 0, 1))
}

// TestDensity_IntegratesToOne integrates the posterior with the trapezoid rule
func TestDensity_IntegratesToOne(t *testing.T) {
	const step = 1e-4
	area := 0.0
	prev := Density(0, 11, 10)
	for x := step; x <= 6; x += step {
		cur := Density(x, 11, 10)
		area += (prev + cur) * step / 2
		prev = cur
	}
	assert.InDelta(t, 1.0, area, 1e-4)
}

func TestPosteriorCurve(t *testing.T) {
	curve := PosteriorCurve(11, 10, DefaultCurvePoints)
	require.Len(t, curve, DefaultCurvePoints+1)

	peak := 0.0
	peakX := 0.0
	for i, pt := range curve {
		assert.GreaterOrEqual(t, pt.X, minCurveX)
		assert.GreaterOrEqual(t, pt.Density, 0.0)
		assert.LessOrEqual(t, pt.Density, 1.0)
		if i > 0 {
			assert.Greater(t, pt.X, curve[i-1].X)
		}
		if pt.Density > peak {
			peak, peakX = pt.Density, pt.X
		}
	}
	assert.Equal(t, 1.0, peak)

	// mode of Gamma(11, 10) is (alpha-1)/beta
	mean, sd := PosteriorMean(11, 10), PosteriorStdDev(11, 10)
	assert.InDelta(t, 1.0, peakX, 6*sd/DefaultCurvePoints)
	assert.InDelta(t, mean+3*sd, curve[len(curve)-1].X, 1e-9)
}

func TestPosteriorCurve_ClampsLowerBound(t *testing.T) {
	// prior only: mean 1, sd 1, so mean-3sd is negative
	curve := PosteriorCurve(1, 1, 50)
	require.NotEmpty(t, curve)
	assert.Equal(t, minCurveX, curve[0].X)
	assert.Equal(t, 1.0, curve[0].Density)
}

func TestPosteriorCurve_Degenerate(t *testing.T) {
	assert.Nil(t, PosteriorCurve(11, 10, 0))
	assert.Nil(t, PosteriorCurve(math.NaN(), 10, 100))
	// whole range sits below the clamp
	assert.Nil(t, PosteriorCurve(1e-6, 1e6, 100))
}
