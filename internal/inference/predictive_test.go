package inference

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosteriorMoments(t *testing.T) {
	cases := [][2]float64{{1, 1}, {11, 10}, {2.5, 0.75}, {1e4, 3e3}}
	for _, c := range cases {
		alpha, beta := c[0], c[1]
		assert.Equal(t, alpha/beta, PosteriorMean(alpha, beta))
		assert.Equal(t, alpha/(beta*beta), PosteriorVariance(alpha, beta))
		assert.Equal(t, math.Sqrt(alpha/(beta*beta)), PosteriorStdDev(alpha, beta))
	}
}

func TestPredictiveMean(t *testing.T) {
	assert.InDelta(t, 1.1, PredictiveMean(11, 10, 1), 1e-12)
	assert.InDelta(t, 7.7, PredictiveMean(11, 10, 7), 1e-12)
	assert.Equal(t, 0.0, PredictiveMean(11, 10, 0))
}

// TestPredictivePMF_ZeroCountExact verifies PMF(0) = (beta/(beta+t))^alpha
func TestPredictivePMF_ZeroCountExact(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("PMF(0) equals p^alpha", prop.ForAll(
		func(alpha, beta, horizon float64) bool {
			return PredictivePMF(0, alpha, beta, horizon) == math.Pow(beta/(beta+horizon), alpha)
		},
		gen.Float64Range(0.1, 200),
		gen.Float64Range(0.1, 200),
		gen.Float64Range(0.01, 30),
	))

	properties.TestingRun(t)
}

// TestPredictivePMF_SumsToOne verifies the predictive distribution is normalized
func TestPredictivePMF_SumsToOne(t *testing.T) {
	sum := 0.0
	for k := 0; k <= 50; k++ {
		sum += PredictivePMF(k, 5, 10, 1)
	}
	assert.Greater(t, sum, 0.999)
	assert.LessOrEqual(t, sum, 1+1e-9)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("partial sum to k=300 exceeds 0.999", prop.ForAll(
		func(alpha, beta, horizon float64) bool {
			total := 0.0
			for k := 0; k <= 300; k++ {
				total += PredictivePMF(k, alpha, beta, horizon)
			}
			return total > 0.999 && total < 1+1e-9
		},
		gen.Float64Range(0.5, 10),
		gen.Float64Range(1, 10),
		gen.Float64Range(0.1, 3),
	))

	properties.TestingRun(t)
}

// TestPredictivePMF_MatchesLogSpaceForm compares the product recurrence with
// the Lgamma closed form of the negative binomial
func TestPredictivePMF_MatchesLogSpaceForm(t *testing.T) {
	for _, alpha := range []float64{0.5, 1, 2.5, 11, 37.25} {
		for _, beta := range []float64{0.8, 10, 42} {
			p := beta / (beta + 1)
			for k := 0; k <= 25; k++ {
				lk, _ := math.Lgamma(float64(k) + alpha)
				la, _ := math.Lgamma(alpha)
				lf, _ := math.Lgamma(float64(k) + 1)
				want := math.Exp(lk - la - lf + alpha*math.Log(p) + float64(k)*math.Log(1-p))

				got := PredictivePMF(k, alpha, beta, 1)
				assert.InDelta(t, want, got, 1e-12+1e-9*want, "alpha=%v beta=%v k=%d", alpha, beta, k)
			}
		}
	}
}

// TestPredictivePMF_GeometricCase checks alpha = 1 reduces to p(1-p)^k
func TestPredictivePMF_GeometricCase(t *testing.T) {
	p := 4.0 / 6.0
	for k := 0; k < 10; k++ {
		assert.InDelta(t, p*math.Pow(1-p, float64(k)), PredictivePMF(k, 1, 4, 2), 1e-15)
	}
}

func TestPredictivePMF_MeanMatchesPredictiveMean(t *testing.T) {
	expected := 0.0
	for k := 0; k <= 200; k++ {
		expected += float64(k) * PredictivePMF(k, 11, 10, 1)
	}
	assert.InDelta(t, PredictiveMean(11, 10, 1), expected, 1e-9)
}

func TestPredictivePMF_DegenerateInputs(t *testing.T) {
	// zero horizon puts all mass on k = 0
	assert.Equal(t, 1.0, PredictivePMF(0, 3, 2, 0))
	assert.Equal(t, 0.0, PredictivePMF(1, 3, 2, 0))
	assert.Equal(t, 0.0, PredictivePMF(6, 3, 2, 0))

	assert.Equal(t, 0.0, PredictivePMF(-1, 3, 2, 1))

	// the binomial product overflows long before the tail mass underflows
	got := PredictivePMF(2000, 500, 10, 1)
	assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
	assert.GreaterOrEqual(t, got, 0.0)

	assert.Equal(t, 0.0, PredictivePMF(2, math.NaN(), 2, 1))
}

func TestPredictiveTable(t *testing.T) {
	table := PredictiveTable(11, 10, 1, DefaultMaxK)
	require.Len(t, table, DefaultMaxK+1)

	for k, point := range table {
		assert.Equal(t, k, point.K)
		assert.Equal(t, PredictivePMF(k, 11, 10, 1), point.Probability)
	}

	assert.Nil(t, PredictiveTable(11, 10, 1, -1))
	assert.Len(t, PredictiveTable(11, 10, 1, 0), 1)
}

func TestGeneralizedBinomial(t *testing.T) {
	assert.Equal(t, 1.0, generalizedBinomial(4.5, 0))
	assert.InDelta(t, 10.0, generalizedBinomial(5, 2), 1e-12)
	assert.InDelta(t, 252.0, generalizedBinomial(10, 5), 1e-9)
	// C(1.5, 2) = 1.5 * 0.5 / 2
	assert.InDelta(t, 0.375, generalizedBinomial(1.5, 2), 1e-15)
}
