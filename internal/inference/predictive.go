package inference

import (
	"math"

	"gorate/domain/rate"
)

// DefaultMaxK is the largest count shown in a predictive histogram.
const DefaultMaxK = 7

// PosteriorMean is the mean of Gamma(alpha, beta): alpha/beta events per day.
func PosteriorMean(alpha, beta float64) float64 {
	return alpha / beta
}

// PosteriorVariance is alpha/beta².
func PosteriorVariance(alpha, beta float64) float64 {
	return alpha / (beta * beta)
}

func PosteriorStdDev(alpha, beta float64) float64 {
	return math.Sqrt(PosteriorVariance(alpha, beta))
}

// PredictiveMean is the expected number of events over the next t days.
func PredictiveMean(alpha, beta, t float64) float64 {
	return t * alpha / beta
}

// PredictivePMF returns the probability of exactly k events over the next t
// days under the Poisson-Gamma (negative binomial) predictive distribution:
//
//	p = beta/(beta+t)
//	P(k) = C(k+alpha-1, k) · p^alpha · (1-p)^k
//
// alpha need not be an integer. A zero horizon puts all mass on k = 0.
// Negative k and any non-finite intermediate result yield 0.
func PredictivePMF(k int, alpha, beta, t float64) float64 {
	if k < 0 {
		return 0
	}

	p := beta / (beta + t)
	prob := generalizedBinomial(float64(k)+alpha-1, k) * math.Pow(p, alpha) * math.Pow(1-p, float64(k))
	if math.IsNaN(prob) || math.IsInf(prob, 0) || prob < 0 {
		return 0
	}
	return prob
}

// PredictiveTable evaluates PredictivePMF for k = 0..maxK over horizon t.
func PredictiveTable(alpha, beta, t float64, maxK int) []rate.PMFPoint {
	if maxK < 0 {
		return nil
	}
	table := make([]rate.PMFPoint, 0, maxK+1)
	for k := 0; k <= maxK; k++ {
		table = append(table, rate.PMFPoint{K: k, Probability: PredictivePMF(k, alpha, beta, t)})
	}
	return table
}

// generalizedBinomial computes C(n, k) for real n as ∏_{i=1..k} (n-k+i)/i.
// Factorials are undefined for non-integer n and overflow early for integer
// n, so they are never formed.
func generalizedBinomial(n float64, k int) float64 {
	res := 1.0
	kf := float64(k)
	for i := 1; i <= k; i++ {
		fi := float64(i)
		res *= (n - kf + fi) / fi
	}
	return res
}
