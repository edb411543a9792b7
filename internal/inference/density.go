package inference

import (
	"math"

	"gorate/domain/rate"
)

// DefaultCurvePoints is the number of steps a posterior curve is sampled at.
const DefaultCurvePoints = 100

// minCurveX keeps the sampled range off the x = 0 boundary.
const minCurveX = 0.01

// Density is the Gamma(alpha, beta) probability density at rate x, evaluated
// in log space. The support is x > 0; everything else, and any numerical
// failure, yields 0 since the value feeds plot scaling directly.
func Density(x, alpha, beta float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}

	logPDF := alpha*math.Log(beta) - LogGamma(alpha) + (alpha-1)*math.Log(x) - beta*x
	d := math.Exp(logPDF)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// PosteriorCurve samples the posterior density over mean ± 3 standard
// deviations (clamped below at 0.01) in the given number of steps and scales
// the result so the peak equals 1. A curve whose peak is 0 is returned empty.
func PosteriorCurve(alpha, beta float64, points int) []rate.DensityPoint {
	if points <= 0 {
		return nil
	}

	mean := PosteriorMean(alpha, beta)
	sd := PosteriorStdDev(alpha, beta)
	lo := math.Max(minCurveX, mean-3*sd)
	hi := mean + 3*sd
	step := (hi - lo) / float64(points)
	if !(step > 0) || math.IsInf(step, 0) {
		return nil
	}

	raw := make([]rate.DensityPoint, 0, points+1)
	peak := 0.0
	for i := 0; i <= points; i++ {
		x := lo + float64(i)*step
		y := Density(x, alpha, beta)
		raw = append(raw, rate.DensityPoint{X: x, Density: y})
		peak = math.Max(peak, y)
	}
	if peak <= 0 {
		return nil
	}

	for i := range raw {
		raw[i].Density /= peak
	}
	return raw
}
