package profiling

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gorate/domain/rate"
)

// goodnessBins is the number of equal-probability bins of the chi-square test
const goodnessBins = 10

// DistributionAnalyzer profiles simulated reference samples
type DistributionAnalyzer struct {
	alpha float64 // significance level of the goodness-of-fit test
}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{alpha: 0.001}
}

// AnalyzeSample computes summary statistics for a reference sample and tests
// it against the Gamma distribution it was meant to be drawn from
func (da *DistributionAnalyzer) AnalyzeSample(data []float64, ref rate.ReferenceDistribution) (SampleProfile, error) {
	profile := SampleProfile{Reference: ref, Size: len(data)}
	if len(data) == 0 {
		return profile, fmt.Errorf("cannot profile an empty sample")
	}
	if err := ref.Validate(); err != nil {
		return profile, err
	}

	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviation(data); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, err
	}
	if profile.Q25, err = stats.Percentile(data, 25); err != nil {
		return profile, err
	}
	if profile.Q75, err = stats.Percentile(data, 75); err != nil {
		return profile, err
	}

	profile.Skewness = calculateSkewness(data, profile.Mean, profile.StdDev)
	profile.Kurtosis = calculateKurtosis(data, profile.Mean, profile.StdDev)
	profile.Outliers = detectOutliers(data, profile.Q25, profile.Q75)

	profile.GoodnessStat, profile.GoodnessP = goodnessOfFit(data, ref)
	profile.Consistent = profile.GoodnessP > da.alpha

	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	// Bias correction for sample skewness
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes sample kurtosis (excess + 3)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	excessKurtosis := sumFourthDeviations/n - 3
	correction := (n - 1) / ((n - 2) * (n - 3))
	excessKurtosis = excessKurtosis*correction + 6/(n+1)

	return excessKurtosis + 3
}

// goodnessOfFit runs Pearson's chi-square test over equal-probability bins of
// the reference Gamma. Samples too small for five expected hits per bin are
// reported as a perfect fit.
func goodnessOfFit(data []float64, ref rate.ReferenceDistribution) (stat, pValue float64) {
	n := float64(len(data))
	expected := n / goodnessBins
	if expected < 5 {
		return 0, 1
	}

	g := distuv.Gamma{Alpha: ref.Shape, Beta: ref.Rate}
	observed := make([]float64, goodnessBins)
	for _, x := range data {
		bin := int(g.CDF(x) * goodnessBins)
		if bin >= goodnessBins {
			bin = goodnessBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		observed[bin]++
	}

	for _, o := range observed {
		d := o - expected
		stat += d * d / expected
	}

	chiDist := distuv.ChiSquared{K: goodnessBins - 1}
	return stat, 1 - chiDist.CDF(stat)
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
