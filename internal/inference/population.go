package inference

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gorate/domain/rate"
)

// DefaultSampleSize is the number of reference rates drawn per session.
const DefaultSampleSize = 2000

// ReferenceSample is a simulated population of event rates, sorted ascending.
// It is immutable once built and safe for concurrent readers.
type ReferenceSample struct {
	dist   rate.ReferenceDistribution
	sorted []float64
}

// Simulate draws size independent rates from dist. Integer shapes use the
// exact sum-of-exponentials method (each draw is the sum of Shape terms
// -log(U)/Rate); any other shape goes through a general Gamma sampler.
// A nil rng draws from an unseeded stream, so results vary between calls.
func Simulate(rng *rand.Rand, dist rate.ReferenceDistribution, size int) *ReferenceSample {
	if size <= 0 || dist.Validate() != nil {
		return &ReferenceSample{dist: dist}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	draws := make([]float64, size)
	if dist.IntegerShape() {
		shape := int(dist.Shape)
		for i := range draws {
			draws[i] = sumOfExponentials(rng, shape, dist.Rate)
		}
	} else {
		g := distuv.Gamma{Alpha: dist.Shape, Beta: dist.Rate, Src: rng}
		for i := range draws {
			draws[i] = g.Rand()
		}
	}

	slices.Sort(draws)
	return &ReferenceSample{dist: dist, sorted: draws}
}

func sumOfExponentials(rng *rand.Rand, shape int, rateParam float64) float64 {
	sum := 0.0
	for k := 0; k < shape; k++ {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		sum += -math.Log(u) / rateParam
	}
	return sum
}

// NewReferenceSample wraps externally produced draws. The input is copied.
func NewReferenceSample(dist rate.ReferenceDistribution, values []float64) *ReferenceSample {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return &ReferenceSample{dist: dist, sorted: sorted}
}

// Distribution returns the population the sample was drawn from.
func (s *ReferenceSample) Distribution() rate.ReferenceDistribution {
	return s.dist
}

func (s *ReferenceSample) Len() int {
	return len(s.sorted)
}

// Values returns a sorted copy of the draws.
func (s *ReferenceSample) Values() []float64 {
	return slices.Clone(s.sorted)
}

// Mean is the sample mean, or 0 for an empty sample.
func (s *ReferenceSample) Mean() float64 {
	m, err := stats.Mean(s.sorted)
	if err != nil {
		return 0
	}
	return m
}

// Percentile ranks value against the sample; see PercentileOf.
func (s *ReferenceSample) Percentile(value float64) float64 {
	return percentileSorted(value, s.sorted)
}

// PercentileOf returns the empirical CDF rank of value in sample, in [0, 100]:
// 100·i/n where i is the index of the first sorted sample >= value, or 100
// when no sample is >= value. That includes an empty sample and a NaN value,
// which compares false against everything.
func PercentileOf(value float64, sample []float64) float64 {
	sorted := slices.Clone(sample)
	slices.Sort(sorted)
	return percentileSorted(value, sorted)
}

func percentileSorted(value float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(value) {
		return 100
	}
	i := sort.SearchFloat64s(sorted, value)
	return 100 * float64(i) / float64(n)
}
