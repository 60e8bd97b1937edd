package metric

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval is a confidence interval of a statistic together with
// the mean and spread of its resampled estimates
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// resample draws len(values) values with replacement into out
func resample(values, out []float64, rng *rand.Rand) []float64 {
	for j := range out {
		out[j] = values[rng.Intn(len(values))]
	}
	return out
}

// Bootstrap estimates the interval of measure over values at the given
// confidence (0.95 for 95%) from samples resamplings. rng is supplied by the
// caller so that a seed reproduces the output.
func Bootstrap(values []float64, measure func([]float64) float64, samples int,
	confidence float64, rng *rand.Rand) BootstrapInterval {

	if len(values) == 0 || samples <= 0 {
		return BootstrapInterval{}
	}

	estimates := make([]float64, samples)
	buffer := make([]float64, len(values))
	for i := range estimates {
		estimates[i] = measure(resample(values, buffer, rng))
	}
	sort.Float64s(estimates)

	alpha := (1 - confidence) / 2
	mean, stdDev := stat.MeanStdDev(estimates, nil)
	return BootstrapInterval{
		Lower:  stat.Quantile(alpha, stat.LinInterp, estimates, nil),
		Upper:  stat.Quantile(1-alpha, stat.LinInterp, estimates, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}
