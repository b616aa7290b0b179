package indicators

import (
	"math"

	"github.com/montanaflynn/stats"
)

// EMA is an exponential moving average seeded with the simple mean of the first
// period finite values. NaN inputs yield NaN and leave the running average untouched.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	seed := make(stats.Float64Data, 0, period)
	var (
		prev   float64
		seeded bool
	)
	for i, v := range values {
		if !finite(v) {
			continue
		}
		if !seeded {
			seed = append(seed, v)
			if len(seed) < period {
				continue
			}
			prev, _ = stats.Mean(seed)
			seeded = true
			out[i] = prev
			continue
		}
		prev = alpha*v + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
