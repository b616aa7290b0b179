package indicators

import (
	"math"

	"github.com/montanaflynn/stats"
)

// TrueRange is max(H-L, |H-prevC|, |L-prevC|); index 0 has no previous close and is NaN.
func TrueRange(high, low, close []float64) []float64 {
	out := nanSlice(len(close))
	for i := 1; i < len(close); i++ {
		h, l, pc := high[i], low[i], close[i-1]
		if !finite(h) || !finite(l) || !finite(pc) {
			continue
		}
		out[i] = math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
	}
	return out
}

// ATR is the Wilder-smoothed average true range, seeded with the mean of the first period ranges.
func ATR(high, low, close []float64, period int) []float64 {
	tr := TrueRange(high, low, close)
	out := nanSlice(len(tr))
	if period <= 0 {
		return out
	}

	seed := make(stats.Float64Data, 0, period)
	var (
		prev   float64
		seeded bool
	)
	for i, v := range tr {
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
		} else {
			prev = (prev*float64(period-1) + v) / float64(period)
		}
		out[i] = prev
	}
	return out
}
