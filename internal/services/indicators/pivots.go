package indicators

import "math"

// Pivot holds classic floor-trader levels.
type Pivot struct {
	P, R1, R2, S1, S2 float64
}

// PivotFrom derives levels from one completed bar.
func PivotFrom(h, l, c float64) Pivot {
	p := (h + l + c) / 3
	rng := h - l
	return Pivot{
		P:  p,
		R1: 2*p - l,
		S1: 2*p - h,
		R2: p + rng,
		S2: p - rng,
	}
}

// Pivots computes, for every bar, the levels of the bar before it; index 0 is all NaN.
func Pivots(high, low, close []float64) []Pivot {
	out := make([]Pivot, len(close))
	for i := range out {
		if i == 0 {
			nan := math.NaN()
			out[i] = Pivot{P: nan, R1: nan, R2: nan, S1: nan, S2: nan}
			continue
		}
		out[i] = PivotFrom(high[i-1], low[i-1], close[i-1])
	}
	return out
}
