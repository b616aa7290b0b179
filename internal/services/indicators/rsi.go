package indicators

import "github.com/montanaflynn/stats"

// RSI is Wilder's relative strength index over close-to-close changes.
// The first value lands on the bar that completes period changes.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 {
		return out
	}

	gains := make(stats.Float64Data, 0, period)
	losses := make(stats.Float64Data, 0, period)
	var (
		avgGain, avgLoss float64
		seeded           bool
	)
	for i := 1; i < len(closes); i++ {
		if !finite(closes[i]) || !finite(closes[i-1]) {
			continue
		}
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if !seeded {
			gains = append(gains, gain)
			losses = append(losses, loss)
			if len(gains) < period {
				continue
			}
			avgGain, _ = stats.Mean(gains)
			avgLoss, _ = stats.Mean(losses)
			seeded = true
		} else {
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
