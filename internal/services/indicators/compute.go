package indicators

import "AlgoReport/internal/domain/models"

const (
	FastPeriod = 20
	SlowPeriod = 50
	RSIPeriod  = 14
	ATRPeriod  = 14
)

// Compute derives one snapshot per bar, aligned with the series.
func Compute(series models.BarSeries) []models.IndicatorSnapshot {
	n := series.Len()
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		b := series.At(i)
		high[i], low[i], closes[i] = b.High, b.Low, b.Close
	}

	fast := EMA(closes, FastPeriod)
	slow := EMA(closes, SlowPeriod)
	rsi := RSI(closes, RSIPeriod)
	atr := ATR(high, low, closes, ATRPeriod)
	piv := Pivots(high, low, closes)

	out := make([]models.IndicatorSnapshot, n)
	for i := 0; i < n; i++ {
		out[i] = models.IndicatorSnapshot{
			Timestamp: series.At(i).Timestamp,
			Close:     closes[i],
			EMA20:     fast[i],
			EMA50:     slow[i],
			RSI14:     rsi[i],
			ATR14:     atr[i],
			P:         piv[i].P,
			R1:        piv[i].R1,
			R2:        piv[i].R2,
			S1:        piv[i].S1,
			S2:        piv[i].S2,
		}
	}
	return out
}
