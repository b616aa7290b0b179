package indicators

import (
	"math"
	"testing"
	"time"

	"AlgoReport/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPivotFrom_Exact(t *testing.T) {
	p := PivotFrom(110, 90, 100)
	assert.Equal(t, Pivot{P: 100, R1: 110, S1: 90, R2: 120, S2: 80}, p)
}

func TestPivots_UsePreviousBar(t *testing.T) {
	piv := Pivots([]float64{110, 500}, []float64{90, 400}, []float64{100, 450})
	assert.True(t, math.IsNaN(piv[0].P))
	assert.Equal(t, 100.0, piv[1].P)
	assert.Equal(t, 120.0, piv[1].R2)
}

func TestEMA_SeedAndRecursion(t *testing.T) {
	out := EMA([]float64{1, 2, 3, 4, 5}, 3)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12) // 0.5*4 + 0.5*2
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestEMA_SkipsNaN(t *testing.T) {
	out := EMA([]float64{1, math.NaN(), 2, 3, 4}, 3)
	assert.True(t, math.IsNaN(out[1]))
	assert.True(t, math.IsNaN(out[2]))
	assert.InDelta(t, 2.0, out[3], 1e-12)
	assert.InDelta(t, 3.0, out[4], 1e-12)
}

func TestEMA_ConstantSeries(t *testing.T) {
	vals := make([]float64, 60)
	for i := range vals {
		vals[i] = 42
	}
	out := EMA(vals, 50)
	assert.True(t, math.IsNaN(out[48]))
	assert.InDelta(t, 42.0, out[49], 1e-12)
	assert.InDelta(t, 42.0, out[59], 1e-12)
}

func TestRSI_FirstDefinedAtPeriod(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	out := RSI(closes, 14)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d", i)
	}
	assert.Equal(t, 100.0, out[14])
	assert.Equal(t, 100.0, out[19])
}

func TestRSI_FlatIsNeutralAndFallingIsZero(t *testing.T) {
	flat := make([]float64, 16)
	falling := make([]float64, 16)
	for i := range flat {
		flat[i] = 10
		falling[i] = float64(100 - i)
	}
	assert.Equal(t, 50.0, RSI(flat, 14)[15])
	assert.Equal(t, 0.0, RSI(falling, 14)[15])
}

func TestRSI_Alternating(t *testing.T) {
	// +1, -1 alternating: equal average gain and loss once seeded over an even count
	closes := []float64{10}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+1)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}
	out := RSI(closes, 14)
	assert.InDelta(t, 50.0, out[14], 1e-9)
}

func TestATR_WilderSmoothing(t *testing.T) {
	n := 16
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i], low[i], closes[i] = 12, 10, 11
	}
	high[15], low[15] = 20, 10 // TR = max(10, 9, 1) = 10

	out := ATR(high, low, closes, 14)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d", i)
	}
	assert.InDelta(t, 2.0, out[14], 1e-12)
	assert.InDelta(t, (2.0*13+10)/14, out[15], 1e-12)
}

func TestTrueRange_UsesPreviousClose(t *testing.T) {
	tr := TrueRange([]float64{10, 12}, []float64{9, 11}, []float64{9.5, 11.5})
	assert.True(t, math.IsNaN(tr[0]))
	assert.InDelta(t, 2.5, tr[1], 1e-12) // |12 - 9.5|
}

func TestCompute_Alignment(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 60)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = models.Bar{Timestamp: base.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	series, err := models.NewBarSeries(bars)
	require.NoError(t, err)

	snaps := Compute(series)
	require.Len(t, snaps, 60)

	assert.False(t, snaps[48].Defined())
	assert.True(t, snaps[49].Defined())
	assert.True(t, snaps[59].Timestamp.Equal(bars[59].Timestamp))
	assert.Equal(t, 159.0, snaps[59].Close)
	assert.Equal(t, PivotFrom(159, 157, 158).P, snaps[59].P)
}
