package models

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(h int) time.Time { return time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC) }

func TestNewBarSeries_SortsAndCollapsesDuplicates(t *testing.T) {
	s, err := NewBarSeries([]Bar{
		{Timestamp: ts(3), Close: 3},
		{Timestamp: ts(1), Close: 1},
		{Timestamp: ts(2), Close: 2},
		{Timestamp: ts(1), Close: 1.5},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1.5, 2, 3}, s.Closes())
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.At(i).Timestamp.After(s.At(i-1).Timestamp))
	}
	assert.Equal(t, 3.0, s.Last().Close)
}

func TestNewBarSeries_Empty(t *testing.T) {
	_, err := NewBarSeries(nil)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestNewBarSeries_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	s, err := NewBarSeries([]Bar{{Timestamp: time.Date(2025, 1, 1, 9, 30, 0, 0, loc)}})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, s.Last().Timestamp.Location())
	assert.Equal(t, 14, s.Last().Timestamp.Hour())
}

func TestBarDTOs_PreserveNaN(t *testing.T) {
	s, err := NewBarSeries([]Bar{
		{Timestamp: ts(1), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: math.NaN()},
	})
	require.NoError(t, err)

	back, err := BarSeriesFromDTOs(NewBarDTOs(s))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(back.Last().Volume))
	assert.Equal(t, 1.5, back.Last().Close)
	assert.True(t, back.Last().Timestamp.Equal(ts(1)))
}

func TestIsPair(t *testing.T) {
	assert.True(t, IsPair("BTC/USDT"))
	assert.True(t, IsPair("1INCH-X/USD"))
	assert.False(t, IsPair("btc/usdt"))
	assert.False(t, IsPair("AAPL / SPY"))
	assert.False(t, IsPair("AAPL"))
	assert.False(t, IsPair("A/B/C"))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid_symbol", ErrorKind(fmt.Errorf("yahoo: %w", ErrInvalidSymbol)))
	assert.Equal(t, "insufficient_history", ErrorKind(ErrInsufficientHistory))
	assert.Equal(t, "other", ErrorKind(errors.New("x")))
	assert.Equal(t, "", ErrorKind(nil))
}

func TestNewSignalRecord(t *testing.T) {
	at := ts(5)
	ok := SymbolOutcome{
		Symbol: "AAPL",
		Signal: &SignalResult{
			Symbol:   "AAPL",
			Traffic:  TrafficGreen,
			Entry:    math.NaN(),
			Exit:     110,
			Stop:     90,
			Snapshot: IndicatorSnapshot{Timestamp: ts(4), Close: 100},
		},
	}
	bad := SymbolOutcome{Symbol: "NOPE", Err: fmt.Errorf("fetch: %w", ErrInvalidSymbol)}

	recs := NewSignalRecords(RunResult{ID: "r1", FinishedAt: at, Outcomes: []SymbolOutcome{ok, bad}})
	require.Len(t, recs, 2)

	assert.Equal(t, "GREEN", recs[0].Traffic)
	assert.Nil(t, recs[0].Entry)
	require.NotNil(t, recs[0].Exit)
	assert.Equal(t, 110.0, *recs[0].Exit)
	assert.Equal(t, "equity", recs[0].Source)

	assert.Equal(t, "NOPE", recs[1].Symbol)
	assert.Contains(t, recs[1].Error, "invalid symbol")
	assert.Empty(t, recs[1].Traffic)
}

func TestFetchSpec_CacheKeyDistinguishesRanges(t *testing.T) {
	a := FetchSpec{Symbol: "AAPL", Interval: "1d", Period: "max"}
	b := FetchSpec{Symbol: "AAPL", Interval: "1d", Start: ts(0), End: ts(10)}
	c := a.WithFallback("1d", "1y")

	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
	assert.False(t, c.HasRange())
	assert.True(t, b.HasRange())
}
