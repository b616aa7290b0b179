package models

import (
	"fmt"
	"sort"
	"time"
)

// Bar is one OHLCV period. Missing provider cells are NaN.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// BarSeries is a non-empty run of bars with strictly increasing timestamps.
type BarSeries struct {
	bars []Bar
}

// NewBarSeries sorts bars ascending and keeps the last bar seen for a repeated timestamp.
func NewBarSeries(bars []Bar) (BarSeries, error) {
	if len(bars) == 0 {
		return BarSeries{}, fmt.Errorf("empty bar set: %w", ErrDataUnavailable)
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	for i := range sorted {
		sorted[i].Timestamp = sorted[i].Timestamp.UTC()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(b.Timestamp) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return BarSeries{bars: out}, nil
}

func (s BarSeries) Len() int { return len(s.bars) }

func (s BarSeries) At(i int) Bar { return s.bars[i] }

// Last returns the newest bar.
func (s BarSeries) Last() Bar { return s.bars[len(s.bars)-1] }

// Bars returns a copy of the underlying bars.
func (s BarSeries) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Closes returns the close column.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}
