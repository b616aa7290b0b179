package signals

import (
	"fmt"
	"math"
	"strings"

	"AlgoReport/internal/domain/models"
)

// Policy holds the traffic-light thresholds.
type Policy struct {
	Overbought float64 // RED at or above
	Oversold   float64 // RED at or below
	NeutralLow float64 // GREEN band, inclusive
	NeutralHi  float64
}

// DefaultPolicy is applied to every instrument class.
func DefaultPolicy() Policy {
	return Policy{Overbought: 70, Oversold: 30, NeutralLow: 40, NeutralHi: 65}
}

// Engine turns indicator snapshots into a SignalResult.
type Engine struct {
	policy Policy
}

func NewEngine(p Policy) *Engine {
	return &Engine{policy: p}
}

// LatestDefined returns the index of the last snapshot with every field finite, or -1.
func LatestDefined(snaps []models.IndicatorSnapshot) int {
	for i := len(snaps) - 1; i >= 0; i-- {
		if snaps[i].Defined() {
			return i
		}
	}
	return -1
}

// Derive classifies the last fully defined snapshot.
func (e *Engine) Derive(symbol models.Symbol, snaps []models.IndicatorSnapshot) (models.SignalResult, error) {
	idx := LatestDefined(snaps)
	if idx < 0 {
		return models.SignalResult{}, fmt.Errorf("%s: %d bars: %w", symbol, len(snaps), models.ErrInsufficientHistory)
	}
	s := snaps[idx]

	traffic, conclusion := e.Classify(s)
	entry, exit, stop := TradeLevels(s)

	return models.SignalResult{
		Symbol:     symbol,
		Traffic:    traffic,
		Entry:      entry,
		Exit:       exit,
		Stop:       stop,
		Conclusion: conclusion,
		Snapshot:   s,
	}, nil
}

func uptrend(s models.IndicatorSnapshot) bool {
	return s.Close > s.EMA20 && s.EMA20 > s.EMA50
}

// TradeLevels returns entry (NaN unless the trend is aligned), exit and stop.
func TradeLevels(s models.IndicatorSnapshot) (entry, exit, stop float64) {
	entry = math.NaN()
	if uptrend(s) {
		entry = s.Close
	}

	stop = s.S1
	if s.Close < s.S1 {
		stop = s.S2
	}

	exit = s.R1
	if s.Close > s.R1 {
		exit = s.R2
	}
	return entry, exit, stop
}

// Classify applies RED, then GREEN, then AMBER and names the rule that fired.
func (e *Engine) Classify(s models.IndicatorSnapshot) (models.Traffic, string) {
	p := e.policy

	var red []string
	if s.Close < s.EMA50 {
		red = append(red, "price below 50-period trend")
	}
	if s.RSI14 >= p.Overbought {
		red = append(red, fmt.Sprintf("RSI overbought (%.1f)", s.RSI14))
	}
	if s.RSI14 <= p.Oversold {
		red = append(red, fmt.Sprintf("RSI oversold, reversal risk (%.1f)", s.RSI14))
	}
	if len(red) > 0 {
		return models.TrafficRed, strings.Join(red, "; ")
	}

	if uptrend(s) {
		if s.RSI14 >= p.NeutralLow && s.RSI14 <= p.NeutralHi {
			return models.TrafficGreen, fmt.Sprintf("uptrend aligned, RSI neutral (%.1f)", s.RSI14)
		}
		return models.TrafficAmber, fmt.Sprintf("uptrend aligned, RSI outside neutral band (%.1f)", s.RSI14)
	}
	return models.TrafficAmber, "mixed trend, no clear direction"
}
