package models

import (
	"math"
	"time"
)

// Traffic is the three-level signal.
type Traffic string

const (
	TrafficGreen Traffic = "GREEN"
	TrafficAmber Traffic = "AMBER"
	TrafficRed   Traffic = "RED"
)

// Emoji renders the light for reports.
func (t Traffic) Emoji() string {
	switch t {
	case TrafficGreen:
		return "🟢"
	case TrafficAmber:
		return "🟡"
	case TrafficRed:
		return "🔴"
	default:
		return "⚪"
	}
}

// IndicatorSnapshot holds the indicators of one bar; undefined values are NaN.
type IndicatorSnapshot struct {
	Timestamp time.Time
	Close     float64
	EMA20     float64
	EMA50     float64
	RSI14     float64
	ATR14     float64
	P         float64
	R1        float64
	R2        float64
	S1        float64
	S2        float64
}

// Defined reports whether every indicator field is finite.
func (s IndicatorSnapshot) Defined() bool {
	for _, v := range [...]float64{s.Close, s.EMA20, s.EMA50, s.RSI14, s.ATR14, s.P, s.R1, s.R2, s.S1, s.S2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SignalResult is the per-symbol verdict. Entry is NaN when the trend is not aligned.
type SignalResult struct {
	Symbol     Symbol
	Traffic    Traffic
	Entry      float64
	Exit       float64
	Stop       float64
	Conclusion string
	Snapshot   IndicatorSnapshot
}
