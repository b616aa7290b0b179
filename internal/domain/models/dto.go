package models

import (
	"math"
	"time"
)

// Float converts NaN and infinities to nil so values survive JSON and nullable columns.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FromFloat is the inverse of Float.
func FromFloat(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// BarDTO is the cached and wire form of a Bar.
type BarDTO struct {
	T int64    `json:"t"`
	O *float64 `json:"o"`
	H *float64 `json:"h"`
	L *float64 `json:"l"`
	C *float64 `json:"c"`
	V *float64 `json:"v"`
}

func NewBarDTOs(s BarSeries) []BarDTO {
	out := make([]BarDTO, s.Len())
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		out[i] = BarDTO{
			T: b.Timestamp.UnixMilli(),
			O: Float(b.Open),
			H: Float(b.High),
			L: Float(b.Low),
			C: Float(b.Close),
			V: Float(b.Volume),
		}
	}
	return out
}

// BarSeriesFromDTOs rebuilds a series, re-checking its invariants.
func BarSeriesFromDTOs(dtos []BarDTO) (BarSeries, error) {
	bars := make([]Bar, len(dtos))
	for i, d := range dtos {
		bars[i] = Bar{
			Timestamp: time.UnixMilli(d.T).UTC(),
			Open:      FromFloat(d.O),
			High:      FromFloat(d.H),
			Low:       FromFloat(d.L),
			Close:     FromFloat(d.C),
			Volume:    FromFloat(d.V),
		}
	}
	return NewBarSeries(bars)
}

// SignalRecord is the flat row published to Kafka, stored in ClickHouse and served by the API.
type SignalRecord struct {
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	Source     string    `json:"source"`
	Traffic    string    `json:"traffic"`
	BarTime    time.Time `json:"bar_time"`
	Close      *float64  `json:"close"`
	EMA20      *float64  `json:"ema20"`
	EMA50      *float64  `json:"ema50"`
	RSI14      *float64  `json:"rsi14"`
	ATR14      *float64  `json:"atr14"`
	P          *float64  `json:"p"`
	R1         *float64  `json:"r1"`
	R2         *float64  `json:"r2"`
	S1         *float64  `json:"s1"`
	S2         *float64  `json:"s2"`
	Entry      *float64  `json:"entry"`
	Exit       *float64  `json:"exit"`
	Stop       *float64  `json:"stop"`
	Conclusion string    `json:"conclusion"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSignalRecord flattens one outcome; failed outcomes carry only identity and error.
func NewSignalRecord(runID string, at time.Time, o SymbolOutcome) SignalRecord {
	rec := SignalRecord{
		RunID:     runID,
		Symbol:    o.Symbol.String(),
		Source:    o.Kind.String(),
		Error:     o.ErrorMessage(),
		CreatedAt: at.UTC(),
	}
	if !o.OK() {
		return rec
	}
	s := o.Signal
	snap := s.Snapshot
	rec.Traffic = string(s.Traffic)
	rec.BarTime = snap.Timestamp
	rec.Close = Float(snap.Close)
	rec.EMA20 = Float(snap.EMA20)
	rec.EMA50 = Float(snap.EMA50)
	rec.RSI14 = Float(snap.RSI14)
	rec.ATR14 = Float(snap.ATR14)
	rec.P = Float(snap.P)
	rec.R1 = Float(snap.R1)
	rec.R2 = Float(snap.R2)
	rec.S1 = Float(snap.S1)
	rec.S2 = Float(snap.S2)
	rec.Entry = Float(s.Entry)
	rec.Exit = Float(s.Exit)
	rec.Stop = Float(s.Stop)
	rec.Conclusion = s.Conclusion
	return rec
}

// NewSignalRecords flattens a whole run in order.
func NewSignalRecords(r RunResult) []SignalRecord {
	out := make([]SignalRecord, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = NewSignalRecord(r.ID, r.FinishedAt, o)
	}
	return out
}

// RunSummary is the JSON answer of a finished run.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Report     string         `json:"report,omitempty"`
	Results    []SignalRecord `json:"results"`
}
