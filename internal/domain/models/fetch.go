package models

import (
	"fmt"
	"time"
)

// FetchSpec is everything an adapter needs to pull one symbol's history.
type FetchSpec struct {
	Symbol Symbol
	Kind   SourceKind

	// equity
	Interval string
	Period   string // provider range such as "730d"; empty when Start/End are used
	Start    time.Time
	End      time.Time

	// crypto
	Exchange  string
	Timeframe string
	Limit     int
	Base      string
	Quote     string
}

// HasRange reports whether an explicit start/end range is set.
func (f FetchSpec) HasRange() bool {
	return !f.Start.IsZero() || !f.End.IsZero()
}

// WithFallback returns a copy asking for interval over period instead of a range.
func (f FetchSpec) WithFallback(interval, period string) FetchSpec {
	f.Interval = interval
	f.Period = period
	f.Start = time.Time{}
	f.End = time.Time{}
	return f
}

// CacheKey identifies the full request; equal specs share cached bars.
func (f FetchSpec) CacheKey() string {
	if f.Kind == SourceCryptoPair {
		return fmt.Sprintf("bars:%s:%s:%s:%d", f.Exchange, f.Symbol, f.Timeframe, f.Limit)
	}
	return fmt.Sprintf("bars:eq:%s:%s:%s:%d:%d", f.Symbol, f.Interval, f.Period, unixOrZero(f.Start), unixOrZero(f.End))
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
