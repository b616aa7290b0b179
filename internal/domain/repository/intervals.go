package repository

import "strings"

var equityIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true, "30m": true, "60m": true, "90m": true,
	"1h": true, "1d": true, "5d": true, "1wk": true, "1mo": true, "3mo": true,
}

var intradayIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true, "30m": true, "60m": true, "90m": true, "1h": true,
}

var exchangeTimeframes = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// NormalizeInterval trims and lowercases an equity interval.
func NormalizeInterval(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEquityInterval reports whether the bar-history provider accepts interval.
func IsEquityInterval(interval string) bool {
	return equityIntervals[NormalizeInterval(interval)]
}

// IsIntraday reports whether interval is below one day.
func IsIntraday(interval string) bool {
	return intradayIntervals[NormalizeInterval(interval)]
}

// IsExchangeTimeframe reports whether the exchange accepts timeframe; it is case sensitive.
func IsExchangeTimeframe(tf string) bool {
	return exchangeTimeframes[strings.TrimSpace(tf)]
}
