package models

import "errors"

// Symbol-scoped failures; the orchestrator turns them into per-symbol error entries.
var (
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrInvalidInterval     = errors.New("invalid interval")
	ErrDataUnavailable     = errors.New("data unavailable")
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Run-level conditions.
var (
	ErrNoSymbols     = errors.New("no valid symbols")
	ErrRunInProgress = errors.New("a report run is already in progress")
	ErrHistoryOff    = errors.New("signal history is not enabled")
)

// ErrReportNotFound is returned for unknown or unsafe report names.
var ErrReportNotFound = errors.New("report not found")

// ErrorKind maps an error to a short label for metrics and storage.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	default:
		return "other"
	}
}
