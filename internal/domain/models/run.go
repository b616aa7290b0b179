package models

import "time"

// RunParams are the caller's per-run overrides; zero values fall back to configuration.
type RunParams struct {
	Interval string
	Start    time.Time
	End      time.Time
}

// SymbolOutcome is either a signal or an error for one symbol.
type SymbolOutcome struct {
	Symbol  Symbol
	Kind    SourceKind
	Signal  *SignalResult
	Err     error
	History []IndicatorSnapshot // trailing snapshots kept for charting
}

// OK reports whether the symbol produced a signal.
func (o SymbolOutcome) OK() bool { return o.Err == nil && o.Signal != nil }

// ErrorMessage is the user-facing error text, empty on success.
func (o SymbolOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// RunResult lists one outcome per resolved symbol in resolver order.
type RunResult struct {
	ID         string
	Params     RunParams
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []SymbolOutcome
}

// Failures counts error outcomes.
func (r RunResult) Failures() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// RunEventType names a progress event.
type RunEventType string

const (
	EventRunStarted  RunEventType = "run_started"
	EventSymbolDone  RunEventType = "symbol_done"
	EventRunFinished RunEventType = "run_finished"
)

// RunEvent is a progress notification emitted while a run executes.
type RunEvent struct {
	Type    RunEventType `json:"type"`
	RunID   string       `json:"run_id"`
	Symbol  string       `json:"symbol,omitempty"`
	Index   int          `json:"index"`
	Total   int          `json:"total"`
	Traffic Traffic      `json:"traffic,omitempty"`
	Error   string       `json:"error,omitempty"`
	Report  string       `json:"report,omitempty"`
	Time    time.Time    `json:"time"`
}

// ReportArtifact lists the files written for one run.
type ReportArtifact struct {
	Stamp  string
	HTML   string
	CSV    string
	Latest string
	Charts map[Symbol]string
}
