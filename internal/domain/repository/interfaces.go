package repository

import (
	"context"

	"AlgoReport/internal/domain/models"
)

// BarProvider fetches a normalized bar history for one spec.
type BarProvider interface {
	Fetch(ctx context.Context, spec models.FetchSpec) (models.BarSeries, error)
}

// SignalStore appends run outcomes to an audit table and reads them back for the API.
type SignalStore interface {
	Init(ctx context.Context) error
	StoreBatch(ctx context.Context, recs []models.SignalRecord) error
	Query(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// RunPublisher fans a finished run out to downstream consumers.
type RunPublisher interface {
	PublishRun(ctx context.Context, recs []models.SignalRecord) error
	Close() error
}

// ReportRenderer persists a run as HTML, CSV and charts.
type ReportRenderer interface {
	Render(ctx context.Context, run models.RunResult) (models.ReportArtifact, error)
	Publish(ctx context.Context, html []byte) (models.ReportArtifact, error)
	Latest() (string, error)
	List() ([]string, error)
	Open(name string) (string, error)
}

// RunNotifier receives progress events; implementations must not block the run.
type RunNotifier interface {
	Notify(ev models.RunEvent)
}

type Metrics interface {
	RecordFetch(source string, ok bool)
	RecordSignal(symbol, traffic string, close float64)
	RecordSymbolError(kind string)
	RecordLatency(op string, seconds float64)
	RecordRun(symbols, failures int)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(models.RunEvent) {}

// NopMetrics records nothing.
type NopMetrics struct{}

func (NopMetrics) RecordFetch(string, bool)             {}
func (NopMetrics) RecordSignal(string, string, float64) {}
func (NopMetrics) RecordSymbolError(string)             {}
func (NopMetrics) RecordLatency(string, float64)        {}
func (NopMetrics) RecordRun(int, int)                   {}
