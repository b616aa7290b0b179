package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	signals     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastClose   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	runSymbols  prometheus.Histogram
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algoreport_fetches_total",
				Help: "Market data fetches by source and result",
			},
			[]string{"source", "result"},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algoreport_signals_total",
				Help: "Derived signals by traffic light",
			},
			[]string{"traffic"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algoreport_symbol_errors_total",
				Help: "Per-symbol failures by error kind",
			},
			[]string{"kind"},
		),
		lastClose: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "algoreport_last_close",
				Help: "Close of the last fully defined bar per symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "algoreport_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algoreport_runs_total",
				Help: "Completed report runs by result",
			},
			[]string{"result"},
		),
		runSymbols: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "algoreport_run_symbols",
				Help:    "Symbols per run",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
	}
}

// RecordFetch counts one fetch against a data source.
func (r *Recorder) RecordFetch(source string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.fetches.WithLabelValues(source, result).Inc()
}

// RecordSignal counts a derived signal and tracks its close.
func (r *Recorder) RecordSignal(symbol, traffic string, close float64) {
	r.signals.WithLabelValues(traffic).Inc()
	r.lastClose.WithLabelValues(symbol).Set(close)
}

// RecordSymbolError records a per-symbol failure by kind.
func (r *Recorder) RecordSymbolError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordRun records a finished run; partial means some symbols failed.
func (r *Recorder) RecordRun(symbols, failures int) {
	result := "ok"
	switch {
	case symbols > 0 && failures == symbols:
		result = "failed"
	case failures > 0:
		result = "partial"
	}
	r.runs.WithLabelValues(result).Inc()
	r.runSymbols.Observe(float64(symbols))
}
