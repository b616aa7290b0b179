package usecase

import (
	"context"
	"fmt"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	"AlgoReport/internal/services/indicators"
	"AlgoReport/internal/services/signals"
	"AlgoReport/pkg/config"
	applogger "AlgoReport/pkg/logger"

	"github.com/google/uuid"
)

// Orchestrator runs the per-symbol pipeline sequentially. A symbol's failure never aborts the run.
type Orchestrator struct {
	dispatcher *Dispatcher
	provider   domrepo.BarProvider
	engine     *signals.Engine
	notifier   domrepo.RunNotifier
	metrics    domrepo.Metrics
	log        *applogger.Logger

	fetchTimeout time.Duration
	chartBars    int
	now          func() time.Time
	newID        func() string
}

// OrchestratorOption configures Orchestrator.
type OrchestratorOption func(*Orchestrator)

func WithNotifier(n domrepo.RunNotifier) OrchestratorOption {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithMetrics(m domrepo.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithLogger(l *applogger.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(d *Dispatcher, p domrepo.BarProvider, e *signals.Engine, cfg config.Pipeline, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		dispatcher:   d,
		provider:     p,
		engine:       e,
		notifier:     domrepo.NopNotifier{},
		metrics:      domrepo.NopMetrics{},
		log:          applogger.Nop(),
		fetchTimeout: cfg.FetchTimeout,
		chartBars:    cfg.ChartBars,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run returns exactly one outcome per symbol, in input order.
func (o *Orchestrator) Run(ctx context.Context, symbols []models.Symbol, params models.RunParams) models.RunResult {
	res := models.RunResult{
		ID:        o.newID(),
		Params:    params,
		StartedAt: o.now().UTC(),
		Outcomes:  make([]models.SymbolOutcome, 0, len(symbols)),
	}
	total := len(symbols)
	o.notifier.Notify(models.RunEvent{Type: models.EventRunStarted, RunID: res.ID, Total: total, Time: res.StartedAt})

	for i, sym := range symbols {
		out := o.runSymbol(ctx, sym, params)
		res.Outcomes = append(res.Outcomes, out)

		ev := models.RunEvent{
			Type:   models.EventSymbolDone,
			RunID:  res.ID,
			Symbol: sym.String(),
			Index:  i + 1,
			Total:  total,
			Error:  out.ErrorMessage(),
			Time:   o.now().UTC(),
		}
		if out.OK() {
			ev.Traffic = out.Signal.Traffic
			o.metrics.RecordSignal(sym.String(), string(out.Signal.Traffic), out.Signal.Snapshot.Close)
		} else {
			o.metrics.RecordSymbolError(models.ErrorKind(out.Err))
			o.log.Warn("symbol failed",
				applogger.String("run_id", res.ID),
				applogger.String("symbol", sym.String()),
				applogger.String("kind", models.ErrorKind(out.Err)),
				applogger.Error(out.Err),
			)
		}
		o.notifier.Notify(ev)
	}

	res.FinishedAt = o.now().UTC()
	o.metrics.RecordLatency("run", res.FinishedAt.Sub(res.StartedAt).Seconds())
	return res
}

func (o *Orchestrator) runSymbol(ctx context.Context, sym models.Symbol, params models.RunParams) (out models.SymbolOutcome) {
	out.Symbol = sym
	out.Kind = o.dispatcher.Classify(sym)

	defer func() {
		if r := recover(); r != nil {
			out.Signal = nil
			out.Err = fmt.Errorf("%s: panic: %v", sym, r)
		}
	}()

	spec, err := o.dispatcher.BuildFetchSpec(sym, params)
	if err != nil {
		out.Err = err
		return out
	}

	fctx := ctx
	if o.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
		defer cancel()
	}
	series, err := o.provider.Fetch(fctx, spec)
	if err != nil {
		out.Err = err
		return out
	}

	snaps := indicators.Compute(series)
	sig, err := o.engine.Derive(sym, snaps)
	if err != nil {
		out.Err = err
		return out
	}
	out.Signal = &sig
	out.History = tail(snaps, o.chartBars)
	return out
}

func tail(snaps []models.IndicatorSnapshot, n int) []models.IndicatorSnapshot {
	if n <= 0 || len(snaps) <= n {
		return snaps
	}
	return snaps[len(snaps)-n:]
}
