package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	applogger "AlgoReport/pkg/logger"
)

// ReportRunner is the entry point shared by the HTTP trigger and the CLI.
type ReportRunner struct {
	resolver     *Resolver
	orchestrator *Orchestrator
	renderer     domrepo.ReportRenderer
	store        domrepo.SignalStore
	publisher    domrepo.RunPublisher
	notifier     domrepo.RunNotifier
	metrics      domrepo.Metrics
	log          *applogger.Logger

	mu      sync.Mutex
	running atomic.Bool
}

// RunnerOption configures ReportRunner.
type RunnerOption func(*ReportRunner)

// WithSignalStore appends every run to the signal history table.
func WithSignalStore(s domrepo.SignalStore) RunnerOption {
	return func(r *ReportRunner) {
		r.store = s
	}
}

// WithPublisher fans each finished run out to a message bus.
func WithPublisher(p domrepo.RunPublisher) RunnerOption {
	return func(r *ReportRunner) {
		r.publisher = p
	}
}

func WithRunNotifier(n domrepo.RunNotifier) RunnerOption {
	return func(r *ReportRunner) {
		if n != nil {
			r.notifier = n
		}
	}
}

func WithRunMetrics(m domrepo.Metrics) RunnerOption {
	return func(r *ReportRunner) {
		if m != nil {
			r.metrics = m
		}
	}
}

func WithRunLogger(l *applogger.Logger) RunnerOption {
	return func(r *ReportRunner) {
		if l != nil {
			r.log = l
		}
	}
}

func NewReportRunner(res *Resolver, orch *Orchestrator, renderer domrepo.ReportRenderer, opts ...RunnerOption) *ReportRunner {
	r := &ReportRunner{
		resolver:     res,
		orchestrator: orch,
		renderer:     renderer,
		notifier:     domrepo.NopNotifier{},
		metrics:      domrepo.NopMetrics{},
		log:          applogger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves raw input, runs the pipeline and renders the report.
// It returns ErrNoSymbols for empty input and ErrRunInProgress while another run holds the guard.
func (r *ReportRunner) Run(ctx context.Context, raw []string, params models.RunParams) (*models.RunSummary, error) {
	symbols := r.resolver.Resolve(raw)
	if len(symbols) == 0 {
		return nil, models.ErrNoSymbols
	}
	if !r.mu.TryLock() {
		return nil, models.ErrRunInProgress
	}
	r.running.Store(true)
	defer func() {
		r.running.Store(false)
		r.mu.Unlock()
	}()

	r.log.Info("run started",
		applogger.Int("symbols", len(symbols)),
		applogger.String("interval", params.Interval),
	)

	result := r.orchestrator.Run(ctx, symbols, params)
	r.metrics.RecordRun(len(result.Outcomes), result.Failures())

	art, err := r.renderer.Render(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	recs := models.NewSignalRecords(result)
	r.fanOut(ctx, result.ID, recs)

	r.notifier.Notify(models.RunEvent{
		Type:   models.EventRunFinished,
		RunID:  result.ID,
		Total:  len(result.Outcomes),
		Report: art.HTML,
		Time:   result.FinishedAt,
	})
	r.log.Info("run finished",
		applogger.String("run_id", result.ID),
		applogger.Int("symbols", len(result.Outcomes)),
		applogger.Int("failures", result.Failures()),
		applogger.String("report", art.HTML),
	)

	return &models.RunSummary{
		RunID:      result.ID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Report:     art.HTML,
		Results:    recs,
	}, nil
}

// Busy reports whether a run currently holds the guard.
func (r *ReportRunner) Busy() bool {
	return r.running.Load()
}

// History reads stored signals back for the API; nil store means the feature is off.
func (r *ReportRunner) History(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error) {
	if r.store == nil {
		return nil, models.ErrHistoryOff
	}
	return r.store.Query(ctx, symbol, limit)
}

// Publish stores an uploaded HTML report as the latest one.
func (r *ReportRunner) Publish(ctx context.Context, html []byte) (models.ReportArtifact, error) {
	if !r.mu.TryLock() {
		return models.ReportArtifact{}, models.ErrRunInProgress
	}
	defer r.mu.Unlock()
	return r.renderer.Publish(ctx, html)
}

func (r *ReportRunner) fanOut(ctx context.Context, runID string, recs []models.SignalRecord) {
	if r.store != nil {
		if err := r.store.StoreBatch(ctx, recs); err != nil {
			r.log.Error("store signals failed", applogger.String("run_id", runID), applogger.Error(err))
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishRun(ctx, recs); err != nil {
			r.log.Error("publish run failed", applogger.String("run_id", runID), applogger.Error(err))
		}
	}
}
