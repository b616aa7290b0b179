package usecase

import (
	"context"
	"fmt"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
)

// SourceRouter hands a spec to the provider of its kind. The kind was decided by the dispatcher.
type SourceRouter struct {
	equity  domrepo.BarProvider
	crypto  domrepo.BarProvider
	metrics domrepo.Metrics
}

var _ domrepo.BarProvider = (*SourceRouter)(nil)

func NewSourceRouter(equity, crypto domrepo.BarProvider, m domrepo.Metrics) *SourceRouter {
	if m == nil {
		m = domrepo.NopMetrics{}
	}
	return &SourceRouter{equity: equity, crypto: crypto, metrics: m}
}

func (r *SourceRouter) Fetch(ctx context.Context, spec models.FetchSpec) (models.BarSeries, error) {
	var p domrepo.BarProvider
	switch spec.Kind {
	case models.SourceCryptoPair:
		p = r.crypto
	default:
		p = r.equity
	}
	if p == nil {
		return models.BarSeries{}, fmt.Errorf("no provider for %s symbols: %w", spec.Kind, models.ErrDataUnavailable)
	}

	start := time.Now()
	series, err := p.Fetch(ctx, spec)
	r.metrics.RecordLatency("fetch_"+spec.Kind.String(), time.Since(start).Seconds())
	r.metrics.RecordFetch(spec.Kind.String(), err == nil)
	return series, err
}
