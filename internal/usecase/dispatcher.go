package usecase

import (
	"fmt"
	"strings"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	"AlgoReport/pkg/config"
	"AlgoReport/pkg/util"
)

// Dispatcher classifies symbols and builds the per-source fetch parameters.
type Dispatcher struct {
	pipeline config.Pipeline
	exchange string
	tf       string
	limit    int
}

func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		pipeline: cfg.Pipeline,
		exchange: cfg.Exchange.ID,
		tf:       cfg.Exchange.Timeframe,
		limit:    cfg.Exchange.Limit,
	}
}

// Classify is the only place a symbol's source is decided.
func (d *Dispatcher) Classify(sym models.Symbol) models.SourceKind {
	if models.IsPair(sym.String()) {
		return models.SourceCryptoPair
	}
	return models.SourceEquity
}

// BuildFetchSpec applies the interval and range policy. Zero params fall back to configuration.
func (d *Dispatcher) BuildFetchSpec(sym models.Symbol, p models.RunParams) (models.FetchSpec, error) {
	if d.Classify(sym) == models.SourceCryptoPair {
		base, quote, _ := strings.Cut(sym.String(), "/")
		if base == "" || quote == "" {
			return models.FetchSpec{}, fmt.Errorf("pair %q: %w", sym, models.ErrInvalidSymbol)
		}
		return models.FetchSpec{
			Symbol:    sym,
			Kind:      models.SourceCryptoPair,
			Exchange:  d.exchange,
			Timeframe: d.tf,
			Limit:     d.limit,
			Base:      base,
			Quote:     quote,
		}, nil
	}

	interval := domrepo.NormalizeInterval(p.Interval)
	if interval == "" {
		interval = domrepo.NormalizeInterval(d.pipeline.DefaultInterval)
	}
	spec := models.FetchSpec{
		Symbol:   sym,
		Kind:     models.SourceEquity,
		Interval: interval,
	}

	if domrepo.IsIntraday(interval) {
		period, ok := d.pipeline.IntradayPeriods[interval]
		if !ok {
			period = config.DefaultIntradayPeriods()[interval]
		}
		spec.Period = period
		return spec, nil
	}

	start, end := p.Start, p.End
	if start.IsZero() && end.IsZero() {
		start, end = d.defaultRange()
	}
	if start.IsZero() && end.IsZero() {
		spec.Period = d.pipeline.DefaultPeriod
		return spec, nil
	}
	spec.Start, spec.End = start, end
	return spec, nil
}

func (d *Dispatcher) defaultRange() (start, end time.Time) {
	if t, ok := util.ParseTime(d.pipeline.DefaultStart); ok {
		start = t
	}
	if t, ok := util.ParseTime(d.pipeline.DefaultEnd); ok {
		end = t
	}
	return start, end
}
