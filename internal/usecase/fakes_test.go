package usecase

import (
	"context"
	"sync"
	"time"

	"AlgoReport/internal/domain/models"
)

// fakeProvider serves a deterministic series per symbol unless an error is registered for it.
type fakeProvider struct {
	mu    sync.Mutex
	bars  int
	errs  map[models.Symbol]error
	specs []models.FetchSpec
	block chan struct{}
}

func (f *fakeProvider) Fetch(ctx context.Context, spec models.FetchSpec) (models.BarSeries, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return models.BarSeries{}, ctx.Err()
		}
	}
	if err, ok := f.errs[spec.Symbol]; ok {
		return models.BarSeries{}, err
	}
	return trendSeries(f.bars), nil
}

func trendSeries(n int) models.BarSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + float64(i)*0.5
		if i%3 == 0 {
			c -= 1
		}
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	s, _ := models.NewBarSeries(bars)
	return s
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.RunEvent
}

func (n *recordingNotifier) Notify(ev models.RunEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type countingMetrics struct {
	mu      sync.Mutex
	fetches map[string]int
	errs    map[string]int
	signals int
	runs    [][2]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{fetches: map[string]int{}, errs: map[string]int{}}
}

func (m *countingMetrics) RecordFetch(source string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.fetches[source+":ok"]++
	} else {
		m.fetches[source+":error"]++
	}
}

func (m *countingMetrics) RecordSignal(string, string, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals++
}

func (m *countingMetrics) RecordSymbolError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) RecordRun(symbols, failures int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, [2]int{symbols, failures})
}

type fakeRenderer struct {
	mu       sync.Mutex
	rendered []models.RunResult
	err      error
}

func (r *fakeRenderer) Render(_ context.Context, run models.RunResult) (models.ReportArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return models.ReportArtifact{}, r.err
	}
	r.rendered = append(r.rendered, run)
	return models.ReportArtifact{Stamp: "20250101-0000", HTML: "report-20250101-0000.html"}, nil
}

func (r *fakeRenderer) Publish(context.Context, []byte) (models.ReportArtifact, error) {
	return models.ReportArtifact{HTML: "report-uploaded.html"}, nil
}

func (r *fakeRenderer) Latest() (string, error)          { return "", nil }
func (r *fakeRenderer) List() ([]string, error)          { return nil, nil }
func (r *fakeRenderer) Open(name string) (string, error) { return name, nil }

type fakeStore struct {
	recs []models.SignalRecord
	err  error
}

func (s *fakeStore) Init(context.Context) error { return nil }
func (s *fakeStore) StoreBatch(_ context.Context, recs []models.SignalRecord) error {
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, recs...)
	return nil
}
func (s *fakeStore) Query(_ context.Context, symbol string, limit int) ([]models.SignalRecord, error) {
	var out []models.SignalRecord
	for _, r := range s.recs {
		if symbol == "" || r.Symbol == symbol {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakePublisher struct {
	batches [][]models.SignalRecord
}

func (p *fakePublisher) PublishRun(_ context.Context, recs []models.SignalRecord) error {
	p.batches = append(p.batches, recs)
	return nil
}
func (p *fakePublisher) Close() error { return nil }
