package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"AlgoReport/internal/domain/models"
	"AlgoReport/internal/services/indicators"
	"AlgoReport/internal/services/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var finished = time.Date(2025, 3, 4, 15, 7, 0, 0, time.UTC)

func okOutcome(t *testing.T, sym models.Symbol, kind models.SourceKind) models.SymbolOutcome {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 80)
	for i := range bars {
		c := 100 + 5*math.Sin(float64(i)/6) + float64(i)*0.2
		bars[i] = models.Bar{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	series, err := models.NewBarSeries(bars)
	require.NoError(t, err)

	snaps := indicators.Compute(series)
	sig, err := signals.NewEngine(signals.DefaultPolicy()).Derive(sym, snaps)
	require.NoError(t, err)
	return models.SymbolOutcome{Symbol: sym, Kind: kind, Signal: &sig, History: snaps}
}

func testRun(t *testing.T) models.RunResult {
	return models.RunResult{
		ID:         "run-1",
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		Outcomes: []models.SymbolOutcome{
			okOutcome(t, "AAPL", models.SourceEquity),
			{Symbol: "ZZZZ", Err: fmt.Errorf("yahoo: ZZZZ: %w", models.ErrInvalidSymbol)},
			okOutcome(t, "BTC/USDT", models.SourceCryptoPair),
		},
	}
}

func TestRender_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	art, err := r.Render(context.Background(), testRun(t))
	require.NoError(t, err)

	assert.Equal(t, "20250304-1507", art.Stamp)
	assert.Equal(t, "report-20250304-1507.html", art.HTML)
	assert.Equal(t, "report-20250304-1507.csv", art.CSV)
	assert.Equal(t, LatestName, art.Latest)
	assert.Equal(t, map[models.Symbol]string{
		"AAPL":     "chart-20250304-1507-AAPL.png",
		"BTC/USDT": "chart-20250304-1507-BTC_USDT.png",
	}, art.Charts)

	for _, name := range art.Charts {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")), name)
	}

	html, err := os.ReadFile(filepath.Join(dir, art.HTML))
	require.NoError(t, err)
	latest, err := os.ReadFile(filepath.Join(dir, LatestName))
	require.NoError(t, err)
	assert.Equal(t, html, latest)

	page := string(html)
	assert.Contains(t, page, "Report 20250304-1507")
	assert.Contains(t, page, "chart-20250304-1507-AAPL.png")
	assert.Contains(t, page, "ZZZZ")
	assert.Contains(t, page, "invalid symbol")
	assert.Contains(t, page, "1 failed")

	f, err := os.Open(filepath.Join(dir, art.CSV))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "symbol", records[0][0])
	assert.Equal(t, "AAPL", records[1][0])
	assert.Equal(t, "ZZZZ", records[2][0])
	assert.Equal(t, "crypto_pair", records[3][1])
}

func TestRender_ChartNeedsTwoPoints(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	run := testRun(t)
	run.Outcomes[0].History = run.Outcomes[0].History[len(run.Outcomes[0].History)-1:]

	art, err := r.Render(context.Background(), run)
	require.NoError(t, err)
	_, ok := art.Charts["AAPL"]
	assert.False(t, ok)
	assert.Contains(t, art.Charts, models.Symbol("BTC/USDT"))
}

func TestPublish_ReplacesLatest(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir, WithClock(func() time.Time { return finished }))
	require.NoError(t, err)

	_, err = r.Render(context.Background(), testRun(t))
	require.NoError(t, err)

	art, err := r.Publish(context.Background(), []byte("<html>uploaded</html>"))
	require.NoError(t, err)
	assert.Equal(t, "report-20250304-1507.html", art.HTML)

	path, err := r.Latest()
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>uploaded</html>", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".latest-", "temp files are cleaned up")
	}
}

func TestLatest_Missing(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	require.NoError(t, err)

	_, err = r.Latest()
	assert.ErrorIs(t, err, models.ErrReportNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"report-20250101-0900.html", "report-20250301-0900.html", "report-20250201-0900.html", "report-20250301-0900.csv", "latest.html", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	names, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"report-20250301-0900.html", "report-20250201-0900.html", "report-20250101-0900.html"}, names)
}

func TestOpen_RejectsUnsafeNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report-1.html"), []byte("x"), 0o644))
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	path, err := r.Open("report-1.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-1.html"), path)

	for _, name := range []string{"", "../report-1.html", "sub/report-1.html", ".latest-1.html", "report-1.txt", "missing.html", `..\x.html`} {
		_, err := r.Open(name)
		assert.ErrorIs(t, err, models.ErrReportNotFound, name)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "-", FormatPrice(math.NaN()))
	assert.Equal(t, "101.50", FormatPrice(101.5))
	assert.Equal(t, "0.12", FormatPrice(0.1234))
}
