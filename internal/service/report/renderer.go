package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	applogger "AlgoReport/pkg/logger"
	"AlgoReport/pkg/util"
)

// LatestName is the stable pointer to the most recent report.
const LatestName = "latest.html"

// Renderer writes report artifacts into a single directory.
type Renderer struct {
	dir  string
	log  *applogger.Logger
	now  func() time.Time
	page *template.Template
}

var _ domrepo.ReportRenderer = (*Renderer)(nil)

// Option configures Renderer.
type Option func(*Renderer)

func WithLogger(l *applogger.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates dir if needed.
func NewRenderer(dir string, opts ...Option) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	r := &Renderer{
		dir:  dir,
		log:  applogger.Nop(),
		now:  time.Now,
		page: template.Must(template.New("report").Funcs(funcs).Parse(pageTemplate)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Dir returns the output directory.
func (r *Renderer) Dir() string { return r.dir }

// Render writes one chart per successful symbol, the HTML and CSV reports, then replaces latest.html.
// A chart that cannot be drawn is logged and left out; the report is still written.
func (r *Renderer) Render(ctx context.Context, run models.RunResult) (models.ReportArtifact, error) {
	at := run.FinishedAt
	if at.IsZero() {
		at = r.now()
	}
	art := models.ReportArtifact{
		Stamp:  util.Stamp(at),
		Charts: make(map[models.Symbol]string),
	}

	for _, o := range run.Outcomes {
		if err := ctx.Err(); err != nil {
			return art, err
		}
		if !o.OK() {
			continue
		}
		name := ChartName(art.Stamp, o.Symbol)
		if err := r.writeChart(filepath.Join(r.dir, name), o); err != nil {
			r.log.Warn("chart skipped",
				applogger.String("symbol", o.Symbol.String()),
				applogger.Error(err),
			)
			continue
		}
		art.Charts[o.Symbol] = name
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, newPageView(run, art)); err != nil {
		return art, fmt.Errorf("execute template: %w", err)
	}

	art.HTML = "report-" + art.Stamp + ".html"
	if err := os.WriteFile(filepath.Join(r.dir, art.HTML), buf.Bytes(), 0o644); err != nil {
		return art, fmt.Errorf("write report: %w", err)
	}

	csvBytes, err := marshalCSV(run)
	if err != nil {
		return art, err
	}
	art.CSV = "report-" + art.Stamp + ".csv"
	if err := os.WriteFile(filepath.Join(r.dir, art.CSV), csvBytes, 0o644); err != nil {
		return art, fmt.Errorf("write csv: %w", err)
	}

	if err := r.replaceLatest(buf.Bytes()); err != nil {
		return art, err
	}
	art.Latest = LatestName

	r.log.Info("report written",
		applogger.String("report", art.HTML),
		applogger.Int("charts", len(art.Charts)),
	)
	return art, nil
}

// Publish stores an externally built report and points latest.html at it.
func (r *Renderer) Publish(_ context.Context, html []byte) (models.ReportArtifact, error) {
	art := models.ReportArtifact{Stamp: util.Stamp(r.now())}
	art.HTML = "report-" + art.Stamp + ".html"
	if err := os.WriteFile(filepath.Join(r.dir, art.HTML), html, 0o644); err != nil {
		return art, fmt.Errorf("write report: %w", err)
	}
	if err := r.replaceLatest(html); err != nil {
		return art, err
	}
	art.Latest = LatestName
	return art, nil
}

// Latest returns the path of latest.html.
func (r *Renderer) Latest() (string, error) {
	return r.Open(LatestName)
}

// List returns report HTML names, newest first.
func (r *Renderer) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		n := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(n, "report-") && strings.HasSuffix(n, ".html") {
			out = append(out, n)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// Open resolves an artifact name inside the reports directory. Names with path parts are rejected.
func (r *Renderer) Open(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%q: %w", name, models.ErrReportNotFound)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".csv", ".png":
	default:
		return "", fmt.Errorf("%q: %w", name, models.ErrReportNotFound)
	}

	path := filepath.Join(r.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%q: %w", name, models.ErrReportNotFound)
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%q: %w", name, models.ErrReportNotFound)
	}
	return path, nil
}

// replaceLatest writes to a temp file in the same directory and renames it over latest.html.
func (r *Renderer) replaceLatest(html []byte) error {
	tmp, err := os.CreateTemp(r.dir, ".latest-*.html")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(r.dir, LatestName)); err != nil {
		return fmt.Errorf("replace latest: %w", err)
	}
	return nil
}

// ChartName is the PNG file name of one symbol's chart.
func ChartName(stamp string, sym models.Symbol) string {
	return fmt.Sprintf("chart-%s-%s.png", stamp, util.SafeFileName(sym.String()))
}
