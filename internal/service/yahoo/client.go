package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	xhttp "AlgoReport/pkg/http"
	applogger "AlgoReport/pkg/logger"

	"github.com/tidwall/gjson"
)

// Client fetches equity and index bars from the Yahoo Finance v8 chart API.
type Client struct {
	http             *xhttp.Client
	baseURL          string
	fallbackInterval string
	fallbackPeriod   string
	log              *applogger.Logger
	now              func() time.Time
}

var _ domrepo.BarProvider = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithFallback sets the interval and period retried when an intraday request comes back empty.
func WithFallback(interval, period string) Option {
	return func(c *Client) {
		c.fallbackInterval = interval
		c.fallbackPeriod = period
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func NewClient(baseURL string, hc *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		http:             hc,
		baseURL:          strings.TrimRight(baseURL, "/"),
		fallbackInterval: "1d",
		fallbackPeriod:   "1y",
		log:              applogger.Nop(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the normalized series. An empty intraday answer is retried once with the daily fallback.
func (c *Client) Fetch(ctx context.Context, spec models.FetchSpec) (models.BarSeries, error) {
	if spec.Kind != models.SourceEquity {
		return models.BarSeries{}, fmt.Errorf("yahoo: %s is not an equity symbol: %w", spec.Symbol, models.ErrInvalidSymbol)
	}
	if !domrepo.IsEquityInterval(spec.Interval) {
		return models.BarSeries{}, fmt.Errorf("yahoo: interval %q: %w", spec.Interval, models.ErrInvalidInterval)
	}

	bars, err := c.fetchOnce(ctx, spec)
	if err != nil {
		return models.BarSeries{}, err
	}
	if len(bars) == 0 && domrepo.IsIntraday(spec.Interval) {
		fb := spec.WithFallback(c.fallbackInterval, c.fallbackPeriod)
		c.log.Warn("empty intraday history, retrying with fallback",
			applogger.String("symbol", spec.Symbol.String()),
			applogger.String("interval", spec.Interval),
			applogger.String("fallback_interval", fb.Interval),
			applogger.String("fallback_period", fb.Period),
		)
		bars, err = c.fetchOnce(ctx, fb)
		if err != nil {
			return models.BarSeries{}, err
		}
	}
	if len(bars) == 0 {
		return models.BarSeries{}, fmt.Errorf("yahoo: %s: no bars: %w", spec.Symbol, models.ErrDataUnavailable)
	}
	return models.NewBarSeries(bars)
}

// fetchOnce returns nil bars, not an error, when the provider answers with no usable data.
func (c *Client) fetchOnce(ctx context.Context, spec models.FetchSpec) ([]models.Bar, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape(spec.Symbol.String()),
		QueryParams: c.query(spec),
		Headers:     map[string]string{"Accept": "application/json"},
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return c.statusFailure(spec, se)
		}
		return nil, fmt.Errorf("yahoo: %s: %w", spec.Symbol, err)
	}

	if code := gjson.GetBytes(body, "chart.error.code"); code.Exists() && code.String() != "" {
		if isNotFound(code.String()) {
			return nil, fmt.Errorf("yahoo: %s: %s: %w", spec.Symbol, gjson.GetBytes(body, "chart.error.description").String(), models.ErrInvalidSymbol)
		}
		c.log.Debug("chart error treated as empty", applogger.String("symbol", spec.Symbol.String()), applogger.String("code", code.String()))
		return nil, nil
	}
	return parseChart(body), nil
}

func (c *Client) statusFailure(spec models.FetchSpec, se *xhttp.StatusError) ([]models.Bar, error) {
	code := gjson.GetBytes(se.Body, "chart.error.code").String()
	switch {
	case se.Code == http.StatusNotFound || isNotFound(code):
		return nil, fmt.Errorf("yahoo: %s: %w", spec.Symbol, models.ErrInvalidSymbol)
	case se.Code == http.StatusBadRequest || se.Code == http.StatusUnprocessableEntity:
		// the provider rejects ranges it cannot serve; callers see that as no data
		c.log.Debug("chart request rejected",
			applogger.String("symbol", spec.Symbol.String()),
			applogger.Int("status", se.Code),
			applogger.String("description", gjson.GetBytes(se.Body, "chart.error.description").String()),
		)
		return nil, nil
	default:
		return nil, fmt.Errorf("yahoo: %s: %w", spec.Symbol, se)
	}
}

func isNotFound(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), "Not Found")
}

func (c *Client) query(spec models.FetchSpec) map[string][]string {
	q := map[string][]string{
		"interval":       {domrepo.NormalizeInterval(spec.Interval)},
		"includePrePost": {"false"},
		"events":         {"div|split"},
	}
	if !spec.HasRange() {
		period := spec.Period
		if period == "" {
			period = "max"
		}
		q["range"] = []string{period}
		return q
	}

	end := spec.End
	if end.IsZero() {
		end = c.now()
	}
	var start int64
	if !spec.Start.IsZero() {
		start = spec.Start.Unix()
	}
	q["period1"] = []string{strconv.FormatInt(start, 10)}
	q["period2"] = []string{strconv.FormatInt(end.Unix(), 10)}
	return q
}

// parseChart maps the first result to bars. Missing columns and null cells become NaN; rows are never dropped.
func parseChart(body []byte) []models.Bar {
	res := gjson.GetBytes(body, "chart.result.0")
	if !res.Exists() {
		return nil
	}
	stamps := res.Get("timestamp").Array()
	n := len(stamps)
	if n == 0 {
		return nil
	}

	quote := res.Get("indicators.quote.0")
	open := column(quote.Get("open"), n)
	high := column(quote.Get("high"), n)
	low := column(quote.Get("low"), n)
	closes := column(quote.Get("close"), n)
	volume := column(quote.Get("volume"), n)

	adjRaw := res.Get("indicators.adjclose.0.adjclose")
	var adj []float64
	if adjRaw.Exists() {
		adj = column(adjRaw, n)
	}

	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		b := models.Bar{
			Timestamp: time.Unix(stamps[i].Int(), 0).UTC(),
			Open:      open[i],
			High:      high[i],
			Low:       low[i],
			Close:     closes[i],
			Volume:    volume[i],
		}
		if adj != nil {
			autoAdjust(&b, adj[i])
		}
		bars[i] = b
	}
	return bars
}

// autoAdjust rescales OHLC onto the adjusted close, or substitutes it when close is missing.
func autoAdjust(b *models.Bar, adj float64) {
	if math.IsNaN(adj) {
		return
	}
	if math.IsNaN(b.Close) || b.Close == 0 {
		b.Close = adj
		return
	}
	ratio := adj / b.Close
	b.Open *= ratio
	b.High *= ratio
	b.Low *= ratio
	b.Close = adj
}

func column(r gjson.Result, n int) []float64 {
	out := make([]float64, n)
	arr := r.Array()
	for i := range out {
		if i >= len(arr) || arr[i].Type != gjson.Number {
			out[i] = math.NaN()
			continue
		}
		out[i] = arr[i].Float()
	}
	return out
}
