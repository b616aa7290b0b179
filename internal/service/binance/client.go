package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	xhttp "AlgoReport/pkg/http"
	applogger "AlgoReport/pkg/logger"

	"github.com/tidwall/gjson"
)

// ExchangeID is the only venue this client speaks to.
const ExchangeID = "binance"

const (
	maxPageSize        = 1000
	codeInvalidSymbol  = -1121
	codeInvalidSymbol2 = -1100 // illegal characters in parameter 'symbol'
)

// Client fetches OHLCV klines from the Binance spot REST API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	log     *applogger.Logger
}

var _ domrepo.BarProvider = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func NewClient(baseURL string, hc *xhttp.Client, opts ...Option) *Client {
	c := &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/"), log: applogger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MarketID maps BASE/QUOTE to the exchange's concatenated symbol.
func MarketID(base, quote string) string {
	return strings.ReplaceAll(strings.ToUpper(base+quote), "-", "")
}

// Fetch validates the pair on the exchange, then pages klines backwards until spec.Limit bars are collected.
func (c *Client) Fetch(ctx context.Context, spec models.FetchSpec) (models.BarSeries, error) {
	if spec.Kind != models.SourceCryptoPair {
		return models.BarSeries{}, fmt.Errorf("binance: %s is not a pair: %w", spec.Symbol, models.ErrInvalidSymbol)
	}
	if !strings.EqualFold(spec.Exchange, ExchangeID) {
		return models.BarSeries{}, fmt.Errorf("binance: unsupported exchange %q", spec.Exchange)
	}
	if !domrepo.IsExchangeTimeframe(spec.Timeframe) {
		return models.BarSeries{}, fmt.Errorf("binance: timeframe %q: %w", spec.Timeframe, models.ErrInvalidInterval)
	}

	market := MarketID(spec.Base, spec.Quote)
	if err := c.validateMarket(ctx, spec.Symbol, market); err != nil {
		return models.BarSeries{}, err
	}

	limit := spec.Limit
	if limit <= 0 {
		limit = maxPageSize
	}

	var (
		bars    []models.Bar
		endTime int64
	)
	for len(bars) < limit {
		page := limit - len(bars)
		if page > maxPageSize {
			page = maxPageSize
		}
		chunk, err := c.klines(ctx, spec.Symbol, market, spec.Timeframe, page, endTime)
		if err != nil {
			return models.BarSeries{}, err
		}
		if len(chunk) == 0 {
			break
		}
		bars = append(chunk, bars...)
		if len(chunk) < page {
			break
		}
		endTime = chunk[0].Timestamp.UnixMilli() - 1
	}

	if len(bars) == 0 {
		return models.BarSeries{}, fmt.Errorf("binance: %s: no klines: %w", spec.Symbol, models.ErrDataUnavailable)
	}
	c.log.Debug("klines fetched",
		applogger.String("symbol", spec.Symbol.String()),
		applogger.String("timeframe", spec.Timeframe),
		applogger.Int("bars", len(bars)),
	)
	return models.NewBarSeries(bars)
}

func (c *Client) validateMarket(ctx context.Context, sym models.Symbol, market string) error {
	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/api/v3/exchangeInfo",
		QueryParams: map[string][]string{"symbol": {market}},
	}, &body)
	if err != nil {
		return c.mapError(sym, err)
	}

	found := false
	gjson.GetBytes(body, "symbols").ForEach(func(_, v gjson.Result) bool {
		if v.Get("symbol").String() == market {
			found = true
			return false
		}
		return true
	})
	if !found {
		return fmt.Errorf("binance: %s not listed: %w", sym, models.ErrInvalidSymbol)
	}
	return nil
}

func (c *Client) klines(ctx context.Context, sym models.Symbol, market, tf string, limit int, endTime int64) ([]models.Bar, error) {
	q := map[string][]string{
		"symbol":   {market},
		"interval": {tf},
		"limit":    {strconv.Itoa(limit)},
	}
	if endTime > 0 {
		q["endTime"] = []string{strconv.FormatInt(endTime, 10)}
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/api/v3/klines",
		QueryParams: q,
	}, &body)
	if err != nil {
		return nil, c.mapError(sym, err)
	}
	return parseKlines(body), nil
}

// parseKlines reads [openTime, "o", "h", "l", "c", "v", ...] rows.
func parseKlines(body []byte) []models.Bar {
	rows := gjson.ParseBytes(body).Array()
	out := make([]models.Bar, 0, len(rows))
	for _, row := range rows {
		f := row.Array()
		if len(f) < 6 {
			continue
		}
		out = append(out, models.Bar{
			Timestamp: time.UnixMilli(f[0].Int()).UTC(),
			Open:      f[1].Float(),
			High:      f[2].Float(),
			Low:       f[3].Float(),
			Close:     f[4].Float(),
			Volume:    f[5].Float(),
		})
	}
	return out
}

func (c *Client) mapError(sym models.Symbol, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch gjson.GetBytes(se.Body, "code").Int() {
		case codeInvalidSymbol, codeInvalidSymbol2:
			return fmt.Errorf("binance: %s: %s: %w", sym, gjson.GetBytes(se.Body, "msg").String(), models.ErrInvalidSymbol)
		}
	}
	return fmt.Errorf("binance: %s: %w", sym, err)
}
