package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"AlgoReport/internal/domain/models"
	xhttp "AlgoReport/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hour = int64(time.Hour / time.Millisecond)

// fakeExchange serves `total` hourly klines ending at `last` and lists only BTCUSDT.
type fakeExchange struct {
	mu         sync.Mutex
	total      int
	last       int64
	klineCalls []string
}

func (f *fakeExchange) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/api/v3/exchangeInfo":
		if q.Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}
		_, _ = w.Write([]byte(`{"symbols":[{"symbol":"BTCUSDT","status":"TRADING"}]}`))
	case "/api/v3/klines":
		f.mu.Lock()
		f.klineCalls = append(f.klineCalls, r.URL.RawQuery)
		f.mu.Unlock()

		limit, _ := strconv.Atoi(q.Get("limit"))
		end := f.last
		if v := q.Get("endTime"); v != "" {
			end, _ = strconv.ParseInt(v, 10, 64)
		}
		first := f.last - int64(f.total-1)*hour
		var rows []string
		for ts := end - end%hour; ts >= first && len(rows) < limit; ts -= hour {
			if ts > f.last {
				continue
			}
			rows = append([]string{fmt.Sprintf(`[%d,"1.0","2.0","0.5","1.5","10.0",%d,"0",1,"0","0","0"]`, ts, ts+hour-1)}, rows...)
		}
		_, _ = w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFake(t *testing.T, total int) (*fakeExchange, *Client) {
	t.Helper()
	f := &fakeExchange{total: total, last: 1_700_000_000_000 - 1_700_000_000_000%hour}
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL, xhttp.NewClient(xhttp.WithTimeout(2*time.Second)))
}

func pairSpec(base, quote string, limit int) models.FetchSpec {
	return models.FetchSpec{
		Symbol:    models.Symbol(base + "/" + quote),
		Kind:      models.SourceCryptoPair,
		Exchange:  "binance",
		Timeframe: "1h",
		Limit:     limit,
		Base:      base,
		Quote:     quote,
	}
}

func TestFetch_PagesBackwardsUntilLimit(t *testing.T) {
	f, c := newFake(t, 5000)

	series, err := c.Fetch(context.Background(), pairSpec("BTC", "USDT", 2500))
	require.NoError(t, err)

	assert.Equal(t, 2500, series.Len())
	assert.Len(t, f.klineCalls, 3)
	assert.Contains(t, f.klineCalls[2], "limit=500")
	assert.Equal(t, f.last, series.Last().Timestamp.UnixMilli())
	assert.Equal(t, time.UTC, series.Last().Timestamp.Location())
	for i := 1; i < series.Len(); i++ {
		require.Equal(t, hour, series.At(i).Timestamp.UnixMilli()-series.At(i-1).Timestamp.UnixMilli())
	}
	assert.Equal(t, 1.5, series.Last().Close)
	assert.Equal(t, 10.0, series.Last().Volume)
}

func TestFetch_StopsWhenHistoryRunsOut(t *testing.T) {
	f, c := newFake(t, 1200)

	series, err := c.Fetch(context.Background(), pairSpec("BTC", "USDT", 5000))
	require.NoError(t, err)
	assert.Equal(t, 1200, series.Len())
	assert.Len(t, f.klineCalls, 2)
}

func TestFetch_UnknownPair(t *testing.T) {
	f, c := newFake(t, 10)

	_, err := c.Fetch(context.Background(), pairSpec("NOPE", "USDT", 100))
	assert.True(t, errors.Is(err, models.ErrInvalidSymbol))
	assert.Empty(t, f.klineCalls, "klines are not requested for unknown pairs")
}

func TestFetch_InvalidTimeframe(t *testing.T) {
	_, c := newFake(t, 10)
	spec := pairSpec("BTC", "USDT", 10)
	spec.Timeframe = "2m"

	_, err := c.Fetch(context.Background(), spec)
	assert.True(t, errors.Is(err, models.ErrInvalidInterval))
}

func TestFetch_NoKlines(t *testing.T) {
	_, c := newFake(t, 0)

	_, err := c.Fetch(context.Background(), pairSpec("BTC", "USDT", 10))
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestFetch_RejectsOtherExchanges(t *testing.T) {
	_, c := newFake(t, 10)
	spec := pairSpec("BTC", "USDT", 10)
	spec.Exchange = "kraken"

	_, err := c.Fetch(context.Background(), spec)
	assert.Error(t, err)
}

func TestMarketID(t *testing.T) {
	assert.Equal(t, "BTCUSDT", MarketID("btc", "usdt"))
	assert.Equal(t, "1INCHUSDT", MarketID("1INCH", "USDT"))
}
