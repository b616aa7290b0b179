package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestAllow_BurstThenRefill(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	l := PerMinute(2, WithClock(clk.Now))

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have separate buckets")

	clk.Advance(29 * time.Second)
	assert.False(t, l.Allow("a"))
	clk.Advance(2 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestPrune_DropsFullBuckets(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	l := PerMinute(2, WithClock(clk.Now))
	l.Allow("a")
	l.Allow("b")
	l.Allow("b")

	clk.Advance(30 * time.Second)
	assert.Equal(t, 1, l.Prune())
	clk.Advance(time.Minute)
	assert.Equal(t, 1, l.Prune())
}

func TestMiddleware_Returns429(t *testing.T) {
	e := echo.New()
	l := PerMinute(1)
	e.POST("/run-now", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/run-now", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}
