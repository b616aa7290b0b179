package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestMemoryCache_RoundTripJSON(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	type bar struct {
		Close float64 `json:"close"`
	}
	require.NoError(t, mc.Set(ctx, "k", []bar{{1.5}, {2.5}}, time.Minute))

	var got []bar
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, []bar{{1.5}, {2.5}}, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	ok, _ := mc.Exists(ctx, "k")
	assert.True(t, ok)

	clock.t = clock.t.Add(2 * time.Minute)
	var s string
	assert.True(t, errors.Is(mc.Get(ctx, "k", &s), ErrCacheMiss))
	ok, _ = mc.Exists(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryMaxSize(2), WithMemoryClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Hour))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", "2", time.Hour))
	clock.t = clock.t.Add(time.Second)

	var s string
	require.NoError(t, mc.Get(ctx, "a", &s)) // a is now the most recent
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", "3", time.Hour))

	assert.Equal(t, 2, mc.Len())
	assert.True(t, errors.Is(mc.Get(ctx, "b", &s), ErrCacheMiss))
	require.NoError(t, mc.Get(ctx, "a", &s))
	assert.Equal(t, "1", s)
}

func TestLayeredCache_FillsL1FromL2(t *testing.T) {
	l2 := NewMemoryCache(WithMemoryCleanup(0))
	lc := NewLayeredCache(l2, time.Minute, WithMemoryCleanup(0))
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", map[string]int{"n": 3}, time.Hour))

	var got map[string]int
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, 3, got["n"])

	require.NoError(t, l2.Delete(ctx, "k"))
	got = nil
	require.NoError(t, lc.Get(ctx, "k", &got), "served from L1 after L2 delete")
	assert.Equal(t, 3, got["n"])

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.True(t, errors.Is(lc.Get(ctx, "k", &got), ErrCacheMiss))
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "bars:AAPL:1d", GenerateKeyWithParams("bars", "AAPL", "1d"))
	assert.Len(t, HashKey("anything"), 40)
}
