package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"AlgoReport/pkg/config"
	xhttp "AlgoReport/pkg/http"
	applogger "AlgoReport/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *xhttp.Server {
	reg := prometheus.NewRegistry()
	return xhttp.NewServer(nil, applogger.Nop(), xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithMetrics("", reg, reg))
}

func TestApp_RunContextStopsOnCancel(t *testing.T) {
	var ticks atomic.Int32
	app := New(config.Default(), applogger.Nop(), newTestServer(),
		WithJanitor("tick", 5*time.Millisecond, func() { ticks.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestWithJanitor_IgnoresInvalid(t *testing.T) {
	app := New(config.Default(), nil, newTestServer(),
		WithJanitor("never", 0, func() {}),
		WithJanitor("nil", time.Second, nil))
	assert.Empty(t, app.janitors)
}
