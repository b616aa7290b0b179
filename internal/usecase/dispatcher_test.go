package usecase

import (
	"testing"
	"time"

	"AlgoReport/internal/domain/models"
	"AlgoReport/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Classify(t *testing.T) {
	d := NewDispatcher(config.Default())
	assert.Equal(t, models.SourceCryptoPair, d.Classify("BTC/USDT"))
	assert.Equal(t, models.SourceEquity, d.Classify("AAPL"))
	assert.Equal(t, models.SourceEquity, d.Classify("BTC-USD"))
}

func TestDispatcher_IntradayUsesLookbackTable(t *testing.T) {
	d := NewDispatcher(config.Default())
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := map[string]string{"1m": "7d", "5m": "30d", "15m": "60d", "60m": "730d", "1H": "730d", "90m": "730d"}
	for interval, period := range tests {
		spec, err := d.BuildFetchSpec("AAPL", models.RunParams{Interval: interval, Start: start, End: start.AddDate(1, 0, 0)})
		require.NoError(t, err)
		assert.Equal(t, period, spec.Period, interval)
		assert.False(t, spec.HasRange(), "intraday discards start/end")
	}
}

func TestDispatcher_DailyUsesRangeOrDefaultPeriod(t *testing.T) {
	d := NewDispatcher(config.Default())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	spec, err := d.BuildFetchSpec("SPY", models.RunParams{Interval: "1d", Start: start, End: end})
	require.NoError(t, err)
	assert.True(t, spec.Start.Equal(start))
	assert.True(t, spec.End.Equal(end))
	assert.Empty(t, spec.Period)

	spec, err = d.BuildFetchSpec("SPY", models.RunParams{Interval: "1wk"})
	require.NoError(t, err)
	assert.Equal(t, "max", spec.Period)
	assert.Equal(t, "1wk", spec.Interval)
}

func TestDispatcher_DefaultsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.DefaultInterval = "1d"
	cfg.Pipeline.DefaultStart = "2023-01-01"
	d := NewDispatcher(cfg)

	spec, err := d.BuildFetchSpec("MSFT", models.RunParams{})
	require.NoError(t, err)
	assert.Equal(t, "1d", spec.Interval)
	assert.Equal(t, 2023, spec.Start.Year())
	assert.True(t, spec.End.IsZero())
}

func TestDispatcher_CryptoIgnoresRunParams(t *testing.T) {
	d := NewDispatcher(config.Default())

	spec, err := d.BuildFetchSpec("ETH/USDT", models.RunParams{Interval: "1m", Start: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, models.SourceCryptoPair, spec.Kind)
	assert.Equal(t, "binance", spec.Exchange)
	assert.Equal(t, "1h", spec.Timeframe)
	assert.Equal(t, 5000, spec.Limit)
	assert.Equal(t, "ETH", spec.Base)
	assert.Equal(t, "USDT", spec.Quote)
	assert.Empty(t, spec.Interval)
	assert.False(t, spec.HasRange())
}
