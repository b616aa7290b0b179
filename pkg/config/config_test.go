package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "1h", c.Pipeline.DefaultInterval)
	assert.Equal(t, "max", c.Pipeline.DefaultPeriod)
	assert.Equal(t, "1d", c.Pipeline.FallbackInterval)
	assert.Equal(t, "1y", c.Pipeline.FallbackPeriod)
	assert.Equal(t, 200, c.Pipeline.ChartBars)
	assert.Equal(t, 30*time.Second, c.Pipeline.FetchTimeout)
	assert.Equal(t, "BTC-USD", c.Pipeline.Aliases["BTC"])
	assert.Equal(t, "730d", c.Pipeline.IntradayPeriods["90m"])
	assert.Equal(t, "binance", c.Exchange.ID)
	assert.Equal(t, 5000, c.Exchange.Limit)
	assert.Equal(t, 8080, c.Server.Port)
	require.NoError(t, c.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
pipeline:
  default_interval: 1d
  chart_bars: 120
reports:
  dir: /tmp/reports
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, "1d", c.Pipeline.DefaultInterval)
	assert.Equal(t, 120, c.Pipeline.ChartBars)
	assert.Equal(t, "/tmp/reports", c.Reports.Dir)
	assert.Equal(t, "https://query1.finance.yahoo.com", c.Yahoo.BaseURL)
	assert.Equal(t, "BTC-USD", c.Pipeline.Aliases["BTC"])
}

func TestLoad_CustomAliasesReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  aliases:
    ETH: ETH-USD
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETH-USD", c.Pipeline.Aliases["ETH"])
	_, ok := c.Pipeline.Aliases["BTC"]
	assert.False(t, ok)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown exchange", "exchange:\n  id: kraken\n"},
		{"bad log level", "logger:\n  level: loud\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
		{"redis without cache", "cache:\n  redis:\n    enabled: true\n"},
		{"bad default start", "pipeline:\n  default_start: 2024/01/01\n"},
		{"intraday without lookback", "pipeline:\n  default_interval: 4h\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	path := writeConfig(t, "reports:\n  dir: /from/file\n")

	t.Setenv("REPORTS_DIR", "/from/env")
	t.Setenv("UPLOAD_TOKEN", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", c.Reports.Dir)
	assert.Equal(t, "secret", c.Reports.UploadToken)
	assert.Equal(t, 9090, c.Server.Port)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, "redis", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
}

func TestLoadWithEnv_NoFileUsesDefaults(t *testing.T) {
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "1h", c.Pipeline.DefaultInterval)
}
