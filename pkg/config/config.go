package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"5m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RunRateLimit    float64       `yaml:"run_rate_limit" default:"2" validate:"gte=0"` // run-now triggers per client per minute, 0 disables
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logger"`
	Pipeline Pipeline `yaml:"pipeline"`
	Yahoo    struct {
		BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; AlgoReport/1.0)"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"yahoo"`
	Exchange struct {
		ID        string        `yaml:"id" default:"binance" validate:"oneof=binance"`
		BaseURL   string        `yaml:"base_url" default:"https://api.binance.com" validate:"required,url"`
		Timeframe string        `yaml:"timeframe" default:"1h" validate:"required"`
		Limit     int           `yaml:"limit" default:"5000" validate:"gte=1,lte=20000"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"exchange"`
	Reports struct {
		Dir         string `yaml:"dir" default:"/var/data/reports" validate:"required"`
		UploadToken string `yaml:"upload_token"`
	} `yaml:"reports"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl" default:"5m"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"algoreport"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"algoreport.signals"`
		LogsTopic    string        `yaml:"logs_topic" default:"algoreport.logs"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=none gzip snappy lz4 zstd"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"algoreport"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
}

// Pipeline is the read-only configuration handed to the resolver, dispatcher and fetchers.
type Pipeline struct {
	DefaultInterval  string            `yaml:"default_interval" default:"1h" validate:"required"`
	DefaultStart     string            `yaml:"default_start" validate:"omitempty,datetime=2006-01-02"`
	DefaultEnd       string            `yaml:"default_end" validate:"omitempty,datetime=2006-01-02"`
	DefaultPeriod    string            `yaml:"default_period" default:"max" validate:"required"`
	FallbackInterval string            `yaml:"fallback_interval" default:"1d" validate:"required"`
	FallbackPeriod   string            `yaml:"fallback_period" default:"1y" validate:"required"`
	FetchTimeout     time.Duration     `yaml:"fetch_timeout" default:"30s"`
	ChartBars        int               `yaml:"chart_bars" default:"200" validate:"gte=2"`
	Aliases          map[string]string `yaml:"aliases"`
	IntradayPeriods  map[string]string `yaml:"intraday_periods"`
}

// DefaultAliases maps shorthand tokens to equity-provider tickers.
func DefaultAliases() map[string]string {
	return map[string]string{"BTC": "BTC-USD"}
}

// DefaultIntradayPeriods is the recommended lookback per intraday interval.
func DefaultIntradayPeriods() map[string]string {
	return map[string]string{
		"1m":  "7d",
		"2m":  "7d",
		"5m":  "30d",
		"15m": "60d",
		"30m": "60d",
		"60m": "730d",
		"90m": "730d",
		"1h":  "730d",
	}
}

// Default returns a configuration with every default applied and no file involved.
func Default() *Config {
	var c Config
	_ = c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Pipeline.Aliases) == 0 {
		c.Pipeline.Aliases = DefaultAliases()
	}
	if len(c.Pipeline.IntradayPeriods) == 0 {
		c.Pipeline.IntradayPeriods = DefaultIntradayPeriods()
	}
	return nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads an optional .env file, the YAML config, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var (
		c   *Config
		err error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		c, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		c = Default()
	}

	if v := os.Getenv("REPORTS_DIR"); v != "" {
		c.Reports.Dir = v
	}
	if v := os.Getenv("UPLOAD_TOKEN"); v != "" {
		c.Reports.UploadToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DEFAULT_INTERVAL"); v != "" {
		c.Pipeline.DefaultInterval = v
	}
	if v := os.Getenv("EXCHANGE_ID"); v != "" {
		c.Exchange.ID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Cache.Redis.Port = p
			}
		}
		c.Cache.Enabled = true
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, ok := c.Pipeline.IntradayPeriods[strings.ToLower(c.Pipeline.DefaultInterval)]; !ok && isIntradayName(c.Pipeline.DefaultInterval) {
		return fmt.Errorf("pipeline.intraday_periods has no entry for default interval %q", c.Pipeline.DefaultInterval)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Cache.Redis.Enabled && !c.Cache.Enabled {
		return fmt.Errorf("cache.redis.enabled requires cache.enabled")
	}
	return nil
}

func isIntradayName(interval string) bool {
	s := strings.ToLower(interval)
	return strings.HasSuffix(s, "m") || strings.HasSuffix(s, "h")
}
