package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"AlgoReport/internal/domain/repository"
	"AlgoReport/internal/handler/api"
	internalrepo "AlgoReport/internal/repository"
	"AlgoReport/internal/service/binance"
	"AlgoReport/internal/service/notify"
	"AlgoReport/internal/service/ratelimit"
	"AlgoReport/internal/service/report"
	"AlgoReport/internal/service/yahoo"
	"AlgoReport/internal/services/signals"
	"AlgoReport/internal/usecase"
	"AlgoReport/pkg/cache"
	pkgch "AlgoReport/pkg/clickhouse"
	"AlgoReport/pkg/config"
	xhttp "AlgoReport/pkg/http"
	pkgkafka "AlgoReport/pkg/kafka"
	applogger "AlgoReport/pkg/logger"
	"AlgoReport/pkg/metrics"
	"AlgoReport/pkg/server"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PipelineSet builds everything a report run needs, without the HTTP surface.
var PipelineSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideCache,
	ProvideYahooClient,
	ProvideBinanceClient,
	ProvideBarProvider,
	ProvideResolver,
	ProvideDispatcher,
	ProvideEngine,
	ProvideHub,
	ProvideOrchestrator,
	ProvideRenderer,
	ProvideClickHouseClient,
	ProvideSignalStore,
	ProvideKafkaProducer,
	ProvideRunPublisher,
	ProvideReportRunner,
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideCache returns the bar cache, or nil when caching is off.
// Redis is fronted by an in-process layer; without Redis the memory cache serves alone.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	var svc cache.Service
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = cache.NewLayeredCache(rc, cfg.Cache.TTL)
		l.Info("bar cache enabled",
			applogger.String("backend", "redis"),
			applogger.String("addr", fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port)))
	} else {
		svc = cache.NewMemoryCache()
		l.Info("bar cache enabled", applogger.String("backend", "memory"))
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}
	return svc, cleanup, nil
}

// ProvideYahooClient creates the equity data source.
func ProvideYahooClient(cfg *config.Config, l *applogger.Logger) *yahoo.Client {
	hc := xhttp.NewClient(
		xhttp.WithUserAgent(cfg.Yahoo.UserAgent),
		xhttp.WithTimeout(cfg.Yahoo.Timeout),
	)
	return yahoo.NewClient(cfg.Yahoo.BaseURL, hc,
		yahoo.WithFallback(cfg.Pipeline.FallbackInterval, cfg.Pipeline.FallbackPeriod),
		yahoo.WithLogger(l),
	)
}

// ProvideBinanceClient creates the crypto exchange data source.
func ProvideBinanceClient(cfg *config.Config, l *applogger.Logger) *binance.Client {
	hc := xhttp.NewClient(xhttp.WithTimeout(cfg.Exchange.Timeout))
	return binance.NewClient(cfg.Exchange.BaseURL, hc, binance.WithLogger(l))
}

// ProvideBarProvider routes specs to their source and optionally caches the result.
func ProvideBarProvider(
	cfg *config.Config,
	eq *yahoo.Client,
	cx *binance.Client,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) repository.BarProvider {
	router := usecase.NewSourceRouter(eq, cx, m)
	if c == nil {
		return router
	}
	return internalrepo.NewCachedProvider(router, c, cfg.Cache.TTL, l)
}

func ProvideResolver(cfg *config.Config) *usecase.Resolver {
	return usecase.NewResolver(cfg.Pipeline)
}

func ProvideDispatcher(cfg *config.Config) *usecase.Dispatcher {
	return usecase.NewDispatcher(cfg)
}

func ProvideEngine() *signals.Engine {
	return signals.NewEngine(signals.DefaultPolicy())
}

// ProvideHub creates the progress broadcaster.
func ProvideHub(l *applogger.Logger) (*notify.Hub, func()) {
	h := notify.NewHub(notify.WithLogger(l))
	return h, h.Close
}

// ProvideOrchestrator creates the per-run pipeline driver.
func ProvideOrchestrator(
	cfg *config.Config,
	d *usecase.Dispatcher,
	p repository.BarProvider,
	e *signals.Engine,
	h *notify.Hub,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(d, p, e, cfg.Pipeline,
		usecase.WithNotifier(h),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

// ProvideRenderer creates the report writer rooted at the reports directory.
func ProvideRenderer(cfg *config.Config, l *applogger.Logger) (*report.Renderer, error) {
	r, err := report.NewRenderer(cfg.Reports.Dir, report.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("report renderer: %w", err)
	}
	return r, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	l.Info("clickhouse connected",
		applogger.String("host", cfg.ClickHouse.Host),
		applogger.String("database", cfg.ClickHouse.Database))

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideSignalStore creates the signal history table, or nil without ClickHouse.
func ProvideSignalStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.SignalStore, error) {
	if ch == nil {
		return nil, nil
	}

	store := internalrepo.NewCHSignalStore(ch, cfg.ClickHouse.Database)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
// Aggregated error logs are shipped through the same producer.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	if cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      producer,
		})
	}
	l.Info("kafka producer ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic))

	cleanup := func() {
		l.RemoveCollector()
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return producer, cleanup, nil
}

// ProvideRunPublisher creates the per-run signal publisher, or nil without Kafka.
func ProvideRunPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.RunPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic)
}

// ProvideReportRunner creates the guarded run entry point shared by HTTP and the CLI.
func ProvideReportRunner(
	res *usecase.Resolver,
	orch *usecase.Orchestrator,
	r *report.Renderer,
	store repository.SignalStore,
	pub repository.RunPublisher,
	h *notify.Hub,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ReportRunner {
	return usecase.NewReportRunner(res, orch, r,
		usecase.WithSignalStore(store),
		usecase.WithPublisher(pub),
		usecase.WithRunNotifier(h),
		usecase.WithRunMetrics(m),
		usecase.WithRunLogger(l),
	)
}

// ProvideRunLimiter creates the /run-now limiter, or nil when the limit is 0.
func ProvideRunLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.Server.RunRateLimit <= 0 {
		return nil
	}
	return ratelimit.PerMinute(cfg.Server.RunRateLimit)
}

// ProvideReportsHandler creates the HTTP handler with its health checks.
func ProvideReportsHandler(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.ReportRunner,
	r *report.Renderer,
	h *notify.Hub,
	limiter *ratelimit.Limiter,
	store repository.SignalStore,
	c cache.Service,
) *api.ReportsHandler {
	opts := []api.Option{
		api.WithUploadToken(cfg.Reports.UploadToken),
		api.WithProgress(h),
		api.WithHealthCheck("reports_dir", func(context.Context) error {
			_, err := os.Stat(r.Dir())
			return err
		}),
	}
	if limiter != nil {
		opts = append(opts, api.WithRunLimit(limiter.Middleware()))
	}
	if store != nil {
		opts = append(opts, api.WithHealthCheck("clickhouse", store.Health))
	}
	if c != nil {
		opts = append(opts, api.WithHealthCheck("cache", func(ctx context.Context) error {
			_, err := c.Exists(ctx, "healthz")
			return err
		}))
	}
	return api.NewReportsHandler(l, runner, r, opts...)
}

// ProvideHTTPServer creates the Echo server with the metrics endpoint.
func ProvideHTTPServer(cfg *config.Config, h *api.ReportsHandler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(path, reg, reg),
	)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, limiter *ratelimit.Limiter) *server.App {
	opts := []server.Option{}
	if limiter != nil {
		opts = append(opts, server.WithJanitor("run_limiter", time.Minute, func() { limiter.Prune() }))
	}
	return server.New(cfg, l, srv, opts...)
}
