package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"AlgoReport/pkg/config"
	xhttp "AlgoReport/pkg/http"
	applogger "AlgoReport/pkg/logger"
)

// Option configures App.
type Option func(*App)

// janitor is a periodic housekeeping task that lives as long as the app.
type janitor struct {
	name  string
	every time.Duration
	fn    func()
}

// WithJanitor runs fn every interval until shutdown.
func WithJanitor(name string, every time.Duration, fn func()) Option {
	return func(a *App) {
		if every > 0 && fn != nil {
			a.janitors = append(a.janitors, janitor{name: name, every: every, fn: fn})
		}
	}
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	janitors   []janitor
	wg         sync.WaitGroup
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, srv *xhttp.Server, opts ...Option) *App {
	if log == nil {
		log = applogger.Nop()
	}
	a := &App{cfg: cfg, log: log, httpServer: srv}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("algoreport started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("reports_dir", a.cfg.Reports.Dir))

	jctx, cancel := context.WithCancel(ctx)
	for _, j := range a.janitors {
		a.wg.Add(1)
		go a.runJanitor(jctx, j)
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) runJanitor(ctx context.Context, j janitor) {
	defer a.wg.Done()
	t := time.NewTicker(j.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.fn()
		}
	}
}

// shutdown stops the HTTP server; infrastructure clients are closed by the injector cleanup.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	a.wg.Wait()

	a.log.Info("shutdown complete")
	return nil
}
