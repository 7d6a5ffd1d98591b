package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/providex/internal/adapters/dataset"
	"github.com/okian/providex/internal/adapters/http/api"
	"github.com/okian/providex/internal/adapters/http/site"
	"github.com/okian/providex/internal/adapters/http/swagger"
	app "github.com/okian/providex/internal/app"
	"github.com/okian/providex/internal/config"
	"github.com/okian/providex/pkg/logger"
	"github.com/okian/providex/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "provider service exited", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return err
	}
	l := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(l.Named("service")),
		app.WithDatasetPath(cfg.DatasetPath,
			dataset.WithTable(cfg.DatasetTable),
			dataset.WithS3Region(cfg.S3Region),
			dataset.WithS3Endpoint(cfg.S3Endpoint),
		),
		app.WithMaxResultLimit(cfg.MaxResultLimit),
		app.WithMetricsInterval(cfg.MetricsInterval()),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, l.Named("http")),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// A listen failure cancels gctx, which stops the collector and the
	// shutdown watcher with it.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metrics.RunSystemCollector(gctx, cfg.MetricsInterval())
		return nil
	})
	g.Go(func() error {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
			return err
		}
		l.Info(shutdownCtx, "server stopped")
		return nil
	})

	return g.Wait()
}

// newHandler builds the full route table.
func newHandler(ctx context.Context, svc *app.Service, l logger.Logger) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, l).Register(ctx, mux)
	return mux
}
