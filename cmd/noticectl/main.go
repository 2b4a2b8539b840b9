// Command noticectl sends test notices to the error tracker using the same
// configuration and delivery path an application would.
//
// Usage:
//
//	noticectl [-config errnotice.yaml] [-message text] [-url id] [-burst N]
//	          [-metrics-addr :9090] [-log-format json|text]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"errnotice/internal/config"
	hhttp "errnotice/internal/handler/http"
	"errnotice/internal/handler/http/requestid"
	"errnotice/internal/infra/notifier"
	"errnotice/internal/infra/worker"
	"errnotice/internal/observability/logging"
	"errnotice/internal/observability/tracing"
	"errnotice/internal/usecase/notify"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

type options struct {
	configPath  string
	message     string
	url         string
	burst       int
	metricsAddr string
	linger      time.Duration
	logFormat   string
}

func main() {
	opts := parseFlags()
	envErr := godotenv.Load()
	logger := newLogger(opts.logFormat)
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("failed to load .env file", slog.Any("error", envErr))
	}

	if err := run(opts, logger); err != nil {
		logger.Error("noticectl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file (environment variables are used when empty)")
	flag.StringVar(&o.message, "message", "test notice from noticectl", "error message to report")
	flag.StringVar(&o.url, "url", "noticectl://test", "request URL or identifier attached to the notice")
	flag.IntVar(&o.burst, "burst", 1, "number of notices to send concurrently")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address while running")
	flag.DurationVar(&o.linger, "linger", 0, "keep the ops server up this long after sending")
	flag.StringVar(&o.logFormat, "log-format", "json", "log output: json (stdout) or text (stderr)")
	flag.Parse()
	return o
}

func newLogger(format string) *slog.Logger {
	if format == "text" {
		return logging.NewTextLogger()
	}
	return logging.NewLogger()
}

func run(opts options, logger *slog.Logger) error {
	cfg, err := config.Load(opts.configPath,
		config.WithLogger(logger),
		config.WithMetrics(config.NewClientMetrics()))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	poolMetrics := worker.NewPoolMetrics()
	poolConfig, err := worker.LoadConfigFromEnv(logger, poolMetrics)
	if err != nil {
		return fmt.Errorf("load pool config: %w", err)
	}
	pool := worker.NewPool(*poolConfig, logger, worker.WithMetrics(poolMetrics))

	var deliverer notify.Deliverer = notifier.NewNoOpDeliverer()
	if cfg.Enabled() {
		deliverer = notifier.NewAPIClient(notifier.APIConfig{
			Endpoint:          cfg.Endpoint(),
			APIKey:            cfg.APIKey(),
			RequestsPerSecond: cfg.RatePerSec,
			Burst:             cfg.RateBurst,
		})
	} else {
		logger.Info("Notice delivery disabled, using no-op deliverer")
	}

	svcOpts := []notify.Option{
		notify.WithLogger(logger),
		notify.WithFlattenMode(cfg.FlattenMode()),
	}
	if cfg.Language != "" {
		svcOpts = append(svcOpts, notify.WithLanguage(cfg.Language))
	}
	svc := notify.New(cfg, pool, deliverer, svcOpts...)
	logger.Info("Notice service initialized",
		slog.Any("notifier", svc.Identity()),
		slog.String("endpoint", cfg.Endpoint()),
		slog.Int("max_concurrent", poolConfig.MaxConcurrent))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *http.Server
	if opts.metricsAddr != "" {
		server = startOpsServer(opts.metricsAddr, logger, svc, cfg.Version())
	}

	if err := sendBurst(ctx, svc, opts); err != nil {
		return err
	}

	if opts.linger > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(opts.linger):
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops server shutdown failed", slog.Any("error", err))
		}
	}
	return svc.Shutdown(shutdownCtx)
}

// sendBurst reports opts.burst notices concurrently. Each carries its own
// stack so the tracker receives distinct backtraces.
func sendBurst(ctx context.Context, svc *notify.Service, opts options) error {
	n := max(opts.burst, 1)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := pkgerrors.Wrap(pkgerrors.New(opts.message), fmt.Sprintf("noticectl notice %d/%d", i+1, n))
			svc.Notify(gctx, opts.url, err)
			return nil
		})
	}
	return g.Wait()
}

// startOpsServer serves Prometheus metrics and delivery health.
func startOpsServer(addr string, logger *slog.Logger, svc *notify.Service, version string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /health", &hhttp.HealthHandler{Source: svc, Version: version})

	handler := hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		hhttp.Recover(svc),
	)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", slog.Any("error", err))
		}
	}()
	logger.Info("ops server started", slog.String("addr", addr))
	return server
}
