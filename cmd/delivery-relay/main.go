// Command delivery-relay drains a filesystem-backed delivery queue into an
// HTTP collector.
//
// It is meant for hosts that persist reports from a separate capture process
// and want draining, retry and capacity enforcement handled out of process.
// Configuration comes from the environment (optionally via a .env file).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crashkit/delivery"
	"github.com/crashkit/delivery/file"
	"github.com/crashkit/delivery/httptransport"
	"github.com/crashkit/delivery/prom"
)

type config struct {
	Endpoint       string        `env:"DELIVERY_ENDPOINT,required"`
	APIKey         string        `env:"DELIVERY_API_KEY"`
	DataDir        string        `env:"DELIVERY_DATA_DIR" envDefault:"delivery-queue"`
	Resources      []string      `env:"DELIVERY_RESOURCES" envDefault:"errors,sessions"`
	PollInterval   time.Duration `env:"DELIVERY_POLL_INTERVAL" envDefault:"30s"`
	AttemptTimeout time.Duration `env:"DELIVERY_ATTEMPT_TIMEOUT" envDefault:"30s"`
	MaxItems       int           `env:"DELIVERY_MAX_ITEMS" envDefault:"64"`
	MaxRetries     int           `env:"DELIVERY_MAX_RETRIES" envDefault:"0"`
	MetricsAddr    string        `env:"DELIVERY_METRICS_ADDR"`
	Debug          bool          `env:"DELIVERY_DEBUG"`
}

// slogLogger adapts *slog.Logger to delivery.Logger.
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("delivery-relay failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	resources := make([]delivery.ResourceType, 0, len(cfg.Resources))
	for _, name := range cfg.Resources {
		resource := delivery.ResourceType(name)
		if err := resource.Validate(); err != nil {
			return err
		}
		resources = append(resources, resource)
	}

	queueLogger := slogLogger{logger: logger}

	store, err := file.New(cfg.DataDir, file.WithLogger(queueLogger))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	opts := []httptransport.Option{}
	if cfg.APIKey != "" {
		opts = append(opts, httptransport.WithHeader("Authorization", "Bearer "+cfg.APIKey))
	}
	transport, err := httptransport.New(cfg.Endpoint, opts...)
	if err != nil {
		return fmt.Errorf("init transport: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := prom.New(registry)

	queue := delivery.New(
		store,
		transport,
		delivery.WithResources(resources...),
		delivery.WithMaxItems(cfg.MaxItems),
		delivery.WithMaxRetries(cfg.MaxRetries),
		delivery.WithPollInterval(cfg.PollInterval),
		delivery.WithAttemptTimeout(cfg.AttemptTimeout),
		delivery.WithPendingInterval(cfg.PollInterval),
		delivery.WithLogger(queueLogger),
		delivery.WithMetrics(metrics),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics listening", "addr", cfg.MetricsAddr)
	}

	logger.Info("draining delivery queue",
		"endpoint", cfg.Endpoint,
		"data_dir", cfg.DataDir,
		"resources", cfg.Resources,
		"poll_interval", cfg.PollInterval,
	)

	if err := queue.Run(ctx); err != nil {
		return fmt.Errorf("run queue: %w", err)
	}
	logger.Info("delivery-relay stopped")

	return nil
}
