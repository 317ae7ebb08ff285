// Command itemcored serves the item tracking API.
package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"itemcore/internal/adapters/export"
	"itemcore/internal/adapters/httpapi"
	"itemcore/internal/blob"
	"itemcore/internal/core"
	"itemcore/pkg/domain"
)

type config struct {
	Addr      string
	LogJSON   bool
	StoreWait time.Duration
	TracePath string
}

func loadConfig() config {
	cfg := config{
		Addr:      ":58950",
		LogJSON:   strings.EqualFold(os.Getenv("ITEMCORE_LOG_JSON"), "true"),
		StoreWait: 30 * time.Second,
		TracePath: os.Getenv("ITEMCORE_TRACE_PATH"),
	}
	if addr := os.Getenv("ITEMCORE_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if wait := os.Getenv("ITEMCORE_STORE_WAIT"); wait != "" {
		if d, err := time.ParseDuration(wait); err == nil && d > 0 {
			cfg.StoreWait = d
		}
	}
	return cfg
}

func newLogger(jsonOutput bool) (*zap.SugaredLogger, error) {
	if jsonOutput {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		return logger.Sugar(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// openStoreWithRetry keeps probing the storage backend until it answers or
// the wait budget runs out. The last error is returned, never panicked.
func openStoreWithRetry(ctx context.Context, open func() (domain.ItemStore, error), wait time.Duration, logger core.Logger) (domain.ItemStore, error) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for attempt := 1; ; attempt++ {
		store, err := open()
		if err == nil {
			return store, nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("storage unavailable after %s: %w", wait, lastErr)
		}
		logger.Warnw("storage not ready, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func run(ctx context.Context, cfg config, logger *zap.SugaredLogger) error {
	store, err := openStoreWithRetry(ctx, core.OpenItemStore, cfg.StoreWait, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	promRecorder := core.NewPrometheusMetricsRecorder(registry)
	expvarRecorder := core.NewExpvarMetricsRecorder("item_service_metrics")
	audit := core.NewMemoryAuditLog(0)

	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithMetricsRecorder(core.MultiMetricsRecorder(promRecorder, expvarRecorder)),
		core.WithAuditRecorder(audit),
	}
	if cfg.TracePath != "" {
		traceFile, err := os.OpenFile(cfg.TracePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = traceFile.Close() }()
		opts = append(opts, core.WithTracer(core.NewJSONTracer(traceFile)))
	}
	service := core.NewService(store, opts...)

	blobStore, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	worker := export.NewWorker(service, blobStore, audit)
	worker.Start()

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.NewHandler(service, worker, logger))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("itemcored listening", "addr", cfg.Addr, "storage", os.Getenv("ITEMCORE_STORAGE_DRIVER"), "blob", blobStore.Driver())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Infow("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("server shutdown", "error", err)
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		logger.Warnw("export worker shutdown", "error", err)
	}
	return nil
}

func main() {
	cfg := loadConfig()
	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Errorw("itemcored exited", "error", err)
		os.Exit(1)
	}
}
