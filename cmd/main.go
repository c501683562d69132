package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sportlink/swipedeck/internal/adapters/backend"
	"github.com/sportlink/swipedeck/internal/adapters/http/api"
	"github.com/sportlink/swipedeck/internal/adapters/http/swagger"
	engine "github.com/sportlink/swipedeck/internal/app"
	"github.com/sportlink/swipedeck/internal/config"
	"github.com/sportlink/swipedeck/pkg/logger"
	"github.com/sportlink/swipedeck/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	engineMetricsInterval     = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Backend client for the matching service.
	client := backend.NewClient(cfg.BackendBaseURL,
		backend.WithTimeout(time.Duration(cfg.BackendTimeoutMS)*time.Millisecond),
		backend.WithAuthToken(cfg.AuthToken),
		backend.WithRetryAttempts(uint(cfg.RetryAttempts)),
		backend.WithRetryDelay(time.Duration(cfg.RetryDelayMS)*time.Millisecond),
		backend.WithMatchesCacheTTL(time.Duration(cfg.MatchesCacheTTLMS)*time.Millisecond),
		backend.WithBreakerThreshold(uint32(cfg.BreakerThreshold)),
		backend.WithBreakerTimeout(time.Duration(cfg.BreakerTimeoutMS)*time.Millisecond),
		backend.WithLogger(loggerInstance),
	)

	// Create and start the engine with configuration options
	eng := engine.New(
		engine.WithBackend(client),
		engine.WithLogger(loggerInstance),
		engine.WithWorkerCount(cfg.WorkerCount),
		engine.WithQueueSize(cfg.QueueSize),
		engine.WithFetchLimit(cfg.FetchLimit),
		engine.WithLowWater(cfg.LowWater),
		engine.WithSeenSize(cfg.SeenCacheSize),
		engine.WithCommitThreshold(cfg.CommitThresholdPX),
		engine.WithBannerDuration(time.Duration(cfg.BannerMS)*time.Millisecond),
		engine.WithModalDelay(time.Duration(cfg.ModalDelayMS)*time.Millisecond),
	)
	if err := eng.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		return
	}
	defer eng.Stop()

	// Load the opening deck and quota snapshot.
	eng.Prime(ctx)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start engine metrics updater
	go startEngineMetricsUpdater(ctx, eng)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register the facade routes with the engine dependency.
	apiServer := api.NewServer(eng, eng)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval) // Update every 10 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startEngineMetricsUpdater starts a background goroutine that updates engine metrics.
func startEngineMetricsUpdater(ctx context.Context, eng *engine.Engine) {
	ticker := time.NewTicker(engineMetricsInterval) // Update every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateEngineMetrics(eng)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateEngineMetrics updates engine-level metrics.
func updateEngineMetrics(eng *engine.Engine) {
	// Get current stats from the engine
	stats := eng.GetStats()

	// GetStats already refreshes deck and queue gauges; the remaining
	// gauges are updated here
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}

	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
