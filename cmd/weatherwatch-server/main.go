package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NoID1290/WeatherWatch/config"
	"github.com/NoID1290/WeatherWatch/internal/api"
	"github.com/NoID1290/WeatherWatch/internal/classifier"
	"github.com/NoID1290/WeatherWatch/internal/feed"
	"github.com/NoID1290/WeatherWatch/internal/forecast"
	"github.com/NoID1290/WeatherWatch/internal/logger"
	"github.com/NoID1290/WeatherWatch/internal/metrics"
	middlewares "github.com/NoID1290/WeatherWatch/internal/middleware"
	"github.com/NoID1290/WeatherWatch/internal/monitor"
	"github.com/NoID1290/WeatherWatch/internal/registry"
	"github.com/NoID1290/WeatherWatch/internal/report"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting WeatherWatch server",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the feed registry
	reg, err := registry.Load(cfg.Sources.File)
	if err != nil {
		logger.Fatal("Failed to load feed registry", "error", err)
	}
	logger.Info("Feed registry loaded", "sources", reg.Len())

	// Wire the monitor components
	fetcher := feed.NewClient(cfg.Monitor.RequestTimeout)
	cls := classifier.New()
	collector := report.NewCollector()

	var console report.Reporter = report.NewConsoleReporter(os.Stdout, false)
	if cfg.Monitor.Dedup {
		console = report.NewDedupReporter(console)
	}
	reporter := report.MultiReporter{console, collector}

	mon, err := monitor.New(reg, fetcher, cls, reporter, cfg.Monitor)
	if err != nil {
		logger.Fatal("Failed to initialize monitor", "error", err)
	}

	// Start monitor in background
	go func() {
		if err := mon.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("Monitor error", "error", err)
		}
	}()

	// Forecast client, optionally backed by Redis
	fc, err := newForecastQuerier(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize forecast client", "error", err)
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	// Initialize API handlers
	apiHandler := api.NewHandler(collector, fc, mon.Ready, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// newForecastQuerier builds the forecast client, wrapping it in a Redis cache
// when REDIS_URL is configured.
func newForecastQuerier(cfg *config.Config) (forecast.Querier, error) {
	client, err := forecast.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.LocationsJSON, cfg.Monitor.RequestTimeout)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.URL == "" {
		return client, nil
	}
	rdb, err := forecast.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Redis unavailable, forecast caching disabled", "error", err)
		return client, nil
	}
	logger.Info("Forecast caching enabled")
	return forecast.NewCachedClient(client, rdb, cfg.Forecast.CacheTTL), nil
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
