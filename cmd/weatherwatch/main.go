package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NoID1290/WeatherWatch/config"
	"github.com/NoID1290/WeatherWatch/internal/classifier"
	"github.com/NoID1290/WeatherWatch/internal/feed"
	"github.com/NoID1290/WeatherWatch/internal/logger"
	"github.com/NoID1290/WeatherWatch/internal/metrics"
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
	logger.Info("Starting WeatherWatch monitor",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	// Load the feed registry
	reg, err := registry.Load(cfg.Sources.File)
	if err != nil {
		logger.Fatal("Failed to load feed registry", "error", err)
	}
	logger.Info("Feed registry loaded", "sources", reg.Len())

	// Wire the monitor components
	fetcher := feed.NewClient(cfg.Monitor.RequestTimeout)
	cls := classifier.New()

	var reporter report.Reporter = report.NewConsoleReporter(os.Stdout, true)
	if cfg.Monitor.Dedup {
		reporter = report.NewDedupReporter(reporter)
	}

	mon, err := monitor.New(reg, fetcher, cls, reporter, cfg.Monitor)
	if err != nil {
		logger.Fatal("Failed to initialize monitor", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mon.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("Monitor error", "error", err)
	}

	logger.Info("Monitor exited")
}
