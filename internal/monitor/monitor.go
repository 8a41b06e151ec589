package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/NoID1290/WeatherWatch/config"
	apperrors "github.com/NoID1290/WeatherWatch/internal/errors"
	"github.com/NoID1290/WeatherWatch/internal/feed"
	"github.com/NoID1290/WeatherWatch/internal/logger"
	"github.com/NoID1290/WeatherWatch/internal/metrics"
	"github.com/NoID1290/WeatherWatch/internal/models"
	"github.com/NoID1290/WeatherWatch/internal/registry"
)

// Fetcher retrieves one raw feed document
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Classifier maps one raw entry to an alert or nil
type Classifier interface {
	Classify(sourceID string, entry models.RawEntry, locale models.Locale) (*models.Alert, error)
}

// Reporter consumes one report per source per pass
type Reporter interface {
	Report(source models.FeedSource, rep models.SourceReport)
}

// Monitor drives the polling loop: one pass over every registered source,
// a cancellable wait of RefreshInterval, then the next pass. The first
// pass fires immediately on start.
type Monitor struct {
	sources    []models.FeedSource
	fetcher    Fetcher
	classifier Classifier
	reporter   Reporter
	parse      func([]byte) ([]models.RawEntry, error)
	cfg        config.MonitorConfig
	clock      clockwork.Clock
	limiter    *rate.Limiter
	sem        *semaphore.Weighted

	mu      sync.RWMutex
	running bool
	passes  int
}

// New creates a monitor over the given registry. An empty registry is a
// startup error: the loop must never begin with nothing to poll.
func New(reg *registry.Registry, fetcher Fetcher, classifier Classifier, reporter Reporter, cfg config.MonitorConfig) (*Monitor, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, apperrors.ErrNoSources
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	// Inter-request politeness: at most one fetch start per SourceDelay.
	limit := rate.Inf
	if cfg.SourceDelay > 0 {
		limit = rate.Every(cfg.SourceDelay)
	}

	m := &Monitor{
		sources:    reg.Sources(),
		fetcher:    fetcher,
		classifier: classifier,
		reporter:   reporter,
		parse:      feed.ParseFeed,
		cfg:        cfg,
		clock:      clockwork.NewRealClock(),
		limiter:    rate.NewLimiter(limit, 1),
		sem:        semaphore.NewWeighted(int64(workers)),
	}

	logger.Info("Monitor initialized",
		"sources", len(m.sources),
		"refresh_interval", cfg.RefreshInterval,
		"source_delay", cfg.SourceDelay,
		"workers", workers,
	)

	return m, nil
}

// SetClock replaces the wall clock, for tests
func (m *Monitor) SetClock(clock clockwork.Clock) {
	m.clock = clock
}

// Run polls until ctx is cancelled. The loop never terminates on its own;
// per-source failures are reported and retried on the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	m.running = true
	m.mu.Unlock()

	metrics.SetMonitorRunning(true)
	metrics.SetSourcesConfigured(len(m.sources))

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		metrics.SetMonitorRunning(false)
	}()

	logger.Info("Starting monitor")

	for {
		m.runPass(ctx)

		select {
		case <-ctx.Done():
			logger.Info("Monitor stopping")
			return ctx.Err()
		case <-m.clock.After(m.cfg.RefreshInterval):
		}
	}
}

// runPass executes one cycle over all sources. The result is owned by
// this pass: it is reported source by source and then discarded.
func (m *Monitor) runPass(ctx context.Context) models.CycleResult {
	start := m.clock.Now()
	result := models.CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: start.UTC(),
		PerSource: make(map[string]models.SourceReport, len(m.sources)),
	}

	var wg sync.WaitGroup
	var resultMu sync.Mutex

	for _, src := range m.sources {
		if ctx.Err() != nil {
			break
		}
		if err := m.limiter.Wait(ctx); err != nil {
			break
		}
		if err := m.sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(src models.FeedSource) {
			defer wg.Done()
			defer m.sem.Release(1)

			rep := m.processSource(ctx, src)

			resultMu.Lock()
			result.PerSource[src.ID] = rep
			resultMu.Unlock()

			m.reporter.Report(src, rep)
		}(src)
	}

	wg.Wait()

	duration := m.clock.Since(start)
	metrics.RecordCycle(duration)

	m.mu.Lock()
	m.passes++
	m.mu.Unlock()

	logger.Debug("Pass completed",
		"cycle_id", result.CycleID,
		"sources", len(result.PerSource),
		"duration_ms", duration.Milliseconds(),
	)

	return result
}

// processSource runs fetch/parse/classify for one source. Every failure,
// recovered panics included, becomes that source's report; it never
// escapes to abort the pass.
func (m *Monitor) processSource(ctx context.Context, src models.FeedSource) (rep models.SourceReport) {
	rep = models.SourceReport{
		SourceID:  src.ID,
		CheckedAt: m.clock.Now().UTC(),
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Recovered panic while processing source", "source", src.ID, "panic", rec)
			rep.Err = fmt.Errorf("panic while processing %s: %v", src.ID, rec)
			rep.Alerts = nil
		}
	}()

	fetchStart := m.clock.Now()
	data, err := m.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		metrics.RecordFetch(src.ID, "error", m.clock.Since(fetchStart))
		rep.Err = apperrors.FetchError{Source: src.ID, URL: src.URL, Err: err}
		logger.Warn("Fetch failed", "source", src.ID, "error", err)
		return rep
	}
	metrics.RecordFetch(src.ID, "success", m.clock.Since(fetchStart))

	entries, err := m.parse(data)
	if err != nil {
		rep.Err = apperrors.ParseError{Source: src.ID, Err: err}
		logger.Warn("Parse failed", "source", src.ID, "error", err)
		return rep
	}

	alerts := make([]models.Alert, 0, len(entries))
	for _, entry := range entries {
		alert, err := m.classifier.Classify(src.ID, entry, src.Locale)
		if err != nil {
			// Anomalous entries are skipped, never cycle-fatal
			logger.Warn("Skipping entry", "source", src.ID, "error", err)
			continue
		}
		if alert == nil {
			continue
		}
		alerts = append(alerts, *alert)
		metrics.RecordAlert(src.ID, string(alert.Severity))
	}

	rep.Alerts = alerts
	return rep
}

// Ready reports whether at least one full pass has completed
func (m *Monitor) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passes > 0
}

// IsRunning returns whether the monitor loop is currently active
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
