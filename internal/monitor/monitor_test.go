package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/NoID1290/WeatherWatch/config"
	apperrors "github.com/NoID1290/WeatherWatch/internal/errors"
	"github.com/NoID1290/WeatherWatch/internal/models"
	"github.com/NoID1290/WeatherWatch/internal/registry"
)

const alertFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Heat warning in effect, Region</title>
    <summary type="html">Daytime highs near 35.</summary>
    <category term="Warnings and Watches"/>
  </entry>
</feed>`

// fakeFetcher serves canned bodies or errors per URL
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: make(map[string]string),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return []byte(f.bodies[url]), nil
}

// fakeClassifier turns every alert-category entry into a WARNING
type fakeClassifier struct {
	panicOn string
}

func (c *fakeClassifier) Classify(sourceID string, entry models.RawEntry, locale models.Locale) (*models.Alert, error) {
	if c.panicOn != "" && sourceID == c.panicOn {
		panic("classifier exploded")
	}
	if entry.CategoryTerm != "Warnings and Watches" {
		return nil, nil
	}
	return &models.Alert{SourceID: sourceID, Severity: models.SeverityWarning, Title: entry.Title}, nil
}

// countingReporter tallies reports per source
type countingReporter struct {
	mu      sync.Mutex
	reports map[string][]models.SourceReport
}

func newCountingReporter() *countingReporter {
	return &countingReporter{reports: make(map[string][]models.SourceReport)}
}

func (r *countingReporter) Report(source models.FeedSource, rep models.SourceReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[source.ID] = append(r.reports[source.ID], rep)
}

func (r *countingReporter) count(sourceID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports[sourceID])
}

func (r *countingReporter) last(sourceID string) models.SourceReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	reps := r.reports[sourceID]
	return reps[len(reps)-1]
}

func testRegistry(t *testing.T, sources string) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.json")
	if err := os.WriteFile(path, []byte(sources), 0o600); err != nil {
		t.Fatalf("write sources: %v", err)
	}
	reg, err := registry.Load(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func testConfig() config.MonitorConfig {
	return config.MonitorConfig{
		RefreshInterval: 10 * time.Minute,
		SourceDelay:     0,
		Workers:         1,
		RequestTimeout:  time.Second,
	}
}

const twoSources = `[
	{"id": "a", "display_name": "Alpha", "url": "http://feeds/a", "locale": "en"},
	{"id": "b", "display_name": "Beta", "url": "http://feeds/b", "locale": "en"}
]`

func TestNew_EmptyRegistry(t *testing.T) {
	if _, err := New(nil, newFakeFetcher(), &fakeClassifier{}, newCountingReporter(), testConfig()); !errors.Is(err, apperrors.ErrNoSources) {
		t.Errorf("Expected ErrNoSources, got %v", err)
	}
}

func TestRunPass_FailureIsolation(t *testing.T) {
	reg := testRegistry(t, twoSources)

	fetcher := newFakeFetcher()
	fetcher.errs["http://feeds/a"] = errors.New("dial tcp: connection refused")
	fetcher.bodies["http://feeds/b"] = alertFeed

	reporter := newCountingReporter()
	m, err := New(reg, fetcher, &fakeClassifier{}, reporter, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := m.runPass(context.Background())

	// A failed with a FetchError; B was still processed in the same pass
	repA, ok := result.PerSource["a"]
	if !ok {
		t.Fatal("Expected a report for source a")
	}
	var fetchErr apperrors.FetchError
	if !errors.As(repA.Err, &fetchErr) {
		t.Errorf("Expected FetchError for a, got %v", repA.Err)
	}

	repB, ok := result.PerSource["b"]
	if !ok {
		t.Fatal("Expected a report for source b")
	}
	if repB.Err != nil {
		t.Errorf("Expected no error for b, got %v", repB.Err)
	}
	if len(repB.Alerts) != 1 {
		t.Errorf("Expected 1 alert for b, got %d", len(repB.Alerts))
	}

	if reporter.count("a") != 1 || reporter.count("b") != 1 {
		t.Errorf("Expected exactly one report per source, got a=%d b=%d", reporter.count("a"), reporter.count("b"))
	}
}

func TestRunPass_ParseErrorIsolation(t *testing.T) {
	reg := testRegistry(t, twoSources)

	fetcher := newFakeFetcher()
	fetcher.bodies["http://feeds/a"] = `not xml at all`
	fetcher.bodies["http://feeds/b"] = alertFeed

	reporter := newCountingReporter()
	m, err := New(reg, fetcher, &fakeClassifier{}, reporter, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := m.runPass(context.Background())

	var parseErr apperrors.ParseError
	if !errors.As(result.PerSource["a"].Err, &parseErr) {
		t.Errorf("Expected ParseError for a, got %v", result.PerSource["a"].Err)
	}
	if len(result.PerSource["b"].Alerts) != 1 {
		t.Errorf("Expected b unaffected, got %+v", result.PerSource["b"])
	}
}

func TestRunPass_PanicIsolation(t *testing.T) {
	reg := testRegistry(t, twoSources)

	fetcher := newFakeFetcher()
	fetcher.bodies["http://feeds/a"] = alertFeed
	fetcher.bodies["http://feeds/b"] = alertFeed

	reporter := newCountingReporter()
	m, err := New(reg, fetcher, &fakeClassifier{panicOn: "a"}, reporter, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := m.runPass(context.Background())

	if result.PerSource["a"].Err == nil {
		t.Error("Expected recovered panic to surface as an error for a")
	}
	if result.PerSource["b"].Err != nil || len(result.PerSource["b"].Alerts) != 1 {
		t.Errorf("Expected b unaffected by panic in a, got %+v", result.PerSource["b"])
	}
}

func TestRunPass_ConcurrentWorkers(t *testing.T) {
	reg := testRegistry(t, twoSources)

	fetcher := newFakeFetcher()
	fetcher.bodies["http://feeds/a"] = alertFeed
	fetcher.bodies["http://feeds/b"] = alertFeed

	cfg := testConfig()
	cfg.Workers = 2

	reporter := newCountingReporter()
	m, err := New(reg, fetcher, &fakeClassifier{}, reporter, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := m.runPass(context.Background())

	if len(result.PerSource) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(result.PerSource))
	}
	for id, rep := range result.PerSource {
		if rep.Err != nil {
			t.Errorf("Expected no error for %s, got %v", id, rep.Err)
		}
	}
}

func TestRun_ImmediateFirstPassAndTick(t *testing.T) {
	reg := testRegistry(t, twoSources)

	fetcher := newFakeFetcher()
	fetcher.bodies["http://feeds/a"] = alertFeed
	fetcher.bodies["http://feeds/b"] = alertFeed

	reporter := newCountingReporter()
	m, err := New(reg, fetcher, &fakeClassifier{}, reporter, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clock := clockwork.NewFakeClock()
	m.SetClock(clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// First pass fires without waiting for the interval
	waitFor(t, func() bool { return m.Ready() })
	if reporter.count("a") != 1 {
		t.Errorf("Expected 1 report after first pass, got %d", reporter.count("a"))
	}

	// Advance the clock one interval: second pass
	clock.BlockUntil(1)
	clock.Advance(10 * time.Minute)
	waitFor(t, func() bool { return reporter.count("a") >= 2 })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if m.IsRunning() {
		t.Error("Expected monitor to be stopped")
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	reg := testRegistry(t, twoSources)

	fetcher := newFakeFetcher()
	fetcher.bodies["http://feeds/a"] = alertFeed
	fetcher.bodies["http://feeds/b"] = alertFeed

	m, err := New(reg, fetcher, &fakeClassifier{}, newCountingReporter(), testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clock := clockwork.NewFakeClock()
	m.SetClock(clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()
	waitFor(t, func() bool { return m.IsRunning() })

	if err := m.Run(ctx); err == nil {
		t.Error("Expected error for second concurrent Run")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
