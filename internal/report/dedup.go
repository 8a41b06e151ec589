package report

import (
	"sync"

	"github.com/NoID1290/WeatherWatch/internal/models"
)

// alertKey identifies one alert occurrence across cycles. Two alerts are
// the same occurrence only when source and title match.
type alertKey struct {
	sourceID string
	title    string
}

// DedupReporter is an opt-in wrapper that annotates alerts already seen in
// a prior cycle as ongoing. The default monitor behavior is stateless
// re-reporting; this wrapper is enabled explicitly via configuration.
// Table entries are dropped as soon as an alert clears, so a re-issued
// alert is reported as new again.
type DedupReporter struct {
	next Reporter
	mu   sync.Mutex
	seen map[alertKey]bool
}

// Reporter is the sink the monitor drives once per source per cycle
type Reporter interface {
	Report(source models.FeedSource, rep models.SourceReport)
}

// NewDedupReporter wraps next with cross-cycle occurrence tracking
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[alertKey]bool),
	}
}

// Report forwards the report with Ongoing set on alerts observed in an
// earlier cycle. Errored reports leave the tracking table untouched: an
// unreachable feed says nothing about whether its alerts cleared.
func (d *DedupReporter) Report(source models.FeedSource, rep models.SourceReport) {
	if rep.Err != nil {
		d.next.Report(source, rep)
		return
	}

	d.mu.Lock()
	current := make(map[alertKey]bool, len(rep.Alerts))
	annotated := make([]models.Alert, len(rep.Alerts))
	for i, alert := range rep.Alerts {
		key := alertKey{sourceID: alert.SourceID, title: alert.Title}
		annotated[i] = alert
		annotated[i].Ongoing = d.seen[key]
		current[key] = true
	}

	// Drop cleared alerts for this source so a reissue reports as new
	for key := range d.seen {
		if key.sourceID == source.ID && !current[key] {
			delete(d.seen, key)
		}
	}
	for key := range current {
		d.seen[key] = true
	}
	d.mu.Unlock()

	rep.Alerts = annotated
	d.next.Report(source, rep)
}

// MultiReporter fans one report out to several sinks in order
type MultiReporter []Reporter

// Report forwards to every wrapped reporter
func (m MultiReporter) Report(source models.FeedSource, rep models.SourceReport) {
	for _, r := range m {
		r.Report(source, rep)
	}
}
