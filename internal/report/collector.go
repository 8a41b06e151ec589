package report

import (
	"sort"
	"sync"

	"github.com/NoID1290/WeatherWatch/internal/models"
)

// Collector keeps the latest report per source for the status API. Prior
// cycles are overwritten, never merged: the monitor owns each cycle's
// result and the collector only remembers the most recent one per source.
type Collector struct {
	mu       sync.RWMutex
	statuses map[string]models.SourceStatus
}

// NewCollector creates an empty status collector
func NewCollector() *Collector {
	return &Collector{
		statuses: make(map[string]models.SourceStatus),
	}
}

// Report records the latest outcome for one source
func (c *Collector) Report(source models.FeedSource, rep models.SourceReport) {
	status := models.SourceStatus{
		SourceID:    source.ID,
		DisplayName: source.DisplayName,
		Alerts:      rep.Alerts,
		LastChecked: rep.CheckedAt,
	}
	if rep.Err != nil {
		status.LastError = rep.Err.Error()
	}
	if status.Alerts == nil {
		status.Alerts = []models.Alert{}
	}

	c.mu.Lock()
	c.statuses[source.ID] = status
	c.mu.Unlock()
}

// Snapshot returns the latest status per source, ordered by source id
func (c *Collector) Snapshot() []models.SourceStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.SourceStatus, 0, len(c.statuses))
	for _, s := range c.statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceID < out[j].SourceID
	})
	return out
}
