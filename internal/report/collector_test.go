package report

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NoID1290/WeatherWatch/internal/models"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector()

	srcA := models.FeedSource{ID: "a", DisplayName: "Alpha"}
	srcB := models.FeedSource{ID: "b", DisplayName: "Beta"}

	checked := time.Date(2024, time.June, 12, 18, 0, 0, 0, time.UTC)
	c.Report(srcB, models.SourceReport{
		SourceID:  "b",
		Alerts:    []models.Alert{{SourceID: "b", Severity: models.SeverityWatch, Title: "watch"}},
		CheckedAt: checked,
	})
	c.Report(srcA, models.SourceReport{
		SourceID:  "a",
		Err:       errors.New("HTTP 503"),
		CheckedAt: checked,
	})

	snap := c.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Expected 2 statuses, got %d", len(snap))
	}

	// Ordered by source id
	if snap[0].SourceID != "a" || snap[1].SourceID != "b" {
		t.Errorf("Expected order a,b; got %s,%s", snap[0].SourceID, snap[1].SourceID)
	}

	if snap[0].LastError != "HTTP 503" {
		t.Errorf("Expected last error recorded, got %q", snap[0].LastError)
	}
	if snap[0].Alerts == nil {
		t.Error("Expected errored source to expose empty alert list, not nil")
	}

	if snap[1].LastError != "" {
		t.Errorf("Expected no error for b, got %q", snap[1].LastError)
	}
	if len(snap[1].Alerts) != 1 {
		t.Errorf("Expected 1 alert for b, got %d", len(snap[1].Alerts))
	}
	if !snap[1].LastChecked.Equal(checked) {
		t.Errorf("Expected LastChecked %v, got %v", checked, snap[1].LastChecked)
	}
}

func TestCollector_OverwritesPriorCycle(t *testing.T) {
	c := NewCollector()
	src := models.FeedSource{ID: "a", DisplayName: "Alpha"}

	c.Report(src, models.SourceReport{
		SourceID: "a",
		Alerts:   []models.Alert{{SourceID: "a", Severity: models.SeverityWarning, Title: "w"}},
	})
	c.Report(src, models.SourceReport{SourceID: "a", Alerts: []models.Alert{}})

	snap := c.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Expected 1 status, got %d", len(snap))
	}
	if len(snap[0].Alerts) != 0 {
		t.Errorf("Expected cleared alerts after later cycle, got %d", len(snap[0].Alerts))
	}
}

func TestCollector_ConcurrentReports(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := models.FeedSource{ID: "a", DisplayName: "Alpha"}
			c.Report(src, models.SourceReport{SourceID: "a"})
			_ = c.Snapshot()
		}(i)
	}
	wg.Wait()

	if len(c.Snapshot()) != 1 {
		t.Errorf("Expected 1 status after concurrent reports")
	}
}
