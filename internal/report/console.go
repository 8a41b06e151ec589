package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/NoID1290/WeatherWatch/internal/logger"
	"github.com/NoID1290/WeatherWatch/internal/models"
)

// ANSI escape sequences, looked up only at the final render step. Record
// construction itself is colorless so formatting stays testable.
const ansiReset = "\x1b[0m"

var severityColors = map[models.Severity]string{
	models.SeverityWarning:   "\x1b[31m", // red
	models.SeverityWatch:     "\x1b[33m", // yellow
	models.SeverityStatement: "\x1b[36m", // cyan
	models.SeverityNotice:    "\x1b[37m", // white
}

const errorColor = "\x1b[31m"
const ruleLine = "------------------------------------------------------------"

// ConsoleReporter renders source reports as color-tagged terminal blocks.
// Writes are serialized so concurrent passes never interleave lines.
type ConsoleReporter struct {
	mu     sync.Mutex
	w      io.Writer
	colors bool
}

// NewConsoleReporter creates a console reporter writing to w
func NewConsoleReporter(w io.Writer, colors bool) *ConsoleReporter {
	return &ConsoleReporter{w: w, colors: colors}
}

// Report renders one source's outcome. It never panics out: a formatting
// failure degrades to a plain-text fallback line.
func (r *ConsoleReporter) Report(source models.FeedSource, rep models.SourceReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Console reporter recovered", "source", source.ID, "panic", rec)
			// Best-effort fallback line; give up silently if the writer
			// itself is what failed.
			defer func() { _ = recover() }()
			fmt.Fprintf(r.w, "%s: report rendering failed\n", source.DisplayName)
		}
	}()

	if rep.Err != nil {
		line := fmt.Sprintf("%s: check failed: %v", source.DisplayName, rep.Err)
		fmt.Fprintln(r.w, r.colorize(errorColor, line))
		return
	}

	if len(rep.Alerts) == 0 {
		fmt.Fprintf(r.w, "%s: no watches or warnings in effect\n", source.DisplayName)
		return
	}

	for _, alert := range rep.Alerts {
		block := formatAlertBlock(source.DisplayName, alert)
		header, rest, _ := strings.Cut(block, "\n")
		fmt.Fprintln(r.w, r.colorize(severityColors[alert.Severity], header))
		fmt.Fprintln(r.w, rest)
	}
}

// formatAlertBlock builds the colorless record for one alert
func formatAlertBlock(displayName string, alert models.Alert) string {
	var b strings.Builder
	severity := string(alert.Severity)
	if alert.Ongoing {
		severity += " (ongoing)"
	}
	fmt.Fprintf(&b, ">>> %s : %s <<<\n", strings.ToUpper(displayName), severity)
	fmt.Fprintf(&b, "Headline: %s\n", alert.Title)
	fmt.Fprintf(&b, "Details: %s\n", alert.Detail)
	b.WriteString(ruleLine)
	return b.String()
}

func (r *ConsoleReporter) colorize(color, line string) string {
	if !r.colors || color == "" {
		return line
	}
	return color + line + ansiReset
}
