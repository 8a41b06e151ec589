package classifier

import (
	"strings"

	"github.com/jonboulle/clockwork"

	apperrors "github.com/NoID1290/WeatherWatch/internal/errors"
	"github.com/NoID1290/WeatherWatch/internal/models"
	"github.com/NoID1290/WeatherWatch/pkg/utils"
)

// Classifier maps raw feed entries to alerts. It is stateless apart from
// the injected clock, so classifying the same entry twice yields equal
// alerts when the clock is frozen.
type Classifier struct {
	clock clockwork.Clock
}

// New creates a classifier using the wall clock
func New() *Classifier {
	return NewWithClock(clockwork.NewRealClock())
}

// NewWithClock creates a classifier with an injected clock
func NewWithClock(clock clockwork.Clock) *Classifier {
	return &Classifier{clock: clock}
}

// Classify maps one entry to an alert. A (nil, nil) return means the entry
// is not an alert: it carries a non-alert category or the locale's "all
// clear" sentinel. A ClassificationAnomaly means the entry has unexpected
// structure and should be skipped, never the cycle.
func (c *Classifier) Classify(sourceID string, entry models.RawEntry, locale models.Locale) (*models.Alert, error) {
	r, ok := rules[locale]
	if !ok {
		return nil, apperrors.ClassificationAnomaly{Source: sourceID, Reason: "no rules for locale " + string(locale)}
	}

	if !utils.ContainsAnyFold(entry.CategoryTerm, r.AlertCategories) {
		return nil, nil
	}

	title := utils.Fold(entry.Title)
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.ClassificationAnomaly{Source: sourceID, Reason: "entry has no title"}
	}

	if utils.ContainsAny(title, r.NoAlertPhrases) {
		return nil, nil
	}

	return &models.Alert{
		SourceID:   sourceID,
		Severity:   severityFor(title, r),
		Title:      strings.TrimSpace(entry.Title),
		Detail:     StripMarkup(entry.SummaryHTML),
		ObservedAt: c.clock.Now().UTC(),
	}, nil
}

// severityFor scans folded title text against the locale's keyword buckets.
// Scan order encodes priority: a title containing both "watch" and
// "warning" classifies as the higher-severity WARNING.
func severityFor(foldedTitle string, r localeRules) models.Severity {
	switch {
	case utils.ContainsAny(foldedTitle, r.WarningKeywords):
		return models.SeverityWarning
	case utils.ContainsAny(foldedTitle, r.WatchKeywords):
		return models.SeverityWatch
	case utils.ContainsAny(foldedTitle, r.StatementKeywords):
		return models.SeverityStatement
	default:
		return models.SeverityNotice
	}
}

// markupReplacer holds the fixed substitution table applied to summary
// HTML. This is not a sanitizer: unexpected tags pass through verbatim.
var markupReplacer = strings.NewReplacer(
	"<br/>", "\n",
	"<br />", "\n",
	"<br>", "\n",
	"<b>", "",
	"</b>", "",
)

// StripMarkup converts the known inline markup in a feed summary to plain
// text and trims surrounding whitespace.
func StripMarkup(summaryHTML string) string {
	return strings.TrimSpace(markupReplacer.Replace(summaryHTML))
}
