package models

import "time"

// Locale identifies the language a feed publishes in. The classifier keys
// its keyword tables on this value.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleFR Locale = "fr"
)

// Known reports whether the locale has classification rules.
func (l Locale) Known() bool {
	return l == LocaleEN || l == LocaleFR
}

// Severity is the classification outcome for an alert entry, ordered from
// least to most actionable.
type Severity string

const (
	SeverityNotice    Severity = "NOTICE"
	SeverityStatement Severity = "STATEMENT"
	SeverityWatch     Severity = "WATCH"
	SeverityWarning   Severity = "WARNING"
)

// FeedSource is one registered Atom endpoint. The set of sources is fixed
// for the lifetime of the process.
type FeedSource struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Locale      Locale `json:"locale"`
}

// RawEntry is one <entry> element lifted out of a feed document. It lives
// only between parse and classification.
type RawEntry struct {
	Title        string
	SummaryHTML  string
	CategoryTerm string
}

// Alert is a classified feed entry. Alerts are never mutated after the
// classifier builds them; Ongoing is set only by the optional dedup
// reporter wrapper, which emits annotated copies.
type Alert struct {
	SourceID   string    `json:"source_id"`
	Severity   Severity  `json:"severity"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail"`
	ObservedAt time.Time `json:"observed_at"`
	Ongoing    bool      `json:"ongoing,omitempty"`
}

// SourceReport is the outcome of processing one source within one pass:
// either a list of alerts (possibly empty, meaning all clear) or an error.
type SourceReport struct {
	SourceID  string    `json:"source_id"`
	Alerts    []Alert   `json:"alerts"`
	Err       error     `json:"-"`
	CheckedAt time.Time `json:"checked_at"`
}

// CycleResult collects the per-source outcomes of a single scheduler pass.
// It is owned by that pass and discarded once reported.
type CycleResult struct {
	CycleID   string
	StartedAt time.Time
	PerSource map[string]SourceReport
}

// SourceStatus is the latest known state of one source, as exposed by the
// status API. LastError is the stringified error, empty when the last
// check succeeded.
type SourceStatus struct {
	SourceID    string    `json:"source_id"`
	DisplayName string    `json:"display_name"`
	Alerts      []Alert   `json:"alerts"`
	LastChecked time.Time `json:"last_checked"`
	LastError   string    `json:"last_error,omitempty"`
}

// ForecastPeriod is one named segment of a forecast (e.g. "Tonight").
type ForecastPeriod struct {
	Name         string  `json:"name"`
	TemperatureC float64 `json:"temperature_c"`
	Condition    string  `json:"condition"`
}

// ForecastRecord is the structured result of the forecast collaborator.
type ForecastRecord struct {
	Location     string           `json:"location"`
	TemperatureC float64          `json:"temperature_c"`
	Condition    string           `json:"condition"`
	WindKPH      float64          `json:"wind_kph"`
	Periods      []ForecastPeriod `json:"periods"`
	RetrievedAt  time.Time        `json:"retrieved_at"`
}
