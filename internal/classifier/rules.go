package classifier

import "github.com/NoID1290/WeatherWatch/internal/models"

// localeRules documents the exact keyword set per locale as data. All
// strings are stored pre-folded (lowercase, no diacritics) and matched by
// folded substring.
type localeRules struct {
	// AlertCategories are the category/@term labels that mark an entry as
	// an alert. Battleboard feeds carry forecast and current-conditions
	// entries under other terms; those must never be classified.
	AlertCategories []string

	// NoAlertPhrases are the "all clear" sentinel substrings. Feeds
	// interpolate region names into the sentinel, so matching is by
	// substring, not equality.
	NoAlertPhrases []string

	// Keyword buckets in priority order: warning outranks watch outranks
	// statement. First match wins.
	WarningKeywords   []string
	WatchKeywords     []string
	StatementKeywords []string
}

var rules = map[models.Locale]localeRules{
	models.LocaleEN: {
		AlertCategories:   []string{"warnings and watches"},
		NoAlertPhrases:    []string{"no watches or warnings in effect"},
		WarningKeywords:   []string{"warning"},
		WatchKeywords:     []string{"watch"},
		StatementKeywords: []string{"special weather statement", "statement"},
	},
	models.LocaleFR: {
		AlertCategories:   []string{"veilles et avertissements"},
		NoAlertPhrases:    []string{"aucune veille ou alerte en vigueur", "aucune alerte en vigueur"},
		WarningKeywords:   []string{"avertissement"},
		WatchKeywords:     []string{"veille"},
		StatementKeywords: []string{"bulletin meteorologique special", "bulletin"},
	},
}
