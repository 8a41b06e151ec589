package registry

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/NoID1290/WeatherWatch/internal/errors"
	"github.com/NoID1290/WeatherWatch/internal/models"
)

// defaultSources is the compiled-in registry of Environment Canada
// battleboard feeds. A JSON file named in SOURCES_FILE replaces it.
var defaultSources = []models.FeedSource{
	{ID: "toronto", DisplayName: "Toronto", URL: "https://weather.gc.ca/rss/battleboard/on61_e.xml", Locale: models.LocaleEN},
	{ID: "ottawa", DisplayName: "Ottawa", URL: "https://weather.gc.ca/rss/battleboard/on118_e.xml", Locale: models.LocaleEN},
	{ID: "montreal", DisplayName: "Montréal", URL: "https://meteo.gc.ca/rss/battleboard/qc147_f.xml", Locale: models.LocaleFR},
	{ID: "quebec", DisplayName: "Québec", URL: "https://meteo.gc.ca/rss/battleboard/qc133_f.xml", Locale: models.LocaleFR},
	{ID: "calgary", DisplayName: "Calgary", URL: "https://weather.gc.ca/rss/battleboard/ab52_e.xml", Locale: models.LocaleEN},
	{ID: "vancouver", DisplayName: "Vancouver", URL: "https://weather.gc.ca/rss/battleboard/bc74_e.xml", Locale: models.LocaleEN},
}

// Registry is the immutable set of feed sources for one run
type Registry struct {
	sources []models.FeedSource
}

// Load builds the registry from the given JSON file, or from the
// compiled-in default set when path is empty. A bad source set fails
// startup; the monitor never begins a pass with an invalid registry.
func Load(path string) (*Registry, error) {
	sources := defaultSources
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sources file: %w", err)
		}
		var loaded []models.FeedSource
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parse sources file: %w", err)
		}
		sources = loaded
	}

	if err := validate(sources); err != nil {
		return nil, err
	}

	out := make([]models.FeedSource, len(sources))
	copy(out, sources)
	return &Registry{sources: out}, nil
}

func validate(sources []models.FeedSource) error {
	if len(sources) == 0 {
		return apperrors.ErrNoSources
	}

	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if src.ID == "" {
			return apperrors.ValidationError{Field: "id", Message: "must not be empty"}
		}
		if seen[src.ID] {
			return apperrors.ValidationError{Field: "id", Message: fmt.Sprintf("duplicate source id %q", src.ID)}
		}
		seen[src.ID] = true

		if src.URL == "" {
			return apperrors.ValidationError{Field: "url", Message: fmt.Sprintf("source %q has no URL", src.ID)}
		}
		if !src.Locale.Known() {
			return apperrors.ValidationError{Field: "locale", Message: fmt.Sprintf("source %q has unknown locale %q", src.ID, src.Locale)}
		}
	}
	return nil
}

// Sources returns a copy of the registered sources in registration order
func (r *Registry) Sources() []models.FeedSource {
	out := make([]models.FeedSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the number of registered sources
func (r *Registry) Len() int {
	return len(r.sources)
}
