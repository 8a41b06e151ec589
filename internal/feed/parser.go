package feed

import (
	"encoding/xml"
	"fmt"

	"github.com/NoID1290/WeatherWatch/internal/models"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

// atomFeed mirrors the subset of an Atom document the monitor cares about
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title    string       `xml:"title"`
	Summary  string       `xml:"summary"`
	Category atomCategory `xml:"category"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// ParseFeed decodes an Atom document into raw entries. A well-formed
// document with zero entries yields an empty slice: "all clear" is a valid
// state, not an error.
func ParseFeed(data []byte) ([]models.RawEntry, error) {
	var doc atomFeed
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode atom document: %w", err)
	}

	if doc.XMLName.Space != atomNamespace {
		return nil, fmt.Errorf("unexpected root namespace %q", doc.XMLName.Space)
	}

	entries := make([]models.RawEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, models.RawEntry{
			Title:        e.Title,
			SummaryHTML:  e.Summary,
			CategoryTerm: e.Category.Term,
		})
	}

	return entries, nil
}
