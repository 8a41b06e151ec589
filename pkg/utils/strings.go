package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases a string and strips diacritics, so "Avertissement de
// chaleur extrême" and "AVERTISSEMENT DE CHALEUR EXTREME" compare equal.
func Fold(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// ContainsAny checks if the text contains any of the given keywords
func ContainsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// ContainsAnyFold is ContainsAny with accent- and case-insensitive matching.
// Keywords are expected to already be folded.
func ContainsAnyFold(text string, keywords []string) bool {
	return ContainsAny(Fold(text), keywords)
}
