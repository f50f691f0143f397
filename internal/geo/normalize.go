// internal/geo/normalize.go
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalization is an explicit ordered rule list applied once at ingestion:
// trim, lowercase, strip diacritics. Lookup tables keyed by place name always
// use the normalized form, so "São Paulo", "sao paulo " and "SAO PAULO" agree.

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize applies the canonical normalization rules to a free-text place
// name. The output is safe to use as a lookup key.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}
