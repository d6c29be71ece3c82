// Package normalizer canonicalizes free-text address fragments so the
// prefix and similarity lookups compare against the exact same form the
// importer wrote into the registry.
package normalizer

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// Anything outside lowercase alphanumerics, space, and the small
	// punctuation whitelist used in street addresses (#, -, .).
	reDisallowed = regexp.MustCompile(`[^a-z0-9 #\-.]+`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw address fragment: ascii fold, lower-case,
// strip disallowed runes, collapse whitespace runs, trim. An empty result
// means the caller should skip retrieval entirely.
func Normalize(raw string) string {
	s := strings.ToLower(unidecode.Unidecode(StripDiacritics(raw)))
	s = reDisallowed.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// NormalizeName canonicalizes a person-name fragment for the name search
// path. Names drop the address punctuation whitelist as well.
func NormalizeName(raw string) string {
	s := Normalize(raw)
	s = strings.NewReplacer("#", " ", "-", " ", ".", " ").Replace(s)
	return reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}
