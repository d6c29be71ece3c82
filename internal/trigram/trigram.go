// Package trigram implements 3-character shingle extraction and the
// set-overlap similarity score used by the fuzzy address lookup. The
// shingling follows pg_trgm conventions (per-word padding with two leading
// and one trailing space) so scores line up with the thresholds the voter
// registry was tuned against.
package trigram

import (
	"sort"
	"strings"
)

// Extract returns the sorted, deduplicated trigram set of s. The input is
// expected to already be normalized; callers must not mix normalized and
// raw strings or the similarity score is meaningless.
func Extract(s string) []string {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(s) {
		padded := "  " + word + " "
		for i := 0; i+3 <= len(padded); i++ {
			set[padded[i:i+3]] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Similarity scores the overlap of two trigram sets as twice the shared
// count over the summed set sizes. Symmetric, 1.0 only for identical sets,
// 0 when either set is empty. This normalization keeps short queries from
// being drowned by long registry addresses, which the default 0.2
// threshold is calibrated against.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := seen[t]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b))
}

// StringSimilarity extracts trigrams from both normalized strings and
// scores them. Convenience for callers that have not precomputed sets.
func StringSimilarity(a, b string) float64 {
	return Similarity(Extract(a), Extract(b))
}
