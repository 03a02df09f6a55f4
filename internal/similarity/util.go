package similarity

import "strings"

// containsFold reports whether substr appears in s, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// WordSet returns the set of lowercased words longer than minLen, used by
// the bio factor's Jaccard bag-of-words comparison (spec §4.4).
func WordSet(s string, minLen int) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > minLen {
			set[w] = true
		}
	}
	return set
}

// Jaccard computes the Jaccard similarity between two word sets.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// TokenOverlapFraction returns the fraction of tokens shared between a and
// b relative to the smaller token set — used as a fallback for fractional
// location overlap when Dice similarity is below the location threshold.
func TokenOverlapFraction(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if tb[t] {
			shared++
		}
	}
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	if smaller == 0 {
		return 0
	}
	return float64(shared) / float64(smaller)
}
