package similarity

import "strings"

// corporateSuffixes are stripped when normalizing business names for
// comparison (spec §4.4, business name factor "normalized form").
var corporateSuffixes = []string{
	".com", "inc", "incorporated", "llc", "l.l.c.", "corp", "corporation", "ltd", "limited",
}

// NormalizeBusinessName lowercases, strips punctuation, and removes trailing
// corporate suffixes so "Acme Corp." and "Acme" compare as equal.
func NormalizeBusinessName(name string) string {
	s := strings.ToLower(name)
	s = strings.TrimSuffix(strings.TrimSpace(s), ".com")
	s = strings.NewReplacer(".", "", ",", "", "'", "").Replace(s)
	s = strings.TrimSpace(s)
	changed := true
	for changed {
		changed = false
		for _, suf := range corporateSuffixes {
			suf = strings.TrimSuffix(suf, ".")
			suf = strings.ReplaceAll(suf, ".", "")
			trimmed := strings.TrimSpace(s)
			if strings.HasSuffix(trimmed, " "+suf) {
				s = strings.TrimSuffix(trimmed, " "+suf)
				changed = true
			} else if trimmed == suf {
				s = ""
				changed = true
			}
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// nicknameLikelyMatchThreshold is the Dice score above which two names are
// considered the same identity outright (spec §4.1).
const nicknameLikelyMatchThreshold = 0.85

// NamesLikelyMatch reports whether any pair from incoming and existing is
// likely the same person/org: Dice similarity above threshold, matching
// initials, or one name's tokens are a subset of the other's (covers
// short forms that reuse a full token, e.g. "Bob" vs "Bob Smith"). There is
// no nickname table, so a nickname that is not itself a token of the other
// name (such as "Bob" for "Robert") does not match.
func NamesLikelyMatch(incoming, existing []string) bool {
	for _, in := range incoming {
		for _, ex := range existing {
			if namesLikelyMatchPair(in, ex) {
				return true
			}
		}
	}
	return false
}

func namesLikelyMatchPair(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if Similarity(a, b) > nicknameLikelyMatchThreshold {
		return true
	}
	if sameInitials(a, b) {
		return true
	}
	return tokenSubset(a, b)
}

// sameInitials reports whether a and b share the same sequence of initials,
// one per whitespace-delimited token (case-insensitive).
func sameInitials(a, b string) bool {
	ia := initials(a)
	ib := initials(b)
	if ia == "" || ib == "" || len(ia) != len(ib) {
		return false
	}
	return ia == ib
}

func initials(s string) string {
	tokens := strings.Fields(s)
	var b strings.Builder
	for _, t := range tokens {
		r := []rune(strings.ToLower(t))
		if len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	return b.String()
}

// tokenSubset reports whether the (case-folded) token set of a is a subset
// of b's, or vice versa — covers nicknames like "Bob" being a subset token
// of "Bob Smith". Tokens must match exactly, so "Intl" does not match
// "International".
func tokenSubset(a, b string) bool {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	if isSubset(ta, tb) || isSubset(tb, ta) {
		return true
	}
	return false
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(s)) {
		set[t] = true
	}
	return set
}

func isSubset(small, big map[string]bool) bool {
	if len(small) == 0 || len(small) >= len(big) {
		return false
	}
	for t := range small {
		if !big[t] {
			return false
		}
	}
	return true
}
