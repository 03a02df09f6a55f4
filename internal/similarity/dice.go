// Package similarity provides the stateless token-level similarity kernel
// used throughout staging, association scoring, and gap analysis: Dice
// bigram similarity, corporate-suffix normalization, and nickname/initials
// matching. See spec §4.1.
package similarity

import "strings"

// Similarity computes Sørensen–Dice coefficient similarity over character
// bigrams of a and b, case-insensitive and whitespace-normalized. Returns a
// value in [0, 1]. Empty strings yield 0.
func Similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	bigramsA := bigramCounts(a)
	bigramsB := bigramCounts(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		// Single-character strings have no bigrams; fall back to exact match.
		if a == b {
			return 1
		}
		return 0
	}

	intersection := 0
	for bg, countA := range bigramsA {
		if countB, ok := bigramsB[bg]; ok {
			intersection += min(countA, countB)
		}
	}

	totalA := sumCounts(bigramsA)
	totalB := sumCounts(bigramsB)
	if totalA+totalB == 0 {
		return 0
	}
	return 2 * float64(intersection) / float64(totalA+totalB)
}

// normalize lowercases and collapses internal whitespace to single spaces,
// trimming leading/trailing space.
func normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

func bigramCounts(s string) map[string]int {
	runes := []rune(s)
	counts := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		bg := string(runes[i : i+2])
		counts[bg]++
	}
	return counts
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, c := range m {
		total += c
	}
	return total
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
