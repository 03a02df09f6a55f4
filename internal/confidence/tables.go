// Package confidence implements the three-level confidence kernel: pure
// functions computing source_weight × recency_modifier × corroboration
// from injectable, module-scoped tables. See spec §4.3 and §9 ("Global
// state" — tables must be injectable/overridable for tests and per-tenant
// tuning).
package confidence

import (
	"strings"
	"time"
)

// SourceWeights maps a source class to its base weight. Exported as a
// package variable (not a constant map) so tests and per-tenant tuning can
// override it; DefaultSourceWeights is the canonical table from spec §4.3.
var SourceWeights = cloneWeights(DefaultSourceWeights)

// DefaultSourceWeights is the authoritative source-weight table.
var DefaultSourceWeights = map[string]float64{
	"user_input":         0.95,
	"manual":             0.95,
	"linkedin_api":       0.90,
	"proxycurl":          0.90,
	"linkedin_pdf":       0.85,
	"linkedin":           0.85,
	"company_website":    0.80,
	"about_page":         0.80,
	"file_upload":        0.75,
	"file_import":        0.75,
	"uploaded_document":  0.75,
	"x":                  0.60,
	"instagram":          0.60,
	"social":             0.60,
	"social_media":       0.60,
	"web":                0.50,
	"url_extract":        0.50,
	"scraped_web_page":   0.50,
	"generic_url":        0.50,
	"entity_mention":     0.40,
	"mention":            0.40,
	"unknown":            0.40,
	"unmapped":           0.40,
}

func cloneWeights(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// SourceWeight returns the weight for a source class, defaulting to the
// "unknown" weight when the class is unrecognized.
func SourceWeight(sourceType string) float64 {
	if w, ok := SourceWeights[strings.ToLower(sourceType)]; ok {
		return w
	}
	return SourceWeights["unknown"]
}

// VolatileKeys is the set of attribute keys whose confidence is subject to
// the recency modifier (spec §4.3). All other keys are treated as
// historical and bypass recency entirely (modifier 1.0).
var VolatileKeys = map[string]bool{
	"headline":              true,
	"role":                  true,
	"current_role":          true,
	"company":               true,
	"current_company":       true,
	"location":              true,
	"current_location":      true,
	"x_bio":                 true,
	"instagram_bio":         true,
	"x_followers":           true,
	"instagram_followers":   true,
}

// IsVolatile reports whether key is subject to the recency modifier.
func IsVolatile(key string) bool {
	return VolatileKeys[key]
}

// RecencyModifier returns the recency multiplier for a volatile key given
// its captured date, as of "now". Non-volatile keys always return 1.0. An
// unknown (zero) captured date returns 0.85, per spec §4.3.
func RecencyModifier(key string, capturedDate time.Time, now time.Time) float64 {
	if !IsVolatile(key) {
		return 1.0
	}
	if capturedDate.IsZero() {
		return 0.85
	}
	months := now.Sub(capturedDate).Hours() / 24 / 30
	switch {
	case months <= 6:
		return 1.0
	case months <= 12:
		return 0.95
	case months <= 24:
		return 0.85
	case months <= 60:
		return 0.7
	default:
		return 0.5
	}
}

// CorroborationMultiplier returns the corroboration boost for a given
// independent-source count, capped at 1.5 for 3+ sources.
func CorroborationMultiplier(sourceCount int) float64 {
	switch {
	case sourceCount <= 1:
		return 1.0
	case sourceCount == 2:
		return 1.3
	default:
		return 1.5
	}
}

// ComputeAttributeConfidence computes min(1, base × recency × corroboration)
// for an attribute captured at capturedDate with sourceCount independent
// sources. now is injected so computations are deterministic in tests.
func ComputeAttributeConfidence(sourceWeight float64, capturedDate time.Time, key string, sourceCount int, now time.Time) float64 {
	recency := RecencyModifier(key, capturedDate, now)
	corroboration := CorroborationMultiplier(sourceCount)
	v := sourceWeight * recency * corroboration
	if v > 1 {
		return 1
	}
	return v
}

// Tier classifies a mean confidence into a human label.
type Tier string

const (
	TierThin       Tier = "thin"
	TierDeveloping Tier = "developing"
	TierStrong     Tier = "strong"
)

// Label classifies a confidence value into its tier (spec §4.3, and §5 Open
// Questions decision #2: confidence_label is recomputed at read time rather
// than trusted from storage).
func Label(c float64) Tier {
	switch {
	case c < 0.5:
		return TierThin
	case c <= 0.8:
		return TierDeveloping
	default:
		return TierStrong
	}
}

// EntityConfidence is the mean of a set of attribute confidences, 0 if empty.
func EntityConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}
