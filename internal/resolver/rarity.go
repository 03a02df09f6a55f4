package resolver

import (
	"strings"

	"github.com/spokegraph/provisioner/internal/model"
)

// RarityTier classifies how common a primary name is, which sets the
// ambiguous-match threshold (spec §4.5.1 step 3).
type RarityTier string

const (
	RarityVeryCommon RarityTier = "very_common"
	RarityCommon     RarityTier = "common"
	RarityStandard   RarityTier = "standard"
)

// Thresholds, keyed by tier (spec §4.5.1 step 3).
var rarityThresholds = map[RarityTier]float64{
	RarityVeryCommon: 0.45,
	RarityCommon:      0.35,
	RarityStandard:    0.30,
}

// defaultVeryCommonNames and defaultCommonNames are the global common-name
// tables (spec §9 "Global state" — module-scoped data, overridable).
// Includes embedded-initials tokens ("CJ", "TJ") per spec §9 open question:
// treated as very-common, with per-tenant overrides able to correct this.
var defaultVeryCommonNames = map[string]bool{
	"james": true, "john": true, "robert": true, "michael": true, "david": true,
	"mary": true, "patricia": true, "jennifer": true, "linda": true, "smith": true,
	"johnson": true, "williams": true, "brown": true, "jones": true, "garcia": true,
	"cj": true, "tj": true, "mj": true,
}

var defaultCommonNames = map[string]bool{
	"miller": true, "davis": true, "rodriguez": true, "martinez": true,
	"hernandez": true, "lopez": true, "gonzalez": true, "wilson": true,
	"anderson": true, "thomas": true, "taylor": true, "moore": true,
}

// RarityClassifier classifies a cluster's primary name into a rarity tier,
// with per-tenant overrides taking precedence over the global tables (spec
// §5 Open Questions decision 3).
type RarityClassifier struct {
	veryCommon map[string]bool
	common     map[string]bool
	// overrides maps a lowercase token directly to a tier, set per tenant
	// with WithOverrides, and always wins over the global tables.
	overrides map[string]RarityTier
}

// NewRarityClassifier builds a classifier seeded from the global default
// tables. Callers may attach per-tenant overrides with WithOverrides.
func NewRarityClassifier() *RarityClassifier {
	return &RarityClassifier{veryCommon: defaultVeryCommonNames, common: defaultCommonNames}
}

// WithOverrides returns a copy of rc with the given per-token tier overrides
// applied on top of the global tables; overrides always win.
func (rc *RarityClassifier) WithOverrides(overrides map[string]RarityTier) *RarityClassifier {
	next := &RarityClassifier{veryCommon: rc.veryCommon, common: rc.common, overrides: make(map[string]RarityTier, len(overrides))}
	for k, v := range overrides {
		next.overrides[strings.ToLower(k)] = v
	}
	return next
}

// Classify returns the rarity tier and its associated ambiguous-match
// threshold for a cluster's primary name.
func (rc *RarityClassifier) Classify(primaryName string) (RarityTier, float64) {
	tier := RarityStandard
	for _, token := range strings.Fields(strings.ToLower(primaryName)) {
		if t, ok := rc.overrides[token]; ok {
			tier = maxTier(tier, t)
			continue
		}
		if rc.veryCommon[token] {
			tier = maxTier(tier, RarityVeryCommon)
		} else if rc.common[token] {
			tier = maxTier(tier, RarityCommon)
		}
	}
	return tier, rarityThresholds[tier]
}

func maxTier(a, b RarityTier) RarityTier {
	rank := map[RarityTier]int{RarityStandard: 0, RarityCommon: 1, RarityVeryCommon: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// PrimaryName picks the cluster's single most representative incoming name,
// mirroring Entity.PrimaryName for staged (not-yet-created) clusters.
func PrimaryName(cluster *model.SignalCluster) string {
	if len(cluster.Signals.Names) > 0 {
		return cluster.Signals.Names[0]
	}
	return ""
}
