// Package association implements the association scorer (AS): comparing a
// signal cluster's extracted signals against a candidate existing entity
// and producing a weighted match score, factor breakdown, contradictions,
// and a match-type label. See spec §4.4.
package association

import (
	"strings"
	"time"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/similarity"
)

// Factor weights, fixed per spec §4.4 (sum to 1).
const (
	weightName     = 0.40
	weightHandle   = 0.30
	weightOrgTitle = 0.15
	weightLocation = 0.10
	weightBio      = 0.05

	personNameShortCircuit = 0.82
	dominantMatchThreshold = 0.7
	recentWindow           = 2 * 365 * 24 * time.Hour
)

// Result is the outcome of ComputeAssociationScore.
type Result struct {
	Score                float64
	RawScore             float64
	Factors              model.AssociationFactors
	Contradictions       []model.Contradiction
	ContradictionPenalty float64
	MatchType            string
}

// ComputeAssociationScore compares cluster against an existing candidate
// entity, returning the weighted score and its supporting breakdown. Returns
// a zero Result when the two entity types are incompatible (different types,
// neither pair drawn from the business/institution bucket).
func ComputeAssociationScore(cluster *model.SignalCluster, existing *model.Entity) Result {
	if !typesCompatible(cluster.EntityType, existing.EntityType) {
		return Result{}
	}

	nameFactor, namesLikely := scoreName(cluster, existing)
	handleFactor, handleExact, handleCross := scoreHandle(cluster, existing)
	orgTitleFactor, orgMatch, titleMatch := scoreOrgTitle(cluster, existing)
	locationFactor := scoreLocation(cluster, existing)
	bioFactor := scoreBio(cluster, existing)

	factors := model.AssociationFactors{
		Name:     nameFactor,
		Handle:   handleFactor,
		OrgTitle: orgTitleFactor,
		Location: locationFactor,
		Bio:      bioFactor,
	}

	raw := weightName*nameFactor + weightHandle*handleFactor + weightOrgTitle*orgTitleFactor +
		weightLocation*locationFactor + weightBio*bioFactor

	contradictions, penalty := detectContradictions(cluster, existing, nameFactor, namesLikely)

	score := raw - penalty
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Result{
		Score:                score,
		RawScore:             raw,
		Factors:              factors,
		Contradictions:       contradictions,
		ContradictionPenalty: penalty,
		MatchType:            matchType(handleExact, handleCross, nameFactor, orgMatch, titleMatch),
	}
}

func typesCompatible(a, b model.EntityType) bool {
	if a == b {
		return true
	}
	orgLike := func(t model.EntityType) bool {
		return t == model.EntityBusiness || t == model.EntityInstitution
	}
	return orgLike(a) && orgLike(b)
}

func scoreName(cluster *model.SignalCluster, existing *model.Entity) (float64, bool) {
	incoming := cluster.Signals.Names
	existingNames := existing.AllNames()

	best := 0.0
	for _, in := range incoming {
		for _, ex := range existingNames {
			if d := similarity.Similarity(in, ex); d > best {
				best = d
			}
			if cluster.EntityType == model.EntityBusiness || cluster.EntityType == model.EntityInstitution {
				if d := similarity.Similarity(similarity.NormalizeBusinessName(in), similarity.NormalizeBusinessName(ex)); d > best {
					best = d
				}
			}
		}
	}

	likely := similarity.NamesLikelyMatch(incoming, existingNames)
	if likely && cluster.EntityType == model.EntityPerson && best < personNameShortCircuit {
		best = personNameShortCircuit
	}
	return best, likely
}

func scoreHandle(cluster *model.SignalCluster, existing *model.Entity) (factor float64, exact bool, cross bool) {
	incoming := handleValues(cluster.Signals.Handles)
	existingHandles := entityHandles(existing)
	existingAll := handleValues(existingHandles)
	existingNames := existing.AllNames()

	for _, in := range incoming {
		if in == "" {
			continue
		}
		for _, ex := range existingAll {
			if ex != "" && strings.EqualFold(in, ex) {
				return 1.0, true, false
			}
		}
	}
	for _, in := range incoming {
		if in == "" {
			continue
		}
		for _, name := range existingNames {
			if name != "" && strings.EqualFold(in, name) {
				return 0.85, false, true
			}
		}
		for _, ex := range existingAll {
			if ex != "" && !strings.EqualFold(in, ex) && similarity.Similarity(in, ex) > 0.9 {
				return 0.85, false, true
			}
		}
	}
	return 0, false, false
}

func handleValues(h model.Handles) []string {
	return []string{h.X, h.Instagram, h.LinkedIn}
}

func entityHandles(e *model.Entity) model.Handles {
	var h model.Handles
	if a := e.FindAttribute("x_handle"); a != nil {
		h.X = a.Value
	} else if a := e.FindAttribute("twitter_handle"); a != nil {
		h.X = a.Value
	}
	if a := e.FindAttribute("instagram_handle"); a != nil {
		h.Instagram = a.Value
	}
	if a := e.FindAttribute("linkedin_handle"); a != nil {
		h.LinkedIn = a.Value
	} else if a := e.FindAttribute("linkedin_url"); a != nil {
		h.LinkedIn = a.Value
	}
	return h
}

func scoreOrgTitle(cluster *model.SignalCluster, existing *model.Entity) (factor float64, orgMatch bool, titleMatch bool) {
	props := similarity.GetEntityProperties(existing)

	orgMatch = matchesAny(cluster.Signals.Organizations, props.Organizations)
	titleMatch = matchesAny(cluster.Signals.Titles, props.Titles)

	switch {
	case orgMatch && titleMatch:
		return 1.0, orgMatch, titleMatch
	case orgMatch:
		return 0.5, orgMatch, titleMatch
	case titleMatch:
		return 0.3, orgMatch, titleMatch
	default:
		return 0, orgMatch, titleMatch
	}
}

func matchesAny(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if similarity.Similarity(x, y) > dominantMatchThreshold {
				return true
			}
		}
	}
	return false
}

func scoreLocation(cluster *model.SignalCluster, existing *model.Entity) float64 {
	props := similarity.GetEntityProperties(existing)
	best := 0.0
	for _, x := range cluster.Signals.Locations {
		for _, y := range props.Locations {
			if d := similarity.Similarity(x, y); d > dominantMatchThreshold {
				return 1.0
			}
			if f := similarity.TokenOverlapFraction(x, y); f > best {
				best = f
			}
		}
	}
	return best
}

func scoreBio(cluster *model.SignalCluster, existing *model.Entity) float64 {
	incoming := make(map[string]bool)
	for _, b := range cluster.Signals.Bios {
		for w := range similarity.WordSet(b, 3) {
			incoming[w] = true
		}
	}
	existingWords := make(map[string]bool)
	if existing.Summary.Value != "" {
		for w := range similarity.WordSet(existing.Summary.Value, 3) {
			existingWords[w] = true
		}
	}
	for _, key := range []string{"bio", "x_bio", "instagram_bio"} {
		if a := existing.FindAttribute(key); a != nil {
			for w := range similarity.WordSet(a.Value, 3) {
				existingWords[w] = true
			}
		}
	}
	return similarity.Jaccard(incoming, existingWords)
}

func detectContradictions(cluster *model.SignalCluster, existing *model.Entity, nameFactor float64, namesLikely bool) ([]model.Contradiction, float64) {
	var out []model.Contradiction
	penalty := 0.0

	incomingHandles := cluster.Signals.Handles
	existingHandles := entityHandles(existing)

	addPenalty := func(kind, detail string, amount float64, identityConflict bool) {
		out = append(out, model.Contradiction{Kind: kind, Detail: detail, Penalty: amount, PossibleIdentityConflict: identityConflict})
		penalty += amount
	}

	if incomingHandles.LinkedIn != "" && existingHandles.LinkedIn != "" && !strings.EqualFold(incomingHandles.LinkedIn, existingHandles.LinkedIn) {
		addPenalty("linkedin_mismatch", "different LinkedIn URLs", 0.20, false)
	}
	if incomingHandles.X != "" && existingHandles.X != "" && !strings.EqualFold(incomingHandles.X, existingHandles.X) {
		addPenalty("x_handle_mismatch", "different X handle", 0.20, false)
	}
	if incomingHandles.Instagram != "" && existingHandles.Instagram != "" && !strings.EqualFold(incomingHandles.Instagram, existingHandles.Instagram) {
		addPenalty("instagram_handle_mismatch", "different Instagram handle", 0.20, false)
	}

	if nameFactor > 0 && nameFactor < 0.4 && !namesLikely {
		addPenalty("name_weak", "name factor weak and no likely-match signal", 0.15, false)
	}

	if len(cluster.Signals.Organizations) > 0 {
		if cc := existing.FindAttribute("current_company"); cc != nil {
			if similarity.Similarity(cluster.Signals.Organizations[0], cc.Value) < 0.3 {
				addPenalty("current_company_mismatch", "current companies disagree", 0.05, false)
			}
		}
	}

	if loc := existingLocationAttribute(existing); loc != nil && len(cluster.Signals.Locations) > 0 {
		for _, incLoc := range cluster.Signals.Locations {
			if similarity.Similarity(incLoc, loc.Value) <= 0.3 {
				incomingRecent := isRecent(cluster.Source.ExtractedAt, cluster.CreatedAt)
				existingRecent := isRecent(loc.TimeDecay.CapturedDate, cluster.CreatedAt)
				if incomingRecent && existingRecent {
					addPenalty("location_mismatch", "locations disagree while both recent", 0.15, true)
				} else {
					addPenalty("location_mismatch", "locations disagree; possible relocation", 0.05, false)
				}
				break
			}
		}
	}

	return out, penalty
}

func existingLocationAttribute(e *model.Entity) *model.Attribute {
	if a := e.FindAttribute("current_location"); a != nil {
		return a
	}
	return e.FindAttribute("location")
}

func isRecent(t time.Time, reference time.Time) bool {
	if t.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now().UTC()
	}
	return reference.Sub(t) <= recentWindow
}

func matchType(handleExact, handleCross bool, nameFactor float64, orgMatch, titleMatch bool) string {
	switch {
	case handleExact:
		return "social_handle"
	case handleCross:
		return "handle_alias_cross"
	case nameFactor >= personNameShortCircuit:
		return "name_high"
	case orgMatch && titleMatch:
		return "name_org_title"
	case nameFactor > 0:
		return "name_partial"
	default:
		return ""
	}
}
