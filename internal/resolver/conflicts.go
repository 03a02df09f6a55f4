package resolver

import (
	"time"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/similarity"
)

// disagreementThreshold is the Dice floor below which two values are
// treated as disagreeing rather than the same fact restated (spec §4.5.2
// uses the scorer's own dominant-match rules).
const disagreementThreshold = 0.7

// recentWindow mirrors the association scorer's "recent" cutoff (spec
// §4.4, §4.5.2): a date within the last two years counts as current.
const recentWindow = 2 * 365 * 24 * time.Hour

// isRecent reports whether t falls within recentWindow of reference. A
// zero t (undated/stale) is never recent.
func isRecent(t, reference time.Time) bool {
	if t.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now().UTC()
	}
	return reference.Sub(t) <= recentWindow
}

// DetectConflicts compares cluster's incoming title/organization/location/
// handle signals against existing, categorizing each disagreement as
// FACTUAL, TEMPORAL, or IDENTITY (spec §4.5.2). TEMPORAL conflicts are
// pre-resolved in place (Resolution populated, AutoResolved true).
func DetectConflicts(existing *model.Entity, cluster *model.SignalCluster) []model.Conflict {
	var conflicts []model.Conflict
	now := cluster.Source.ExtractedAt
	if now.IsZero() {
		now = cluster.UpdatedAt
	}

	addTitleOrg := func(attrKeys []string, incomingValues []string) {
		attr := firstAttribute(existing, attrKeys)
		if attr == nil || len(incomingValues) == 0 {
			return
		}
		for _, incoming := range incomingValues {
			if similarity.Similarity(incoming, attr.Value) >= disagreementThreshold {
				return // agrees; nothing to report
			}
		}
		bothRecent := isRecent(now, now) && isRecent(attr.TimeDecay.CapturedDate, now)
		ctype := model.ConflictTemporal
		if bothRecent {
			ctype = model.ConflictFactual
		}
		conflicts = append(conflicts, makeConflict(existing.EntityID, attr.Key, incomingValues[0], now, attr.Value, attr.TimeDecay.CapturedDate, ctype))
	}

	addTitleOrg([]string{"title", "role", "current_role", "headline"}, cluster.Signals.Titles)
	addTitleOrg([]string{"organization", "company", "current_company"}, cluster.Signals.Organizations)

	if attr := firstAttribute(existing, []string{"current_location", "location"}); attr != nil && len(cluster.Signals.Locations) > 0 {
		agrees := false
		for _, incoming := range cluster.Signals.Locations {
			if similarity.Similarity(incoming, attr.Value) >= disagreementThreshold {
				agrees = true
				break
			}
		}
		if !agrees {
			bothWithin2Years := isRecent(now, now) && isRecent(attr.TimeDecay.CapturedDate, now)
			ctype := model.ConflictTemporal
			if bothWithin2Years {
				ctype = model.ConflictIdentity
			}
			conflicts = append(conflicts, makeConflict(existing.EntityID, attr.Key, cluster.Signals.Locations[0], now, attr.Value, attr.TimeDecay.CapturedDate, ctype))
		}
	}

	handles := entityHandlesFor(existing)
	checkHandle := func(incoming, existingVal, attrName string) {
		if incoming == "" || existingVal == "" || incoming == existingVal {
			return
		}
		conflicts = append(conflicts, makeConflict(existing.EntityID, attrName, incoming, now, existingVal, time.Time{}, model.ConflictIdentity))
	}
	checkHandle(cluster.Signals.Handles.X, handles.X, "x_handle")
	checkHandle(cluster.Signals.Handles.Instagram, handles.Instagram, "instagram_handle")
	checkHandle(cluster.Signals.Handles.LinkedIn, handles.LinkedIn, "linkedin_handle")

	for i := range conflicts {
		if conflicts[i].ConflictType == model.ConflictTemporal {
			autoResolveTemporal(&conflicts[i])
		}
	}
	return conflicts
}

func firstAttribute(e *model.Entity, keys []string) *model.Attribute {
	for _, k := range keys {
		if a := e.FindAttribute(k); a != nil {
			return a
		}
	}
	return nil
}

func makeConflict(entityID, attr, valueA string, dateA time.Time, valueB string, dateB time.Time, ctype model.ConflictType) model.Conflict {
	// ConflictID is assigned by the caller (resolveCluster) when the
	// conflict is actually appended to the entity's conflicts[]; a
	// freshly detected, not-yet-persisted conflict has none.
	return model.Conflict{
		EntityID:     entityID,
		Attribute:    attr,
		ValueA:       valueA,
		DateA:        dateA,
		ValueB:       valueB,
		DateB:        dateB,
		ConflictType: ctype,
		DetectedAt:   dateA,
	}
}

// autoResolveTemporal resolves a TEMPORAL conflict in place: the value with
// the more recent date wins (spec §4.5.2).
func autoResolveTemporal(c *model.Conflict) {
	winner := model.WinnerA
	winningValue := c.ValueA
	if c.DateB.After(c.DateA) {
		winner = model.WinnerB
		winningValue = c.ValueB
	}
	c.AutoResolved = true
	c.Resolution = &model.ConflictResolution{
		ResolvedAt:   c.DetectedAt,
		Winner:       winner,
		WinningValue: winningValue,
		Reason:       "most recent source wins for current-state attribute",
	}
}

// HasBlockingIdentityConflict reports whether conflicts contains an
// unresolved IDENTITY conflict, which blocks a merge unless the cluster has
// _identity_confirmed set (spec §4.5.3 "merge").
func HasBlockingIdentityConflict(conflicts []model.Conflict) bool {
	for _, c := range conflicts {
		if c.ConflictType == model.ConflictIdentity {
			return true
		}
	}
	return false
}
