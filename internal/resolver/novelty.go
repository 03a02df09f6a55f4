package resolver

import (
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/similarity"
)

// duplicateThreshold is the Dice similarity above which an incoming signal
// value is considered a duplicate of an existing one (spec §4.5.1 step 5,
// "using the same Dice rules" as the association scorer's dominant-match
// threshold).
const duplicateThreshold = 0.7

// computeNovelty determines, per signal, whether it is new or duplicate
// relative to candidate, and rolls that up into a new/duplicate ratio (spec
// §4.5.1 step 5).
func computeNovelty(cluster *model.SignalCluster, candidate *model.Entity) model.DataNovelty {
	props := similarity.GetEntityProperties(candidate)
	handles := entityHandlesFor(candidate)

	var details []model.NoveltyDetail
	add := func(signalType, value string, isNew bool) {
		details = append(details, model.NoveltyDetail{SignalType: signalType, Value: value, IsNew: isNew})
	}

	for _, v := range cluster.Signals.Titles {
		add("title", v, !matchesAnyValue(v, props.Titles))
	}
	for _, v := range cluster.Signals.Organizations {
		add("organization", v, !matchesAnyValue(v, props.Organizations))
	}
	for _, v := range cluster.Signals.Locations {
		add("location", v, !matchesAnyValue(v, props.Locations))
	}
	for _, v := range cluster.Signals.Skills {
		add("skill", v, !matchesAnyValue(v, props.Skills))
	}
	for _, v := range cluster.Signals.Education {
		add("education", v, !matchesAnyValue(v, candidateEducation(candidate)))
	}
	if cluster.Signals.Handles.X != "" {
		add("handle_x", cluster.Signals.Handles.X, !matchesValue(cluster.Signals.Handles.X, handles.X))
	}
	if cluster.Signals.Handles.Instagram != "" {
		add("handle_instagram", cluster.Signals.Handles.Instagram, !matchesValue(cluster.Signals.Handles.Instagram, handles.Instagram))
	}
	if cluster.Signals.Handles.LinkedIn != "" {
		add("handle_linkedin", cluster.Signals.Handles.LinkedIn, !matchesValue(cluster.Signals.Handles.LinkedIn, handles.LinkedIn))
	}

	newCount, dupCount := 0, 0
	for _, d := range details {
		if d.IsNew {
			newCount++
		} else {
			dupCount++
		}
	}
	ratio := 1.0
	if total := newCount + dupCount; total > 0 {
		ratio = float64(newCount) / float64(total)
	}

	return model.DataNovelty{
		Ratio:            ratio,
		NewSignals:       newCount,
		DuplicateSignals: dupCount,
		Details:          details,
	}
}

func matchesAnyValue(v string, existing []string) bool {
	for _, e := range existing {
		if similarity.Similarity(v, e) > duplicateThreshold {
			return true
		}
	}
	return false
}

func matchesValue(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return similarity.Similarity(a, b) > duplicateThreshold
}

func candidateEducation(e *model.Entity) []string {
	if e.CareerLite == nil {
		return nil
	}
	return e.CareerLite.Education
}

func entityHandlesFor(e *model.Entity) model.Handles {
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

// isNewData reports whether the novelty ratio crosses the new-data
// threshold (spec §4.5.1 step 5: "isNewData = ratio > 0.5").
func isNewData(n model.DataNovelty) bool {
	return n.Ratio > 0.5
}
