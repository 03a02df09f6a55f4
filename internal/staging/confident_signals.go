package staging

import (
	"time"

	"github.com/spokegraph/provisioner/internal/confidence"
	"github.com/spokegraph/provisioner/internal/model"
)

// buildConfidentSignals scores every extracted signal's initial confidence
// (spec §4.2): volatile-class signals (titles, organizations, locations)
// use the recency-aware computeAttributeConfidence; historical-class
// signals (names, handles, skills, education) use the raw source weight;
// bios use source weight × 0.9. All signals have exactly one source (this
// cluster) at staging time, so corroboration is 1.0 throughout.
func buildConfidentSignals(s model.Signals, extracted model.ExtractedEntity, sourceWeight float64, capturedAt time.Time) model.ConfidentSignals {
	_ = extracted // reserved for entity-type-specific weighting rules

	scoreVolatile := func(value, recencyKey string) model.ScoredValue {
		c := confidence.ComputeAttributeConfidence(sourceWeight, capturedAt, recencyKey, 1, time.Now().UTC())
		return model.ScoredValue{Value: value, Confidence: c, ProjectedConfidence: c}
	}
	scoreHistorical := func(value string) model.ScoredValue {
		return model.ScoredValue{Value: value, Confidence: sourceWeight, ProjectedConfidence: sourceWeight}
	}
	scoreBio := func(value string) model.ScoredValue {
		c := sourceWeight * 0.9
		return model.ScoredValue{Value: value, Confidence: c, ProjectedConfidence: c}
	}

	var out model.ConfidentSignals
	for _, n := range s.Names {
		out.Names = append(out.Names, scoreHistorical(n))
	}
	for _, t := range s.Titles {
		out.Titles = append(out.Titles, scoreVolatile(t, "role"))
	}
	for _, o := range s.Organizations {
		out.Organizations = append(out.Organizations, scoreVolatile(o, "company"))
	}
	for _, l := range s.Locations {
		out.Locations = append(out.Locations, scoreVolatile(l, "location"))
	}
	for _, b := range s.Bios {
		out.Bios = append(out.Bios, scoreBio(b))
	}
	for _, sk := range s.Skills {
		out.Skills = append(out.Skills, scoreHistorical(sk))
	}
	for _, ed := range s.Education {
		out.Education = append(out.Education, scoreHistorical(ed))
	}
	if s.Handles.X != "" {
		v := scoreHistorical(s.Handles.X)
		out.Handles.X = &v
	}
	if s.Handles.Instagram != "" {
		v := scoreHistorical(s.Handles.Instagram)
		out.Handles.Instagram = &v
	}
	if s.Handles.LinkedIn != "" {
		v := scoreHistorical(s.Handles.LinkedIn)
		out.Handles.LinkedIn = &v
	}
	return out
}

// signalConfidence is the mean confidence across every scored signal leaf,
// recorded on the cluster as signal_confidence (spec §4.5.1 step 1).
func signalConfidence(c model.ConfidentSignals) float64 {
	var vals []float64
	collect := func(svs []model.ScoredValue) {
		for _, sv := range svs {
			vals = append(vals, sv.Confidence)
		}
	}
	collect(c.Names)
	collect(c.Titles)
	collect(c.Organizations)
	collect(c.Locations)
	collect(c.Bios)
	collect(c.Skills)
	collect(c.Education)
	if c.Handles.X != nil {
		vals = append(vals, c.Handles.X.Confidence)
	}
	if c.Handles.Instagram != nil {
		vals = append(vals, c.Handles.Instagram.Confidence)
	}
	if c.Handles.LinkedIn != nil {
		vals = append(vals, c.Handles.LinkedIn.Confidence)
	}
	return confidence.EntityConfidence(vals)
}
