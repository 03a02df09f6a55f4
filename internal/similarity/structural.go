package similarity

import "github.com/spokegraph/provisioner/internal/model"

// EntityProperties is the flattened set of comparable facts on an entity,
// used for structural similarity during ambiguous matches (spec §4.1
// "getEntityProperties").
type EntityProperties struct {
	Titles        []string
	Organizations []string
	Locations     []string
	Skills        []string
}

// GetEntityProperties flattens an entity's volatile/historical attributes
// into a comparable property set.
func GetEntityProperties(e *model.Entity) EntityProperties {
	var p EntityProperties
	for _, a := range e.Attributes {
		switch a.Key {
		case "title", "role", "current_role", "headline":
			p.Titles = append(p.Titles, a.Value)
		case "organization", "company", "current_company":
			p.Organizations = append(p.Organizations, a.Value)
		case "location", "current_location":
			p.Locations = append(p.Locations, a.Value)
		case "skill":
			p.Skills = append(p.Skills, a.Value)
		}
	}
	if e.CareerLite != nil {
		for _, exp := range e.CareerLite.Experience {
			if exp.Title != "" {
				p.Titles = append(p.Titles, exp.Title)
			}
			if exp.Organization != "" {
				p.Organizations = append(p.Organizations, exp.Organization)
			}
			if exp.Location != "" {
				p.Locations = append(p.Locations, exp.Location)
			}
		}
		p.Skills = append(p.Skills, e.CareerLite.Skills...)
	}
	return p
}

// PropertyOverlapCount counts how many properties in a and b are a likely
// match (Dice > 0.7), across titles/organizations/locations/skills.
func PropertyOverlapCount(a, b EntityProperties) int {
	count := 0
	count += overlap(a.Titles, b.Titles)
	count += overlap(a.Organizations, b.Organizations)
	count += overlap(a.Locations, b.Locations)
	count += overlap(a.Skills, b.Skills)
	return count
}

func overlap(a, b []string) int {
	count := 0
	for _, x := range a {
		for _, y := range b {
			if Similarity(x, y) > 0.7 {
				count++
			}
		}
	}
	return count
}

// CountSharedRelationships counts relationships on e that name any of the
// given names, used to test whether a candidate is mentioned elsewhere in
// the graph (spec §4.5.1 Q3 consolidation check).
func CountSharedRelationships(e *model.Entity, names []string) int {
	count := 0
	for _, rel := range e.Relationships {
		for _, n := range names {
			if Similarity(rel.Name, n) > 0.85 {
				count++
			}
		}
	}
	return count
}

// CountObservationMentions counts observations on e whose text mentions any
// of the given names as a case-insensitive substring.
func CountObservationMentions(e *model.Entity, names []string) int {
	count := 0
	for _, obs := range e.Observations {
		for _, n := range names {
			if n == "" {
				continue
			}
			if containsFold(obs.Text, n) {
				count++
			}
		}
	}
	return count
}
