// Package decompose implements the object decomposer (collaborator
// contract, spec §4.7): after a person entity is created or merged, it
// projects derived facets — contact, work history, education, social graph
// — into normalized, non-authoritative computed fields on the same entity.
// Decomposition is idempotent, reads only the canonical entity, and never
// mints new entity_ids.
package decompose

import (
	"sort"
	"strings"

	"github.com/spokegraph/provisioner/internal/model"
)

// contactKeys name the attribute keys folded into the derived contact facet.
var contactKeys = map[string]string{
	"email":       "email",
	"phone":       "phone",
	"phone_number": "phone",
	"address":     "address",
}

// Decompose recomputes e's derived facets in place under
// e.StructuredAttributes.Fields, leaving every authoritative field (Name,
// Attributes, Relationships, Observations, Provenance) untouched. Safe to
// call repeatedly: the output depends only on the current canonical state.
func Decompose(e *model.Entity) {
	if e.EntityType != model.EntityPerson {
		return
	}

	fields := map[string]any{
		"contact":      contactFacet(e),
		"work_history":  workHistoryFacet(e),
		"education":     educationFacet(e),
		"social_graph":  socialGraphFacet(e),
	}

	if e.StructuredAttributes == nil {
		e.StructuredAttributes = &model.StructuredAttributes{}
	}
	if e.StructuredAttributes.Fields == nil {
		e.StructuredAttributes.Fields = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		e.StructuredAttributes.Fields[k] = v
	}
}

func contactFacet(e *model.Entity) map[string]string {
	out := make(map[string]string)
	for _, a := range e.Attributes {
		if facet, ok := contactKeys[a.Key]; ok {
			out[facet] = a.Value
		}
	}
	return out
}

func workHistoryFacet(e *model.Entity) []model.CareerExperience {
	if e.CareerLite == nil {
		return nil
	}
	out := make([]model.CareerExperience, len(e.CareerLite.Experience))
	copy(out, e.CareerLite.Experience)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Current != out[j].Current {
			return out[i].Current
		}
		return out[i].Organization < out[j].Organization
	})
	return out
}

func educationFacet(e *model.Entity) []string {
	if e.CareerLite == nil {
		return nil
	}
	out := make([]string, len(e.CareerLite.Education))
	copy(out, e.CareerLite.Education)
	sort.Strings(out)
	return out
}

func socialGraphFacet(e *model.Entity) map[string][]string {
	out := make(map[string][]string)
	for _, r := range e.Relationships {
		t := strings.ToLower(r.RelationshipType)
		out[t] = append(out[t], r.Name)
	}
	for t := range out {
		sort.Strings(out[t])
	}
	return out
}
