// Package merge implements the merge engine (collaborator contract, spec
// §4.6): unioning an incoming attribute/relationship/observation set into
// an existing entity. Conflict detection, corroboration bumps, and
// observation deduplication are the resolver's responsibility; this package
// only performs the structural union.
package merge

import (
	"strings"

	"github.com/spokegraph/provisioner/internal/model"
)

// Input is the incoming side of a merge: the data staged from a signal
// cluster, already converted into canonical entity-shaped fields.
type Input struct {
	Name                 model.Name
	Summary              *model.Summary
	Attributes           []model.Attribute
	Relationships         []model.Relationship
	CareerLite           *model.CareerLite
	StructuredAttributes *model.StructuredAttributes
	IsSelfEntity         bool
}

// Result is the outcome of a merge: the mutated entity and a human-readable
// change log for provenance/audit purposes.
type Result struct {
	Merged  *model.Entity
	Changes []string
}

// Merge unions in into existing in place and returns the result. existing's
// entity_id is always preserved; its name and summary are preserved when
// in.IsSelfEntity (the centered entity is protected from identity
// overwrites), otherwise higher-confidence/more-recent values win per
// attribute key (spec §4.6).
func Merge(existing *model.Entity, in Input) Result {
	var changes []string

	if !in.IsSelfEntity {
		if mergeName(existing, in.Name) {
			changes = append(changes, "name updated from higher-confidence source")
		}
		if in.Summary != nil && in.Summary.Value != "" && in.Summary.Confidence >= existing.Summary.Confidence {
			existing.Summary = *in.Summary
			changes = append(changes, "summary updated")
		}
	}

	existing.Attributes, changes = mergeAttributes(existing.Attributes, in.Attributes, changes)
	existing.Relationships, changes = mergeRelationships(existing.Relationships, in.Relationships, changes)

	if in.CareerLite != nil && !careerLiteEmpty(in.CareerLite) {
		existing.CareerLite = in.CareerLite
		changes = append(changes, "career_lite replaced by incoming (non-empty)")
	}
	if in.StructuredAttributes != nil && (in.StructuredAttributes.Interface == "profile" || len(in.StructuredAttributes.Fields) > 0) {
		existing.StructuredAttributes = in.StructuredAttributes
		changes = append(changes, "structured_attributes replaced by incoming (non-empty)")
	}

	return Result{Merged: existing, Changes: changes}
}

func mergeName(e *model.Entity, incoming model.Name) bool {
	changed := false
	if incoming.Person != nil {
		if e.Name.Person == nil {
			e.Name.Person = incoming.Person
			return true
		}
		for _, alias := range incoming.Person.Aliases {
			if !containsFold(e.Name.Person.Aliases, alias) {
				e.Name.Person.Aliases = append(e.Name.Person.Aliases, alias)
				changed = true
			}
		}
	}
	if incoming.Business != nil {
		if e.Name.Business == nil {
			e.Name.Business = incoming.Business
			return true
		}
		for _, alias := range incoming.Business.Aliases {
			if !containsFold(e.Name.Business.Aliases, alias) {
				e.Name.Business.Aliases = append(e.Name.Business.Aliases, alias)
				changed = true
			}
		}
	}
	return changed
}

// mergeAttributes unions by key, preferring the higher-confidence value on
// collision, breaking ties by more recent captured_date.
func mergeAttributes(existing, incoming []model.Attribute, changes []string) ([]model.Attribute, []string) {
	byKey := make(map[string]int, len(existing))
	for i, a := range existing {
		byKey[a.Key] = i
	}
	for _, in := range incoming {
		idx, ok := byKey[in.Key]
		if !ok {
			existing = append(existing, in)
			byKey[in.Key] = len(existing) - 1
			changes = append(changes, "attribute added: "+in.Key)
			continue
		}
		cur := existing[idx]
		winner := cur
		switch {
		case in.Confidence > cur.Confidence:
			winner = in
		case in.Confidence == cur.Confidence && in.TimeDecay.CapturedDate.After(cur.TimeDecay.CapturedDate):
			winner = in
		}
		if winner.Value != cur.Value {
			changes = append(changes, "attribute updated: "+in.Key)
		}
		existing[idx] = winner
	}
	return existing, changes
}

// mergeRelationships unions by (name, relationship_type) semantic equality.
func mergeRelationships(existing, incoming []model.Relationship, changes []string) ([]model.Relationship, []string) {
	seen := make(map[string]bool, len(existing))
	key := func(r model.Relationship) string {
		return strings.ToLower(r.RelationshipType) + "|" + strings.ToLower(r.Name)
	}
	for _, r := range existing {
		seen[key(r)] = true
	}
	for _, r := range incoming {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		existing = append(existing, r)
		changes = append(changes, "relationship added: "+r.RelationshipType+" "+r.Name)
	}
	return existing, changes
}

func careerLiteEmpty(c *model.CareerLite) bool {
	return len(c.Experience) == 0 && c.Headline == "" && len(c.Skills) == 0 && len(c.Education) == 0
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
