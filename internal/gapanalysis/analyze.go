package gapanalysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spokegraph/provisioner/internal/classifier"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
	"github.com/spokegraph/provisioner/internal/template"
)

const (
	maxMissingDocSuggestions          = 5
	maxMissingEntityFieldSuggestions  = 5
	maxMissingDocFieldSuggestions     = 3
	maxMissingRelationshipSuggestions = 3
)

// AnalyzeGaps runs the gap analyzer end to end (spec §4.8). tierAdjustments
// overrides a field's effective necessity tier by field id; pass nil to use
// the template's declared tiers. oracle may be nil, in which case
// classification is signal-based only.
func AnalyzeGaps(ctx context.Context, tenant *store.Tenant, registry *template.Registry, spokeID, templateType string, tierAdjustments map[string]string, oracle classifier.Oracle) (*Scorecard, error) {
	tmpl, ok := registry.Get(templateType)
	if !ok {
		return nil, fmt.Errorf("template not found: %s", templateType)
	}

	entities, err := tenant.Entities.ListBySpoke(ctx, spokeID)
	if err != nil {
		return nil, fmt.Errorf("gapanalysis: list entities for spoke %s: %w", spokeID, err)
	}

	idx := assembleScope(entities)
	_, present, err := classifyDocs(ctx, tmpl.DocumentTypes, idx, oracle)
	if err != nil {
		return nil, err
	}

	sc := &Scorecard{
		SpokeID:         spokeID,
		TemplateType:    templateType,
		SourceDocuments: sourceFilenames(idx),
		EntityCount:     len(entities),
	}

	scoreDocuments(sc, tmpl, present)
	docFieldGaps := scoreFields(sc, tmpl, entities, present, tierAdjustments)
	entityFieldGaps := scoreEntities(sc, tmpl, entities)
	scoreRelationships(sc, tmpl, entities)
	sc.CrossDocViolations = evaluateCrossDocRules(tmpl, entities)

	if tmpl.LegacyFormat {
		sc.OverallScore = round2(0.4*sc.DocumentScore + 0.4*sc.EntityScore + 0.2*sc.RelationshipScore)
	} else {
		sc.OverallScore = round2(0.5*sc.DocumentScore + 0.5*sc.Completeness)
	}

	sc.Suggestions = buildSuggestions(sc, tmpl, present, docFieldGaps, entityFieldGaps)
	return sc, nil
}

func scoreDocuments(sc *Scorecard, tmpl *model.Template, present map[string]bool) {
	total := len(tmpl.DocumentTypes)
	if total == 0 {
		sc.DocumentScore = 1.0
		return
	}
	found := 0
	for _, dt := range tmpl.DocumentTypes {
		if present[dt.TypeID] {
			found++
			sc.FoundDocuments = append(sc.FoundDocuments, dt.DisplayName)
		} else {
			sc.MissingDocuments = append(sc.MissingDocuments, dt.DisplayName)
		}
	}
	sc.DocumentScore = round2(float64(found) / float64(total))
}

// docFieldGap names one missing extraction-spec field on a present document
// type, used to build "Extract X from Y" suggestions.
type docFieldGap struct {
	DocDisplayName   string
	FieldDisplayName string
}

func scoreFields(sc *Scorecard, tmpl *model.Template, entities []*model.Entity, present map[string]bool, tierAdjustments map[string]string) []docFieldGap {
	var gaps []docFieldGap
	var tc TierCounts
	applied := 0

	for _, dt := range tmpl.DocumentTypes {
		if !present[dt.TypeID] {
			continue
		}
		for _, field := range dt.ExtractionSpec {
			tier := field.NecessityTier
			if override, ok := tierAdjustments[field.FieldID]; ok {
				ot := model.NecessityTier(strings.ToUpper(override))
				if ot != tier {
					applied++
				}
				tier = ot
			}

			extracted := documentFieldExtracted(entities, field.FieldID)
			switch tier {
			case model.TierBlocking:
				tc.BlockingTotal++
				if extracted {
					tc.BlockingExtracted++
				} else {
					sc.MissingBlockingFields = append(sc.MissingBlockingFields, field.DisplayName)
				}
			case model.TierExpected:
				tc.ExpectedTotal++
				if extracted {
					tc.ExpectedExtracted++
				} else {
					sc.MissingExpectedFields = append(sc.MissingExpectedFields, field.DisplayName)
				}
			default: // TierEnriching and any unrecognized override
				tc.EnrichingTotal++
				if extracted {
					tc.EnrichingExtracted++
				} else {
					sc.MissingEnrichingFields = append(sc.MissingEnrichingFields, field.DisplayName)
				}
			}
			if !extracted {
				gaps = append(gaps, docFieldGap{DocDisplayName: dt.DisplayName, FieldDisplayName: field.DisplayName})
			}
		}
	}

	sc.TierCounts = tc
	sc.TierAdjustmentsApplied = applied

	sc.FilingReadiness = ratioOrOne(tc.BlockingExtracted, tc.BlockingTotal)
	sc.QualityScore = ratioOrOne(tc.BlockingExtracted+tc.ExpectedExtracted, tc.BlockingTotal+tc.ExpectedTotal)
	sc.Completeness = ratioOrOne(tc.BlockingExtracted+tc.ExpectedExtracted+tc.EnrichingExtracted, tc.BlockingTotal+tc.ExpectedTotal+tc.EnrichingTotal)
	return gaps
}

// documentFieldExtracted reports whether fieldID's value can be found on any
// entity in the spoke, via attribute-key alias match or observation text
// (spec §4.8 step 4).
func documentFieldExtracted(entities []*model.Entity, fieldID string) bool {
	for _, e := range entities {
		if entityHasField(e, fieldID) {
			return true
		}
	}
	return false
}

// entityHasField implements _entityHasField (spec §4.8 steps 4-5): an
// attribute-key alias match, a name-field short-circuit via PrimaryName, or
// an observation-text substring match.
func entityHasField(e *model.Entity, fieldID string) bool {
	for _, a := range e.Attributes {
		if keyMatchesField(a.Key, fieldID) {
			return true
		}
	}
	for _, alias := range aliasesFor(fieldID) {
		if (alias == "name" || alias == "full_name" || alias == "legal_name") && e.PrimaryName() != "" {
			return true
		}
	}
	needle := strings.ToLower(strings.ReplaceAll(fieldID, "_", " "))
	for _, obs := range e.Observations {
		if strings.Contains(strings.ToLower(obs.Text), needle) {
			return true
		}
	}
	return false
}

type entityFieldGap struct {
	RoleDisplayName  string
	FieldDisplayName string
}

func scoreEntities(sc *Scorecard, tmpl *model.Template, entities []*model.Entity) []entityFieldGap {
	var gaps []entityFieldGap
	total, extracted := 0, 0

	for _, role := range tmpl.EntityRoles {
		matched := bestRoleCandidate(role, entities)
		if matched == nil && role.Optional {
			continue
		}
		for _, field := range role.RequiredFields {
			total++
			if matched != nil && entityHasField(matched, field) {
				extracted++
			} else {
				sc.MissingEntityFields = append(sc.MissingEntityFields, fmt.Sprintf("%s for %s", field, role.DisplayName))
				gaps = append(gaps, entityFieldGap{RoleDisplayName: role.DisplayName, FieldDisplayName: field})
			}
		}
	}
	sc.EntityScore = ratioOrOne(extracted, total)
	return gaps
}

// bestRoleCandidate finds the entity best matching role (spec §4.8 step 5):
// type-compatible (with organization/business/institution aliasing),
// preferring an entity whose relationships or observations mention the
// role's keyword.
func bestRoleCandidate(role model.EntityRole, entities []*model.Entity) *model.Entity {
	group := roleTypeGroup(role.Type)
	var candidates []*model.Entity
	for _, e := range entities {
		if entityTypeGroup(string(e.EntityType)) == group {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	keyword := strings.ToLower(role.DisplayName)
	roleID := strings.ToLower(strings.ReplaceAll(role.RoleID, "_", " "))
	for _, e := range candidates {
		if entityMentionsKeyword(e, keyword) || entityMentionsKeyword(e, roleID) {
			return e
		}
	}
	return candidates[0]
}

func entityMentionsKeyword(e *model.Entity, keyword string) bool {
	if keyword == "" {
		return false
	}
	for _, rel := range e.Relationships {
		if strings.Contains(strings.ToLower(rel.Name), keyword) || strings.Contains(strings.ToLower(rel.RelationshipType), keyword) {
			return true
		}
	}
	for _, obs := range e.Observations {
		if strings.Contains(strings.ToLower(obs.Text), keyword) {
			return true
		}
	}
	return false
}

func scoreRelationships(sc *Scorecard, tmpl *model.Template, entities []*model.Entity) {
	total, satisfied := 0, 0
	for _, role := range tmpl.EntityRoles {
		if role.Optional {
			continue
		}
		total++
		if bestRoleCandidate(role, entities) != nil {
			satisfied++
			continue
		}
		keyword := strings.ToLower(role.DisplayName)
		found := false
		for _, e := range entities {
			if entityMentionsKeyword(e, keyword) {
				found = true
				break
			}
		}
		if found {
			satisfied++
		} else {
			sc.MissingRelationshipRoles = append(sc.MissingRelationshipRoles, role.DisplayName)
		}
	}
	sc.RelationshipScore = ratioOrOne(satisfied, total)
}

// evaluateCrossDocRules implements spec §4.8 step 7. "comparison" rules
// collect no data that is auto-flagged and never produce a violation.
func evaluateCrossDocRules(tmpl *model.Template, entities []*model.Entity) []CrossDocViolation {
	var out []CrossDocViolation
	for _, rule := range tmpl.CrossDocRules {
		values := collectRuleValues(rule, entities)
		switch rule.Validation {
		case model.ValidationExact:
			if distinct := dedupFold(values); len(distinct) >= 2 {
				out = append(out, CrossDocViolation{RuleID: rule.RuleID, Severity: rule.Severity, Fields: rule.Fields, ConflictingValues: distinct})
			}
		case model.ValidationFuzzy:
			distinct := dedupFold(values)
			if fuzzyDisagree(distinct) {
				out = append(out, CrossDocViolation{RuleID: rule.RuleID, Severity: rule.Severity, Fields: rule.Fields, ConflictingValues: distinct})
			}
		case model.ValidationComparison:
			// Data collected but not auto-flagged (spec §4.8 step 7).
		}
	}
	return out
}

func collectRuleValues(rule model.CrossDocRule, entities []*model.Entity) []string {
	var values []string
	for _, e := range entities {
		for _, a := range e.Attributes {
			for _, field := range rule.Fields {
				if keyMatchesField(a.Key, field) && a.Value != "" {
					values = append(values, a.Value)
					break
				}
			}
		}
	}
	return values
}

// dedupFold deduplicates case/whitespace-insensitively, keeping the first
// original-cased occurrence of each distinct value.
func dedupFold(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// fuzzyDisagree reports whether any pair of distinct values mismatches in
// both substring directions (spec §4.8 step 7 "fuzzy" validation).
func fuzzyDisagree(distinct []string) bool {
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			a, b := strings.ToLower(distinct[i]), strings.ToLower(distinct[j])
			if !strings.Contains(a, b) && !strings.Contains(b, a) {
				return true
			}
		}
	}
	return false
}

func buildSuggestions(sc *Scorecard, tmpl *model.Template, present map[string]bool, docFieldGaps []docFieldGap, entityFieldGaps []entityFieldGap) []string {
	var out []string

	missingDocs := 0
	for _, dt := range tmpl.DocumentTypes {
		if present[dt.TypeID] {
			continue
		}
		if missingDocs >= maxMissingDocSuggestions {
			break
		}
		out = append(out, fmt.Sprintf("Request %s from client", dt.DisplayName))
		missingDocs++
	}

	for i, g := range entityFieldGaps {
		if i >= maxMissingEntityFieldSuggestions {
			break
		}
		out = append(out, fmt.Sprintf("Obtain %s for role %s", g.FieldDisplayName, g.RoleDisplayName))
	}

	for i, g := range docFieldGaps {
		if i >= maxMissingDocFieldSuggestions {
			break
		}
		out = append(out, fmt.Sprintf("Extract %s from %s", g.FieldDisplayName, g.DocDisplayName))
	}

	for i, role := range sc.MissingRelationshipRoles {
		if i >= maxMissingRelationshipSuggestions {
			break
		}
		out = append(out, fmt.Sprintf("Identify and add %s", role))
	}

	return out
}

func ratioOrOne(numerator, denominator int) float64 {
	if denominator == 0 {
		return 1.0
	}
	return round2(float64(numerator) / float64(denominator))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
