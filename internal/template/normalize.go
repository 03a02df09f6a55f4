// Package template implements template normalization and the per-tenant
// registry (component T, spec §4.9): coercing legacy and new-format
// templates into one unified shape so the gap analyzer (GA) only ever has
// to reason about a single representation.
package template

import (
	"strings"

	"github.com/spokegraph/provisioner/internal/model"
)

// inferSensitivity infers a synthesized field's sensitivity from its name
// (spec §4.9 "Field sensitivity for legacy wrapping").
func inferSensitivity(fieldName string) model.Sensitivity {
	lower := strings.ToLower(fieldName)
	switch {
	case strings.Contains(lower, "ssn"), strings.Contains(lower, "ein"):
		return model.SensitivityCritical
	case strings.Contains(lower, "full_name"), strings.Contains(lower, "legal_name"), strings.Contains(lower, "dob"), strings.Contains(lower, "date_of_birth"):
		return model.SensitivityHigh
	case strings.Contains(lower, "address"), strings.Contains(lower, "contact"):
		return model.SensitivityStandard
	default:
		return model.SensitivityStandard
	}
}

// defaultSynthesizedTier is applied to fields synthesized from a legacy
// template, which carries no necessity-tier information of its own.
const defaultSynthesizedTier = model.TierExpected

// Normalize coerces t in place to the unified shape (spec §4.9): a
// new-format template (has document_types) gains back-compat
// required_documents/required_entities; a legacy template (has only
// required_documents/required_entities) gains synthesized document_types
// and entity_roles. A template with neither is left untouched.
func Normalize(t *model.Template) {
	switch {
	case len(t.DocumentTypes) > 0:
		normalizeNewFormat(t)
	case len(t.RequiredDocuments) > 0 || len(t.RequiredEntities) > 0:
		t.LegacyFormat = true
		normalizeLegacy(t)
	}
}

func normalizeNewFormat(t *model.Template) {
	if len(t.RequiredDocuments) == 0 {
		byCategory := make(map[string][]string)
		var order []string
		for _, dt := range t.DocumentTypes {
			cat := dt.Category
			if cat == "" {
				cat = "general"
			}
			if _, seen := byCategory[cat]; !seen {
				order = append(order, cat)
			}
			byCategory[cat] = append(byCategory[cat], dt.DisplayName)
		}
		for _, cat := range order {
			t.RequiredDocuments = append(t.RequiredDocuments, model.RequiredDocumentGroup{Category: cat, Items: byCategory[cat]})
		}
	}
	if len(t.RequiredEntities) == 0 && len(t.EntityRoles) > 0 {
		t.RequiredEntities = append([]model.EntityRole(nil), t.EntityRoles...)
	}
}

func normalizeLegacy(t *model.Template) {
	if len(t.DocumentTypes) == 0 {
		for _, group := range t.RequiredDocuments {
			for _, item := range group.Items {
				t.DocumentTypes = append(t.DocumentTypes, model.DocumentType{
					TypeID:                item,
					DisplayName:           humanize(item),
					Category:              group.Category,
					Priority:              model.PriorityMedium,
					ClassificationSignals: []string{humanize(item)},
					ExtractionSpec: []model.FieldSpec{{
						FieldID:       item,
						DisplayName:   humanize(item),
						Sensitivity:   inferSensitivity(item),
						NecessityTier: defaultSynthesizedTier,
					}},
				})
			}
		}
	}
	if len(t.EntityRoles) == 0 && len(t.RequiredEntities) > 0 {
		t.EntityRoles = append([]model.EntityRole(nil), t.RequiredEntities...)
	}
}

// humanize converts a snake_case item name into a display form
// ("full_name" -> "full name"), per spec §4.9.
func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
