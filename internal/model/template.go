package model

// Priority is how critical a document type is to a template.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Sensitivity classifies how sensitive a field's content is.
type Sensitivity string

const (
	SensitivityCritical Sensitivity = "CRITICAL"
	SensitivityHigh     Sensitivity = "HIGH"
	SensitivityStandard Sensitivity = "STANDARD"
)

// NecessityTier is how critical a field is to the completeness scorecard.
type NecessityTier string

const (
	TierBlocking  NecessityTier = "BLOCKING"
	TierExpected  NecessityTier = "EXPECTED"
	TierEnriching NecessityTier = "ENRICHING"
)

// ValidationKind is the cross-document rule comparison strategy.
type ValidationKind string

const (
	ValidationExact      ValidationKind = "exact"
	ValidationComparison ValidationKind = "comparison"
	ValidationFuzzy      ValidationKind = "fuzzy"
)

// FieldSpec is one field within a document type's extraction spec.
type FieldSpec struct {
	FieldID       string        `json:"field_id"`
	DisplayName   string        `json:"display_name"`
	FieldType     string        `json:"field_type,omitempty"`
	Sensitivity   Sensitivity   `json:"sensitivity"`
	NecessityTier NecessityTier `json:"necessity_tier"`
}

// DocumentType is one required/classifiable document kind in a template.
type DocumentType struct {
	TypeID               string      `json:"type_id"`
	DisplayName          string      `json:"display_name"`
	Category             string      `json:"category,omitempty"`
	Priority             Priority    `json:"priority"`
	ClassificationSignals []string   `json:"classification_signals"`
	ExtractionSpec        []FieldSpec `json:"extraction_spec"`
}

// EntityRole is a required entity role in a template.
type EntityRole struct {
	RoleID         string   `json:"role_id"`
	DisplayName    string   `json:"display_name"`
	Type           string   `json:"type"`
	Optional       bool     `json:"optional,omitempty"`
	MinCount       int      `json:"min_count,omitempty"`
	RequiredFields []string `json:"required_fields,omitempty"`
}

// CrossDocRule validates a field across multiple documents/entities.
type CrossDocRule struct {
	RuleID      string         `json:"rule_id"`
	Description string         `json:"description,omitempty"`
	Severity    string         `json:"severity"`
	Validation  ValidationKind `json:"validation"`
	Fields      []string       `json:"fields"`
}

// RequiredDocumentGroup is the legacy back-compat shape for required_documents.
type RequiredDocumentGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Template is normalized on load to carry both legacy and new-format shapes.
// See spec §4.9.
type Template struct {
	TemplateID  string `json:"template_id"`
	Version     string `json:"version,omitempty"`
	DisplayName string `json:"display_name"`
	Label       string `json:"label,omitempty"`

	DocumentTypes []DocumentType `json:"document_types"`
	EntityRoles   []EntityRole   `json:"entity_roles"`
	CrossDocRules []CrossDocRule `json:"cross_doc_rules,omitempty"`

	// Back-compat aliases, synthesized/derived on normalization.
	RequiredDocuments []RequiredDocumentGroup `json:"required_documents,omitempty"`
	RequiredEntities  []EntityRole            `json:"required_entities,omitempty"`

	// LegacyFormat records whether this template arrived with only the
	// required_documents/required_entities shape (no document_types) before
	// normalization synthesized the rest. The gap analyzer's overall-score
	// formula (spec §4.8 step 8) branches on this, so it must survive
	// normalization even though both shapes are populated afterward.
	LegacyFormat bool `json:"-"`
}
