// Package gapanalysis implements the gap analyzer (GA, spec §4.8):
// scoring a spoke's entity graph against a template's document, field,
// entity, and relationship requirements and producing a suggestion list.
package gapanalysis

// TierCounts tracks how many fields of each necessity tier were required
// vs. extracted, across the fields of present document types.
type TierCounts struct {
	BlockingTotal      int `json:"blocking_total"`
	BlockingExtracted  int `json:"blocking_extracted"`
	ExpectedTotal      int `json:"expected_total"`
	ExpectedExtracted  int `json:"expected_extracted"`
	EnrichingTotal     int `json:"enriching_total"`
	EnrichingExtracted int `json:"enriching_extracted"`
}

// CrossDocViolation is one rule.fields disagreement found across entities.
type CrossDocViolation struct {
	RuleID            string   `json:"rule_id"`
	Severity          string   `json:"severity"`
	Fields            []string `json:"fields"`
	ConflictingValues []string `json:"conflicting_values"`
}

// Scorecard is the full result of AnalyzeGaps.
type Scorecard struct {
	SpokeID      string `json:"spoke_id"`
	TemplateType string `json:"template_type"`

	DocumentScore    float64 `json:"document_score"`
	FilingReadiness  float64 `json:"filing_readiness"`
	QualityScore     float64 `json:"quality_score"`
	Completeness     float64 `json:"completeness"`
	EntityScore      float64 `json:"entity_score"`
	RelationshipScore float64 `json:"relationship_score"`
	OverallScore     float64 `json:"overall_score"`

	TierCounts TierCounts `json:"tier_counts"`

	MissingBlockingFields  []string `json:"missing_blocking_fields"`
	MissingExpectedFields  []string `json:"missing_expected_fields"`
	MissingEnrichingFields []string `json:"missing_enriching_fields"`

	CrossDocViolations []CrossDocViolation `json:"cross_doc_violations"`

	FoundDocuments   []string `json:"found_documents"`
	MissingDocuments []string `json:"missing_documents"`

	MissingEntityFields     []string `json:"missing_entity_fields"`
	MissingRelationshipRoles []string `json:"missing_relationship_roles"`

	Suggestions []string `json:"suggestions"`

	SourceDocuments []string `json:"source_documents"`
	EntityCount     int      `json:"entity_count"`

	TierAdjustmentsApplied int `json:"tier_adjustments_applied"`
}
