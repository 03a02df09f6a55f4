package gapanalysis

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
	"github.com/spokegraph/provisioner/internal/template"
)

func newTestTenant(t *testing.T) *store.Tenant {
	t.Helper()
	tenant, err := store.OpenTenant(context.Background(), t.TempDir(), slog.Default())
	require.NoError(t, err)
	return tenant
}

// Scenario 5 (spec §8): new-format template, 5 document_types split
// 2 BLOCKING / 2 EXPECTED / 1 ENRICHING across present docs. Classification
// finds 3/5 docs; extraction finds 1/2 BLOCKING, 1/2 EXPECTED, 0/1
// ENRICHING fields.
func TestAnalyzeGaps_NewFormatScorecardMatchesLiteralScenario(t *testing.T) {
	ctx := context.Background()
	tenant := newTestTenant(t)

	reg, err := template.Load("", "", nil)
	require.NoError(t, err)
	reg.Put(&model.Template{
		TemplateID:  "johnson-llc-kyc",
		DisplayName: "Johnson LLC KYC",
		DocumentTypes: []model.DocumentType{
			{
				TypeID: "passport", DisplayName: "Passport", Priority: model.PriorityHigh,
				ClassificationSignals: []string{"passport", "passport number"},
				ExtractionSpec: []model.FieldSpec{
					{FieldID: "full_name", DisplayName: "Full name", Sensitivity: model.SensitivityHigh, NecessityTier: model.TierBlocking},
				},
			},
			{
				TypeID: "ein_letter", DisplayName: "EIN Letter", Priority: model.PriorityHigh,
				ClassificationSignals: []string{"ein", "employer identification"},
				ExtractionSpec: []model.FieldSpec{
					{FieldID: "ein", DisplayName: "EIN", Sensitivity: model.SensitivityCritical, NecessityTier: model.TierBlocking},
				},
			},
			{
				TypeID: "operating_agreement", DisplayName: "Operating Agreement", Priority: model.PriorityMedium,
				ClassificationSignals: []string{"operating agreement", "members"},
				ExtractionSpec: []model.FieldSpec{
					{FieldID: "address", DisplayName: "Registered Address", Sensitivity: model.SensitivityStandard, NecessityTier: model.TierExpected},
					{FieldID: "phone", DisplayName: "Phone", Sensitivity: model.SensitivityStandard, NecessityTier: model.TierExpected},
					{FieldID: "insurance_info", DisplayName: "Insurance Info", Sensitivity: model.SensitivityStandard, NecessityTier: model.TierEnriching},
				},
			},
			{
				TypeID: "bank_statement", DisplayName: "Bank Statement", Priority: model.PriorityLow,
				ClassificationSignals: []string{"bank statement", "account balance"},
			},
			{
				TypeID: "articles_of_incorporation", DisplayName: "Articles of Incorporation", Priority: model.PriorityMedium,
				ClassificationSignals: []string{"articles of incorporation"},
			},
		},
		EntityRoles: []model.EntityRole{
			{RoleID: "applicant", DisplayName: "Applicant", Type: "person"},
			{RoleID: "company", DisplayName: "Company", Type: "business"},
		},
	})

	person := &model.Entity{
		EntityID:   "ENT-JL-001",
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Johnson LLC Owner"}},
		SpokeID:    "spoke-johnson",
		Attributes: []model.Attribute{
			{Key: "full_name", Value: "Johnson LLC Owner"},
		},
		Observations: []model.Observation{
			{ObservationID: "OBS-1", Text: "passport number 884213 issued 2021", Source: "passport.pdf"},
		},
	}
	business := &model.Entity{
		EntityID:   "BIZ-001",
		EntityType: model.EntityBusiness,
		Name:       model.Name{Business: &model.BusinessName{Legal: "Johnson LLC"}},
		SpokeID:    "spoke-johnson",
		Observations: []model.Observation{
			{ObservationID: "OBS-2", Text: "employer identification number on file", Source: "ein_letter.pdf"},
			{ObservationID: "OBS-3", Text: "operating agreement lists members and registered address 123 Main St", Source: "operating_agreement.pdf"},
		},
	}
	require.NoError(t, tenant.Entities.Write(ctx, person))
	require.NoError(t, tenant.Entities.Write(ctx, business))

	sc, err := AnalyzeGaps(ctx, tenant, reg, "spoke-johnson", "johnson-llc-kyc", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, sc.EntityCount)
	assert.InDelta(t, 0.60, sc.DocumentScore, 1e-9)
	assert.InDelta(t, 0.50, sc.FilingReadiness, 1e-9)
	assert.InDelta(t, 0.50, sc.QualityScore, 1e-9)
	assert.InDelta(t, 0.40, sc.Completeness, 1e-9)
	assert.InDelta(t, 0.50, sc.OverallScore, 1e-9)
	assert.GreaterOrEqual(t, len(sc.Suggestions), 1)
	assert.Equal(t, 2, sc.TierCounts.BlockingTotal)
	assert.Equal(t, 1, sc.TierCounts.BlockingExtracted)
	assert.Equal(t, 2, sc.TierCounts.ExpectedTotal)
	assert.Equal(t, 1, sc.TierCounts.ExpectedExtracted)
	assert.Equal(t, 1, sc.TierCounts.EnrichingTotal)
	assert.Equal(t, 0, sc.TierCounts.EnrichingExtracted)
}

// Scenario 6 (spec §8): an exact cross-document rule over "ein" flags one
// violation with two conflicting values.
func TestAnalyzeGaps_CrossDocExactRuleFlagsEINMismatch(t *testing.T) {
	ctx := context.Background()
	tenant := newTestTenant(t)

	reg, err := template.Load("", "", nil)
	require.NoError(t, err)
	reg.Put(&model.Template{
		TemplateID: "aml-basic",
		RequiredDocuments: []model.RequiredDocumentGroup{
			{Category: "identity", Items: []string{"ein_letter"}},
		},
		CrossDocRules: []model.CrossDocRule{
			{RuleID: "ein-match", Severity: "HIGH", Validation: model.ValidationExact, Fields: []string{"ein"}},
		},
	})

	bizA := &model.Entity{EntityID: "BIZ-A", EntityType: model.EntityBusiness, SpokeID: "spoke-1", Attributes: []model.Attribute{{Key: "ein", Value: "12-3456789"}}}
	bizB := &model.Entity{EntityID: "BIZ-B", EntityType: model.EntityBusiness, SpokeID: "spoke-1", Attributes: []model.Attribute{{Key: "ein", Value: "98-7654321"}}}
	require.NoError(t, tenant.Entities.Write(ctx, bizA))
	require.NoError(t, tenant.Entities.Write(ctx, bizB))

	sc, err := AnalyzeGaps(ctx, tenant, reg, "spoke-1", "aml-basic", nil, nil)
	require.NoError(t, err)

	require.Len(t, sc.CrossDocViolations, 1)
	v := sc.CrossDocViolations[0]
	assert.Equal(t, "ein-match", v.RuleID)
	assert.Equal(t, "HIGH", v.Severity)
	assert.Len(t, v.ConflictingValues, 2)
}

func TestAnalyzeGaps_UnknownTemplateReturnsNotFoundError(t *testing.T) {
	ctx := context.Background()
	tenant := newTestTenant(t)
	reg, err := template.Load("", "", nil)
	require.NoError(t, err)

	_, err = AnalyzeGaps(ctx, tenant, reg, "spoke-1", "does-not-exist", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
