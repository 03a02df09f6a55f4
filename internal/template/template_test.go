package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spokegraph/provisioner/internal/model"
)

func TestNormalize_LegacySynthesizesDocumentTypesAndEntityRoles(t *testing.T) {
	tmpl := &model.Template{
		TemplateID: "kyc-basic",
		RequiredDocuments: []model.RequiredDocumentGroup{
			{Category: "identity", Items: []string{"ssn_card", "full_name"}},
			{Category: "address", Items: []string{"address_proof"}},
		},
		RequiredEntities: []model.EntityRole{
			{RoleID: "applicant", DisplayName: "Applicant", Type: "person", RequiredFields: []string{"full_name"}},
		},
	}

	Normalize(tmpl)

	require.Len(t, tmpl.DocumentTypes, 3)
	byID := map[string]model.DocumentType{}
	for _, dt := range tmpl.DocumentTypes {
		byID[dt.TypeID] = dt
	}
	assert.Equal(t, model.SensitivityCritical, byID["ssn_card"].ExtractionSpec[0].Sensitivity)
	assert.Equal(t, model.SensitivityHigh, byID["full_name"].ExtractionSpec[0].Sensitivity)
	assert.Equal(t, model.SensitivityStandard, byID["address_proof"].ExtractionSpec[0].Sensitivity)
	assert.Equal(t, "address proof", byID["address_proof"].DisplayName)

	require.Len(t, tmpl.EntityRoles, 1)
	assert.Equal(t, "applicant", tmpl.EntityRoles[0].RoleID)
	assert.True(t, tmpl.LegacyFormat)
}

func TestNormalize_NewFormatSynthesizesBackCompatFields(t *testing.T) {
	tmpl := &model.Template{
		TemplateID: "kyc-full",
		DocumentTypes: []model.DocumentType{
			{TypeID: "passport", DisplayName: "Passport", Category: "identity"},
			{TypeID: "w2", DisplayName: "W-2", Category: "financial"},
		},
		EntityRoles: []model.EntityRole{
			{RoleID: "applicant", DisplayName: "Applicant", Type: "person"},
		},
	}

	Normalize(tmpl)

	require.Len(t, tmpl.RequiredDocuments, 2)
	require.Len(t, tmpl.RequiredEntities, 1)
}

func TestNormalize_LeavesAlreadyNormalizedTemplateUntouched(t *testing.T) {
	tmpl := &model.Template{
		TemplateID:        "kyc-full",
		DocumentTypes:     []model.DocumentType{{TypeID: "passport"}},
		RequiredDocuments: []model.RequiredDocumentGroup{{Category: "identity", Items: []string{"passport"}}},
	}
	Normalize(tmpl)
	assert.Len(t, tmpl.RequiredDocuments, 1)
}

func TestLoad_DirectoryOverridesFlatFile(t *testing.T) {
	dir := t.TempDir()
	flatFile := filepath.Join(dir, "templates.json")
	overrideDir := filepath.Join(dir, "overrides")
	require.NoError(t, os.MkdirAll(overrideDir, 0o755))

	require.NoError(t, os.WriteFile(flatFile, []byte(`{
		"kyc-basic": {"template_id": "kyc-basic", "display_name": "KYC Basic", "required_documents": [{"category": "identity", "items": ["ssn_card"]}]},
		"aml-basic": {"template_id": "aml-basic", "display_name": "AML Basic", "required_documents": [{"category": "identity", "items": ["passport"]}]}
	}`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(overrideDir, "kyc-basic.json"), []byte(`{
		"template_id": "kyc-basic", "display_name": "KYC Basic v2", "required_documents": [{"category": "identity", "items": ["ssn_card", "passport"]}]
	}`), 0o644))

	reg, err := Load(flatFile, overrideDir, nil)
	require.NoError(t, err)

	kyc, ok := reg.Get("kyc-basic")
	require.True(t, ok)
	assert.Equal(t, "KYC Basic v2", kyc.DisplayName)
	require.Len(t, kyc.DocumentTypes, 2)

	aml, ok := reg.Get("aml-basic")
	require.True(t, ok)
	assert.Equal(t, "AML Basic", aml.DisplayName)

	assert.Equal(t, []string{"aml-basic", "kyc-basic"}, reg.List())
}

func TestLoad_MissingPathsAreSkippedSilently(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "absent.json"), filepath.Join(t.TempDir(), "absent-dir"), nil)
	require.NoError(t, err)
	assert.Empty(t, reg.List())
}
