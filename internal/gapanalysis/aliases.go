package gapanalysis

import "strings"

// fieldAliases is the FIELD_ALIASES table (spec §4.8 step 4): each key is a
// canonical field id, mapped to the set of entity-attribute keys (or field
// names) a real extraction might use for the same concept. Lookups are
// case-insensitive.
var fieldAliases = map[string][]string{
	"name":            {"full_name", "name", "legal_name", "common_name", "preferred_name"},
	"full_name":       {"full_name", "name", "legal_name"},
	"legal_name":      {"legal_name", "full_name", "name"},
	"ssn":             {"ssn", "social_security_number", "social_security"},
	"ein":             {"ein", "employer_identification_number", "tax_id", "tin"},
	"dob":             {"dob", "date_of_birth", "birth_date"},
	"address":         {"address", "home_address", "mailing_address", "current_location", "location"},
	"phone":           {"phone", "phone_number", "contact_phone", "mobile_phone"},
	"email":           {"email", "email_address"},
	"insurance_info":  {"insurance_info", "insurance", "policy_number", "insurer"},
	"role":            {"role", "current_role", "title", "headline"},
	"title":           {"title", "current_role", "role", "headline"},
	"company":         {"company", "current_company", "organization", "employer"},
	"organization":    {"organization", "current_company", "company", "employer"},
	"linkedin_handle": {"linkedin_handle", "linkedin_url", "linkedin"},
}

// aliasesFor returns the alias set for fieldID, falling back to the field
// id itself when it has no dedicated table entry.
func aliasesFor(fieldID string) []string {
	if a, ok := fieldAliases[strings.ToLower(fieldID)]; ok {
		return a
	}
	return []string{fieldID}
}

// keyMatchesField reports whether an entity attribute key denotes fieldID,
// directly or via the alias table.
func keyMatchesField(attrKey, fieldID string) bool {
	attrKey = strings.ToLower(attrKey)
	if attrKey == strings.ToLower(fieldID) {
		return true
	}
	for _, alias := range aliasesFor(fieldID) {
		if attrKey == strings.ToLower(alias) {
			return true
		}
	}
	return false
}

// roleTypeAliases groups entity-role types that are interchangeable for
// candidate matching (spec §4.8 step 5: "organization ↔ business ↔
// institution").
var roleTypeAliases = map[string]string{
	"organization": "org",
	"business":     "org",
	"institution":  "org",
	"person":       "person",
}

func roleTypeGroup(t string) string {
	if g, ok := roleTypeAliases[strings.ToLower(t)]; ok {
		return g
	}
	return strings.ToLower(t)
}

func entityTypeGroup(t string) string {
	switch strings.ToLower(t) {
	case "business", "institution":
		return "org"
	default:
		return "person"
	}
}
