package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBusinessName_StripsSuffixes(t *testing.T) {
	assert.Equal(t, "acme", NormalizeBusinessName("Acme Inc"))
	assert.Equal(t, "acme", NormalizeBusinessName("Acme Corp."))
	assert.Equal(t, "acme", NormalizeBusinessName("Acme, LLC"))
	assert.Equal(t, "acme", NormalizeBusinessName("acme.com"))
}

func TestNamesLikelyMatch_DiceThreshold(t *testing.T) {
	assert.True(t, NamesLikelyMatch([]string{"Jonathan Smithe"}, []string{"Jonathan Smith"}))
}

func TestNamesLikelyMatch_SameInitials(t *testing.T) {
	assert.True(t, NamesLikelyMatch([]string{"J D"}, []string{"Jane Doe"}))
}

func TestNamesLikelyMatch_TokenSubset(t *testing.T) {
	assert.True(t, NamesLikelyMatch([]string{"Bob"}, []string{"Bob Smith"}))
	assert.True(t, NamesLikelyMatch([]string{"International Business Machines"}, []string{"IBM International Business Machines Corp"}))
}

func TestNamesLikelyMatch_NoMatch(t *testing.T) {
	assert.False(t, NamesLikelyMatch([]string{"Zenobia Quark"}, []string{"Bartholomew Finch"}))
}

func TestNamesLikelyMatch_EmptyInputs(t *testing.T) {
	assert.False(t, NamesLikelyMatch(nil, []string{"Jane Doe"}))
	assert.False(t, NamesLikelyMatch([]string{"Jane Doe"}, nil))
}
