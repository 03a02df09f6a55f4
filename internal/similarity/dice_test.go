package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_EmptyStrings(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("foo", ""))
	assert.Equal(t, 0.0, Similarity("", "bar"))
}

func TestSimilarity_ExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Jane Doe", "jane doe"))
}

func TestSimilarity_WhitespaceNormalized(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Jane   Doe", "jane doe"))
}

func TestSimilarity_PartialOverlap(t *testing.T) {
	sim := Similarity("Jonathan Smith", "Jon Smith")
	assert.Greater(t, sim, 0.5)
	assert.Less(t, sim, 1.0)
}

func TestSimilarity_Unrelated(t *testing.T) {
	sim := Similarity("Zenobia Quark", "Bartholomew Finch")
	assert.Less(t, sim, 0.3)
}

func TestSimilarity_SingleCharacter(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("a", "a"))
	assert.Equal(t, 0.0, Similarity("a", "b"))
}
