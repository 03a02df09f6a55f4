package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop_ReturnsEmptyResult(t *testing.T) {
	var o Oracle = Noop{}
	result, err := o.Classify(context.Background(), map[string][]string{"a.pdf": {"hello"}})
	require.NoError(t, err)
	assert.Empty(t, result.Classifications)
	assert.Empty(t, result.Unclassified)
}

func TestNewHTTPOracle_RejectsEmptyConfig(t *testing.T) {
	_, err := NewHTTPOracle("", "", 0)
	assert.ErrorIs(t, err, ErrNoOracle)
}
