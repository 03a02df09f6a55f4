package confidence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceWeight_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, 0.95, SourceWeight("user_input"))
	assert.Equal(t, 0.90, SourceWeight("linkedin_api"))
	assert.Equal(t, 0.40, SourceWeight("totally_unrecognized"))
	assert.Equal(t, 0.40, SourceWeight("unmapped"))
}

func TestSourceWeight_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 0.95, SourceWeight("USER_INPUT"))
}

func TestRecencyModifier_VolatileBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		monthsAgo int
		want      float64
	}{
		{1, 1.0},
		{8, 0.95},
		{18, 0.85},
		{48, 0.7},
		{72, 0.5},
	}
	for _, c := range cases {
		captured := now.AddDate(0, -c.monthsAgo, 0)
		got := RecencyModifier("current_company", captured, now)
		assert.Equal(t, c.want, got, "monthsAgo=%d", c.monthsAgo)
	}
}

func TestRecencyModifier_NonVolatileAlwaysOne(t *testing.T) {
	now := time.Now()
	captured := now.AddDate(-10, 0, 0)
	assert.Equal(t, 1.0, RecencyModifier("skill", captured, now))
}

func TestRecencyModifier_UnknownDate(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0.85, RecencyModifier("headline", time.Time{}, now))
}

func TestCorroborationMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, CorroborationMultiplier(1))
	assert.Equal(t, 1.3, CorroborationMultiplier(2))
	assert.Equal(t, 1.5, CorroborationMultiplier(3))
	assert.Equal(t, 1.5, CorroborationMultiplier(10))
}

func TestComputeAttributeConfidence_CappedAtOne(t *testing.T) {
	now := time.Now()
	got := ComputeAttributeConfidence(0.95, now, "skill", 5, now)
	require.LessOrEqual(t, got, 1.0)
	assert.Equal(t, 1.0, got)
}

func TestLabel_Tiers(t *testing.T) {
	assert.Equal(t, TierThin, Label(0.2))
	assert.Equal(t, TierDeveloping, Label(0.5))
	assert.Equal(t, TierDeveloping, Label(0.8))
	assert.Equal(t, TierStrong, Label(0.81))
}

func TestEntityConfidence_Mean(t *testing.T) {
	assert.Equal(t, 0.0, EntityConfidence(nil))
	assert.InDelta(t, 0.6, EntityConfidence([]float64{0.4, 0.8}), 0.0001)
}
