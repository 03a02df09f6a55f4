package resolver

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
)

func newTenant(t *testing.T) *store.Tenant {
	t.Helper()
	tenant, err := store.OpenTenant(context.Background(), t.TempDir(), slog.Default())
	require.NoError(t, err)
	return tenant
}

// Scenario 1 (spec §8): pure create, no prior entities.
func TestResolveCluster_PureCreate(t *testing.T) {
	ctx := context.Background()
	tenant := newTenant(t)

	cluster := &model.SignalCluster{
		ClusterID:  "SIG-zq-1",
		EntityType: model.EntityPerson,
		State:      model.ClusterUnresolved,
		Quadrant:   model.QuadrantCreate,
		MatchZone:  model.ZoneNoMatch,
		Source:     model.Source{Type: "file_upload", ExtractedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		Signals:    model.Signals{Names: []string{"Zenobia Quark"}},
		EntityData: model.ExtractedEntity{
			EntityType: model.EntityPerson,
			Name:       model.Name{Person: &model.PersonName{Full: "Zenobia Quark"}},
		},
	}
	require.NoError(t, tenant.Clusters.Write(ctx, cluster))

	out, err := ResolveCluster(ctx, tenant, cluster.ClusterID, ActionCreateNew, "agent-1", model.DefaultSpokeID)
	require.NoError(t, err)
	assert.Equal(t, "ENT-ZQ-001", out.EntityID)

	entity, err := tenant.Entities.Get(ctx, "ENT-ZQ-001")
	require.NoError(t, err)
	assert.Empty(t, entity.Attributes)
	assert.Empty(t, entity.Observations)
	assert.Len(t, entity.Provenance.SourceDocuments, 1)

	_, err = tenant.Clusters.Get(ctx, cluster.ClusterID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Scenario 2 (spec §8): corroborating skip bumps confidence via the
// two-source corroboration multiplier and appends a source document.
func TestResolveCluster_CorroboratingSkip(t *testing.T) {
	ctx := context.Background()
	tenant := newTenant(t)

	existing := &model.Entity{
		EntityID:   "ENT-CM-001",
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Cyrus Marlowe"}},
		Attributes: []model.Attribute{
			{Key: "current_role", Value: "Founder", Confidence: 0.75, BaseConfidence: 0.75, SourceClusters: []string{"SIG-prior"}},
		},
	}
	require.NoError(t, tenant.Entities.Write(ctx, existing))

	cluster := &model.SignalCluster{
		ClusterID:         "SIG-cm-2",
		EntityType:        model.EntityPerson,
		State:             model.ClusterProvisional,
		Quadrant:          model.QuadrantConfirm,
		MatchZone:         model.ZoneHighConfidence,
		CandidateEntityID: existing.EntityID,
		Source:            model.Source{Type: "linkedin_pdf", ExtractedAt: time.Now().UTC()},
		Signals:           model.Signals{Titles: []string{"Founder"}},
		EntityData:        model.ExtractedEntity{EntityType: model.EntityPerson},
	}
	require.NoError(t, tenant.Clusters.Write(ctx, cluster))

	out, err := ResolveCluster(ctx, tenant, cluster.ClusterID, ActionSkip, "agent-1", model.DefaultSpokeID)
	require.NoError(t, err)
	assert.Equal(t, existing.EntityID, out.EntityID)

	got, err := tenant.Entities.Get(ctx, existing.EntityID)
	require.NoError(t, err)
	role := got.FindAttribute("current_role")
	require.NotNil(t, role)
	assert.InDelta(t, 0.975, role.Confidence, 1e-9)
	assert.Len(t, got.Provenance.SourceDocuments, 1)

	_, err = tenant.Clusters.Get(ctx, cluster.ClusterID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Scenario 3 (spec §8): enrich with a TEMPORAL conflict that auto-resolves
// in favor of the more recent incoming value.
func TestResolveCluster_EnrichAutoResolvesTemporalConflict(t *testing.T) {
	ctx := context.Background()
	tenant := newTenant(t)

	threeYearsAgo := time.Now().UTC().AddDate(-3, 0, 0)
	existing := &model.Entity{
		EntityID:   "ENT-AL-001",
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Astrid Lin"}},
		Attributes: []model.Attribute{
			{Key: "current_company", Value: "Acme", Confidence: 0.7, BaseConfidence: 0.7, TimeDecay: model.TimeDecay{CapturedDate: threeYearsAgo}},
		},
	}
	require.NoError(t, tenant.Entities.Write(ctx, existing))

	cluster := &model.SignalCluster{
		ClusterID:         "SIG-al-3",
		EntityType:        model.EntityPerson,
		State:             model.ClusterProvisional,
		Quadrant:          model.QuadrantEnrich,
		MatchZone:         model.ZoneHighConfidence,
		CandidateEntityID: existing.EntityID,
		Source:            model.Source{Type: "linkedin_api", ExtractedAt: time.Now().UTC()},
		Signals:           model.Signals{Organizations: []string{"Beta"}},
		EntityData:        model.ExtractedEntity{EntityType: model.EntityPerson},
	}
	require.NoError(t, tenant.Clusters.Write(ctx, cluster))

	out, err := ResolveCluster(ctx, tenant, cluster.ClusterID, ActionMerge, "agent-1", model.DefaultSpokeID)
	require.NoError(t, err)
	assert.False(t, out.ConflictBlocked)

	got, err := tenant.Entities.Get(ctx, existing.EntityID)
	require.NoError(t, err)
	assert.Len(t, got.ResolvedConflicts, 1)
	assert.Equal(t, model.ConflictTemporal, got.ResolvedConflicts[0].ConflictType)
	company := got.FindAttribute("current_company")
	require.NotNil(t, company)
	assert.Equal(t, "Beta", company.Value)
}

// Scenario 4 (spec §8): an IDENTITY conflict (differing linkedin handle)
// blocks merge until confirm_merge overrides it.
func TestResolveCluster_IdentityBlockThenConfirmMerge(t *testing.T) {
	ctx := context.Background()
	tenant := newTenant(t)

	existing := &model.Entity{
		EntityID:   "ENT-RP-001",
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Rosalind Park"}},
		Attributes: []model.Attribute{
			{Key: "linkedin_handle", Value: "rosalind-park", Confidence: 0.8, BaseConfidence: 0.8},
		},
	}
	require.NoError(t, tenant.Entities.Write(ctx, existing))

	cluster := &model.SignalCluster{
		ClusterID:         "SIG-rp-4",
		EntityType:        model.EntityPerson,
		State:             model.ClusterProvisional,
		Quadrant:          model.QuadrantEnrich,
		MatchZone:         model.ZoneHighConfidence,
		AssociationConfidence: 0.72,
		CandidateEntityID: existing.EntityID,
		Source:            model.Source{Type: "linkedin_api", ExtractedAt: time.Now().UTC()},
		Signals:           model.Signals{Handles: model.Handles{LinkedIn: "r-park-nyc"}},
		EntityData:        model.ExtractedEntity{EntityType: model.EntityPerson},
	}
	require.NoError(t, tenant.Clusters.Write(ctx, cluster))

	out, err := ResolveCluster(ctx, tenant, cluster.ClusterID, ActionMerge, "agent-1", model.DefaultSpokeID)
	require.NoError(t, err)
	require.True(t, out.ConflictBlocked)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, model.ConflictIdentity, out.Conflicts[0].ConflictType)
	assert.Equal(t, "linkedin_handle", out.Conflicts[0].Attribute)

	unchanged, err := tenant.Entities.Get(ctx, existing.EntityID)
	require.NoError(t, err)
	assert.Equal(t, "rosalind-park", unchanged.FindAttribute("linkedin_handle").Value)

	out, err = ResolveCluster(ctx, tenant, cluster.ClusterID, ActionConfirmMerge, "agent-1", model.DefaultSpokeID)
	require.NoError(t, err)
	assert.False(t, out.ConflictBlocked)
	assert.Equal(t, existing.EntityID, out.EntityID)

	merged, err := tenant.Entities.Get(ctx, existing.EntityID)
	require.NoError(t, err)
	require.Len(t, merged.ResolvedConflicts, 1)
	assert.Equal(t, model.WinnerBoth, merged.ResolvedConflicts[0].Resolution.Winner)
	assert.Equal(t, "user confirmed same person despite identity conflict", merged.ResolvedConflicts[0].Resolution.Reason)
}

func TestResolveCluster_HoldResetsStateOnly(t *testing.T) {
	ctx := context.Background()
	tenant := newTenant(t)

	cluster := &model.SignalCluster{ClusterID: "SIG-hold-1", EntityType: model.EntityPerson, State: model.ClusterProvisional}
	require.NoError(t, tenant.Clusters.Write(ctx, cluster))

	out, err := ResolveCluster(ctx, tenant, cluster.ClusterID, ActionHold, "agent-1", model.DefaultSpokeID)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, out.Action)

	got, err := tenant.Clusters.Get(ctx, cluster.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, model.ClusterUnresolved, got.State)
}

func TestResolveConflict_KeepBMovesToResolved(t *testing.T) {
	ctx := context.Background()
	tenant := newTenant(t)

	entity := &model.Entity{
		EntityID: "ENT-JS-001",
		Attributes: []model.Attribute{
			{Key: "current_location", Value: "Austin"},
		},
		Conflicts: []model.Conflict{
			{ConflictID: "CFL-1", EntityID: "ENT-JS-001", Attribute: "current_location", ValueA: "Austin", ValueB: "Denver", ConflictType: model.ConflictFactual},
		},
	}
	require.NoError(t, tenant.Entities.Write(ctx, entity))

	resolved, err := ResolveConflict(ctx, tenant.Entities, entity.EntityID, "CFL-1", ChoiceKeepB, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, model.WinnerB, resolved.Resolution.Winner)

	got, err := tenant.Entities.Get(ctx, entity.EntityID)
	require.NoError(t, err)
	assert.Empty(t, got.Conflicts)
	require.Len(t, got.ResolvedConflicts, 1)
	assert.Equal(t, "Denver", got.FindAttribute("current_location").Value)
}
