package staging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
)

func newClusterStore(t *testing.T) *store.ClusterStore {
	t.Helper()
	s, err := store.NewClusterStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestStage_RejectsEmptyEntity(t *testing.T) {
	clusters := newClusterStore(t)
	_, err := Stage(context.Background(), clusters, model.ExtractedEntity{EntityType: model.EntityPerson}, model.Source{Type: "web"})
	assert.ErrorIs(t, err, ErrEmptyEntity)
}

func TestStage_ExtractsNamesAndAssignsClusterID(t *testing.T) {
	clusters := newClusterStore(t)
	extracted := model.ExtractedEntity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Jordan Vance", Preferred: "Jordan"}},
	}
	cluster, err := Stage(context.Background(), clusters, extracted, model.Source{Type: "linkedin", ExtractedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, len(cluster.ClusterID) > 4)
	assert.Contains(t, cluster.Signals.Names, "Jordan Vance")
	assert.Contains(t, cluster.Signals.Names, "Jordan")
	assert.Equal(t, model.ClusterUnresolved, cluster.State)
}

func TestStage_VolatileSignalsUseRecencyModifier(t *testing.T) {
	clusters := newClusterStore(t)
	old := time.Now().UTC().AddDate(-3, 0, 0)
	extracted := model.ExtractedEntity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Sam Okafor"}},
		Attributes: []model.Attribute{
			{Key: "current_role", Value: "VP Engineering"},
			{Key: "current_company", Value: "Acme Corp"},
		},
	}
	cluster, err := Stage(context.Background(), clusters, extracted, model.Source{Type: "linkedin", ExtractedAt: old})
	require.NoError(t, err)

	require.Len(t, cluster.ConfidentSignals.Titles, 1)
	// linkedin weight 0.85, recency at ~3 years -> 0.7 modifier, corroboration 1.0
	assert.InDelta(t, 0.85*0.7, cluster.ConfidentSignals.Titles[0].Confidence, 0.001)
}

func TestStage_HistoricalSignalsUseRawSourceWeight(t *testing.T) {
	clusters := newClusterStore(t)
	extracted := model.ExtractedEntity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Robin Castillo"}},
		CareerLite: &model.CareerLite{Skills: []string{"Go", "Distributed Systems"}},
	}
	cluster, err := Stage(context.Background(), clusters, extracted, model.Source{Type: "file_upload", ExtractedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.Len(t, cluster.ConfidentSignals.Skills, 2)
	for _, sv := range cluster.ConfidentSignals.Skills {
		assert.InDelta(t, 0.75, sv.Confidence, 0.0001)
	}
}

func TestStage_BiosUseNinetyPercentOfSourceWeight(t *testing.T) {
	clusters := newClusterStore(t)
	extracted := model.ExtractedEntity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Dana Whitfield"}},
		Summary:    &model.Summary{Value: "Builds infrastructure for climate tech startups."},
	}
	cluster, err := Stage(context.Background(), clusters, extracted, model.Source{Type: "company_website", ExtractedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.Len(t, cluster.ConfidentSignals.Bios, 1)
	assert.InDelta(t, 0.80*0.9, cluster.ConfidentSignals.Bios[0].Confidence, 0.0001)
}

func TestStage_RecoversHandlesFromURLs(t *testing.T) {
	clusters := newClusterStore(t)
	extracted := model.ExtractedEntity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Priya Nair"}},
		Observations: []model.Observation{
			{Text: "Profile: https://x.com/priyanair and linkedin.com/in/priyanair"},
		},
	}
	cluster, err := Stage(context.Background(), clusters, extracted, model.Source{Type: "web", ExtractedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, "priyanair", cluster.Signals.Handles.X)
	assert.Equal(t, "priyanair", cluster.Signals.Handles.LinkedIn)
}

func TestStage_WritesClusterToStore(t *testing.T) {
	clusters := newClusterStore(t)
	extracted := model.ExtractedEntity{
		EntityType: model.EntityBusiness,
		Name:       model.Name{Business: &model.BusinessName{Legal: "Northwind Traders LLC", Common: "Northwind"}},
	}
	cluster, err := Stage(context.Background(), clusters, extracted, model.Source{Type: "manual", ExtractedAt: time.Now().UTC()})
	require.NoError(t, err)

	got, err := clusters.Get(context.Background(), cluster.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, cluster.ClusterID, got.ClusterID)
	assert.Greater(t, got.SignalConfidence, 0.0)
}
