package association

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spokegraph/provisioner/internal/model"
)

func TestComputeAssociationScore_TypeGateBlocksCrossType(t *testing.T) {
	cluster := &model.SignalCluster{EntityType: model.EntityPerson, Signals: model.Signals{Names: []string{"Jordan Vance"}}}
	existing := &model.Entity{EntityType: model.EntityBusiness, Name: model.Name{Business: &model.BusinessName{Legal: "Jordan Vance LLC"}}}

	result := ComputeAssociationScore(cluster, existing)
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.MatchType)
}

func TestComputeAssociationScore_TypeGateAllowsOrgLikeCrossType(t *testing.T) {
	cluster := &model.SignalCluster{EntityType: model.EntityBusiness, Signals: model.Signals{Names: []string{"Acme Corp"}}}
	existing := &model.Entity{EntityType: model.EntityInstitution, Name: model.Name{Business: &model.BusinessName{Legal: "Acme Corp"}}}

	result := ComputeAssociationScore(cluster, existing)
	assert.Greater(t, result.Factors.Name, 0.0)
}

func TestComputeAssociationScore_ExactHandleMatchScoresSocialHandle(t *testing.T) {
	cluster := &model.SignalCluster{
		EntityType: model.EntityPerson,
		Signals: model.Signals{
			Names:   []string{"Jordan Vance"},
			Handles: model.Handles{X: "jordanv"},
		},
	}
	existing := &model.Entity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "J. Vance"}},
		Attributes: []model.Attribute{{Key: "x_handle", Value: "jordanv"}},
	}

	result := ComputeAssociationScore(cluster, existing)
	assert.Equal(t, 1.0, result.Factors.Handle)
	assert.Equal(t, "social_handle", result.MatchType)
}

func TestComputeAssociationScore_PersonNicknameShortCircuits(t *testing.T) {
	cluster := &model.SignalCluster{EntityType: model.EntityPerson, Signals: model.Signals{Names: []string{"Bob Smith"}}}
	existing := &model.Entity{EntityType: model.EntityPerson, Name: model.Name{Person: &model.PersonName{Full: "Robert Smith"}}}

	result := ComputeAssociationScore(cluster, existing)
	assert.GreaterOrEqual(t, result.Factors.Name, personNameShortCircuit)
}

func TestComputeAssociationScore_OrgAndTitleBothMatch(t *testing.T) {
	cluster := &model.SignalCluster{
		EntityType: model.EntityPerson,
		Signals: model.Signals{
			Names:         []string{"Dana Whitfield"},
			Organizations: []string{"Acme Corporation"},
			Titles:        []string{"VP Engineering"},
		},
	}
	existing := &model.Entity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Dana Whitfield"}},
		Attributes: []model.Attribute{
			{Key: "current_company", Value: "Acme Corporation"},
			{Key: "current_role", Value: "VP Engineering"},
		},
	}

	result := ComputeAssociationScore(cluster, existing)
	assert.Equal(t, 1.0, result.Factors.OrgTitle)
}

func TestComputeAssociationScore_DifferentLinkedInPenalizesScore(t *testing.T) {
	cluster := &model.SignalCluster{
		EntityType: model.EntityPerson,
		Signals: model.Signals{
			Names:   []string{"Priya Nair"},
			Handles: model.Handles{LinkedIn: "priyanair"},
		},
	}
	existing := &model.Entity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Priya Nair"}},
		Attributes: []model.Attribute{{Key: "linkedin_handle", Value: "priya-nair-other"}},
	}

	result := ComputeAssociationScore(cluster, existing)
	assert.Equal(t, 0.20, result.ContradictionPenalty)
	assert.Len(t, result.Contradictions, 1)
}

func TestComputeAssociationScore_RecentLocationMismatchFlagsIdentityConflict(t *testing.T) {
	now := time.Now().UTC()
	cluster := &model.SignalCluster{
		EntityType: model.EntityPerson,
		CreatedAt:  now,
		Source:     model.Source{ExtractedAt: now},
		Signals: model.Signals{
			Names:     []string{"Sam Okafor"},
			Locations: []string{"Austin, TX"},
		},
	}
	existing := &model.Entity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Sam Okafor"}},
		Attributes: []model.Attribute{
			{Key: "current_location", Value: "Berlin, Germany", TimeDecay: model.TimeDecay{CapturedDate: now}},
		},
	}

	result := ComputeAssociationScore(cluster, existing)
	var found bool
	for _, c := range result.Contradictions {
		if c.Kind == "location_mismatch" {
			found = true
			assert.True(t, c.PossibleIdentityConflict)
		}
	}
	assert.True(t, found)
}

func TestComputeAssociationScore_BioFactorUsesJaccard(t *testing.T) {
	cluster := &model.SignalCluster{
		EntityType: model.EntityPerson,
		Signals: model.Signals{
			Names: []string{"Robin Castillo"},
			Bios:  []string{"Builds infrastructure for climate tech startups."},
		},
	}
	existing := &model.Entity{
		EntityType: model.EntityPerson,
		Name:       model.Name{Person: &model.PersonName{Full: "Robin Castillo"}},
		Summary:    model.Summary{Value: "Builds infrastructure for climate tech companies."},
	}

	result := ComputeAssociationScore(cluster, existing)
	assert.Greater(t, result.Factors.Bio, 0.0)
}
