package resolver

import (
	"context"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/similarity"
	"github.com/spokegraph/provisioner/internal/store"
)

// consolidationNameThreshold is the Dice threshold for treating two
// unresolved clusters as naming the same person/org for Q3 consolidation
// purposes (spec §4.5.1 step 6).
const consolidationNameThreshold = 0.85

// consolidationMentionFloor is the minimum number of observation/
// relationship mentions of a cluster's primary name across the entity
// store required to route a NO_MATCH cluster to Q3 instead of Q1.
const consolidationMentionFloor = 2

// assignQuadrant implements spec §4.5.1 step 6.
func assignQuadrant(ctx context.Context, tenant *store.Tenant, cluster *model.SignalCluster, candidate *model.Entity, entities []*model.Entity, isCenteredCandidate bool) (model.Quadrant, error) {
	if cluster.MatchZone == model.ZoneHighConfidence || cluster.MatchZone == model.ZoneAmbiguous {
		if isCenteredCandidate {
			return model.QuadrantEnrich, nil
		}
		if isNewData(cluster.DataNovelty) {
			return model.QuadrantEnrich, nil
		}
		return model.QuadrantConfirm, nil
	}

	// NO_MATCH: look for consolidation signals before defaulting to create.
	primary := PrimaryName(cluster)
	if primary == "" {
		return model.QuadrantCreate, nil
	}

	unresolved, err := tenant.Clusters.ListUnresolved(ctx)
	if err != nil {
		return 0, err
	}
	for _, other := range unresolved {
		if other.ClusterID == cluster.ClusterID {
			continue
		}
		for _, name := range other.Signals.Names {
			if similarity.Similarity(primary, name) > consolidationNameThreshold {
				return model.QuadrantConsolidate, nil
			}
		}
	}

	names := []string{primary}
	mentions := 0
	for _, e := range entities {
		mentions += similarity.CountSharedRelationships(e, names) + similarity.CountObservationMentions(e, names)
		if mentions >= consolidationMentionFloor {
			return model.QuadrantConsolidate, nil
		}
	}

	return model.QuadrantCreate, nil
}
