// Package resolver implements the resolver (R): scoring a cluster against
// the entity store, classifying the match zone and review quadrant,
// detecting and categorizing conflicts, and executing resolution actions.
// See spec §4.5.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spokegraph/provisioner/internal/association"
	"github.com/spokegraph/provisioner/internal/confidence"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/similarity"
	"github.com/spokegraph/provisioner/internal/store"
)

// highConfidenceFloor is the fixed score above which a match is unconditionally
// HIGH_CONFIDENCE_MATCH regardless of name rarity (spec §4.5.1 step 4).
const highConfidenceFloor = 0.60

// scoreWorkers bounds the concurrency of the per-entity association fan-out.
const scoreWorkers = 8

// ScoreCluster runs the scoring pass (spec §4.5.1) against every entity in
// the store, picks the best association match, classifies the match zone
// and review quadrant, computes data novelty and projected confidences, and
// persists the updated cluster. spokeID names the spoke whose centered
// entity participates in the Q2-override rule; pass model.DefaultSpokeID
// when the caller has no narrower context.
func ScoreCluster(ctx context.Context, tenant *store.Tenant, clusterID string, rarity *RarityClassifier, spokeID string) (*model.SignalCluster, error) {
	cluster, err := tenant.Clusters.Get(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("resolver: load cluster %s: %w", clusterID, err)
	}

	entities, err := tenant.Entities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: list entities: %w", err)
	}

	best, bestEntity, err := bestMatch(ctx, cluster, entities)
	if err != nil {
		return nil, err
	}

	cluster.AssociationConfidence = best.Score
	cluster.AssociationRawScore = best.RawScore
	cluster.AssociationFactors = best.Factors
	cluster.Contradictions = best.Contradictions
	cluster.ContradictionPenalty = best.ContradictionPenalty
	cluster.MatchType = best.MatchType

	tier, threshold := rarity.Classify(PrimaryName(cluster))
	cluster.NameRarity = string(tier)
	cluster.RarityThreshold = threshold

	switch {
	case cluster.AssociationConfidence > highConfidenceFloor:
		cluster.MatchZone = model.ZoneHighConfidence
	case cluster.AssociationConfidence > threshold:
		cluster.MatchZone = model.ZoneAmbiguous
	default:
		cluster.MatchZone = model.ZoneNoMatch
	}

	if bestEntity != nil {
		cluster.CandidateEntityID = bestEntity.EntityID
		cluster.CandidateEntityName = bestEntity.PrimaryName()
	}

	spoke, err := tenant.Spokes.Get(ctx, spokeID)
	if err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("resolver: load spoke %s: %w", spokeID, err)
	}
	isCenteredCandidate := bestEntity != nil && spoke != nil && spoke.IsCentered(bestEntity.EntityID)

	if cluster.MatchZone != model.ZoneNoMatch && bestEntity != nil {
		cluster.DataNovelty = computeNovelty(cluster, bestEntity)
	}

	quadrant, err := assignQuadrant(ctx, tenant, cluster, bestEntity, entities, isCenteredCandidate)
	if err != nil {
		return nil, err
	}
	cluster.Quadrant = quadrant
	cluster.QuadrantLabel = quadrant.Label()

	switch quadrant {
	case model.QuadrantCreate:
		cluster.State = model.ClusterUnresolved
	default:
		cluster.State = model.ClusterProvisional
	}

	if bestEntity != nil {
		applyProjectedConfidences(cluster, bestEntity)
	}

	if cluster.MatchZone == model.ZoneAmbiguous {
		cluster.EvidencePanel = buildEvidencePanel(cluster, bestEntity)
	} else {
		cluster.EvidencePanel = nil
	}

	if err := tenant.Clusters.Write(ctx, cluster); err != nil {
		return nil, fmt.Errorf("resolver: persist scored cluster: %w", err)
	}
	return cluster, nil
}

// bestMatch fans the association scorer out across every candidate entity
// concurrently (bounded by scoreWorkers) and returns the highest-scoring
// result and its entity. Returns a zero Result and nil entity when the
// store has no entities or none are type-compatible.
func bestMatch(ctx context.Context, cluster *model.SignalCluster, entities []*model.Entity) (association.Result, *model.Entity, error) {
	var mu sync.Mutex
	var best association.Result
	var bestEntity *model.Entity

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(scoreWorkers)

	for _, e := range entities {
		e := e
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			result := association.ComputeAssociationScore(cluster, e)
			mu.Lock()
			if result.Score > best.Score {
				best = result
				bestEntity = e
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return association.Result{}, nil, fmt.Errorf("resolver: association fan-out: %w", err)
	}
	return best, bestEntity, nil
}

// applyProjectedConfidences recomputes each confident_signals leaf's
// projected_confidence as what it would be after joining candidate (spec
// §4.5.1 step 7): historical-class signals bypass recency. Titles,
// organizations and locations pick up one extra corroborating source (the
// matching existing attribute's source count, if any, plus this cluster).
// Historical-class signals (names, handles, skills, education, bios) are
// projected with this cluster as their only source; the candidate's
// existing source count is not looked up for them.
func applyProjectedConfidences(cluster *model.SignalCluster, candidate *model.Entity) {
	cs := &cluster.ConfidentSignals
	now := cluster.UpdatedAt

	projectHistorical := func(sv *model.ScoredValue) {
		existingSources := 0
		sv.ProjectedConfidence = min1(sv.Confidence / confidence.CorroborationMultiplier(1) * confidence.CorroborationMultiplier(existingSources+1))
	}
	projectVolatile := func(sv *model.ScoredValue, key string) {
		existingSources := existingAttributeSourceCount(candidate, key, sv.Value)
		// sv.Confidence was already captured "now", so its own recency
		// modifier is 1.0; only the corroboration factor changes here.
		sv.ProjectedConfidence = confidence.ComputeAttributeConfidence(sv.Confidence, now, key, existingSources+1, now)
	}

	for i := range cs.Names {
		projectHistorical(&cs.Names[i])
	}
	for i := range cs.Skills {
		projectHistorical(&cs.Skills[i])
	}
	for i := range cs.Education {
		projectHistorical(&cs.Education[i])
	}
	if cs.Handles.X != nil {
		projectHistorical(cs.Handles.X)
	}
	if cs.Handles.Instagram != nil {
		projectHistorical(cs.Handles.Instagram)
	}
	if cs.Handles.LinkedIn != nil {
		projectHistorical(cs.Handles.LinkedIn)
	}
	for i := range cs.Titles {
		projectVolatile(&cs.Titles[i], "role")
	}
	for i := range cs.Organizations {
		projectVolatile(&cs.Organizations[i], "company")
	}
	for i := range cs.Locations {
		projectVolatile(&cs.Locations[i], "location")
	}
	for i := range cs.Bios {
		projectHistorical(&cs.Bios[i])
	}
}

func existingAttributeSourceCount(e *model.Entity, recencyKey, value string) int {
	keys := map[string][]string{
		"role":     {"title", "role", "current_role", "headline"},
		"company":  {"organization", "company", "current_company"},
		"location": {"location", "current_location"},
	}[recencyKey]
	for _, k := range keys {
		if a := e.FindAttribute(k); a != nil && similarity.Similarity(a.Value, value) > 0.7 {
			return len(a.SourceClusters)
		}
	}
	return 0
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
