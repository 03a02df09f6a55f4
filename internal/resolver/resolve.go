package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spokegraph/provisioner/internal/confidence"
	"github.com/spokegraph/provisioner/internal/decompose"
	"github.com/spokegraph/provisioner/internal/merge"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
)

// Action is one of the five resolution actions a reviewer may take on a
// scored cluster (spec §4.5.3).
type Action string

const (
	ActionHold         Action = "hold"
	ActionSkip         Action = "skip"
	ActionMerge        Action = "merge"
	ActionCreateNew    Action = "create_new"
	ActionConfirmMerge Action = "confirm_merge"
)

// ErrUnknownAction is a programming error: the caller passed an action name
// outside the five defined by spec §4.5.3.
var ErrUnknownAction = fmt.Errorf("resolver: unknown action")

// Outcome is the result envelope for resolveCluster (spec §6 "Resolver").
// A merge stopped by an IDENTITY conflict reports Action "conflict_blocked"
// with ConflictBlocked set.
type Outcome struct {
	Action            Action           `json:"action"`
	ClusterID         string           `json:"cluster_id"`
	EntityID          string           `json:"entity_id,omitempty"`
	ObservationsAdded int              `json:"observations_added,omitempty"`
	ConflictBlocked   bool             `json:"conflict_blocked,omitempty"`
	Conflicts         []model.Conflict `json:"conflicts,omitempty"`
	Evidence          []model.EvidenceItem `json:"evidence,omitempty"`
}

// ResolveCluster executes action against clusterID (spec §4.5.3). spokeID
// names the spoke context used to determine whether the candidate is the
// centered/self entity; pass model.DefaultSpokeID absent a narrower one.
func ResolveCluster(ctx context.Context, tenant *store.Tenant, clusterID string, action Action, agentID, spokeID string) (*Outcome, error) {
	switch action {
	case ActionHold:
		return resolveHold(ctx, tenant, clusterID)
	case ActionSkip:
		return resolveSkip(ctx, tenant, clusterID)
	case ActionMerge:
		return resolveMerge(ctx, tenant, clusterID, agentID, spokeID, false)
	case ActionCreateNew:
		return resolveCreateNew(ctx, tenant, clusterID, spokeID)
	case ActionConfirmMerge:
		return resolveConfirmMerge(ctx, tenant, clusterID, agentID, spokeID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func resolveHold(ctx context.Context, tenant *store.Tenant, clusterID string) (*Outcome, error) {
	if err := tenant.Clusters.WithLock(ctx, clusterID, func(c *model.SignalCluster) error {
		c.State = model.ClusterUnresolved
		return nil
	}); err != nil {
		return nil, fmt.Errorf("resolver: hold %s: %w", clusterID, err)
	}
	return &Outcome{Action: ActionHold, ClusterID: clusterID}, nil
}

func resolveSkip(ctx context.Context, tenant *store.Tenant, clusterID string) (*Outcome, error) {
	cluster, err := tenant.Clusters.Get(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("resolver: load cluster %s: %w", clusterID, err)
	}
	if cluster.CandidateEntityID == "" {
		return nil, fmt.Errorf("resolver: skip requires a scored candidate entity")
	}

	err = tenant.Entities.WithLock(ctx, cluster.CandidateEntityID, func(e *model.Entity) error {
		e.Provenance.SourceDocuments = append(e.Provenance.SourceDocuments, sourceDocName(cluster))
		bumpCorroborationFromCluster(e, cluster)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolver: skip %s: %w", clusterID, err)
	}
	if err := tenant.Clusters.Delete(ctx, clusterID); err != nil {
		return nil, fmt.Errorf("resolver: delete skipped cluster %s: %w", clusterID, err)
	}
	return &Outcome{Action: ActionSkip, ClusterID: clusterID, EntityID: cluster.CandidateEntityID}, nil
}

func resolveMerge(ctx context.Context, tenant *store.Tenant, clusterID, agentID, spokeID string, confirmed bool) (*Outcome, error) {
	cluster, err := tenant.Clusters.Get(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("resolver: load cluster %s: %w", clusterID, err)
	}
	if cluster.CandidateEntityID == "" {
		return nil, fmt.Errorf("resolver: merge requires a scored candidate entity")
	}
	if confirmed {
		cluster.IdentityConfirmed = true
	}

	entity, err := tenant.Entities.Get(ctx, cluster.CandidateEntityID)
	if err != nil {
		return nil, fmt.Errorf("resolver: load candidate %s: %w", cluster.CandidateEntityID, err)
	}

	detected := DetectConflicts(entity, cluster)
	if HasBlockingIdentityConflict(detected) && !cluster.IdentityConfirmed {
		return &Outcome{
			Action:          "conflict_blocked",
			ClusterID:       clusterID,
			ConflictBlocked: true,
			Conflicts:       detected,
			Evidence:        buildEvidencePanel(cluster, entity),
		}, nil
	}

	spoke, err := tenant.Spokes.Get(ctx, spokeID)
	if err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("resolver: load spoke %s: %w", spokeID, err)
	}
	isSelfEntity := spoke != nil && spoke.IsCentered(entity.EntityID)

	sourceWeight := confidence.SourceWeight(cluster.Source.Type)
	capturedAt := clusterCapturedAt(cluster)
	attrs := buildCanonicalAttributes(cluster, sourceWeight, capturedAt)

	err = tenant.Entities.WithLock(ctx, entity.EntityID, func(e *model.Entity) error {
		now := capturedAt
		for _, c := range detected {
			switch c.ConflictType {
			case model.ConflictTemporal:
				c.ConflictID = newConflictID()
				e.ResolvedConflicts = append(e.ResolvedConflicts, c)
			case model.ConflictFactual:
				c.ConflictID = newConflictID()
				e.Conflicts = append(e.Conflicts, c)
			case model.ConflictIdentity:
				c.ConflictID = newConflictID()
				c.AutoResolved = true
				c.Resolution = &model.ConflictResolution{
					ResolvedAt:   now,
					Winner:       model.WinnerBoth,
					Reason:       "user confirmed same person despite identity conflict",
				}
				e.ResolvedConflicts = append(e.ResolvedConflicts, c)
			}
		}

		result := merge.Merge(e, merge.Input{
			Name:         cluster.EntityData.Name,
			Summary:      cluster.EntityData.Summary,
			Attributes:   attrs,
			IsSelfEntity: isSelfEntity,
		})

		added := appendObservations(e, cluster.EntityData.Observations, cluster.Source.Type, now)
		e.Provenance.MergeHistory = append(e.Provenance.MergeHistory, model.MergeHistoryEntry{
			MergedAt:    now,
			MergedBy:    agentID,
			ClusterID:   cluster.ClusterID,
			ChangeCount: len(result.Changes) + added,
		})

		bumpCorroborationFromCluster(e, cluster)

		if e.EntityType == model.EntityPerson {
			decompose.Decompose(e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolver: merge %s: %w", clusterID, err)
	}
	if err := tenant.Clusters.Delete(ctx, clusterID); err != nil {
		return nil, fmt.Errorf("resolver: delete merged cluster %s: %w", clusterID, err)
	}

	return &Outcome{Action: ActionMerge, ClusterID: clusterID, EntityID: entity.EntityID}, nil
}

func resolveConfirmMerge(ctx context.Context, tenant *store.Tenant, clusterID, agentID, spokeID string) (*Outcome, error) {
	return resolveMerge(ctx, tenant, clusterID, agentID, spokeID, true)
}

func resolveCreateNew(ctx context.Context, tenant *store.Tenant, clusterID, spokeID string) (*Outcome, error) {
	cluster, err := tenant.Clusters.Get(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("resolver: load cluster %s: %w", clusterID, err)
	}

	entityID, err := mintEntityID(ctx, tenant, cluster)
	if err != nil {
		return nil, err
	}

	sourceWeight := confidence.SourceWeight(cluster.Source.Type)
	capturedAt := clusterCapturedAt(cluster)

	entity := &model.Entity{
		EntityID:   entityID,
		EntityType: cluster.EntityType,
		Name:       cluster.EntityData.Name,
		SpokeID:    spokeID,
		Source:     cluster.Source.Type,
		CareerLite: cluster.EntityData.CareerLite,
		Provenance: model.ProvenanceChain{
			CreatedAt:       capturedAt,
			SourceDocuments: []string{sourceDocName(cluster)},
		},
	}
	if cluster.EntityData.Summary != nil {
		entity.Summary = *cluster.EntityData.Summary
	}
	entity.Attributes = buildCanonicalAttributes(cluster, sourceWeight, capturedAt)
	for i := range entity.Attributes {
		entity.Attributes[i].SourceClusters = []string{cluster.ClusterID}
	}
	appendObservations(entity, cluster.EntityData.Observations, cluster.Source.Type, capturedAt)

	if entity.EntityType == model.EntityPerson {
		decompose.Decompose(entity)
	}

	if err := tenant.Entities.Write(ctx, entity); err != nil {
		return nil, fmt.Errorf("resolver: write created entity %s: %w", entityID, err)
	}
	if err := tenant.Clusters.Delete(ctx, clusterID); err != nil {
		return nil, fmt.Errorf("resolver: delete created cluster %s: %w", clusterID, err)
	}

	return &Outcome{Action: ActionCreateNew, ClusterID: clusterID, EntityID: entityID, ObservationsAdded: len(entity.Observations)}, nil
}

// mintEntityID allocates a new entity_id: initials + next per-type
// sequence for persons (ENT-<INITIALS>-<seq>); BIZ-/INST- prefixed
// sequences for business/institution entities (spec §4.5.3 "create_new").
func mintEntityID(ctx context.Context, tenant *store.Tenant, cluster *model.SignalCluster) (string, error) {
	switch cluster.EntityType {
	case model.EntityBusiness:
		seq, err := tenant.Counters.Next(ctx, "BIZ")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("BIZ-%03d", seq), nil
	case model.EntityInstitution:
		seq, err := tenant.Counters.Next(ctx, "INST")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("INST-%03d", seq), nil
	default:
		prefix := initialsOf(PrimaryName(cluster))
		if prefix == "" {
			prefix = "XX"
		}
		seq, err := tenant.Counters.Next(ctx, prefix)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ENT-%s-%03d", prefix, seq), nil
	}
}

func initialsOf(name string) string {
	var b strings.Builder
	for _, t := range strings.Fields(name) {
		r := []rune(strings.ToUpper(t))
		if len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	return b.String()
}

// buildCanonicalAttributes converts a cluster's extracted signals into the
// entity's canonical attribute set, stamped with their initial confidence
// (spec §4.5.3 "create_new": `_base_confidence = sourceWeight`, `confidence
// = computeAttributeConfidence(sourceWeight, capturedDate, key, 1)`).
func buildCanonicalAttributes(cluster *model.SignalCluster, sourceWeight float64, capturedAt time.Time) []model.Attribute {
	var out []model.Attribute
	add := func(key, value string) {
		if value == "" {
			return
		}
		c := confidence.ComputeAttributeConfidence(sourceWeight, capturedAt, key, 1, time.Now().UTC())
		out = append(out, model.Attribute{
			Key:             key,
			Value:           value,
			Confidence:      c,
			ConfidenceLabel: model.ConfidenceTier(confidence.Label(c)),
			BaseConfidence:  sourceWeight,
			TimeDecay:       model.TimeDecay{Stability: stabilityFor(key), CapturedDate: capturedAt},
		})
	}
	if len(cluster.Signals.Titles) > 0 {
		add("current_role", cluster.Signals.Titles[0])
	}
	if len(cluster.Signals.Organizations) > 0 {
		add("current_company", cluster.Signals.Organizations[0])
	}
	if len(cluster.Signals.Locations) > 0 {
		add("current_location", cluster.Signals.Locations[0])
	}
	if len(cluster.Signals.Bios) > 0 {
		add("bio", cluster.Signals.Bios[0])
	}
	for _, s := range cluster.Signals.Skills {
		add("skill", s)
	}
	for _, e := range cluster.Signals.Education {
		add("education", e)
	}
	add("x_handle", cluster.Signals.Handles.X)
	add("instagram_handle", cluster.Signals.Handles.Instagram)
	add("linkedin_handle", cluster.Signals.Handles.LinkedIn)
	return out
}

func stabilityFor(key string) string {
	if confidence.IsVolatile(key) {
		return "volatile"
	}
	return "historical"
}

// bumpCorroborationFromCluster recomputes confidence for every existing
// attribute whose key also appears in cluster's signals, adding cluster_id
// to _source_clusters and applying the corroboration multiplier over the
// new total source count (spec §4.5.3 "skip"/"merge").
func bumpCorroborationFromCluster(e *model.Entity, cluster *model.SignalCluster) {
	incomingKeys := canonicalKeySet(cluster)
	for i := range e.Attributes {
		a := &e.Attributes[i]
		if !incomingKeys[a.Key] {
			continue
		}
		if !containsString(a.SourceClusters, cluster.ClusterID) {
			a.SourceClusters = append(a.SourceClusters, cluster.ClusterID)
		}
		// Corroboration re-scores relative to the attribute's own capture
		// context (recency already reflected in its stored value when it
		// was last stamped), so recency is held fixed at 1.0 here and only
		// the corroboration multiplier moves (spec §8 scenario 2).
		v := a.BaseConfidence * confidence.CorroborationMultiplier(len(a.SourceClusters))
		if v > 1 {
			v = 1
		}
		a.Confidence = v
		a.ConfidenceLabel = model.ConfidenceTier(confidence.Label(a.Confidence))
	}
}

func canonicalKeySet(cluster *model.SignalCluster) map[string]bool {
	keys := make(map[string]bool)
	if len(cluster.Signals.Titles) > 0 {
		keys["current_role"] = true
	}
	if len(cluster.Signals.Organizations) > 0 {
		keys["current_company"] = true
	}
	if len(cluster.Signals.Locations) > 0 {
		keys["current_location"] = true
	}
	if len(cluster.Signals.Bios) > 0 {
		keys["bio"] = true
	}
	if len(cluster.Signals.Skills) > 0 {
		keys["skill"] = true
	}
	if len(cluster.Signals.Education) > 0 {
		keys["education"] = true
	}
	if cluster.Signals.Handles.X != "" {
		keys["x_handle"] = true
	}
	if cluster.Signals.Handles.Instagram != "" {
		keys["instagram_handle"] = true
	}
	if cluster.Signals.Handles.LinkedIn != "" {
		keys["linkedin_handle"] = true
	}
	return keys
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// appendObservations deduplicates cluster-sourced observations by lowercase
// text and appends the new ones, assigning observation_id of form
// OBS-<entity_id>-<YYYYMMDDHHMMSS>-<3-digit-seq> with a dense, monotonic
// per-second suffix (spec invariant 5, §5 ordering guarantees).
func appendObservations(e *model.Entity, incoming []model.Observation, source string, now time.Time) int {
	seen := make(map[string]bool, len(e.Observations))
	for _, o := range e.Observations {
		seen[strings.ToLower(o.Text)] = true
	}
	second := now.Format("20060102150405")
	seq := 0
	for _, existing := range e.Observations {
		if strings.HasPrefix(existing.ObservationID, fmt.Sprintf("OBS-%s-%s-", e.EntityID, second)) {
			seq++
		}
	}

	added := 0
	for _, o := range incoming {
		key := strings.ToLower(o.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		seq++
		o.ObservationID = fmt.Sprintf("OBS-%s-%s-%03d", e.EntityID, second, seq)
		if o.ObservedAt.IsZero() {
			o.ObservedAt = now
		}
		if o.Source == "" {
			o.Source = source
		}
		e.Observations = append(e.Observations, o)
		added++
	}
	return added
}

func sourceDocName(cluster *model.SignalCluster) string {
	if cluster.Source.URL != "" {
		return cluster.Source.URL
	}
	if cluster.Source.Description != "" {
		return cluster.Source.Description
	}
	return cluster.ClusterID
}

func clusterCapturedAt(cluster *model.SignalCluster) time.Time {
	if !cluster.Source.ExtractedAt.IsZero() {
		return cluster.Source.ExtractedAt
	}
	return cluster.CreatedAt
}

func newConflictID() string {
	return "CFL-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}
