package model

import "time"

// ClusterState is the lifecycle state of a signal cluster.
type ClusterState string

const (
	ClusterUnresolved ClusterState = "unresolved"
	ClusterProvisional ClusterState = "provisional"
	ClusterConfirmed  ClusterState = "confirmed"
)

// MatchZone is the identity-resolution verdict produced by the resolver.
type MatchZone string

const (
	ZoneHighConfidence MatchZone = "HIGH_CONFIDENCE_MATCH"
	ZoneAmbiguous      MatchZone = "AMBIGUOUS_MATCH"
	ZoneNoMatch        MatchZone = "NO_MATCH"
)

// Quadrant is the review-workflow bucket a cluster is assigned to.
type Quadrant int

const (
	QuadrantCreate      Quadrant = 1
	QuadrantEnrich      Quadrant = 2
	QuadrantConsolidate Quadrant = 3
	QuadrantConfirm     Quadrant = 4
)

// Label returns the canonical string label for a quadrant.
func (q Quadrant) Label() string {
	switch q {
	case QuadrantCreate:
		return "Q1_CREATE"
	case QuadrantEnrich:
		return "Q2_ENRICH"
	case QuadrantConsolidate:
		return "Q3_CONSOLIDATE"
	case QuadrantConfirm:
		return "Q4_CONFIRM"
	default:
		return ""
	}
}

// Source describes where an extraction came from.
type Source struct {
	Type        string    `json:"type"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
	Weight      float64   `json:"weight"`
}

// Handles is the fixed set of social handles tracked by the staging engine.
type Handles struct {
	X         string `json:"x,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Signals is the raw, unscored extraction payload for a cluster.
type Signals struct {
	Names         []string `json:"names,omitempty"`
	Handles       Handles  `json:"handles"`
	Titles        []string `json:"titles,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Bios          []string `json:"bios,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	Education     []string `json:"education,omitempty"`
	RawText       string   `json:"raw_text,omitempty"`
}

// ScoredValue is one leaf of ConfidentSignals: a value with its projected
// confidence and the cluster IDs that corroborate it.
type ScoredValue struct {
	Value               string   `json:"value"`
	Confidence          float64  `json:"confidence"`
	Sources             []string `json:"sources"`
	ProjectedConfidence float64  `json:"projected_confidence"`
}

// ScoredHandles mirrors Handles but with each leaf confidence-scored.
type ScoredHandles struct {
	X         *ScoredValue `json:"x,omitempty"`
	Instagram *ScoredValue `json:"instagram,omitempty"`
	LinkedIn  *ScoredValue `json:"linkedin,omitempty"`
}

// ConfidentSignals mirrors Signals but with each leaf confidence-scored.
type ConfidentSignals struct {
	Names         []ScoredValue `json:"names,omitempty"`
	Handles       ScoredHandles `json:"handles"`
	Titles        []ScoredValue `json:"titles,omitempty"`
	Organizations []ScoredValue `json:"organizations,omitempty"`
	Locations     []ScoredValue `json:"locations,omitempty"`
	Bios          []ScoredValue `json:"bios,omitempty"`
	Skills        []ScoredValue `json:"skills,omitempty"`
	Education     []ScoredValue `json:"education,omitempty"`
}

// AssociationFactors is the per-factor breakdown behind an association score.
type AssociationFactors struct {
	Name     float64 `json:"name"`
	Handle   float64 `json:"handle"`
	OrgTitle float64 `json:"org_title"`
	Location float64 `json:"location"`
	Bio      float64 `json:"bio"`
}

// Contradiction is one penalized disagreement found during association scoring.
type Contradiction struct {
	Kind        string  `json:"kind"`
	Detail      string  `json:"detail"`
	Penalty     float64 `json:"penalty"`
	PossibleIdentityConflict bool `json:"possible_identity_conflict,omitempty"`
}

// NoveltyDetail names one signal's new/duplicate determination.
type NoveltyDetail struct {
	SignalType string `json:"signal_type"`
	Value      string `json:"value"`
	IsNew      bool   `json:"is_new"`
}

// DataNovelty summarizes how much of a cluster's data is new vs. duplicate.
type DataNovelty struct {
	Ratio             float64         `json:"ratio"`
	NewSignals        int             `json:"new_signals"`
	DuplicateSignals  int             `json:"duplicate_signals"`
	Details           []NoveltyDetail `json:"details,omitempty"`
}

// EvidenceStatus is the per-factor verdict shown in the ambiguous evidence panel.
type EvidenceStatus string

const (
	EvidenceMatch    EvidenceStatus = "match"
	EvidencePartial  EvidenceStatus = "partial"
	EvidenceWeak     EvidenceStatus = "weak"
	EvidenceNoMatch  EvidenceStatus = "no_match"
	EvidenceConflict EvidenceStatus = "conflict"
)

// EvidenceItem is one row of the ambiguous-match evidence panel.
type EvidenceItem struct {
	Factor string         `json:"factor"`
	Value  string         `json:"value"`
	Status EvidenceStatus `json:"status"`
}

// SignalCluster is the transient resolution unit staged from an extraction.
// See spec §3 "Signal cluster".
type SignalCluster struct {
	ClusterID  string       `json:"cluster_id"`
	EntityType EntityType   `json:"entity_type"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	State      ClusterState `json:"state"`

	Source  Source `json:"source"`
	Signals Signals `json:"signals"`
	ConfidentSignals ConfidentSignals `json:"confident_signals"`

	SignalConfidence        float64            `json:"signal_confidence"`
	AssociationConfidence   float64            `json:"association_confidence"`
	AssociationRawScore     float64            `json:"association_raw_score"`
	AssociationFactors      AssociationFactors `json:"association_factors"`
	Contradictions          []Contradiction    `json:"contradictions,omitempty"`
	ContradictionPenalty    float64            `json:"contradiction_penalty"`
	MatchType               string             `json:"match_type,omitempty"`
	MatchZone               MatchZone          `json:"match_zone"`
	NameRarity              string             `json:"name_rarity,omitempty"`
	RarityThreshold         float64            `json:"rarity_threshold"`
	Quadrant                Quadrant           `json:"quadrant"`
	QuadrantLabel           string             `json:"quadrant_label"`
	DataNovelty             DataNovelty        `json:"data_novelty"`
	CandidateEntityID       string             `json:"candidate_entity_id,omitempty"`
	CandidateEntityName     string             `json:"candidate_entity_name,omitempty"`
	EvidencePanel           []EvidenceItem     `json:"evidence_panel,omitempty"`

	// EntityData is the original extraction payload, kept for promotion/merge.
	EntityData ExtractedEntity `json:"_entity_data"`
	// IdentityConfirmed is set when a user overrides an identity block.
	IdentityConfirmed bool `json:"_identity_confirmed"`
}

// ExtractedEntity is the input shape accepted by the staging engine: a
// candidate entity proposed by the (out-of-scope) extraction pipeline.
type ExtractedEntity struct {
	EntityType EntityType     `json:"entity_type"`
	Name       Name           `json:"name"`
	Summary    *Summary       `json:"summary,omitempty"`
	Attributes []Attribute    `json:"attributes,omitempty"`
	Observations []Observation `json:"observations,omitempty"`
	CareerLite *CareerLite    `json:"career_lite,omitempty"`
}
