// Package model defines the canonical data shapes persisted by the store:
// entities, signal clusters, spokes, templates, and conflict records.
package model

import "time"

// EntityType is the discriminator for an Entity's structural payload.
type EntityType string

const (
	EntityPerson      EntityType = "person"
	EntityBusiness    EntityType = "business"
	EntityInstitution EntityType = "institution"
)

// FactsLayer marks where a fact originates and how freely it may be argued with.
type FactsLayer int

const (
	FactsLayerObjective FactsLayer = 1 // L1
	FactsLayerGroup     FactsLayer = 2 // L2
	FactsLayerPersonal  FactsLayer = 3 // L3
)

// ConfidenceTier buckets a mean confidence into a human label.
type ConfidenceTier string

const (
	TierThin       ConfidenceTier = "thin"
	TierDeveloping ConfidenceTier = "developing"
	TierStrong     ConfidenceTier = "strong"
)

// PersonName is the structured name payload for person entities.
type PersonName struct {
	Full      string   `json:"full"`
	Preferred string   `json:"preferred,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
}

// BusinessName is the structured name payload for business/institution entities.
type BusinessName struct {
	Legal   string   `json:"legal,omitempty"`
	Common  string   `json:"common,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// Name carries either a person or business name shape. Exactly one of Person
// or Business is populated, selected by the owning Entity's EntityType.
type Name struct {
	Person   *PersonName   `json:"person,omitempty"`
	Business *BusinessName `json:"business,omitempty"`
}

// Summary is a confidence-scored narrative value.
type Summary struct {
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	FactsLayer FactsLayer `json:"facts_layer"`
}

// TimeDecay describes how an attribute's confidence should fade with age.
type TimeDecay struct {
	Stability            string    `json:"stability"` // e.g. "volatile", "stable", "historical"
	CapturedDate         time.Time `json:"captured_date"`
	RefreshIntervalDays  int       `json:"refresh_interval_days,omitempty"`
}

// SourceAttribution names the document or record an attribute's value came from.
type SourceAttribution struct {
	SourceType string `json:"source_type,omitempty"`
	SourceRef  string `json:"source_ref,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Attribute is one key/value fact on an entity, with its confidence provenance.
type Attribute struct {
	AttributeID      string            `json:"attribute_id"`
	Key              string            `json:"key"`
	Value            string            `json:"value"`
	Confidence       float64           `json:"confidence"`
	ConfidenceLabel  ConfidenceTier    `json:"confidence_label"`
	TimeDecay        TimeDecay         `json:"time_decay"`
	SourceAttribution SourceAttribution `json:"source_attribution"`

	// BaseConfidence is the value prior to corroboration. Never rewritten
	// except by a new stage-1 compute (invariant 2).
	BaseConfidence float64  `json:"_base_confidence"`
	SourceClusters []string `json:"_source_clusters,omitempty"`
}

// Relationship is a typed directed edge named by display name; entity_id_ref
// is bound by a later, out-of-scope resolver pass and is normal as nil.
type Relationship struct {
	RelationshipType string     `json:"relationship_type"`
	Name             string     `json:"name"`
	EntityIDRef      *string    `json:"entity_id_ref"`
	Sentiment        string     `json:"sentiment,omitempty"`
	Confidence       float64    `json:"confidence"`
	TimeDecay        TimeDecay  `json:"time_decay"`
}

// Observation is append-only textual evidence attached to an entity.
type Observation struct {
	ObservationID string     `json:"observation_id"`
	Text          string     `json:"text"`
	ObservedAt    time.Time  `json:"observed_at"`
	Source        string     `json:"source,omitempty"`
	TruthLevel    string     `json:"truth_level,omitempty"`
	FactsLayer    FactsLayer `json:"facts_layer"`
}

// MergeHistoryEntry records one merge event on an entity's provenance chain.
type MergeHistoryEntry struct {
	MergedAt     time.Time `json:"merged_at"`
	MergedBy     string    `json:"merged_by,omitempty"`
	ClusterID    string    `json:"cluster_id"`
	ChangeCount  int       `json:"change_count"`
}

// ProvenanceChain tracks append-only sourcing and merge history for an entity.
type ProvenanceChain struct {
	CreatedAt       time.Time           `json:"created_at"`
	CreatedBy       string              `json:"created_by,omitempty"`
	SourceDocuments []string            `json:"source_documents"`
	MergeHistory    []MergeHistoryEntry `json:"merge_history"`
}

// CareerLite is the optional professional-profile escape-hatch payload.
type CareerLite struct {
	Headline   string             `json:"headline,omitempty"`
	Experience []CareerExperience `json:"experience,omitempty"`
	Skills     []string           `json:"skills,omitempty"`
	Education  []string           `json:"education,omitempty"`
}

// CareerExperience is one entry in a CareerLite's experience list.
type CareerExperience struct {
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Location     string `json:"location,omitempty"`
	Current      bool   `json:"current,omitempty"`
}

// StructuredAttributes is the "profile mode" escape-hatch payload.
type StructuredAttributes struct {
	Interface string         `json:"interface,omitempty"` // "profile" marks profile mode
	Fields    map[string]any `json:"fields,omitempty"`
}

// OrgDimensions is the business/institution escape-hatch payload.
type OrgDimensions struct {
	Industry   string   `json:"industry,omitempty"`
	Size       string   `json:"size,omitempty"`
	Locations  []string `json:"locations,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Entity is the self-contained canonical graph record. See spec §3.
type Entity struct {
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	Name       Name       `json:"name"`
	Summary    Summary    `json:"summary"`

	Attributes    []Attribute    `json:"attributes"`
	Relationships []Relationship `json:"relationships"`
	Observations  []Observation  `json:"observations"`

	Provenance ProvenanceChain `json:"provenance_chain"`

	CareerLite           *CareerLite           `json:"career_lite,omitempty"`
	StructuredAttributes *StructuredAttributes `json:"structured_attributes,omitempty"`
	OrgDimensions        *OrgDimensions        `json:"org_dimensions,omitempty"`

	SpokeID   string `json:"spoke_id"`
	Source    string `json:"source,omitempty"`
	SourceRef string `json:"source_ref,omitempty"`

	Conflicts         []Conflict `json:"conflicts"`
	ResolvedConflicts []Conflict `json:"resolved_conflicts"`
}

// AllNames returns the union of this entity's name fields, used by the
// similarity kernel. Person entities contribute full/preferred/aliases;
// business/institution entities contribute legal/common/aliases.
func (e *Entity) AllNames() []string {
	var names []string
	if e.Name.Person != nil {
		p := e.Name.Person
		if p.Full != "" {
			names = append(names, p.Full)
		}
		if p.Preferred != "" {
			names = append(names, p.Preferred)
		}
		names = append(names, p.Aliases...)
	}
	if e.Name.Business != nil {
		b := e.Name.Business
		if b.Legal != "" {
			names = append(names, b.Legal)
		}
		if b.Common != "" {
			names = append(names, b.Common)
		}
		names = append(names, b.Aliases...)
	}
	return dedupPreserveOrder(names)
}

// PrimaryName returns the single most representative name for an entity:
// preferred/common if set, else full/legal, else the first alias.
func (e *Entity) PrimaryName() string {
	if e.Name.Person != nil {
		if e.Name.Person.Preferred != "" {
			return e.Name.Person.Preferred
		}
		if e.Name.Person.Full != "" {
			return e.Name.Person.Full
		}
	}
	if e.Name.Business != nil {
		if e.Name.Business.Common != "" {
			return e.Name.Business.Common
		}
		if e.Name.Business.Legal != "" {
			return e.Name.Business.Legal
		}
	}
	names := e.AllNames()
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// FindAttribute returns the first attribute with the given key, or nil.
func (e *Entity) FindAttribute(key string) *Attribute {
	for i := range e.Attributes {
		if e.Attributes[i].Key == key {
			return &e.Attributes[i]
		}
	}
	return nil
}

func dedupPreserveOrder(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
