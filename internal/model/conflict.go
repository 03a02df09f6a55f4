package model

import "time"

// ConflictType classifies why two values disagree.
type ConflictType string

const (
	ConflictFactual  ConflictType = "FACTUAL"
	ConflictTemporal ConflictType = "TEMPORAL"
	ConflictIdentity ConflictType = "IDENTITY"
)

// ConflictWinner names which side of a conflict won resolution.
type ConflictWinner string

const (
	WinnerA    ConflictWinner = "A"
	WinnerB    ConflictWinner = "B"
	WinnerBoth ConflictWinner = "BOTH"
)

// ConflictResolution records how and why a conflict was settled.
type ConflictResolution struct {
	ResolvedAt   time.Time      `json:"resolved_at"`
	ResolvedBy   string         `json:"resolved_by,omitempty"`
	Winner       ConflictWinner `json:"winner"`
	WinningValue string         `json:"winning_value,omitempty"`
	Reason       string         `json:"reason"`
}

// Conflict is a detected disagreement between two sourced values on an entity.
// See spec §3 "Conflict record".
type Conflict struct {
	ConflictID   string               `json:"conflict_id"`
	EntityID     string               `json:"entity_id"`
	Attribute    string               `json:"attribute"`
	ValueA       string               `json:"value_a"`
	SourceA      string               `json:"source_a,omitempty"`
	DateA        time.Time            `json:"date_a"`
	ValueB       string               `json:"value_b"`
	SourceB      string               `json:"source_b,omitempty"`
	DateB        time.Time            `json:"date_b"`
	ConflictType ConflictType         `json:"conflict_type"`
	AutoResolved bool                 `json:"auto_resolved"`
	Resolution   *ConflictResolution  `json:"resolution,omitempty"`
	DetectedAt   time.Time            `json:"detected_at"`
}
