package model

import "time"

// DefaultSpokeID is the immutable spoke every tenant starts with. It cannot
// be deleted (spec invariant: spoke "default" is immutable).
const DefaultSpokeID = "default"

// Spoke is a perspective partition of a tenant's graph, centered on one
// entity. See spec §3 "Spoke".
type Spoke struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	CenteredEntityID   string            `json:"centered_entity_id,omitempty"`
	CenteredEntityName string            `json:"centered_entity_name,omitempty"`
	Source             string            `json:"source,omitempty"`
	ExternalID         string            `json:"external_id,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	TierAdjustments    map[string]string `json:"tier_adjustments,omitempty"`
}

// IsCentered reports whether entityID is this spoke's centered (self) entity.
func (s *Spoke) IsCentered(entityID string) bool {
	return s.CenteredEntityID != "" && s.CenteredEntityID == entityID
}
