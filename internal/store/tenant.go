package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Tenant bundles the entity, cluster, spoke, and counter stores rooted at a
// single tenant's directory (spec §6 "Persistent layout (per tenant)").
// Multi-tenant directory routing itself — choosing which Tenant a request
// belongs to — is an explicit non-goal; callers already know their root.
type Tenant struct {
	Entities *EntityStore
	Clusters *ClusterStore
	Spokes   *SpokeRegistry
	Counters *CounterStore
	root     string
}

// OpenTenant opens (creating if absent) all stores rooted at dir, and
// bootstraps the default spoke's centered entity from self-entity.json if
// present and not already set.
func OpenTenant(ctx context.Context, dir string, logger *slog.Logger) (*Tenant, error) {
	entities, err := NewEntityStore(filepath.Join(dir), logger)
	if err != nil {
		return nil, err
	}
	clusters, err := NewClusterStore(filepath.Join(dir, "signal_clusters"), logger)
	if err != nil {
		return nil, err
	}
	spokes, err := NewSpokeRegistry(dir)
	if err != nil {
		return nil, err
	}
	counters, err := NewCounterStore(filepath.Join(dir, "counters"))
	if err != nil {
		return nil, err
	}

	t := &Tenant{Entities: entities, Clusters: clusters, Spokes: spokes, Counters: counters, root: dir}

	if ref, err := ReadSelfEntity(dir); err == nil && ref != nil && ref.SelfEntityID != "" {
		def, err := spokes.Get(ctx, "default")
		if err == nil && def.CenteredEntityID == "" {
			if _, err := spokes.SetCenteredEntity(ctx, "default", ref.SelfEntityID, ref.SelfEntityName); err != nil {
				return nil, fmt.Errorf("store: bootstrap default spoke: %w", err)
			}
		}
	}

	return t, nil
}

// Root returns the tenant's root directory.
func (t *Tenant) Root() string { return t.root }
