package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spokegraph/provisioner/internal/model"
)

// SpokeRegistry is the per-tenant map of spokes (component P), persisted as
// a single spokes.json file (spec §6).
type SpokeRegistry struct {
	path  string
	locks *keyedLocks
}

// NewSpokeRegistry opens (creating if absent) a spoke registry at
// <dir>/spokes.json, seeding the immutable "default" spoke on first use.
func NewSpokeRegistry(dir string) (*SpokeRegistry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: open spoke registry %s: %w", dir, err)
	}
	r := &SpokeRegistry{path: filepath.Join(dir, "spokes.json"), locks: newKeyedLocks()}
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		now := time.Now().UTC()
		seed := map[string]*model.Spoke{
			model.DefaultSpokeID: {
				ID:        model.DefaultSpokeID,
				Name:      "Default",
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		if err := writeJSONAtomic(r.path, seed); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *SpokeRegistry) readAll() (map[string]*model.Spoke, error) {
	m := make(map[string]*model.Spoke)
	if err := readJSON(r.path, &m); err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	if m == nil {
		m = make(map[string]*model.Spoke)
	}
	return m, nil
}

func (r *SpokeRegistry) writeAll(m map[string]*model.Spoke) error {
	return writeJSONAtomic(r.path, m)
}

// Get returns a spoke by ID.
func (r *SpokeRegistry) Get(_ context.Context, id string) (*model.Spoke, error) {
	var out *model.Spoke
	err := r.locks.withReadLock("spokes", func() error {
		m, err := r.readAll()
		if err != nil {
			return err
		}
		s, ok := m[id]
		if !ok {
			return ErrNotFound
		}
		out = s
		return nil
	})
	return out, err
}

// List returns every spoke.
func (r *SpokeRegistry) List(_ context.Context) ([]*model.Spoke, error) {
	var out []*model.Spoke
	err := r.locks.withReadLock("spokes", func() error {
		m, err := r.readAll()
		if err != nil {
			return err
		}
		for _, s := range m {
			out = append(out, s)
		}
		return nil
	})
	return out, err
}

// Create adds a new spoke. name must be non-empty.
func (r *SpokeRegistry) Create(_ context.Context, s *model.Spoke) error {
	if s.Name == "" {
		return fmt.Errorf("store: spoke name is required")
	}
	return r.locks.withWriteLock("spokes", func() error {
		m, err := r.readAll()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		s.CreatedAt = now
		s.UpdatedAt = now
		m[s.ID] = s
		return r.writeAll(m)
	})
}

// Update applies fn to the spoke identified by id and persists the result.
func (r *SpokeRegistry) Update(_ context.Context, id string, fn func(s *model.Spoke) error) (*model.Spoke, error) {
	var updated *model.Spoke
	err := r.locks.withWriteLock("spokes", func() error {
		m, err := r.readAll()
		if err != nil {
			return err
		}
		s, ok := m[id]
		if !ok {
			return ErrNotFound
		}
		if err := fn(s); err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()
		m[id] = s
		updated = s
		return r.writeAll(m)
	})
	return updated, err
}

// SetCenteredEntity sets the centered entity for spoke id.
func (r *SpokeRegistry) SetCenteredEntity(ctx context.Context, id, entityID, entityName string) (*model.Spoke, error) {
	return r.Update(ctx, id, func(s *model.Spoke) error {
		s.CenteredEntityID = entityID
		s.CenteredEntityName = entityName
		return nil
	})
}

// Delete removes a non-default spoke. The default spoke can never be
// deleted. A non-default spoke that still contains entities is rejected
// unless force is true.
func (r *SpokeRegistry) Delete(_ context.Context, id string, hasEntities func(spokeID string) (bool, error), force bool) error {
	if id == model.DefaultSpokeID {
		return ErrDefaultSpokeImmutable
	}
	return r.locks.withWriteLock("spokes", func() error {
		m, err := r.readAll()
		if err != nil {
			return err
		}
		if _, ok := m[id]; !ok {
			return ErrNotFound
		}
		if !force {
			nonEmpty, err := hasEntities(id)
			if err != nil {
				return err
			}
			if nonEmpty {
				return ErrSpokeNotEmpty
			}
		}
		delete(m, id)
		return r.writeAll(m)
	})
}
