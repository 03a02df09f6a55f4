// Package store is the durable, file-backed entity/cluster/spoke store
// (spec components E, C, P). Persistence matches spec §6 exactly: one JSON
// file per record under a per-tenant directory, UTF-8 with a trailing
// newline; bit-exact field names and enum values are normative.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spokegraph/provisioner/internal/model"
)

// EntityStore is the durable per-tenant entity record store (component E).
type EntityStore struct {
	root   string
	logger *slog.Logger
	locks  *keyedLocks
}

// NewEntityStore opens (creating if absent) an entity store rooted at dir.
func NewEntityStore(dir string, logger *slog.Logger) (*EntityStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: open entity store %s: %w", dir, err)
	}
	return &EntityStore{root: dir, logger: logger, locks: newKeyedLocks()}, nil
}

func (s *EntityStore) path(entityID string) string {
	return filepath.Join(s.root, entityID+".json")
}

// Get reads a single entity by ID. Returns ErrNotFound if absent.
func (s *EntityStore) Get(_ context.Context, entityID string) (*model.Entity, error) {
	var e model.Entity
	var readErr error
	_ = s.locks.withReadLock(entityID, func() error {
		readErr = readJSON(s.path(entityID), &e)
		return nil
	})
	if os.IsNotExist(readErr) {
		return nil, ErrNotFound
	}
	if readErr != nil {
		return nil, readErr
	}
	return &e, nil
}

// Write persists e, creating or overwriting its file.
func (s *EntityStore) Write(_ context.Context, e *model.Entity) error {
	return s.locks.withWriteLock(e.EntityID, func() error {
		return writeJSONAtomic(s.path(e.EntityID), e)
	})
}

// WithLock runs fn holding the write lock for entityID, reading the current
// record, letting fn mutate it, and persisting the result. This is the
// read-modify-write primitive every mutating operation (merge, conflict
// resolution, attribute corroboration bump) must go through to satisfy the
// per-entity serialization guarantee of spec §5.
func (s *EntityStore) WithLock(_ context.Context, entityID string, fn func(e *model.Entity) error) error {
	return s.locks.withWriteLock(entityID, func() error {
		var e model.Entity
		err := readJSON(s.path(entityID), &e)
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
		return writeJSONAtomic(s.path(entityID), &e)
	})
}

// List returns every entity in the store, skipping (and logging) any file
// that fails to parse or fails its integrity check (spec §7 "Integrity
// failure"). Results are sorted by entity_id for deterministic iteration.
func (s *EntityStore) List(_ context.Context) ([]*model.Entity, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("store: list entities: %w", err)
	}
	var out []*model.Entity
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		var e model.Entity
		if err := readJSON(filepath.Join(s.root, name), &e); err != nil {
			s.logger.Warn("store: skip malformed entity file", "file", name, "error", err)
			continue
		}
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

// ListBySpoke returns every entity whose spoke_id matches spokeID.
func (s *EntityStore) ListBySpoke(ctx context.Context, spokeID string) ([]*model.Entity, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.Entity
	for _, e := range all {
		if e.SpokeID == spokeID || (spokeID == model.DefaultSpokeID && e.SpokeID == "") {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindCenteredEntity returns the entity whose ID is centeredEntityID (a
// spoke's centered/self entity). It returns ErrNotFound if the ID is empty,
// i.e. the spoke has no centered entity.
func (s *EntityStore) FindCenteredEntity(ctx context.Context, centeredEntityID string) (*model.Entity, error) {
	if centeredEntityID == "" {
		return nil, ErrNotFound
	}
	return s.Get(ctx, centeredEntityID)
}
