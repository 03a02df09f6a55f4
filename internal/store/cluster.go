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

// ClusterStore is the durable signal-cluster store (component C). One file
// per cluster under signal_clusters/, deleted on confirmation (spec §6).
type ClusterStore struct {
	root   string
	logger *slog.Logger
	locks  *keyedLocks
}

// NewClusterStore opens (creating if absent) a cluster store rooted at dir.
func NewClusterStore(dir string, logger *slog.Logger) (*ClusterStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: open cluster store %s: %w", dir, err)
	}
	return &ClusterStore{root: dir, logger: logger, locks: newKeyedLocks()}, nil
}

func (s *ClusterStore) path(clusterID string) string {
	return filepath.Join(s.root, clusterID+".json")
}

// Get reads a single cluster by ID. Returns ErrNotFound if absent.
func (s *ClusterStore) Get(_ context.Context, clusterID string) (*model.SignalCluster, error) {
	var c model.SignalCluster
	var readErr error
	_ = s.locks.withReadLock(clusterID, func() error {
		readErr = readJSON(s.path(clusterID), &c)
		return nil
	})
	if os.IsNotExist(readErr) {
		return nil, ErrNotFound
	}
	if readErr != nil {
		return nil, readErr
	}
	return &c, nil
}

// Write persists c, creating or overwriting its file. Writing a cluster in
// state "confirmed" is rejected: confirmed clusters are about to be
// deleted and must never be scored or persisted again (spec invariant 3).
func (s *ClusterStore) Write(_ context.Context, c *model.SignalCluster) error {
	if c.State == model.ClusterConfirmed {
		return fmt.Errorf("store: cannot persist cluster %s in confirmed state", c.ClusterID)
	}
	return s.locks.withWriteLock(c.ClusterID, func() error {
		return writeJSONAtomic(s.path(c.ClusterID), c)
	})
}

// WithLock runs fn holding the write lock for clusterID, reading the
// current record, letting fn mutate it, and persisting the result (unless
// fn sets state to confirmed, in which case the caller should call Delete
// instead — WithLock refuses to write a confirmed cluster back to disk).
func (s *ClusterStore) WithLock(_ context.Context, clusterID string, fn func(c *model.SignalCluster) error) error {
	return s.locks.withWriteLock(clusterID, func() error {
		var c model.SignalCluster
		err := readJSON(s.path(clusterID), &c)
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		if c.State == model.ClusterConfirmed {
			return os.Remove(s.path(clusterID))
		}
		return writeJSONAtomic(s.path(clusterID), &c)
	})
}

// Delete removes a cluster's file (spec invariant 3: confirmed clusters are
// not on disk).
func (s *ClusterStore) Delete(_ context.Context, clusterID string) error {
	return s.locks.withWriteLock(clusterID, func() error {
		err := os.Remove(s.path(clusterID))
		os.Remove(s.path(clusterID) + ".sha256")
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}

// List returns every cluster in the store, skipping malformed files.
func (s *ClusterStore) List(_ context.Context) ([]*model.SignalCluster, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("store: list clusters: %w", err)
	}
	var out []*model.SignalCluster
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		var c model.SignalCluster
		if err := readJSON(filepath.Join(s.root, name), &c); err != nil {
			s.logger.Warn("store: skip malformed cluster file", "file", name, "error", err)
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClusterID < out[j].ClusterID })
	return out, nil
}

// ListUnresolved returns clusters in state "unresolved", used by the
// resolver's Q3 consolidation scan (spec §4.5.1 step 6).
func (s *ClusterStore) ListUnresolved(ctx context.Context) ([]*model.SignalCluster, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.SignalCluster
	for _, c := range all {
		if c.State == model.ClusterUnresolved {
			out = append(out, c)
		}
	}
	return out, nil
}

// ReviewQueue returns every non-confirmed cluster sorted ascending by
// association_confidence (spec §6 getReviewQueue contract).
func (s *ClusterStore) ReviewQueue(ctx context.Context) ([]*model.SignalCluster, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].AssociationConfidence < all[j].AssociationConfidence
	})
	return all, nil
}
