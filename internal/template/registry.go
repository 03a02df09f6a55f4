package template

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spokegraph/provisioner/internal/model"
)

// Registry is a read-mostly collection of normalized templates, loaded once
// at startup from a flat file (one JSON object keyed by template_id) and/or
// a directory of per-template JSON files (spec §4.9). A directory entry
// overrides a flat-file entry with the same template_id, so operators can
// ship a baseline catalog and layer tenant-specific overrides on top.
type Registry struct {
	logger    *slog.Logger
	templates map[string]*model.Template
}

// Load builds a Registry from flatFile and dir. Either path may be empty or
// not exist, in which case it is silently skipped — a registry with no
// sources is valid and simply has no templates.
func Load(flatFile, dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger, templates: make(map[string]*model.Template)}

	if flatFile != "" {
		if err := r.loadFlatFile(flatFile); err != nil {
			return nil, err
		}
	}
	if dir != "" {
		if err := r.loadDir(dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) loadFlatFile(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("template: read %s: %w", path, err)
	}

	var byID map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byID); err != nil {
		return fmt.Errorf("template: unmarshal %s: %w", path, err)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var t model.Template
		if err := json.Unmarshal(byID[id], &t); err != nil {
			r.logger.Warn("template: skipping malformed entry in flat file", "template_id", id, "error", err)
			continue
		}
		if t.TemplateID == "" {
			t.TemplateID = id
		}
		Normalize(&t)
		r.templates[t.TemplateID] = &t
	}
	return nil
}

func (r *Registry) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("template: read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("template: skipping unreadable override file", "path", path, "error", err)
			continue
		}
		if sidecar, err := os.ReadFile(path + ".sha256"); err == nil {
			if hex.EncodeToString(sha256Sum(raw)) != strings.TrimSpace(string(sidecar)) {
				r.logger.Warn("template: skipping override file that failed its integrity check", "path", path)
				continue
			}
		}

		var t model.Template
		if err := json.Unmarshal(raw, &t); err != nil {
			r.logger.Warn("template: skipping malformed override file", "path", path, "error", err)
			continue
		}
		if t.TemplateID == "" {
			t.TemplateID = strings.TrimSuffix(entry.Name(), ".json")
		}
		Normalize(&t)
		r.templates[t.TemplateID] = &t
	}
	return nil
}

func sha256Sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// Get returns the normalized template for templateType, or false if no
// template with that ID is registered.
func (r *Registry) Get(templateType string) (*model.Template, bool) {
	t, ok := r.templates[templateType]
	return t, ok
}

// Put registers or overwrites a template in memory, normalizing it first.
// Used by callers that load a template outside of Load (e.g. a future
// "upload custom template" API).
func (r *Registry) Put(t *model.Template) {
	Normalize(t)
	r.templates[t.TemplateID] = t
}

// List returns all registered template IDs in sorted order.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
