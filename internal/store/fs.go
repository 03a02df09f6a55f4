package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeJSONAtomic serializes v to UTF-8 JSON with a trailing newline and
// writes it to path via a temp-file-then-rename, so readers never observe a
// partial write (spec §5 "per-record atomic write (rename/replace or
// equivalent)"). A sha256 sidecar is written alongside for best-effort
// tamper/corruption detection on read; the sidecar is not part of the
// record's on-disk schema and is never consulted by other tooling.
func writeJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", path, err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: rename into %s: %w", path, err)
	}

	sidecar := path + ".sha256"
	_ = os.WriteFile(sidecar, []byte(contentHash(b)), 0o644)
	return nil
}

// readJSON reads and unmarshals path into v. If a sha256 sidecar exists and
// does not match, the record is treated as an integrity failure (spec §7):
// the caller is expected to log and skip rather than fail the whole
// operation.
func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if sidecar, err := os.ReadFile(path + ".sha256"); err == nil {
		if !verifyContentHash(string(sidecar), b) {
			return fmt.Errorf("store: integrity check failed for %s: %w", path, ErrIntegrity)
		}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("store: unmarshal %s: %w", path, err)
	}
	return nil
}
