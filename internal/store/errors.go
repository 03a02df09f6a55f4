package store

import "errors"

// ErrNotFound is returned when a requested entity, cluster, spoke, or
// template does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDefaultSpokeImmutable is returned when a caller attempts to delete the
// default spoke (spec invariant: the default spoke cannot be deleted).
var ErrDefaultSpokeImmutable = errors.New("store: the default spoke cannot be deleted")

// ErrSpokeNotEmpty is returned when deleting a non-default spoke that still
// contains entities, unless the caller passes force=true.
var ErrSpokeNotEmpty = errors.New("store: spoke still contains entities")

// ErrIntegrity marks a record that failed its on-disk tamper/corruption
// check (spec §7 "Integrity failure"). Callers skip the record and proceed
// with the remainder of the operation.
var ErrIntegrity = errors.New("store: integrity check failed")
