// Package repository owns the persistence layer: the session table, the
// per-user workspaces holding monthly ticket records, and the one-time
// migration of the legacy single-file format. Every store operation is a
// synchronous whole-document read-modify-write with last-writer-wins
// semantics; there is deliberately no locking.
package repository

import (
	"errors"
	"fmt"
)

// ErrValidation is returned for bad caller input, such as an empty email on
// session creation or a malformed month key. Handlers should translate this
// into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned by direct month lookups when no record exists for
// the requested key. Load never returns it; a missing record loads as the
// zero record.
var ErrNotFound = errors.New("not found")

// StorageError wraps an I/O or decode failure on a stored document. It is
// surfaced to the caller as a failure result and never retried automatically.
type StorageError struct {
	Op   string // operation that failed, e.g. "read" or "write"
	Path string // document path
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
