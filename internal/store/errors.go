package store

import "errors"

// Sentinel errors surfaced by store operations. Handlers and services map
// these onto the API error taxonomy.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness invariant rejected the write, e.g. a
	// duplicate occurrence or a second pending transfer.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means the acting member lacks rights for the operation.
	ErrForbidden = errors.New("forbidden")
)
