package repository

import "errors"

var (
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write collides with a unique key,
	// e.g. a second ledger entry for the same (profile, source, sourceRef).
	ErrDuplicate = errors.New("duplicate entry")
)
