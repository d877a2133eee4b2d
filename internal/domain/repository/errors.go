package repository

import "errors"

var (
	// ErrNotFound is returned when the referenced account or role is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write
	// (email already taken, role name already registered).
	ErrDuplicate = errors.New("duplicate")
)
