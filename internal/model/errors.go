package model

import "errors"

// Store-level sentinels. Callers branch on them with errors.Is.
var (
	// ErrNotFound is returned when a user, favorite, district or event is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed input rejected before any mutation.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned by an insert-if-absent that found an existing row.
	ErrConflict = errors.New("conflict")
)
