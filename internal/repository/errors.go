package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a conditional update matched no row, or when
	// a uniqueness constraint rejects an insert.
	ErrConflict = errors.New("entity conflict")
)
