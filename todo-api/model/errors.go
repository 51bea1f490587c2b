package model

import "errors"

var (
	// ErrNotFound is returned for an unknown task id.
	ErrNotFound = errors.New("task not found")
	// ErrConcurrencyConflict indicates that the underlying storage rejected an
	// update because the entity changed since it was read.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrUnchanged is returned by an update function that has nothing to
	// write. Storage skips the write and passes the error through.
	ErrUnchanged = errors.New("task unchanged")
)
