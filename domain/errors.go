package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTaskNotFound is returned for operations on an unknown task id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrDuplicateTag is returned when a tag is already attached to a task.
	ErrDuplicateTag = errors.New("duplicate tag")
	// ErrStorageCorrupt marks persisted notes that could not be decoded.
	ErrStorageCorrupt = errors.New("stored notes are corrupt")
)

// ValidationError reports rejected user input. Nothing was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NetworkError wraps a remote call that did not complete.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejectedError carries a 4xx answer. Message is shown to the user as is.
type ServerRejectedError struct {
	Status  int
	Message string
}

func (e *ServerRejectedError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}
