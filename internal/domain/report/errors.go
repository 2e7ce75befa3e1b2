package report

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classified by the HTTP handler.
var (
	// ErrNotFound means no report matched the request.
	ErrNotFound = errors.New("report not found")

	// ErrTimeout means the operation did not complete within its deadline.
	// The underlying work may still be running.
	ErrTimeout = errors.New("report operation timed out")
)

// ValidationError carries one or more input validation failures. It maps to
// HTTP 400 with the messages in the envelope errors list.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// StorageError wraps a filesystem failure with the operation that caused it.
// It maps to HTTP 500.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
