package types

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the structured errors
// below unwrap to one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("complaint not found")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError reports malformed or empty required input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError reports a complaint id that does not exist.
type NotFoundError struct {
	ComplaintID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("complaint %d not found", e.ComplaintID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrStorage and the driver error.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// IsValidation returns true if err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if err reports a missing complaint.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorage returns true if err comes from the storage layer.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
