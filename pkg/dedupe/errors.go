package dedupe

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed arguments to a resolution call.
	ErrValidation = errors.New("invalid argument")

	// ErrNotFound is returned when a group or the task to keep is no longer
	// known, typically because another client resolved it first.
	ErrNotFound = errors.New("not found")
)

// StorageError wraps a failure reported by the task store or event log.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
