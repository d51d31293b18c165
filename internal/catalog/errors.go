package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict is returned by checked saves when the stored version
// no longer matches the caller's.
var ErrVersionConflict = errors.New("version conflict")

// StoreError wraps a backend failure (unavailability, timeout, bad query).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
