package coordinator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when the session is not an admin.
var ErrForbidden = errors.New("admin session required")

// ErrHighlightCapacity is returned when toggling an absent product into a
// full highlight set.
var ErrHighlightCapacity = errors.New("highlight set is full")

// ErrTooManyExtraImages is returned when more supporting images are supplied
// than a product can carry.
var ErrTooManyExtraImages = errors.New("a product carries at most 3 extra images")

// ValidationError lists every required field that is missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// UploadError reports a failed asset upload. The enclosing operation is
// aborted and the record is not written.
type UploadError struct {
	Field string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Field, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
