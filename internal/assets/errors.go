package assets

import "fmt"

// WriteError reports a failed object write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("asset write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed object read, typically a missing source
// during a copy.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("asset read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DeleteError reports a failed object removal. Callers treat it as
// non-fatal: failing to free storage never blocks a record operation.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("asset delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// PathParseError reports a public URL that does not map back to a
// store-relative path (malformed or foreign URL).
type PathParseError struct {
	URL string
}

func (e *PathParseError) Error() string {
	return fmt.Sprintf("asset url %q: no storage path", e.URL)
}
