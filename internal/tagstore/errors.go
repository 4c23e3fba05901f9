package tagstore

import "fmt"

// DuplicateTagError reports an Insert for a tag that is already present.
// Seeing it means the caller skipped the Lookup step; it is a logic error,
// not a data error.
type DuplicateTagError struct {
	Tag string
	ID  int64
}

// Error implements the error interface.
func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("tag %q already assigned identifier %d", e.Tag, e.ID)
}

// CorruptError reports a persisted store that could not be understood.
// The loader recovers by starting from an empty store; the error exists so
// the caller can log what happened.
type CorruptError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	if e.Path == "" {
		return "corrupt tag store: " + e.Reason
	}

	return fmt.Sprintf("corrupt tag store %s: %s", e.Path, e.Reason)
}
