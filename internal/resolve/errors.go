package resolve

import (
	"fmt"

	"tableforge/internal/diagnostic"
)

// FormatError reports a numeric cell that is neither a placeholder nor a
// numeric literal. It fails the file it occurred in; other files continue.
type FormatError struct {
	Loc  diagnostic.Location
	Cell string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: cell %q is neither a placeholder nor a number", e.Loc, e.Cell)
}

// CollisionError reports a numeric literal equal to an identifier already
// assigned to a tag. Only raised under the strict collision policy.
type CollisionError struct {
	Loc diagnostic.Location
	ID  int64
	Tag string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: literal %d collides with identifier of tag %q", e.Loc, e.ID, e.Tag)
}
