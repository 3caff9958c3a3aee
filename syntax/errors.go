package syntax

import (
	"errors"
	"fmt"
)

var (
	ErrDetached    = errors.New("node is not attached to the tree")
	ErrAttached    = errors.New("node already has a parent")
	ErrForeign     = errors.New("node does not belong to this tree")
	ErrRoot        = errors.New("operation not allowed on the root")
	ErrNotInternal = errors.New("node is not an internal node")
)

// RenderInvariantError reports that rendering no longer reproduces bytes that
// no edit touched.
type RenderInvariantError struct {
	Offset int
	Want   string
	Got    string
}

func (e *RenderInvariantError) Error() string {
	return fmt.Sprintf("render invariant violated at offset %d: want %q, got %q", e.Offset, e.Want, e.Got)
}
