package fixer

import (
	"errors"
	"fmt"
)

// ErrStrict wraps the modifier failure that aborted a file in strict mode.
var ErrStrict = errors.New("modifier failed in strict mode")

// WarningKind classifies non-fatal problems found while applying edits.
type WarningKind int

const (
	// MatchAmbiguity: a modifier returned a replacement and also edited
	// nodes inside the matched subtree. The replacement wins.
	MatchAmbiguity WarningKind = iota + 1
	// EditConflict: an edit targeted a node an earlier edit of the same
	// stage had already detached. The edit is dropped.
	EditConflict
)

func (k WarningKind) String() string {
	switch k {
	case MatchAmbiguity:
		return "match ambiguity"
	case EditConflict:
		return "edit conflict"
	default:
		return "unknown"
	}
}

type Warning struct {
	Kind     WarningKind
	Filename string
	Stage    int
	Line     int
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", w.Filename, w.Line, w.Kind, w.Message)
}

// ModifierError reports a modifier that returned an error, panicked or broke
// the modifier contract for one match.
type ModifierError struct {
	Filename string
	Line     int
	NodeType string
	Stage    int
	Modifier int
	Err      error
	// Panic holds the recovered value when the modifier panicked.
	Panic any
	Stack string
}

func (e *ModifierError) Error() string {
	return fmt.Sprintf("%s:%d: stage %d modifier %d on %s: %v",
		e.Filename, e.Line, e.Stage, e.Modifier, e.NodeType, e.Err)
}

func (e *ModifierError) Unwrap() error { return e.Err }
