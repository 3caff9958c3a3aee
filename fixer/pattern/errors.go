package pattern

import (
	"errors"
	"fmt"
)

// ErrSyntax matches every *SyntaxError with errors.Is.
var ErrSyntax = errors.New("pattern syntax error")

// SyntaxError reports a malformed pattern. Offset is a byte offset into
// Pattern.
type SyntaxError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

func newSyntaxError(src string, offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pattern: src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
