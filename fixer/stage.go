package fixer

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnoverse/cstfix/fixer/pattern"
	"github.com/gnoverse/cstfix/syntax"
)

// Match is one place where a stage's pattern matched.
type Match struct {
	Node     syntax.Node
	Captures Captures
	Filename string
}

// Filter decides whether a match is handed to the stage's modifiers.
type Filter func(n syntax.Node, c Captures) bool

// Modifier handles a match. It may record edits through mc and may return a
// replacement for the matched node.
type Modifier func(mc *Context, m Match) Outcome

type stage struct {
	pattern   *pattern.Pattern
	filters   []Filter
	modifiers []Modifier
	glob      string
	order     Order
}

// appliesTo reports whether filename matches the stage's glob. A glob without
// a slash is matched against the base name only.
func (s *stage) appliesTo(filename string) bool {
	if s.glob == "" {
		return true
	}
	name := filepath.ToSlash(filename)
	if !strings.Contains(s.glob, "/") {
		name = path.Base(name)
	}
	ok, err := doublestar.Match(s.glob, name)
	return err == nil && ok
}

func (s *stage) accepts(m Match) bool {
	for _, f := range s.filters {
		if !f(m.Node, m.Captures) {
			return false
		}
	}
	return true
}
