package syntax

import (
	"slices"
)

// Grammar lists the node and token type names a language knows about.
// Pattern compilation checks type names against it.
type Grammar struct {
	name  string
	types map[string]struct{}
	open  bool
}

// NewGrammar returns a grammar that knows exactly the given type names.
func NewGrammar(name string, types ...string) *Grammar {
	g := &Grammar{name: name, types: make(map[string]struct{}, len(types))}
	for _, t := range types {
		g.types[t] = struct{}{}
	}
	return g
}

// OpenGrammar returns a grammar that accepts every type name.
func OpenGrammar(name string) *Grammar {
	return &Grammar{name: name, types: map[string]struct{}{}, open: true}
}

func (g *Grammar) Name() string {
	if g == nil {
		return ""
	}
	return g.name
}

// Has reports whether typ is a known type name.
func (g *Grammar) Has(typ string) bool {
	if g == nil {
		return false
	}
	if g.open {
		return true
	}
	_, ok := g.types[typ]
	return ok
}

// With returns a copy of g that also knows the given types.
func (g *Grammar) With(types ...string) *Grammar {
	ng := &Grammar{name: g.name, types: make(map[string]struct{}, len(g.types)+len(types)), open: g.open}
	for t := range g.types {
		ng.types[t] = struct{}{}
	}
	for _, t := range types {
		ng.types[t] = struct{}{}
	}
	return ng
}

// Types returns the known type names, sorted.
func (g *Grammar) Types() []string {
	out := make([]string, 0, len(g.types))
	for t := range g.types {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
