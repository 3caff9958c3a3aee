package fixer

import (
	"github.com/gnoverse/cstfix/syntax"
)

// Outcome is what a modifier returns: nothing to replace, a replacement for
// the matched node, or a failure.
type Outcome struct {
	node syntax.Node
	err  error
}

// NoOp leaves the matched node alone. Edits recorded through the Context
// still apply.
func NoOp() Outcome { return Outcome{} }

// ReplaceWith replaces the matched node with n.
func ReplaceWith(n syntax.Node) Outcome { return Outcome{node: n} }

// Failed reports that the modifier could not handle the match. None of the
// match's edits are applied.
func Failed(err error) Outcome { return Outcome{err: err} }

// From turns a (node, error) pair into an Outcome: a non-nil error fails,
// an invalid node is a no-op, anything else replaces.
func From(n syntax.Node, err error) Outcome {
	if err != nil {
		return Failed(err)
	}
	return Outcome{node: n}
}

func (o Outcome) Err() error { return o.err }

// Replacement returns the replacement node, if any.
func (o Outcome) Replacement() (syntax.Node, bool) {
	if o.err != nil || !o.node.Valid() {
		return syntax.Node{}, false
	}
	return o.node, true
}

func (o Outcome) IsNoOp() bool { return o.err == nil && !o.node.Valid() }

// Bind chains a step that only runs when o carries a replacement.
func (o Outcome) Bind(f func(syntax.Node) Outcome) Outcome {
	n, ok := o.Replacement()
	if !ok {
		return o
	}
	return f(n)
}

// Map transforms the replacement node, if any.
func (o Outcome) Map(f func(syntax.Node) syntax.Node) Outcome {
	n, ok := o.Replacement()
	if !ok {
		return o
	}
	return ReplaceWith(f(n))
}
