package pattern

import (
	"slices"
	"strconv"

	"github.com/gnoverse/cstfix/syntax"
)

// CaptureInfo describes one named capture of a compiled pattern.
type CaptureInfo struct {
	Name string
	Kind CaptureKind
}

// Pattern is a compiled, immutable pattern. It is safe to share between
// goroutines.
type Pattern struct {
	root     Node
	source   string
	grammar  *syntax.Grammar
	captures []CaptureInfo
}

// Root returns the top node of the pattern tree.
func (p *Pattern) Root() Node { return p.root }

// Source returns the text the pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

func (p *Pattern) Grammar() *syntax.Grammar { return p.grammar }

// String returns a normalized rendering of the pattern.
func (p *Pattern) String() string { return p.root.String() }

// Captures lists the pattern's captures in the order they appear.
func (p *Pattern) Captures() []CaptureInfo { return slices.Clone(p.captures) }

// CaptureKind reports the kind of the named capture.
func (p *Pattern) CaptureKind(name string) (CaptureKind, bool) {
	for _, c := range p.captures {
		if c.Name == name {
			return c.Kind, true
		}
	}
	return 0, false
}

// Compiler compiles pattern text against a grammar.
type Compiler struct {
	grammar *syntax.Grammar
}

// NewCompiler returns a compiler that checks type names against g. A nil
// grammar accepts every type name.
func NewCompiler(g *syntax.Grammar) *Compiler {
	if g == nil {
		g = syntax.OpenGrammar("any")
	}
	return &Compiler{grammar: g}
}

// Compile parses text into a Pattern. Errors are *SyntaxError.
func (c *Compiler) Compile(text string) (*Pattern, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}
	root, err := NewParser(text, tokens, c.grammar).Parse()
	if err != nil {
		return nil, err
	}

	a := &analyzer{src: text}
	if err := a.walk(root, false, false); err != nil {
		return nil, err
	}
	if lo, hi := root.width(); lo != 1 || hi != 1 {
		return nil, newSyntaxError(text, root.Position(),
			"pattern must match exactly one node, it matches between %s", describeWidth(lo, hi))
	}
	return &Pattern{root: root, source: text, grammar: c.grammar, captures: a.captures}, nil
}

// Compile is a shorthand for NewCompiler(g).Compile(text).
func Compile(g *syntax.Grammar, text string) (*Pattern, error) {
	return NewCompiler(g).Compile(text)
}

// MustCompile is like Compile but panics on error. It is meant for patterns
// known at init time.
func MustCompile(g *syntax.Grammar, text string) *Pattern {
	p, err := Compile(g, text)
	if err != nil {
		panic(err)
	}
	return p
}

// analyzer fixes the kind of every capture and rejects captures that could
// never bind anything.
type analyzer struct {
	src      string
	captures []CaptureInfo
}

func (a *analyzer) walk(n Node, many, negated bool) error {
	switch n := n.(type) {
	case *CaptureNode:
		if negated {
			return newSyntaxError(a.src, n.pos, "capture %q inside 'not' can never bind", n.Name)
		}
		n.Kind = Single
		if lo, hi := n.Sub.width(); many || lo != 1 || hi != 1 {
			n.Kind = Many
		}
		a.captures = append(a.captures, CaptureInfo{Name: n.Name, Kind: n.Kind})
		return a.walk(n.Sub, many, negated)
	case *RepeatNode:
		return a.walk(n.Sub, true, negated)
	case *AlternationNode:
		for _, b := range n.Branches {
			if err := a.walk(b, many || len(n.Branches) > 1, negated); err != nil {
				return err
			}
		}
	case *NegationNode:
		return a.walk(n.Sub, many, true)
	case *TreeNode:
		return a.walk(n.Content, many, negated)
	case *SequenceNode:
		for _, it := range n.Items {
			if err := a.walk(it, many, negated); err != nil {
				return err
			}
		}
	}
	return nil
}

func describeWidth(lo, hi int) string {
	bound := func(v int) string {
		if v >= inf {
			return "unbounded"
		}
		return strconv.Itoa(v)
	}
	return bound(lo) + " and " + bound(hi) + " nodes"
}
