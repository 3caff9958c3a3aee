package fixer

import (
	"iter"
	"slices"

	"github.com/gnoverse/cstfix/fixer/pattern"
	"github.com/gnoverse/cstfix/syntax"
)

// Capture is what one named capture bound in a match.
type Capture struct {
	kind  pattern.CaptureKind
	nodes []syntax.Node
}

func (c Capture) Kind() pattern.CaptureKind { return c.kind }

// Node returns the bound node of a Single capture, or the first node of a
// Many capture.
func (c Capture) Node() syntax.Node {
	if len(c.nodes) == 0 {
		return syntax.Node{}
	}
	return c.nodes[0]
}

// Nodes returns every bound node, in source order.
func (c Capture) Nodes() []syntax.Node { return slices.Clone(c.nodes) }

// Captures maps capture names to what they bound. A successful match holds an
// entry for every capture of its pattern; Many captures that bound nothing
// hold an empty list.
type Captures map[string]Capture

func (c Captures) Node(name string) syntax.Node { return c[name].Node() }

func (c Captures) Nodes(name string) []syntax.Node { return c[name].Nodes() }

func (c Captures) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Order is the traversal order of FindAll.
type Order int

const (
	// PreOrder visits a node before its children and does not look inside a
	// node that matched.
	PreOrder Order = iota
	// PostOrder visits children before their parent.
	PostOrder
)

func (o Order) String() string {
	if o == PostOrder {
		return "post"
	}
	return "pre"
}

// MatchNode matches p against n alone.
func MatchNode(p *pattern.Pattern, n syntax.Node) (Captures, bool) {
	if !n.Valid() {
		return nil, false
	}
	m := &matcher{bound: map[string][]syntax.Node{}}
	nodes := []syntax.Node{n}
	if !m.match(p.Root(), nodes, 0, func(j int) bool { return j == 1 }) {
		return nil, false
	}

	caps := make(Captures, len(p.Captures()))
	for _, info := range p.Captures() {
		caps[info.Name] = Capture{kind: info.Kind, nodes: slices.Clone(m.bound[info.Name])}
	}
	return caps, true
}

// FindAll yields every node under root, root included, that p matches. The
// tree is read as it stands when the iteration runs.
func FindAll(p *pattern.Pattern, root syntax.Node, order Order) iter.Seq2[syntax.Node, Captures] {
	return func(yield func(syntax.Node, Captures) bool) {
		if order == PostOrder {
			findPost(p, root, yield)
			return
		}
		findPre(p, root, yield)
	}
}

func findPre(p *pattern.Pattern, n syntax.Node, yield func(syntax.Node, Captures) bool) bool {
	if caps, ok := MatchNode(p, n); ok {
		return yield(n, caps)
	}
	for i := 0; i < n.NumChildren(); i++ {
		if !findPre(p, n.Child(i), yield) {
			return false
		}
	}
	return true
}

func findPost(p *pattern.Pattern, n syntax.Node, yield func(syntax.Node, Captures) bool) bool {
	for i := 0; i < n.NumChildren(); i++ {
		if !findPost(p, n.Child(i), yield) {
			return false
		}
	}
	if caps, ok := MatchNode(p, n); ok {
		return yield(n, caps)
	}
	return true
}

type binding struct {
	name string
	prev int
}

// matcher is a backtracking matcher over sibling lists. match calls k with
// every position where p can end, starting at nodes[i], until k accepts one.
type matcher struct {
	bound map[string][]syntax.Node
	undo  []binding
}

func (m *matcher) mark() int { return len(m.undo) }

func (m *matcher) reset(mark int) {
	for len(m.undo) > mark {
		b := m.undo[len(m.undo)-1]
		m.undo = m.undo[:len(m.undo)-1]
		m.bound[b.name] = m.bound[b.name][:b.prev]
	}
}

func (m *matcher) bind(name string, nodes []syntax.Node) {
	m.undo = append(m.undo, binding{name: name, prev: len(m.bound[name])})
	m.bound[name] = append(m.bound[name], nodes...)
}

func (m *matcher) match(p pattern.Node, nodes []syntax.Node, i int, k func(int) bool) bool {
	switch p := p.(type) {
	case *pattern.LiteralNode, *pattern.AnyNode, *pattern.TreeNode:
		if i >= len(nodes) {
			return false
		}
		mk := m.mark()
		if m.one(p, nodes[i]) && k(i+1) {
			return true
		}
		m.reset(mk)
		return false

	case *pattern.CaptureNode:
		return m.match(p.Sub, nodes, i, func(j int) bool {
			mk := m.mark()
			m.bind(p.Name, nodes[i:j])
			if k(j) {
				return true
			}
			m.reset(mk)
			return false
		})

	case *pattern.SequenceNode:
		return m.sequence(p.Items, nodes, i, k)

	case *pattern.AlternationNode:
		for _, b := range p.Branches {
			entered := false
			if m.match(b, nodes, i, func(j int) bool {
				entered = true
				return k(j)
			}) {
				return true
			}
			if entered {
				return false
			}
		}
		return false

	case *pattern.RepeatNode:
		return m.repeat(p, nodes, i, k)

	case *pattern.NegationNode:
		mk := m.mark()
		found := m.match(p.Sub, nodes, i, func(int) bool { return true })
		m.reset(mk)
		if found {
			return false
		}
		return k(i)
	}
	return false
}

// one matches a single-node pattern against n.
func (m *matcher) one(p pattern.Node, n syntax.Node) bool {
	switch p := p.(type) {
	case *pattern.AnyNode:
		return true
	case *pattern.LiteralNode:
		if p.TypeName != "" && n.Type() != p.TypeName {
			return false
		}
		if p.HasValue {
			return n.IsLeaf() && n.Value() == p.Value
		}
		return true
	case *pattern.TreeNode:
		if n.IsLeaf() || (p.TypeName != "" && n.Type() != p.TypeName) {
			return false
		}
		children := n.Children()
		return m.match(p.Content, children, 0, func(j int) bool { return j == len(children) })
	}
	return false
}

func (m *matcher) sequence(items []pattern.Node, nodes []syntax.Node, i int, k func(int) bool) bool {
	if len(items) == 0 {
		return k(i)
	}
	return m.match(items[0], nodes, i, func(j int) bool {
		return m.sequence(items[1:], nodes, j, k)
	})
}

// repeat matches p.Sub as many times as it can, then hands the end positions
// to k from the longest run down to p.Min. Each iteration keeps the first way
// p.Sub matched; only the iteration count is backtracked.
func (m *matcher) repeat(p *pattern.RepeatNode, nodes []syntax.Node, i int, k func(int) bool) bool {
	ends := []int{i}
	marks := []int{m.mark()}
	for p.Max == pattern.Unbounded || len(ends)-1 < p.Max {
		at := ends[len(ends)-1]
		next := -1
		if !m.match(p.Sub, nodes, at, func(j int) bool {
			next = j
			return true
		}) {
			break
		}
		ends = append(ends, next)
		marks = append(marks, m.mark())
		if next == at {
			// no progress: further iterations would match the same way
			for len(ends)-1 < p.Min {
				ends = append(ends, next)
				marks = append(marks, m.mark())
			}
			break
		}
	}
	for c := len(ends) - 1; c >= p.Min; c-- {
		m.reset(marks[c])
		if k(ends[c]) {
			return true
		}
	}
	m.reset(marks[0])
	return false
}
