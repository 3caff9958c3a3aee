package syntax

import (
	"fmt"
	"iter"
	"strings"
)

// Node is a handle to a node of a Tree. The zero Node is "no node"; all
// accessors are safe to call on it.
type Node struct {
	t  *Tree
	id NodeID
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool { return n.t != nil && n.id >= 0 && int(n.id) < len(n.t.nodes) }

func (n Node) ID() NodeID {
	if !n.Valid() {
		return NoID
	}
	return n.id
}

func (n Node) Tree() *Tree { return n.t }

func (n Node) Kind() Kind {
	if !n.Valid() {
		return 0
	}
	return n.t.get(n.id).kind
}

func (n Node) IsLeaf() bool { return n.Kind() == KindLeaf }

// Type returns the token type of a leaf or the structural type of an
// internal node.
func (n Node) Type() string {
	if !n.Valid() {
		return ""
	}
	return n.t.get(n.id).typ
}

// Value returns the literal text of a leaf, and "" for internal nodes.
func (n Node) Value() string {
	if !n.Valid() {
		return ""
	}
	return n.t.get(n.id).value
}

// Prefix returns the whitespace and comments in front of n's first leaf.
func (n Node) Prefix() string {
	leaf := n.FirstLeaf()
	if !leaf.Valid() {
		return ""
	}
	return leaf.t.get(leaf.id).prefix
}

func (n Node) Parent() Node {
	if !n.Valid() {
		return Node{}
	}
	p := n.t.get(n.id).parent
	if p == NoID {
		return Node{}
	}
	return Node{t: n.t, id: p}
}

func (n Node) NumChildren() int {
	if !n.Valid() {
		return 0
	}
	return len(n.t.get(n.id).children)
}

func (n Node) Child(i int) Node {
	if !n.Valid() {
		return Node{}
	}
	children := n.t.get(n.id).children
	if i < 0 || i >= len(children) {
		return Node{}
	}
	return Node{t: n.t, id: children[i]}
}

// Children returns a fresh slice of n's children.
func (n Node) Children() []Node {
	if !n.Valid() {
		return nil
	}
	ids := n.t.get(n.id).children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{t: n.t, id: id}
	}
	return out
}

// Index returns n's position among its parent's children, or -1.
func (n Node) Index() int {
	p := n.Parent()
	if !p.Valid() {
		return -1
	}
	for i, id := range n.t.get(p.id).children {
		if id == n.id {
			return i
		}
	}
	return -1
}

func (n Node) NextSibling() Node { return n.Parent().Child(n.Index() + 1) }

func (n Node) PrevSibling() Node {
	i := n.Index()
	if i <= 0 {
		return Node{}
	}
	return n.Parent().Child(i - 1)
}

// Attached reports whether n is reachable from the tree's root.
func (n Node) Attached() bool {
	if !n.Valid() {
		return false
	}
	for cur := n.id; ; {
		if cur == n.t.root {
			return true
		}
		cur = n.t.get(cur).parent
		if cur == NoID {
			return false
		}
	}
}

// Contains reports whether m is n or one of its descendants.
func (n Node) Contains(m Node) bool {
	if !n.Valid() || !m.Valid() || n.t != m.t {
		return false
	}
	for cur := m.id; cur != NoID; cur = n.t.get(cur).parent {
		if cur == n.id {
			return true
		}
	}
	return false
}

// FirstLeaf returns the leftmost leaf under n, n itself for a leaf.
func (n Node) FirstLeaf() Node {
	for n.Valid() && !n.IsLeaf() {
		if n.NumChildren() == 0 {
			return Node{}
		}
		n = n.Child(0)
	}
	return n
}

// Offset returns the byte offset in the parsed source where n's first token
// starts, or -1 when that token was created after parsing.
func (n Node) Offset() int {
	leaf := n.FirstLeaf()
	if !leaf.Valid() {
		return -1
	}
	l := leaf.t.get(leaf.id)
	if l.origin < 0 {
		return -1
	}
	return l.origin + len(l.prefix)
}

// Line returns the 1-based line of Offset, or 0 when Offset is -1.
func (n Node) Line() int {
	off := n.Offset()
	if off < 0 {
		return 0
	}
	return strings.Count(n.t.source[:off], "\n") + 1
}

// Leaves yields the leaves under n in source order.
func (n Node) Leaves() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for c := range PreOrder(n) {
			if c.IsLeaf() && !yield(c) {
				return
			}
		}
	}
}

// String renders n, prefix included.
func (n Node) String() string { return Render(n) }

// GoString helps test failure output.
func (n Node) GoString() string { return Dump(n) }

func (n Node) describe() string {
	if !n.Valid() {
		return "<nil>"
	}
	if n.IsLeaf() {
		return fmt.Sprintf("%s#%d(%q)", n.Type(), n.id, n.Value())
	}
	return fmt.Sprintf("%s#%d", n.Type(), n.id)
}
