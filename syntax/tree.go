// Package syntax holds the concrete syntax tree that every other package of
// cstfix works on.
//
// A Tree is an arena of nodes addressed by stable NodeID values. Leaves carry a
// token type, the literal text of the token and the prefix (whitespace and
// comments) that precedes it. Internal nodes carry a structural type and an
// ordered list of children. Rendering a tree concatenates prefix and value of
// every leaf in order, so a freshly parsed tree always renders back to the
// exact text it was parsed from.
//
// Trees are not safe for concurrent mutation. A tree belongs to whoever is
// processing the file it was parsed from; read-only access from several
// goroutines is fine as long as no edit is being applied.
package syntax

import (
	"fmt"
	"strings"
)

// NodeID addresses a node inside its Tree's arena.
type NodeID int32

// NoID is the id of "no node".
const NoID NodeID = -1

// Kind tells leaves and internal nodes apart.
type Kind uint8

const (
	KindLeaf Kind = iota + 1
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type node struct {
	kind     Kind
	typ      string
	value    string
	prefix   string
	parent   NodeID
	children []NodeID
	// origin is the offset of the prefix in the parsed source,
	// or -1 for nodes created or modified after parsing.
	origin int
}

// Tree is an arena-backed concrete syntax tree.
type Tree struct {
	grammar *Grammar
	nodes   []node
	root    NodeID
	source  string
	edits   int
}

// Grammar returns the grammar the tree was built with.
func (t *Tree) Grammar() *Grammar { return t.grammar }

// Root returns the root node.
func (t *Tree) Root() Node { return Node{t: t, id: t.root} }

// Source returns the text the tree was built from.
func (t *Tree) Source() string { return t.source }

// Edited reports whether any mutation was applied since the tree was built.
func (t *Tree) Edited() bool { return t.edits > 0 }

// Len returns the number of nodes in the arena, detached ones included.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the handle for id.
func (t *Tree) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}
	}
	return Node{t: t, id: id}
}

func (t *Tree) String() string { return Render(t.Root()) }

func (t *Tree) get(id NodeID) *node { return &t.nodes[id] }

func (t *Tree) alloc(n node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// NewLeaf allocates a detached leaf.
func (t *Tree) NewLeaf(typ, value, prefix string) Node {
	id := t.alloc(node{kind: KindLeaf, typ: typ, value: value, prefix: prefix, parent: NoID, origin: -1})
	return Node{t: t, id: id}
}

// NewNode allocates a detached internal node with the given children.
// Children that are still attached somewhere are deep-copied first, so the
// caller may freely reuse captured nodes when building a replacement.
func (t *Tree) NewNode(typ string, children ...Node) Node {
	id := t.alloc(node{kind: KindInternal, typ: typ, parent: NoID, origin: -1})
	ids := make([]NodeID, 0, len(children))
	for _, c := range children {
		if !c.Valid() {
			continue
		}
		if c.t != t {
			c = t.importNode(c)
		} else if t.get(c.id).parent != NoID || c.id == t.root {
			c = t.Clone(c)
		}
		t.get(c.id).parent = id
		ids = append(ids, c.id)
	}
	t.get(id).children = ids
	return Node{t: t, id: id}
}

// Clone deep-copies n into a new detached subtree.
func (t *Tree) Clone(n Node) Node {
	if n.t != t {
		return t.importNode(n)
	}
	src := *t.get(n.id)
	id := t.alloc(node{kind: src.kind, typ: src.typ, value: src.value, prefix: src.prefix, parent: NoID, origin: -1})
	if src.kind == KindInternal {
		ids := make([]NodeID, 0, len(src.children))
		for _, c := range src.children {
			cc := t.Clone(Node{t: t, id: c})
			t.get(cc.id).parent = id
			ids = append(ids, cc.id)
		}
		t.get(id).children = ids
	}
	return Node{t: t, id: id}
}

// importNode copies a subtree that lives in another tree.
func (t *Tree) importNode(n Node) Node {
	src := n.t.get(n.id)
	if src.kind == KindLeaf {
		return t.NewLeaf(src.typ, src.value, src.prefix)
	}
	children := make([]Node, 0, len(src.children))
	for _, c := range src.children {
		children = append(children, t.importNode(Node{t: n.t, id: c}))
	}
	return t.NewNode(src.typ, children...)
}

// Replace puts repl where target is. target must be attached; repl must be a
// detached node of the same tree.
func (t *Tree) Replace(target, repl Node) error {
	if err := t.checkDetached(repl); err != nil {
		return err
	}
	if !target.Attached() {
		return fmt.Errorf("replace %s: %w", target.describe(), ErrDetached)
	}
	if target.id == t.root {
		t.root = repl.id
		t.touch()
		return nil
	}
	p := t.get(target.id).parent
	parent := t.get(p)
	i := indexOf(parent.children, target.id)
	parent.children[i] = repl.id
	t.get(repl.id).parent = p
	t.get(target.id).parent = NoID
	t.touch()
	return nil
}

// InsertChild inserts child at position i of parent's children.
func (t *Tree) InsertChild(parent Node, i int, child Node) error {
	if err := t.checkDetached(child); err != nil {
		return err
	}
	if parent.t != t || parent.Kind() != KindInternal {
		return fmt.Errorf("insert into %s: %w", parent.describe(), ErrNotInternal)
	}
	p := t.get(parent.id)
	if i < 0 || i > len(p.children) {
		return fmt.Errorf("insert into %s at %d: index out of range", parent.describe(), i)
	}
	p.children = append(p.children, NoID)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = child.id
	t.get(child.id).parent = parent.id
	t.touch()
	return nil
}

// Detach removes n from its parent. The root cannot be detached.
func (t *Tree) Detach(n Node) error {
	if !n.Attached() {
		return fmt.Errorf("detach %s: %w", n.describe(), ErrDetached)
	}
	if n.id == t.root {
		return fmt.Errorf("detach %s: %w", n.describe(), ErrRoot)
	}
	p := t.get(t.get(n.id).parent)
	i := indexOf(p.children, n.id)
	p.children = append(p.children[:i], p.children[i+1:]...)
	t.get(n.id).parent = NoID
	t.touch()
	return nil
}

// SetPrefix sets the prefix of n's first leaf. It is a no-op on nodes
// without leaves.
func (t *Tree) SetPrefix(n Node, prefix string) {
	leaf := n.FirstLeaf()
	if !leaf.Valid() {
		return
	}
	l := t.get(leaf.id)
	if l.prefix == prefix {
		return
	}
	l.prefix = prefix
	l.origin = -1
	t.touch()
}

func (t *Tree) touch() { t.edits++ }

func (t *Tree) checkDetached(n Node) error {
	if !n.Valid() || n.t != t {
		return fmt.Errorf("node %s: %w", n.describe(), ErrForeign)
	}
	if t.get(n.id).parent != NoID || n.id == t.root {
		return fmt.Errorf("node %s: %w", n.describe(), ErrAttached)
	}
	return nil
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, c := range ids {
		if c == id {
			return i
		}
	}
	panic(fmt.Sprintf("syntax: node %d missing from its parent", id))
}

// Dump returns a compact s-expression of n, mostly for test failures.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n)
	return sb.String()
}

func dump(sb *strings.Builder, n Node) {
	if !n.Valid() {
		sb.WriteString("<nil>")
		return
	}
	if n.IsLeaf() {
		fmt.Fprintf(sb, "%s:%q", n.Type(), n.Value())
		return
	}
	sb.WriteString("(" + n.Type())
	for _, c := range n.Children() {
		sb.WriteByte(' ')
		dump(sb, c)
	}
	sb.WriteByte(')')
}
