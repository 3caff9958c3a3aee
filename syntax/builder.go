package syntax

import (
	"errors"
	"strings"
)

// Builder assembles a Tree from a depth-first stream of Open, Leaf and Close
// calls. Parser adapters use it; tests use it to write trees by hand.
type Builder struct {
	t      *Tree
	stack  []NodeID
	src    strings.Builder
	offset int
	err    error
}

func NewBuilder(g *Grammar) *Builder {
	return &Builder{t: &Tree{grammar: g, root: NoID}}
}

// Open starts an internal node under the current one.
func (b *Builder) Open(typ string) *Builder {
	id := b.t.alloc(node{kind: KindInternal, typ: typ, parent: NoID, origin: b.offset})
	b.attach(id)
	b.stack = append(b.stack, id)
	return b
}

// Leaf adds a leaf under the current node.
func (b *Builder) Leaf(typ, prefix, value string) *Builder {
	id := b.t.alloc(node{kind: KindLeaf, typ: typ, value: value, prefix: prefix, parent: NoID, origin: b.offset})
	b.attach(id)
	b.src.WriteString(prefix)
	b.src.WriteString(value)
	b.offset += len(prefix) + len(value)
	return b
}

// Close ends the current internal node.
func (b *Builder) Close() *Builder {
	if len(b.stack) == 0 {
		b.fail(errors.New("syntax: Close without Open"))
		return b
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// Depth returns the number of open internal nodes.
func (b *Builder) Depth() int { return len(b.stack) }

func (b *Builder) attach(id NodeID) {
	if len(b.stack) == 0 {
		if b.t.root != NoID {
			b.fail(errors.New("syntax: tree has more than one root"))
			return
		}
		b.t.root = id
		return
	}
	p := b.stack[len(b.stack)-1]
	b.t.get(id).parent = p
	b.t.get(p).children = append(b.t.get(p).children, id)
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Finish returns the built tree. Its source is the concatenation of every
// leaf's prefix and value.
func (b *Builder) Finish() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 0 {
		return nil, errors.New("syntax: unclosed node")
	}
	if b.t.root == NoID {
		return nil, errors.New("syntax: empty tree")
	}
	b.t.source = b.src.String()
	return b.t, nil
}
