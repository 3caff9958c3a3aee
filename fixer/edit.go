package fixer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/syntax"
)

// EditKind is the kind of a recorded edit.
type EditKind int

const (
	EditReplace EditKind = iota
	EditInsertBefore
	EditInsertAfter
	EditRemove
)

func (k EditKind) String() string {
	switch k {
	case EditReplace:
		return "replace"
	case EditInsertBefore:
		return "insert-before"
	case EditInsertAfter:
		return "insert-after"
	case EditRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Edit is a single tree mutation recorded by a modifier. Target is the node
// replaced or removed, or the anchor of an insertion; Node is the new node.
type Edit struct {
	Kind   EditKind
	Target syntax.Node
	Node   syntax.Node
}

var (
	ErrNotAttached = errors.New("node is not attached to the tree")
	ErrWrongTree   = errors.New("node belongs to another tree")
	ErrRootEdit    = errors.New("the root cannot be removed or used as an insertion anchor")
	ErrNotLeaf     = errors.New("node is not a leaf")
	ErrNoNode      = errors.New("no node")
)

// Context is handed to modifiers. Edits made through it are buffered and
// only reach the tree if the whole match succeeds.
type Context struct {
	tree     *syntax.Tree
	filename string
	logger   *zap.Logger
	edits    []Edit
}

func newContext(tree *syntax.Tree, filename string, logger *zap.Logger) *Context {
	return &Context{tree: tree, filename: filename, logger: logger}
}

// Tree returns the tree being modified. Use it to create replacement nodes.
func (mc *Context) Tree() *syntax.Tree { return mc.tree }

func (mc *Context) Filename() string { return mc.filename }

func (mc *Context) Logger() *zap.Logger { return mc.logger }

// Edits returns the edits recorded so far.
func (mc *Context) Edits() []Edit { return append([]Edit(nil), mc.edits...) }

func (mc *Context) checkAttached(n syntax.Node) error {
	switch {
	case !n.Valid():
		return ErrNoNode
	case n.Tree() != mc.tree:
		return fmt.Errorf("%s: %w", n.Type(), ErrWrongTree)
	case !n.Attached():
		return fmt.Errorf("%s: %w", n.Type(), ErrNotAttached)
	}
	return nil
}

// own returns n as a detached node of the context's tree, copying it when it
// is attached or comes from another tree.
func (mc *Context) own(n syntax.Node) (syntax.Node, error) {
	if !n.Valid() {
		return syntax.Node{}, ErrNoNode
	}
	if n.Tree() != mc.tree || n.Parent().Valid() || n == mc.tree.Root() {
		return mc.tree.Clone(n), nil
	}
	return n, nil
}

// Replace records that target is to be replaced by repl.
func (mc *Context) Replace(target, repl syntax.Node) error {
	if err := mc.checkAttached(target); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	repl, err := mc.own(repl)
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	mc.edits = append(mc.edits, Edit{Kind: EditReplace, Target: target, Node: repl})
	return nil
}

// InsertBefore records that n is to be inserted as the previous sibling of
// anchor.
func (mc *Context) InsertBefore(anchor, n syntax.Node) error {
	return mc.insert(EditInsertBefore, anchor, n)
}

// InsertAfter records that n is to be inserted as the next sibling of anchor.
func (mc *Context) InsertAfter(anchor, n syntax.Node) error {
	return mc.insert(EditInsertAfter, anchor, n)
}

func (mc *Context) insert(kind EditKind, anchor, n syntax.Node) error {
	if err := mc.checkAttached(anchor); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if anchor == mc.tree.Root() {
		return fmt.Errorf("%s: %w", kind, ErrRootEdit)
	}
	n, err := mc.own(n)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	mc.edits = append(mc.edits, Edit{Kind: kind, Target: anchor, Node: n})
	return nil
}

// Remove records that target is to be removed.
func (mc *Context) Remove(target syntax.Node) error {
	if err := mc.checkAttached(target); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	if target == mc.tree.Root() {
		return fmt.Errorf("remove: %w", ErrRootEdit)
	}
	mc.edits = append(mc.edits, Edit{Kind: EditRemove, Target: target})
	return nil
}

// SetValue records that leaf's text is to become value. The leaf keeps its
// type and prefix.
func (mc *Context) SetValue(leaf syntax.Node, value string) error {
	if err := mc.checkAttached(leaf); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	if !leaf.IsLeaf() {
		return fmt.Errorf("set value of %s: %w", leaf.Type(), ErrNotLeaf)
	}
	if leaf.Value() == value {
		return nil
	}
	return mc.Replace(leaf, mc.tree.NewLeaf(leaf.Type(), value, leaf.Prefix()))
}

// apply runs edits against the tree in order. Edits whose target was detached
// by an earlier edit are skipped and reported, and so are replacements that
// would discard the result of an earlier edit inside their target.
func apply(tree *syntax.Tree, edits []Edit, warn func(Warning)) int {
	applied := 0
	touched := map[syntax.NodeID]bool{}
	for _, e := range edits {
		if !e.Target.Attached() {
			warn(Warning{
				Kind:    EditConflict,
				Line:    e.Target.Line(),
				Message: fmt.Sprintf("%s of %s dropped: an earlier edit already detached it", e.Kind, e.Target.Type()),
			})
			continue
		}
		if e.Kind == EditReplace && containsTouched(e.Target, touched) {
			warn(Warning{
				Kind:    EditConflict,
				Line:    e.Target.Line(),
				Message: fmt.Sprintf("%s of %s dropped: it would overwrite an earlier edit inside it", e.Kind, e.Target.Type()),
			})
			continue
		}
		parent := e.Target.Parent()
		var err error
		switch e.Kind {
		case EditReplace:
			err = tree.Replace(e.Target, e.Node)
		case EditInsertBefore:
			err = tree.InsertChild(e.Target.Parent(), e.Target.Index(), e.Node)
		case EditInsertAfter:
			err = tree.InsertChild(e.Target.Parent(), e.Target.Index()+1, e.Node)
		case EditRemove:
			err = tree.Detach(e.Target)
		}
		if err != nil {
			warn(Warning{
				Kind:    EditConflict,
				Line:    e.Target.Line(),
				Message: fmt.Sprintf("%s of %s dropped: %v", e.Kind, e.Target.Type(), err),
			})
			continue
		}
		switch e.Kind {
		case EditRemove:
			touched[parent.ID()] = true
		default:
			touched[e.Node.ID()] = true
		}
		applied++
	}
	return applied
}

func containsTouched(n syntax.Node, touched map[syntax.NodeID]bool) bool {
	if len(touched) == 0 {
		return false
	}
	for c := range syntax.PreOrder(n) {
		if touched[c.ID()] {
			return true
		}
	}
	return false
}
