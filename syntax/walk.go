package syntax

import "iter"

// Walk visits n and its descendants in pre-order. When fn returns false the
// children of the visited node are skipped.
//
// Walk reads the child lists as they are when each node is reached, so it
// always sees the current shape of the tree.
func Walk(n Node, fn func(Node) bool) {
	if !n.Valid() {
		return
	}
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		children := cur.t.get(cur.id).children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, Node{t: cur.t, id: children[i]})
		}
	}
}

// PreOrder yields n and its descendants, parents before children.
func PreOrder(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		stopped := false
		Walk(n, func(c Node) bool {
			if stopped {
				return false
			}
			if !yield(c) {
				stopped = true
				return false
			}
			return true
		})
	}
}

// PostOrder yields n and its descendants, children before parents.
func PostOrder(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if !n.Valid() {
			return
		}
		type frame struct {
			n    Node
			next int
		}
		stack := []frame{{n: n}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := top.n.t.get(top.n.id).children
			if top.next < len(children) {
				child := Node{t: top.n.t, id: children[top.next]}
				top.next++
				stack = append(stack, frame{n: child})
				continue
			}
			done := top.n
			stack = stack[:len(stack)-1]
			if !yield(done) {
				return
			}
		}
	}
}
