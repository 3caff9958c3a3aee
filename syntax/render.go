package syntax

import (
	"strings"
)

// Render returns the source text of n: the prefix and value of every leaf
// under n, in order.
func Render(n Node) string {
	var sb strings.Builder
	RenderTo(&sb, n)
	return sb.String()
}

// RenderTo writes the source text of n to sb.
func RenderTo(sb *strings.Builder, n Node) {
	for leaf := range n.Leaves() {
		l := leaf.t.get(leaf.id)
		sb.WriteString(l.prefix)
		sb.WriteString(l.value)
	}
}

// Verify checks that every leaf that came from the parsed source and is still
// attached renders exactly the bytes it was parsed from. A failure means the
// tree's structure was corrupted, it is never caused by a legitimate edit.
func (t *Tree) Verify() error {
	for leaf := range t.Root().Leaves() {
		l := t.get(leaf.id)
		if l.origin < 0 {
			continue
		}
		got := l.prefix + l.value
		end := l.origin + len(got)
		if end > len(t.source) || t.source[l.origin:end] != got {
			want := ""
			if l.origin <= len(t.source) {
				want = t.source[l.origin:min(end, len(t.source))]
			}
			return &RenderInvariantError{Offset: l.origin, Want: want, Got: got}
		}
	}
	if !t.Edited() {
		if got := t.String(); got != t.source {
			return &RenderInvariantError{Offset: commonPrefixLen(got, t.source), Want: t.source, Got: got}
		}
	}
	return nil
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
