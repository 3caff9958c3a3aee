package pattern

import (
	"slices"
	"strings"

	"github.com/gnoverse/cstfix/syntax"
)

// FromNode writes a pattern that matches n exactly: internal nodes become
// "type < ... >" and leaves their quoted value. Nodes found in captures are
// prefixed with "name=". The result is a starting point for writing a
// selector by hand.
func FromNode(n syntax.Node, captures map[string][]syntax.Node) string {
	names := make([]string, 0, len(captures))
	for name := range captures {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	writeSelector(&sb, n, names, captures)
	return sb.String()
}

func writeSelector(sb *strings.Builder, n syntax.Node, names []string, captures map[string][]syntax.Node) {
	for _, name := range names {
		if slices.Contains(captures[name], n) {
			sb.WriteString(name + "=")
			break
		}
	}
	if n.IsLeaf() {
		sb.WriteString(quote(n.Value()) + " ")
		return
	}
	sb.WriteString(n.Type() + " < ")
	for _, c := range n.Children() {
		writeSelector(sb, c, names, captures)
	}
	sb.WriteString("> ")
}
