package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gnoverse/cstfix/fixer"
	"github.com/gnoverse/cstfix/syntax"
)

const treeIndent = ".  "

// PrintTree writes an indented dump of n, one node per line: internal nodes
// as "[type] 'prefix'", leaves as "[TYPE] 'prefix' 'value'". Nodes deeper
// than depth are elided with "..."; depth <= 0 prints everything. Captures,
// when given, are listed after the tree in name order.
func PrintTree(w io.Writer, n syntax.Node, caps fixer.Captures, depth int) error {
	var sb strings.Builder
	writeNode(&sb, n, 0, depth)

	names := make([]string, 0, len(caps))
	for name := range caps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		nodes := caps.Nodes(name)
		switch len(nodes) {
		case 0:
			fmt.Fprintf(&sb, "results[%s] = []\n", quote(name))
		case 1:
			fmt.Fprintf(&sb, "results[%s] =\n", quote(name))
			writeNode(&sb, nodes[0], 1, depth)
		default:
			items := make([]string, len(nodes))
			for i, c := range nodes {
				items[i] = shortNode(c)
			}
			fmt.Fprintf(&sb, "results[%s] = [%s]\n", quote(name), strings.Join(items, ", "))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeNode(sb *strings.Builder, n syntax.Node, level, depth int) {
	sb.WriteString(strings.Repeat(treeIndent, level))
	if n.IsLeaf() {
		fmt.Fprintf(sb, "[%s] %s %s\n", n.Type(), quote(n.Prefix()), quote(n.Value()))
		return
	}
	fmt.Fprintf(sb, "[%s] %s\n", n.Type(), quote(n.Prefix()))
	if depth > 0 && level >= depth {
		if n.NumChildren() > 0 {
			sb.WriteString(strings.Repeat(treeIndent, level+1))
			sb.WriteString("...\n")
		}
		return
	}
	for _, c := range n.Children() {
		writeNode(sb, c, level+1, depth)
	}
}

func shortNode(n syntax.Node) string {
	if n.IsLeaf() {
		return fmt.Sprintf("%s(%s)", n.Type(), quote(n.Value()))
	}
	return fmt.Sprintf("%s(%s)", n.Type(), quote(strings.TrimPrefix(syntax.Render(n), n.Prefix())))
}

// quote wraps s in single quotes, escaping backslashes, quotes and control
// characters.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
