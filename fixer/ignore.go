package fixer

import (
	"strings"

	"github.com/gnoverse/cstfix/syntax"
)

// IgnoreMarker in a comment keeps matches away from the modifiers. A marker
// trailing code covers its own line. A marker in a comment on a line of its
// own covers that line and the next one.
const IgnoreMarker = "cstfix:ignore"

// ignoredLines returns the 1-based lines covered by ignore markers in tree.
// Only leaf prefixes are searched, since they hold nothing but whitespace
// and comments.
func ignoredLines(tree *syntax.Tree) map[int]bool {
	src := tree.Source()
	if !strings.Contains(src, IgnoreMarker) {
		return nil
	}
	lines := map[int]bool{}
	for leaf := range tree.Root().Leaves() {
		prefix := leaf.Prefix()
		off := leaf.Offset()
		if off < 0 || !strings.Contains(prefix, IgnoreMarker) {
			continue
		}
		start := off - len(prefix)
		for i := 0; ; {
			j := strings.Index(prefix[i:], IgnoreMarker)
			if j < 0 {
				break
			}
			pos := start + i + j
			line := strings.Count(src[:pos], "\n") + 1
			lines[line] = true
			// Nothing but the prefix precedes the marker on its line.
			if lineStart := strings.LastIndexByte(src[:pos], '\n') + 1; lineStart >= start {
				lines[line+1] = true
			}
			i += j + len(IgnoreMarker)
		}
	}
	return lines
}
