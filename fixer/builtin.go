package fixer

import (
	"fmt"
	"regexp"

	"github.com/gnoverse/cstfix/syntax"
)

// Rewrite returns a modifier that replaces the matched node with the expanded
// template. The new text is held by a single leaf of the matched node's type
// and keeps the matched node's prefix; the next stage sees it parsed again.
func Rewrite(t *Template) Modifier {
	return func(mc *Context, m Match) Outcome {
		text, err := t.Expand(m.Captures)
		if err != nil {
			return Failed(err)
		}
		if text == nodesText([]syntax.Node{m.Node}) {
			return NoOp()
		}
		return ReplaceWith(mc.Tree().NewLeaf(m.Node.Type(), text, m.Node.Prefix()))
	}
}

// Rename returns a modifier that sets the text of every leaf bound to capture
// to value.
func Rename(capture, value string) Modifier {
	return func(mc *Context, m Match) Outcome {
		if !m.Captures.Has(capture) {
			return Failed(fmt.Errorf("rename: no capture named %q", capture))
		}
		for _, n := range m.Captures.Nodes(capture) {
			if err := mc.SetValue(n, value); err != nil {
				return Failed(fmt.Errorf("rename %s: %w", capture, err))
			}
		}
		return NoOp()
	}
}

// Remove returns a modifier that removes the nodes bound to capture, or the
// matched node itself when capture is empty.
func Remove(capture string) Modifier {
	return func(mc *Context, m Match) Outcome {
		nodes := []syntax.Node{m.Node}
		if capture != "" {
			if !m.Captures.Has(capture) {
				return Failed(fmt.Errorf("remove: no capture named %q", capture))
			}
			nodes = m.Captures.Nodes(capture)
		}
		for _, n := range nodes {
			if err := mc.Remove(n); err != nil {
				return Failed(err)
			}
		}
		return NoOp()
	}
}

// CaptureMatches accepts matches where the text of capture matches re.
func CaptureMatches(capture string, re *regexp.Regexp) Filter {
	return func(_ syntax.Node, c Captures) bool {
		return c.Has(capture) && re.MatchString(CaptureText(c, capture))
	}
}

// CaptureEquals accepts matches where the text of capture is exactly value.
func CaptureEquals(capture, value string) Filter {
	return func(_ syntax.Node, c Captures) bool {
		return c.Has(capture) && CaptureText(c, capture) == value
	}
}
