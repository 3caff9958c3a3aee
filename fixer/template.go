package fixer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gnoverse/cstfix/syntax"
)

// Template is replacement text with :[name] holes filled from captures.
// A backslash escapes the next character, so "\:[x]" is literal text.
type Template struct {
	source string
	parts  []templatePart
}

type templatePart struct {
	text string
	hole string
}

// ParseTemplate parses a rewrite template.
func ParseTemplate(input string) (*Template, error) {
	t := &Template{source: input}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, templatePart{text: lit.String()})
			lit.Reset()
		}
	}

	line, col := 1, 1
	for i := 0; i < len(input); {
		c := input[i]
		if c == '\\' {
			if i+1 >= len(input) {
				return nil, fmt.Errorf("line %d col %d: '\\' escape is at the end of input", line, col)
			}
			lit.WriteByte(input[i+1])
			i += 2
			col += 2
			continue
		}
		if c == ':' && i+1 < len(input) && input[i+1] == '[' {
			flush()
			j := i + 2
			for j < len(input) && input[j] == ' ' {
				j++
			}
			start := j
			if j >= len(input) || !isIdentifierStart(input[j]) {
				return nil, fmt.Errorf("line %d col %d: hole name must start with a letter or '_'", line, col)
			}
			for j < len(input) && isIdentifierChar(input[j]) {
				j++
			}
			name := input[start:j]
			for j < len(input) && input[j] == ' ' {
				j++
			}
			if j >= len(input) || input[j] != ']' {
				return nil, fmt.Errorf("line %d col %d: hole %q is not terminated by ']'", line, col, name)
			}
			t.parts = append(t.parts, templatePart{hole: name})
			col += j + 1 - i
			i = j + 1
			continue
		}
		lit.WriteByte(c)
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}
	flush()
	return t, nil
}

func isIdentifierStart(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || unicode.IsDigit(rune(c))
}

func (t *Template) String() string { return t.source }

// Holes returns the hole names in order of appearance, without duplicates.
func (t *Template) Holes() []string {
	var names []string
	seen := map[string]bool{}
	for _, p := range t.parts {
		if p.hole != "" && !seen[p.hole] {
			seen[p.hole] = true
			names = append(names, p.hole)
		}
	}
	return names
}

// Expand fills the holes with the text of the captures.
func (t *Template) Expand(caps Captures) (string, error) {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.hole == "" {
			sb.WriteString(p.text)
			continue
		}
		if !caps.Has(p.hole) {
			return "", fmt.Errorf("template %q: no capture named %q", t.source, p.hole)
		}
		sb.WriteString(CaptureText(caps, p.hole))
	}
	return sb.String(), nil
}

// CaptureText renders the nodes bound to name, without the prefix of the
// first one.
func CaptureText(caps Captures, name string) string {
	return nodesText(caps[name].nodes)
}

func nodesText(nodes []syntax.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, n := range nodes {
		syntax.RenderTo(&sb, n)
	}
	return strings.TrimPrefix(sb.String(), nodes[0].Prefix())
}
