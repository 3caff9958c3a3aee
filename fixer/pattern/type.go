package pattern

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TokenType defines the tokens produced by the lexer.
type TokenType int

const (
	TokenName     TokenType = iota // type names, capture names, keywords
	TokenNumber                    // repeat bounds
	TokenString                    // 'literal' or "literal", unquoted
	TokenLAngle                    // '<'
	TokenRAngle                    // '>'
	TokenLParen                    // '('
	TokenRParen                    // ')'
	TokenLBracket                  // '['
	TokenRBracket                  // ']'
	TokenLBrace                    // '{'
	TokenRBrace                    // '}'
	TokenPipe                      // '|'
	TokenEquals                    // '='
	TokenStar                      // '*'
	TokenPlus                      // '+'
	TokenComma                     // ','
	TokenEOF
)

var tokenNames = [...]string{
	TokenName:     "name",
	TokenNumber:   "number",
	TokenString:   "string",
	TokenLAngle:   "'<'",
	TokenRAngle:   "'>'",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenLBrace:   "'{'",
	TokenRBrace:   "'}'",
	TokenPipe:     "'|'",
	TokenEquals:   "'='",
	TokenStar:     "'*'",
	TokenPlus:     "'+'",
	TokenComma:    "','",
	TokenEOF:      "end of pattern",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "unknown"
}

// Token represents a single lexical token with type, value, and position.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// NodeType tells the pattern node variants apart.
type NodeType int

const (
	NodeLiteral NodeType = iota
	NodeAny
	NodeTree
	NodeCapture
	NodeSequence
	NodeAlternation
	NodeRepeat
	NodeNegation
)

// Unbounded is the Max of a repetition without an upper bound.
const Unbounded = -1

const inf = math.MaxInt32

// Node is a compiled pattern element. The set of implementations is closed.
type Node interface {
	Type() NodeType
	String() string
	Position() int
	// width returns how many sibling nodes a match may consume.
	width() (lo, hi int)
}

var (
	_ Node = (*LiteralNode)(nil)
	_ Node = (*AnyNode)(nil)
	_ Node = (*TreeNode)(nil)
	_ Node = (*CaptureNode)(nil)
	_ Node = (*SequenceNode)(nil)
	_ Node = (*AlternationNode)(nil)
	_ Node = (*RepeatNode)(nil)
	_ Node = (*NegationNode)(nil)
)

// LiteralNode matches one node by type name (NAME), by leaf value ('x'), or
// by both.
type LiteralNode struct {
	TypeName string
	Value    string
	HasValue bool
	pos      int
}

func (n *LiteralNode) Type() NodeType { return NodeLiteral }
func (n *LiteralNode) Position() int { return n.pos }
func (n *LiteralNode) width() (int, int) { return 1, 1 }
func (n *LiteralNode) String() string {
	if n.HasValue {
		return quote(n.Value)
	}
	return n.TypeName
}

// AnyNode matches exactly one node of any kind.
type AnyNode struct{ pos int }

func (n *AnyNode) Type() NodeType { return NodeAny }
func (n *AnyNode) Position() int { return n.pos }
func (n *AnyNode) width() (int, int) { return 1, 1 }
func (n *AnyNode) String() string { return "any" }

// TreeNode matches an internal node whose children are consumed exactly by
// Content. An empty TypeName stands for any<...>.
type TreeNode struct {
	TypeName string
	Content  Node
	pos      int
}

func (n *TreeNode) Type() NodeType { return NodeTree }
func (n *TreeNode) Position() int { return n.pos }
func (n *TreeNode) width() (int, int) { return 1, 1 }
func (n *TreeNode) String() string {
	typ := n.TypeName
	if typ == "" {
		typ = "any"
	}
	return typ + "< " + n.Content.String() + " >"
}

// CaptureKind is fixed for every capture when a pattern is compiled.
type CaptureKind uint8

const (
	// Single captures bind exactly one node.
	Single CaptureKind = iota + 1
	// Many captures bind an ordered, possibly empty, list of nodes.
	Many
)

func (k CaptureKind) String() string {
	switch k {
	case Single:
		return "single"
	case Many:
		return "many"
	default:
		return "unknown"
	}
}

// CaptureNode binds what Sub matched to Name.
type CaptureNode struct {
	Name string
	Sub  Node
	Kind CaptureKind
	pos  int
}

func (n *CaptureNode) Type() NodeType { return NodeCapture }
func (n *CaptureNode) Position() int { return n.pos }
func (n *CaptureNode) width() (int, int) { return n.Sub.width() }
func (n *CaptureNode) String() string { return n.Name + "=" + group(n.Sub) }

// SequenceNode matches its items one after the other.
type SequenceNode struct {
	Items []Node
	pos   int
}

func (n *SequenceNode) Type() NodeType { return NodeSequence }
func (n *SequenceNode) Position() int { return n.pos }
func (n *SequenceNode) width() (int, int) {
	lo, hi := 0, 0
	for _, it := range n.Items {
		l, h := it.width()
		lo, hi = addWidth(lo, l), addWidth(hi, h)
	}
	return lo, hi
}

func (n *SequenceNode) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}

// AlternationNode matches the first branch that matches.
type AlternationNode struct {
	Branches []Node
	pos      int
}

func (n *AlternationNode) Type() NodeType { return NodeAlternation }
func (n *AlternationNode) Position() int { return n.pos }
func (n *AlternationNode) width() (int, int) {
	lo, hi := inf, 0
	for _, b := range n.Branches {
		l, h := b.width()
		lo, hi = min(lo, l), max(hi, h)
	}
	return lo, hi
}

func (n *AlternationNode) String() string {
	parts := make([]string, len(n.Branches))
	for i, b := range n.Branches {
		parts[i] = b.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// RepeatNode matches Sub between Min and Max times, greedily.
type RepeatNode struct {
	Sub      Node
	Min, Max int
	pos      int
}

func (n *RepeatNode) Type() NodeType { return NodeRepeat }
func (n *RepeatNode) Position() int { return n.pos }
func (n *RepeatNode) width() (int, int) {
	l, h := n.Sub.width()
	lo := mulWidth(l, n.Min)
	if n.Max == Unbounded {
		if h == 0 {
			return lo, 0
		}
		return lo, inf
	}
	return lo, mulWidth(h, n.Max)
}

func (n *RepeatNode) String() string {
	switch {
	case n.Min == 0 && n.Max == 1:
		return "[" + n.Sub.String() + "]"
	case n.Min == 0 && n.Max == Unbounded:
		return group(n.Sub) + "*"
	case n.Min == 1 && n.Max == Unbounded:
		return group(n.Sub) + "+"
	case n.Max == Unbounded:
		return fmt.Sprintf("%s{%d,}", group(n.Sub), n.Min)
	case n.Min == n.Max:
		return fmt.Sprintf("%s{%d}", group(n.Sub), n.Min)
	default:
		return fmt.Sprintf("%s{%d,%d}", group(n.Sub), n.Min, n.Max)
	}
}

// NegationNode succeeds, consuming nothing, when Sub does not match at the
// current position.
type NegationNode struct {
	Sub Node
	pos int
}

func (n *NegationNode) Type() NodeType { return NodeNegation }
func (n *NegationNode) Position() int { return n.pos }
func (n *NegationNode) width() (int, int) { return 0, 0 }
func (n *NegationNode) String() string { return "not " + group(n.Sub) }

func group(n Node) string {
	if n.Type() == NodeSequence {
		return "(" + n.String() + ")"
	}
	return n.String()
}

func quote(s string) string {
	q := strconv.Quote(s)
	return "'" + strings.ReplaceAll(q[1:len(q)-1], `'`, `\'`) + "'"
}

func addWidth(a, b int) int {
	if a >= inf-b {
		return inf
	}
	return a + b
}

func mulWidth(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a >= inf/b {
		return inf
	}
	return a * b
}
