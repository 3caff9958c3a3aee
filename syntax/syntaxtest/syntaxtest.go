// Package syntaxtest parses a tiny Python-like expression language into
// lib2to3-shaped syntax trees. Tests across cstfix use it to get full-fidelity
// trees with predictable shapes without going through a real grammar.
//
// Statements are one per line. Expressions support names, numbers, strings,
// parenthesised expressions, lists, attribute access, calls, subscripts,
// keyword arguments, unary and binary + - * / % and a single '='.
// Postfix operations nest to the left, so "foo.bar()" parses as
//
//	call< call< NAME trailer< '.' NAME > > trailer< '(' ')' > >
//
// Whitespace, comments, blank lines and newlines inside brackets end up in
// the prefix of the next token; text after the last token lives in the
// prefix of the ENDMARKER leaf.
package syntaxtest

import (
	"fmt"
	"strings"

	"github.com/gnoverse/cstfix/syntax"
)

// Token and symbol names, following lib2to3.
const (
	NAME      = "NAME"
	NUMBER    = "NUMBER"
	STRING    = "STRING"
	NEWLINE   = "NEWLINE"
	ENDMARKER = "ENDMARKER"
	LPAR      = "LPAR"
	RPAR      = "RPAR"
	LSQB      = "LSQB"
	RSQB      = "RSQB"
	DOT       = "DOT"
	COMMA     = "COMMA"
	EQUAL     = "EQUAL"
	PLUS      = "PLUS"
	MINUS     = "MINUS"
	STAR      = "STAR"
	SLASH     = "SLASH"
	PERCENT   = "PERCENT"
	COLON     = "COLON"

	FileInput  = "file_input"
	SimpleStmt = "simple_stmt"
	ExprStmt   = "expr_stmt"
	ArithExpr  = "arith_expr"
	Term       = "term"
	Factor     = "factor"
	Call       = "call"
	Trailer    = "trailer"
	Atom       = "atom"
	Arglist    = "arglist"
	Argument   = "argument"
	Listmaker  = "listmaker"
)

var operators = map[byte]string{
	'(': LPAR, ')': RPAR, '[': LSQB, ']': RSQB, '.': DOT, ',': COMMA,
	'=': EQUAL, '+': PLUS, '-': MINUS, '*': STAR, '/': SLASH, '%': PERCENT,
	':': COLON,
}

// Grammar knows every type the parser can produce.
var Grammar = syntax.NewGrammar("minipy",
	NAME, NUMBER, STRING, NEWLINE, ENDMARKER, LPAR, RPAR, LSQB, RSQB, DOT,
	COMMA, EQUAL, PLUS, MINUS, STAR, SLASH, PERCENT, COLON,
	FileInput, SimpleStmt, ExprStmt, ArithExpr, Term, Factor, Call, Trailer,
	Atom, Arglist, Argument, Listmaker,
)

// Parser implements the parser contract the fixer pipeline expects.
type Parser struct{}

func (Parser) Grammar() *syntax.Grammar { return Grammar }

func (Parser) Parse(src, filename string) (*syntax.Tree, error) {
	tree, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tree, nil
}

// Parse parses src into a tree rooted at a file_input node.
func Parse(src string) (*syntax.Tree, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.fileInput()
	if err != nil {
		return nil, err
	}
	b := syntax.NewBuilder(Grammar)
	root.build(b)
	return b.Finish()
}

// MustParse is Parse for tests; it panics on error.
func MustParse(src string) *syntax.Tree {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseExpr parses a single expression statement and returns the expression
// node, skipping file_input and simple_stmt.
func ParseExpr(src string) (syntax.Node, error) {
	t, err := Parse(src + "\n")
	if err != nil {
		return syntax.Node{}, err
	}
	stmt := t.Root().Child(0)
	if stmt.Type() != SimpleStmt {
		return syntax.Node{}, fmt.Errorf("not an expression: %q", src)
	}
	return stmt.Child(0), nil
}

type token struct {
	typ    string
	prefix string
	value  string
	offset int
}

func tokenize(src string) ([]token, error) {
	var (
		toks     []token
		prefix   strings.Builder
		depth    int
		lineUsed bool
	)
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			prefix.WriteByte(c)
			i++
		case c == '#':
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src) - i
			}
			prefix.WriteString(src[i : i+j])
			i += j
		case c == '\\' && i+1 < len(src) && src[i+1] == '\n':
			prefix.WriteString("\\\n")
			i += 2
		case c == '\n':
			if depth > 0 || !lineUsed {
				prefix.WriteByte(c)
			} else {
				toks = append(toks, token{typ: NEWLINE, prefix: prefix.String(), value: "\n", offset: i})
				prefix.Reset()
				lineUsed = false
			}
			i++
		case isNameStart(c):
			j := i + 1
			for j < len(src) && isNameChar(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == '\'' || src[j] == '"') && isStringPrefix(src[i:j]) {
				end, err := scanString(src, j)
				if err != nil {
					return nil, err
				}
				j = end
				toks = append(toks, token{typ: STRING, prefix: prefix.String(), value: src[i:j], offset: i})
			} else {
				toks = append(toks, token{typ: NAME, prefix: prefix.String(), value: src[i:j], offset: i})
			}
			prefix.Reset()
			lineUsed = true
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.' || src[j] == '_' || isNameStart(src[j])) {
				j++
			}
			toks = append(toks, token{typ: NUMBER, prefix: prefix.String(), value: src[i:j], offset: i})
			prefix.Reset()
			lineUsed = true
			i = j
		case c == '\'' || c == '"':
			end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{typ: STRING, prefix: prefix.String(), value: src[i:end], offset: i})
			prefix.Reset()
			lineUsed = true
			i = end
		default:
			typ, ok := operators[c]
			if !ok {
				return nil, fmt.Errorf("offset %d: unexpected character %q", i, c)
			}
			switch c {
			case '(', '[':
				depth++
			case ')', ']':
				depth--
			}
			toks = append(toks, token{typ: typ, prefix: prefix.String(), value: string(c), offset: i})
			prefix.Reset()
			lineUsed = true
			i++
		}
	}
	if lineUsed && depth == 0 {
		toks = append(toks, token{typ: NEWLINE, prefix: prefix.String(), offset: len(src)})
		prefix.Reset()
	}
	toks = append(toks, token{typ: ENDMARKER, prefix: prefix.String(), offset: len(src)})
	return toks, nil
}

func scanString(src string, i int) (int, error) {
	q := src[i]
	triple := strings.HasPrefix(src[i:], strings.Repeat(string(q), 3))
	j := i + 1
	if triple {
		j = i + 3
	}
	for j < len(src) {
		switch {
		case src[j] == '\\':
			j += 2
			continue
		case triple && strings.HasPrefix(src[j:], strings.Repeat(string(q), 3)):
			return j + 3, nil
		case !triple && src[j] == q:
			return j + 1, nil
		case !triple && src[j] == '\n':
			return 0, fmt.Errorf("offset %d: unterminated string", i)
		}
		j++
	}
	return 0, fmt.Errorf("offset %d: unterminated string", i)
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool { return isNameStart(c) || c >= '0' && c <= '9' }

func isStringPrefix(s string) bool {
	if len(s) > 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		default:
			return false
		}
	}
	return true
}
