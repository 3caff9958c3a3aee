package treesitter

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/syntax"
)

// ParseError reports source text tree-sitter could not parse.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Snippet  string
	Missing  bool
}

func (e *ParseError) Error() string {
	what := "syntax error"
	if e.Missing {
		what = "missing " + e.Snippet
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, what)
	}
	return fmt.Sprintf("%s:%d:%d: %s near %q", e.Filename, e.Line, e.Column, what, e.Snippet)
}

// Parser parses source text of one language. It is safe for concurrent use.
type Parser struct {
	lang   *Language
	logger *zap.Logger
	pool   sync.Pool
}

type Option func(*Parser)

func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

func New(lang *Language, opts ...Option) *Parser {
	p := &Parser{lang: lang, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.pool.New = func() any {
		tsp := sitter.NewParser()
		tsp.SetLanguage(lang.ts)
		return tsp
	}
	return p
}

func (p *Parser) Language() *Language { return p.lang }

func (p *Parser) Grammar() *syntax.Grammar { return p.lang.Grammar() }

func (p *Parser) Parse(src, filename string) (*syntax.Tree, error) {
	return p.ParseContext(context.Background(), src, filename)
}

// ParseContext parses src. Source text with syntax errors is rejected with a
// *ParseError.
func (p *Parser) ParseContext(ctx context.Context, src, filename string) (*syntax.Tree, error) {
	tsp := p.pool.Get().(*sitter.Parser)
	defer p.pool.Put(tsp)

	content := []byte(src)
	tsTree, err := tsp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.HasError() {
		return nil, firstError(root, content, filename)
	}

	c := &converter{lang: p.lang, src: content, b: syntax.NewBuilder(p.Grammar())}
	c.b.Open(root.Type())
	c.children(root)
	c.b.Leaf(EndMarker, src[c.pos:], "")
	c.b.Close()
	tree, err := c.b.Finish()
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", filename, err)
	}
	p.logger.Debug("parsed",
		zap.String("file", filename),
		zap.String("language", p.lang.Name),
		zap.Int("nodes", tree.Len()),
	)
	return tree, nil
}

type converter struct {
	lang *Language
	src  []byte
	pos  int
	b    *syntax.Builder
}

func (c *converter) children(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c.node(n.Child(i))
	}
}

func (c *converter) node(n *sitter.Node) {
	typ := n.Type()
	start, end := int(n.StartByte()), int(n.EndByte())
	switch {
	case c.lang.isFolded(typ):
		// left in place; the next leaf's prefix picks it up
	case n.ChildCount() == 0 || c.lang.isAtomic(typ):
		if start == end {
			return
		}
		c.b.Leaf(typ, string(c.src[c.pos:start]), string(c.src[start:end]))
		c.pos = end
	default:
		c.b.Open(typ)
		c.children(n)
		c.b.Close()
	}
}

func firstError(root *sitter.Node, src []byte, filename string) *ParseError {
	var found *sitter.Node
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return true
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child.HasError() || child.IsMissing() {
				if walk(child) {
					return true
				}
			}
		}
		return false
	}
	if !walk(root) {
		found = root
	}
	pt := found.StartPoint()
	e := &ParseError{
		Filename: filename,
		Line:     int(pt.Row) + 1,
		Column:   int(pt.Column) + 1,
		Missing:  found.IsMissing(),
	}
	if e.Missing {
		e.Snippet = found.Type()
	} else {
		start, end := int(found.StartByte()), int(found.EndByte())
		if end-start > 40 {
			end = start + 40
		}
		e.Snippet = string(src[start:end])
	}
	return e
}
