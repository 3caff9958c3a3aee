package syntaxtest

import (
	"fmt"
	"slices"

	"github.com/gnoverse/cstfix/syntax"
)

type pnode struct {
	typ  string
	tok  *token
	kids []*pnode
}

func (n *pnode) build(b *syntax.Builder) {
	if n.tok != nil {
		b.Leaf(n.tok.typ, n.tok.prefix, n.tok.value)
		return
	}
	b.Open(n.typ)
	for _, k := range n.kids {
		k.build(b)
	}
	b.Close()
}

func (n *pnode) leafType() string {
	if n.tok == nil {
		return ""
	}
	return n.tok.typ
}

func inner(typ string, kids ...*pnode) *pnode {
	return &pnode{typ: typ, kids: slices.DeleteFunc(kids, func(k *pnode) bool { return k == nil })}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() string { return p.toks[p.pos].typ }

func (p *parser) next() *pnode {
	t := p.toks[p.pos]
	if t.typ != ENDMARKER {
		p.pos++
	}
	return &pnode{tok: &t}
}

func (p *parser) unexpected() error {
	t := p.toks[p.pos]
	return fmt.Errorf("offset %d: unexpected %s %q", t.offset, t.typ, t.value)
}

func (p *parser) expect(typ string) (*pnode, error) {
	if p.peek() != typ {
		return nil, p.unexpected()
	}
	return p.next(), nil
}

func (p *parser) fileInput() (*pnode, error) {
	var kids []*pnode
	for p.peek() != ENDMARKER {
		stmt, err := p.simpleStmt()
		if err != nil {
			return nil, err
		}
		kids = append(kids, stmt)
	}
	kids = append(kids, p.next())
	return inner(FileInput, kids...), nil
}

func (p *parser) simpleStmt() (*pnode, error) {
	e, err := p.exprStmt()
	if err != nil {
		return nil, err
	}
	nl, err := p.expect(NEWLINE)
	if err != nil {
		return nil, err
	}
	return inner(SimpleStmt, e, nl), nil
}

func (p *parser) exprStmt() (*pnode, error) {
	lhs, err := p.test()
	if err != nil {
		return nil, err
	}
	if p.peek() != EQUAL {
		return lhs, nil
	}
	eq := p.next()
	rhs, err := p.test()
	if err != nil {
		return nil, err
	}
	return inner(ExprStmt, lhs, eq, rhs), nil
}

func (p *parser) test() (*pnode, error) {
	return p.binary(ArithExpr, p.term, PLUS, MINUS)
}

func (p *parser) term() (*pnode, error) {
	return p.binary(Term, p.factor, STAR, SLASH, PERCENT)
}

func (p *parser) binary(typ string, operand func() (*pnode, error), ops ...string) (*pnode, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	kids := []*pnode{first}
	for slices.Contains(ops, p.peek()) {
		op := p.next()
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		kids = append(kids, op, rhs)
	}
	if len(kids) == 1 {
		return first, nil
	}
	return inner(typ, kids...), nil
}

func (p *parser) factor() (*pnode, error) {
	if p.peek() == PLUS || p.peek() == MINUS {
		op := p.next()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return inner(Factor, op, operand), nil
	}
	return p.postfix()
}

func (p *parser) postfix() (*pnode, error) {
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.peek() == LPAR || p.peek() == DOT || p.peek() == LSQB {
		tr, err := p.trailer()
		if err != nil {
			return nil, err
		}
		n = inner(Call, n, tr)
	}
	return n, nil
}

func (p *parser) atom() (*pnode, error) {
	switch p.peek() {
	case NAME, NUMBER:
		return p.next(), nil
	case STRING:
		strs := []*pnode{p.next()}
		for p.peek() == STRING {
			strs = append(strs, p.next())
		}
		if len(strs) == 1 {
			return strs[0], nil
		}
		return inner(Atom, strs...), nil
	case LPAR:
		lp := p.next()
		var body *pnode
		if p.peek() != RPAR {
			var err error
			if body, err = p.test(); err != nil {
				return nil, err
			}
		}
		rp, err := p.expect(RPAR)
		if err != nil {
			return nil, err
		}
		return inner(Atom, lp, body, rp), nil
	case LSQB:
		lb := p.next()
		var body *pnode
		if p.peek() != RSQB {
			var err error
			if body, err = p.commaList(Listmaker, p.test, RSQB); err != nil {
				return nil, err
			}
		}
		rb, err := p.expect(RSQB)
		if err != nil {
			return nil, err
		}
		return inner(Atom, lb, body, rb), nil
	}
	return nil, p.unexpected()
}

func (p *parser) trailer() (*pnode, error) {
	switch p.peek() {
	case DOT:
		dot := p.next()
		name, err := p.expect(NAME)
		if err != nil {
			return nil, err
		}
		return inner(Trailer, dot, name), nil
	case LSQB:
		lb := p.next()
		idx, err := p.test()
		if err != nil {
			return nil, err
		}
		rb, err := p.expect(RSQB)
		if err != nil {
			return nil, err
		}
		return inner(Trailer, lb, idx, rb), nil
	}
	lp := p.next()
	var args *pnode
	if p.peek() != RPAR {
		var err error
		if args, err = p.commaList(Arglist, p.argument, RPAR); err != nil {
			return nil, err
		}
	}
	rp, err := p.expect(RPAR)
	if err != nil {
		return nil, err
	}
	return inner(Trailer, lp, args, rp), nil
}

// commaList parses item (',' item)* [','] up to closer. A single item without
// a comma is returned as is.
func (p *parser) commaList(typ string, item func() (*pnode, error), closer string) (*pnode, error) {
	first, err := item()
	if err != nil {
		return nil, err
	}
	kids := []*pnode{first}
	for p.peek() == COMMA {
		kids = append(kids, p.next())
		if p.peek() == closer {
			break
		}
		n, err := item()
		if err != nil {
			return nil, err
		}
		kids = append(kids, n)
	}
	if len(kids) == 1 {
		return first, nil
	}
	return inner(typ, kids...), nil
}

func (p *parser) argument() (*pnode, error) {
	t, err := p.test()
	if err != nil {
		return nil, err
	}
	if p.peek() != EQUAL || t.leafType() != NAME {
		return t, nil
	}
	eq := p.next()
	v, err := p.test()
	if err != nil {
		return nil, err
	}
	return inner(Argument, t, eq, v), nil
}
