package pattern

import (
	"strconv"

	"github.com/gnoverse/cstfix/syntax"
)

// Parser consumes the lexer's tokens and builds a pattern tree.
type Parser struct {
	src     string
	tokens  []Token
	current int
	grammar *syntax.Grammar
	holes   map[string]int // capture name -> position
}

func NewParser(src string, tokens []Token, g *syntax.Grammar) *Parser {
	return &Parser{
		src:     src,
		tokens:  tokens,
		grammar: g,
		holes:   make(map[string]int),
	}
}

// Parse parses the whole token stream.
func (p *Parser) Parse() (Node, error) {
	if p.peek().Type == TokenEOF {
		return nil, newSyntaxError(p.src, 0, "empty pattern")
	}
	n, err := p.parseAlternatives()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return n, nil
}

func (p *Parser) peek() Token { return p.tokens[p.current] }

func (p *Parser) peekAt(i int) Token {
	if p.current+i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+i]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Type != TokenEOF {
		p.current++
	}
	return tok
}

func (p *Parser) unexpected(tok Token) *SyntaxError {
	if tok.Type == TokenEOF {
		return newSyntaxError(p.src, tok.Position, "unexpected end of pattern")
	}
	return newSyntaxError(p.src, tok.Position, "unexpected %s %q", tok.Type, tok.Value)
}

// closing consumes the token that closes open.
func (p *Parser) closing(want TokenType, open Token) error {
	if tok := p.peek(); tok.Type != want {
		return newSyntaxError(p.src, tok.Position, "unbalanced %s at offset %d: expected %s, found %s",
			open.Type, open.Position, want, tok.Type)
	}
	p.advance()
	return nil
}

func (p *Parser) parseAlternatives() (Node, error) {
	pos := p.peek().Position
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenPipe {
		return first, nil
	}
	alt := &AlternationNode{Branches: []Node{first}, pos: pos}
	for p.peek().Type == TokenPipe {
		p.advance()
		branch, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alt.Branches = append(alt.Branches, branch)
	}
	return alt, nil
}

func endsSequence(t TokenType) bool {
	switch t {
	case TokenPipe, TokenRParen, TokenRBracket, TokenRAngle, TokenEOF:
		return true
	}
	return false
}

func (p *Parser) parseSequence() (Node, error) {
	pos := p.peek().Position
	var items []Node
	for !endsSequence(p.peek().Type) {
		unit, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		items = append(items, unit)
	}
	switch len(items) {
	case 0:
		return nil, p.unexpected(p.peek())
	case 1:
		return items[0], nil
	}
	return &SequenceNode{Items: items, pos: pos}, nil
}

func (p *Parser) parseUnit() (Node, error) {
	start := p.peek()

	var name string
	if start.Type == TokenName && p.peekAt(1).Type == TokenEquals {
		name = start.Value
		if name == "any" || name == "not" {
			return nil, newSyntaxError(p.src, start.Position, "%q cannot be used as a capture name", name)
		}
		if prev, dup := p.holes[name]; dup {
			return nil, newSyntaxError(p.src, start.Position, "duplicate capture name %q (first used at offset %d)", name, prev)
		}
		p.holes[name] = start.Position
		p.advance()
		p.advance()
	}

	notTok := p.peek()
	negated := notTok.Type == TokenName && notTok.Value == "not"
	if negated {
		p.advance()
	}

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	if isRepeater(p.peek().Type) {
		if negated {
			return nil, newSyntaxError(p.src, p.peek().Position, "a negated unit cannot be repeated")
		}
		if atom, err = p.parseRepeat(atom); err != nil {
			return nil, err
		}
	}
	if negated {
		atom = &NegationNode{Sub: atom, pos: notTok.Position}
	}
	if name != "" {
		atom = &CaptureNode{Name: name, Sub: atom, pos: start.Position}
	}
	return atom, nil
}

func isRepeater(t TokenType) bool {
	return t == TokenStar || t == TokenPlus || t == TokenLBrace
}

func (p *Parser) parseAtom() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenLParen:
		p.advance()
		inner, err := p.parseAlternatives()
		if err != nil {
			return nil, err
		}
		if err := p.closing(TokenRParen, tok); err != nil {
			return nil, err
		}
		return inner, nil

	case TokenLBracket:
		p.advance()
		inner, err := p.parseAlternatives()
		if err != nil {
			return nil, err
		}
		if err := p.closing(TokenRBracket, tok); err != nil {
			return nil, err
		}
		return &RepeatNode{Sub: inner, Min: 0, Max: 1, pos: tok.Position}, nil

	case TokenString:
		p.advance()
		return &LiteralNode{Value: tok.Value, HasValue: true, pos: tok.Position}, nil

	case TokenName:
		p.advance()
		switch tok.Value {
		case "not":
			return nil, newSyntaxError(p.src, tok.Position, "unexpected 'not'")
		case "any":
			if p.peek().Type != TokenLAngle {
				return &AnyNode{pos: tok.Position}, nil
			}
			content, err := p.parseDetails()
			if err != nil {
				return nil, err
			}
			return &TreeNode{Content: content, pos: tok.Position}, nil
		}
		if !p.grammar.Has(tok.Value) {
			return nil, newSyntaxError(p.src, tok.Position, "unknown type name %q in grammar %q", tok.Value, p.grammar.Name())
		}
		if p.peek().Type != TokenLAngle {
			return &LiteralNode{TypeName: tok.Value, pos: tok.Position}, nil
		}
		content, err := p.parseDetails()
		if err != nil {
			return nil, err
		}
		return &TreeNode{TypeName: tok.Value, Content: content, pos: tok.Position}, nil
	}
	return nil, p.unexpected(tok)
}

func (p *Parser) parseDetails() (Node, error) {
	open := p.advance()
	if p.peek().Type == TokenRAngle {
		return nil, newSyntaxError(p.src, open.Position, "empty '<>'")
	}
	content, err := p.parseAlternatives()
	if err != nil {
		return nil, err
	}
	if err := p.closing(TokenRAngle, open); err != nil {
		return nil, err
	}
	return content, nil
}

func (p *Parser) parseRepeat(sub Node) (Node, error) {
	tok := p.advance()
	switch tok.Type {
	case TokenStar:
		return &RepeatNode{Sub: sub, Min: 0, Max: Unbounded, pos: tok.Position}, nil
	case TokenPlus:
		return &RepeatNode{Sub: sub, Min: 1, Max: Unbounded, pos: tok.Position}, nil
	}

	lo, err := p.number()
	if err != nil {
		return nil, err
	}
	hi := lo
	if p.peek().Type == TokenComma {
		p.advance()
		hi = Unbounded
		if p.peek().Type == TokenNumber {
			if hi, err = p.number(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.closing(TokenRBrace, tok); err != nil {
		return nil, err
	}
	if hi != Unbounded && lo > hi {
		return nil, newSyntaxError(p.src, tok.Position, "invalid repeat {%d,%d}: minimum exceeds maximum", lo, hi)
	}
	return &RepeatNode{Sub: sub, Min: lo, Max: hi, pos: tok.Position}, nil
}

func (p *Parser) number() (int, error) {
	tok := p.peek()
	if tok.Type != TokenNumber {
		return 0, p.unexpected(tok)
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil || n > inf/2 {
		return 0, newSyntaxError(p.src, tok.Position, "invalid repeat count %q", tok.Value)
	}
	p.advance()
	return n, nil
}
