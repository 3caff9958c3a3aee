package pattern

import (
	"strings"
)

// Lexer turns pattern text into tokens using StateTransitionTable.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) class() Classes {
	if l.position >= len(l.input) {
		return C_EOF
	}
	return getCharacterClass(l.input[l.position])
}

// Tokenize scans the whole input. The last token is always TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		start := l.position
		state := GO
		for {
			next := StateTransitionTable[state][l.class()]
			if next == OK {
				break
			}
			if next == ER {
				return nil, l.errorAt(state, start)
			}
			state = next
			l.position++
		}

		text := l.input[start:l.position]
		switch state {
		case GO:
			l.addToken(TokenEOF, "", start)
			return l.tokens, nil
		case NM:
			l.addToken(TokenName, text, start)
		case NU:
			l.addToken(TokenNumber, text, start)
		case QE:
			l.addToken(TokenString, unquote(text), start)
		case PU:
			l.addToken(punctTokens[text[0]], text, start)
		case WS, CM:
			// skipped
		}
	}
}

func (l *Lexer) errorAt(state States, start int) *SyntaxError {
	switch state {
	case S1, E1, S2, E2:
		return newSyntaxError(l.input, start, "unterminated string")
	}
	if l.position < len(l.input) {
		return newSyntaxError(l.input, l.position, "unexpected character %q", l.input[l.position])
	}
	return newSyntaxError(l.input, l.position, "unexpected end of pattern")
}

func (l *Lexer) addToken(typ TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Position: pos})
}

// unquote strips the quotes of a string token and resolves the escapes
// \\ \' \" \n \t \r. Other backslashes are kept as written.
func unquote(s string) string {
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case '\\', '\'', '"':
			sb.WriteByte(body[i])
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
