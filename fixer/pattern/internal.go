package pattern

/*
The lexer is driven by a state transition table instead of a hand-written
switch per token kind. Every input byte is mapped to a character class, and
the pair (state, class) looks up the next state. A token is complete when the
lookup yields OK: the byte that caused it is not consumed and starts the next
token. Terminal states (QE after a closing quote, PU after a punctuation
byte) map every class to OK.

Reference:
 [1] https://nothings.org/computer/lexing.html
*/

type (
	States  int8
	Classes int8
)

// States of the lexer. OK is the only accepting state and has the lowest
// number; ER aborts tokenization.
//   - OK - token complete, current byte not consumed
//   - GO - start of a token
//   - NM - name (type name, capture name, keyword)
//   - NU - number
//   - S1 - inside a single-quoted string
//   - E1 - after a backslash in a single-quoted string
//   - S2 - inside a double-quoted string
//   - E2 - after a backslash in a double-quoted string
//   - QE - closing quote seen
//   - PU - single-byte punctuation seen
//   - WS - whitespace
//   - CM - comment up to end of line
//   - ER - error
const (
	OK States = iota
	GO
	NM
	NU
	S1
	E1
	S2
	E2
	QE
	PU
	WS
	CM
	ER
)

// Character classes.
const (
	C_NAME   Classes = iota // letters and '_'
	C_DIGIT                 // 0-9
	C_SQUOTE                // '
	C_DQUOTE                // "
	C_BSLASH                // \
	C_SPACE                 // space, tab, carriage return
	C_NL                    // newline
	C_HASH                  // #
	C_PUNCT                 // < > ( ) [ ] { } | = * + ,
	C_OTHER                 // anything else
	C_EOF                   // end of input
)

var StateTransitionTable = [13][11]States{
	//         NAME DIGIT SQUOTE DQUOTE BSLASH SPACE NL  HASH PUNCT OTHER EOF
	/* OK */ {ER, ER, ER, ER, ER, ER, ER, ER, ER, ER, ER},
	/* GO */ {NM, NU, S1, S2, ER, WS, WS, CM, PU, ER, OK},
	/* NM */ {NM, NM, OK, OK, OK, OK, OK, OK, OK, OK, OK},
	/* NU */ {OK, NU, OK, OK, OK, OK, OK, OK, OK, OK, OK},
	/* S1 */ {S1, S1, QE, S1, E1, S1, ER, S1, S1, S1, ER},
	/* E1 */ {S1, S1, S1, S1, S1, S1, ER, S1, S1, S1, ER},
	/* S2 */ {S2, S2, S2, QE, E2, S2, ER, S2, S2, S2, ER},
	/* E2 */ {S2, S2, S2, S2, S2, S2, ER, S2, S2, S2, ER},
	/* QE */ {OK, OK, OK, OK, OK, OK, OK, OK, OK, OK, OK},
	/* PU */ {OK, OK, OK, OK, OK, OK, OK, OK, OK, OK, OK},
	/* WS */ {OK, OK, OK, OK, OK, WS, WS, OK, OK, OK, OK},
	/* CM */ {CM, CM, CM, CM, CM, CM, OK, CM, CM, CM, OK},
	/* ER */ {ER, ER, ER, ER, ER, ER, ER, ER, ER, ER, ER},
}

func (c Classes) String() string {
	switch c {
	case C_NAME:
		return "NAME"
	case C_DIGIT:
		return "DIGIT"
	case C_SQUOTE:
		return "SQUOTE"
	case C_DQUOTE:
		return "DQUOTE"
	case C_BSLASH:
		return "BSLASH"
	case C_SPACE:
		return "SPACE"
	case C_NL:
		return "NL"
	case C_HASH:
		return "HASH"
	case C_PUNCT:
		return "PUNCT"
	case C_OTHER:
		return "OTHER"
	case C_EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

var punctTokens = [256]TokenType{
	'<': TokenLAngle,
	'>': TokenRAngle,
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'|': TokenPipe,
	'=': TokenEquals,
	'*': TokenStar,
	'+': TokenPlus,
	',': TokenComma,
}

var classTable = func() [256]Classes {
	var t [256]Classes
	for i := range t {
		t[i] = C_OTHER
	}
	for c := 'a'; c <= 'z'; c++ {
		t[c] = C_NAME
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = C_NAME
	}
	t['_'] = C_NAME
	for c := '0'; c <= '9'; c++ {
		t[c] = C_DIGIT
	}
	t['\''] = C_SQUOTE
	t['"'] = C_DQUOTE
	t['\\'] = C_BSLASH
	t[' '], t['\t'], t['\r'], t['\f'] = C_SPACE, C_SPACE, C_SPACE, C_SPACE
	t['\n'] = C_NL
	t['#'] = C_HASH
	for _, c := range "<>()[]{}|=*+," {
		t[c] = C_PUNCT
	}
	return t
}()

// getCharacterClass returns the class of c.
func getCharacterClass(c byte) Classes {
	return classTable[c]
}
