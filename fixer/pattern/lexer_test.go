package pattern

import (
	"errors"
	"reflect"
	"testing"
)

func TestLexer_Tokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "node with children",
			input: "trailer< '.' name=NAME >",
			want: []Token{
				{TokenName, "trailer", 0},
				{TokenLAngle, "<", 7},
				{TokenString, ".", 9},
				{TokenName, "name", 13},
				{TokenEquals, "=", 17},
				{TokenName, "NAME", 18},
				{TokenRAngle, ">", 23},
				{TokenEOF, "", 24},
			},
		},
		{
			name:  "repeat bounds",
			input: "any{2,10}",
			want: []Token{
				{TokenName, "any", 0},
				{TokenLBrace, "{", 3},
				{TokenNumber, "2", 4},
				{TokenComma, ",", 5},
				{TokenNumber, "10", 6},
				{TokenRBrace, "}", 8},
				{TokenEOF, "", 9},
			},
		},
		{
			name:  "comments and newlines",
			input: "a # first\n| b # second",
			want: []Token{
				{TokenName, "a", 0},
				{TokenPipe, "|", 10},
				{TokenName, "b", 12},
				{TokenEOF, "", 22},
			},
		},
		{
			name:  "escapes",
			input: `'it\'s' "say \"hi\"" '\d'`,
			want: []Token{
				{TokenString, "it's", 0},
				{TokenString, `say "hi"`, 8},
				{TokenString, `\d`, 21},
				{TokenEOF, "", 25},
			},
		},
		{
			name:  "quote kinds do not close each other",
			input: `'"' "'"`,
			want: []Token{
				{TokenString, `"`, 0},
				{TokenString, `'`, 4},
				{TokenEOF, "", 7},
			},
		},
		{
			name:  "adjacent punctuation",
			input: "(a|b)*+",
			want: []Token{
				{TokenLParen, "(", 0},
				{TokenName, "a", 1},
				{TokenPipe, "|", 2},
				{TokenName, "b", 3},
				{TokenRParen, ")", 4},
				{TokenStar, "*", 5},
				{TokenPlus, "+", 6},
				{TokenEOF, "", 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLexer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"unterminated single", "a 'abc", 2},
		{"unterminated double", `"abc`, 0},
		{"newline in string", "'a\nb'", 0},
		{"dangling escape", `'a\`, 0},
		{"unexpected character", "a $ b", 2},
		{"stray backslash", `a \ b`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input).Tokenize()
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Tokenize() error = %v, want *SyntaxError", err)
			}
			if se.Offset != tt.offset {
				t.Errorf("offset = %d, want %d (%v)", se.Offset, tt.offset, se)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("errors.Is(%v, ErrSyntax) = false", err)
			}
		})
	}
}

func TestCharacterClass(t *testing.T) {
	tests := []struct {
		c    byte
		want Classes
	}{
		{'a', C_NAME},
		{'Z', C_NAME},
		{'_', C_NAME},
		{'7', C_DIGIT},
		{'\'', C_SQUOTE},
		{'"', C_DQUOTE},
		{'\\', C_BSLASH},
		{'\t', C_SPACE},
		{'\n', C_NL},
		{'#', C_HASH},
		{'<', C_PUNCT},
		{',', C_PUNCT},
		{'$', C_OTHER},
		{0xc3, C_OTHER},
	}
	for _, tt := range tests {
		if got := getCharacterClass(tt.c); got != tt.want {
			t.Errorf("getCharacterClass(%q) = %v, want %v", tt.c, got, tt.want)
		}
	}
}
