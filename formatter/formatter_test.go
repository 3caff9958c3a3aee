package formatter

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/cstfix/diff"
	"github.com/gnoverse/cstfix/fixer"
	"github.com/gnoverse/cstfix/fixer/pattern"
	"github.com/gnoverse/cstfix/syntax/syntaxtest"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func problemResult() *fixer.Result {
	return &fixer.Result{
		Filename: "a.py",
		Original: "x = 1\n    foo(y)\n",
		Modified: "x = 1\n    foo(y)\n",
		Errors: []*fixer.ModifierError{{
			Filename: "a.py",
			Line:     2,
			NodeType: "call",
			Modifier: 1,
			Err:      errors.New("boom"),
		}},
		Warnings: []fixer.Warning{{
			Kind:     fixer.EditConflict,
			Filename: "a.py",
			Line:     1,
			Message:  "target detached",
		}},
	}
}

func TestFormatProblems(t *testing.T) {
	t.Parallel()

	expected := `error: modifier-error
 --> a.py:2
  |
2 |     foo(y)
  |     ~~~~~~
  = stage 0, modifier 1 on call: boom

warning: edit-conflict
 --> a.py:1
  |
1 | x = 1
  | ~~~~~
  = target detached

`
	assert.Equal(t, expected, FormatProblems(problemResult()))
}

func TestFormatProblemsWithoutSnippet(t *testing.T) {
	t.Parallel()
	res := &fixer.Result{
		Filename: "b.py",
		Original: "a\n",
		Warnings: []fixer.Warning{{Kind: fixer.MatchAmbiguity, Filename: "b.py", Line: 40, Message: "edits dropped"}},
	}

	expected := `warning: match-ambiguity
  --> b.py:40
   = edits dropped

`
	assert.Equal(t, expected, FormatProblems(res))
}

func TestProblems(t *testing.T) {
	t.Parallel()
	ps := Problems(problemResult())
	require.Len(t, ps, 2)
	assert.Equal(t, "error", ps[0].Severity)
	assert.Equal(t, RuleModifierError, ps[0].Rule)
	assert.Equal(t, "warning", ps[1].Severity)
	assert.Equal(t, RuleEditConflict, ps[1].Rule)
}

func TestExpandTabs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"\tx", "        x"},
		{"ab\tc", "ab      c"},
		{"none", "none"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandTabs(tt.in))
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()
	merr := &fixer.ModifierError{Filename: "c.py", Line: 3, Err: errors.New("boom")}
	out := FormatError("c.py", merr)
	assert.True(t, strings.HasPrefix(out, "error: modifier-error\n --> c.py:3\n"))

	out = FormatError("d.py", errors.New("unexpected token"))
	assert.Equal(t, "error: d.py: unexpected token\n\n", out)
}

func changedResult() *fixer.Result {
	return &fixer.Result{
		Filename: "a.py",
		Original: "f(a)\n",
		Modified: "f(a, b)\n",
		Diff:     diff.Lines("f(a)\n", "f(a, b)\n"),
		Matches:  1,
	}
}

func TestFormatDiff(t *testing.T) {
	t.Parallel()
	expected := "--- a.py\n+++ a.py\n@@ -1 +1 @@\n-f(a)\n+f(a, b)\n?   +++\n"
	assert.Equal(t, expected, FormatDiff(changedResult()))

	same := &fixer.Result{Original: "x\n", Modified: "x\n", Diff: diff.Lines("x\n", "x\n")}
	assert.Empty(t, FormatDiff(same))
	assert.Empty(t, FormatResult(same))
}

func TestSummary(t *testing.T) {
	t.Parallel()
	quiet := &fixer.Result{
		Original: "x\n",
		Modified: "x\n",
		Warnings: []fixer.Warning{{Kind: fixer.EditConflict}},
	}
	got := Summary([]*fixer.Result{changedResult(), quiet})
	assert.Equal(t, "2 files checked, 1 changed (+1 -1), 1 match, 0 errors, 1 warning\n", got)
	assert.Equal(t, "0 files checked, 0 changed (+0 -0), 0 matches, 0 errors, 0 warnings\n", Summary(nil))
}

func TestPrintTree(t *testing.T) {
	t.Parallel()

	t.Run("whole tree", func(t *testing.T) {
		t.Parallel()
		n, err := syntaxtest.ParseExpr("x + 1")
		require.NoError(t, err)

		var sb strings.Builder
		require.NoError(t, PrintTree(&sb, n, nil, 0))
		expected := "[arith_expr] ''\n" +
			".  [NAME] '' 'x'\n" +
			".  [PLUS] ' ' '+'\n" +
			".  [NUMBER] ' ' '1'\n"
		assert.Equal(t, expected, sb.String())
	})

	t.Run("depth limit", func(t *testing.T) {
		t.Parallel()
		n, err := syntaxtest.ParseExpr("(x + 1) * 2")
		require.NoError(t, err)

		var sb strings.Builder
		require.NoError(t, PrintTree(&sb, n, nil, 1))
		expected := "[term] ''\n" +
			".  [atom] ''\n" +
			".  .  ...\n" +
			".  [STAR] ' ' '*'\n" +
			".  [NUMBER] ' ' '2'\n"
		assert.Equal(t, expected, sb.String())
	})

	t.Run("captures", func(t *testing.T) {
		t.Parallel()
		n, err := syntaxtest.ParseExpr("x + 1")
		require.NoError(t, err)
		p, err := pattern.Compile(syntaxtest.Grammar, "arith_expr< lhs=NAME rest=any* >")
		require.NoError(t, err)
		caps, ok := fixer.MatchNode(p, n)
		require.True(t, ok)
		caps["none"] = fixer.Capture{}

		var sb strings.Builder
		require.NoError(t, PrintTree(&sb, n, caps, 0))
		expected := "[arith_expr] ''\n" +
			".  [NAME] '' 'x'\n" +
			".  [PLUS] ' ' '+'\n" +
			".  [NUMBER] ' ' '1'\n" +
			"results['lhs'] =\n" +
			".  [NAME] '' 'x'\n" +
			"results['none'] = []\n" +
			"results['rest'] = [PLUS('+'), NUMBER('1')]\n"
		assert.Equal(t, expected, sb.String())
	})
}

func TestQuote(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `'it\'s\n'`, quote("it's\n"))
	assert.Equal(t, `'a\\b'`, quote(`a\b`))
}
