package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/cstfix/syntax"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		lang *Language
		src  string
	}{
		{"python empty", Python, ""},
		{"python only comment", Python, "# nothing here\n"},
		{"python statements", Python, "import os\n\nx = foo.bar(1, 'two')  # call\nif x:\n    print(\"yes\")\n\n\n"},
		{"python no trailing newline", Python, "a = [1,\n     2]"},
		{"go file", Go, "package main\n\n// main does nothing.\nfunc main() {\n\tprintln(\"hi\", `raw`)\n}\n"},
		{"javascript file", JavaScript, "const a = require('a');\n/* block */\nfunction f(x) { return x * 2 }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := New(tt.lang).Parse(tt.src, "input")
			require.NoError(t, err)
			assert.Equal(t, tt.src, tree.String())
			assert.NoError(t, tree.Verify())

			root := tree.Root()
			last := root.Child(root.NumChildren() - 1)
			assert.Equal(t, EndMarker, last.Type())
		})
	}
}

func TestPythonShape(t *testing.T) {
	t.Parallel()
	tree, err := New(Python).Parse("foo.bar()  # c\n", "x.py")
	require.NoError(t, err)

	stmt := tree.Root().Child(0)
	require.Equal(t, "expression_statement", stmt.Type())
	call := stmt.Child(0)
	assert.Equal(t,
		`(call (attribute identifier:"foo" .:"." identifier:"bar") (argument_list (:"(" ):")"))`,
		syntax.Dump(call))

	end := tree.Root().Child(1)
	assert.Equal(t, EndMarker, end.Type())
	assert.Equal(t, "  # c\n", end.Prefix())
}

func TestAtomicStrings(t *testing.T) {
	t.Parallel()
	tree, err := New(Python).Parse("s = f'{x}'\n", "x.py")
	require.NoError(t, err)

	var strs []syntax.Node
	for n := range syntax.PreOrder(tree.Root()) {
		if n.Type() == "string" {
			strs = append(strs, n)
		}
	}
	require.Len(t, strs, 1)
	assert.True(t, strs[0].IsLeaf())
	assert.Equal(t, "f'{x}'", strs[0].Value())
	assert.Equal(t, " ", strs[0].Prefix())
}

func TestParseError(t *testing.T) {
	t.Parallel()
	_, err := New(Python).Parse("x = (1,\n", "bad.py")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.py", pe.Filename)
	assert.GreaterOrEqual(t, pe.Line, 1)
}

func TestGrammar(t *testing.T) {
	t.Parallel()
	g := Python.Grammar()
	for _, typ := range []string{"call", "attribute", "identifier", "string", "argument_list", EndMarker} {
		assert.True(t, g.Has(typ), typ)
	}
	assert.False(t, g.Has("no_such_symbol"))
	assert.Same(t, g, Python.Grammar())
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	l, ok := ForFile("pkg/thing.py")
	require.True(t, ok)
	assert.Equal(t, Python, l)

	l, ok = ForFile("main.GO")
	require.True(t, ok)
	assert.Equal(t, Go, l)

	_, ok = ForFile("README")
	assert.False(t, ok)

	l, ok = Lookup("JavaScript")
	require.True(t, ok)
	assert.Equal(t, JavaScript, l)

	assert.Subset(t, Languages(), []string{"go", "javascript", "python"})
}
