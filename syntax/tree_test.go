package syntax_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/cstfix/syntax"
	"github.com/gnoverse/cstfix/syntax/syntaxtest"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"single name", "x\n"},
		{"no trailing newline", "x = 1"},
		{"comments and blank lines", "# head\n\nx = 1  # tail\n\n\n# end\n"},
		{"calls", "foo.bar(a, b=2)[0]\n"},
		{"multiline call", "f(\n    a,\n    b,\n)\n"},
		{"arith", "y = -a * (b + 1) % 3\n"},
		{"strings", "s = 'a' \"b\" r'\\d'\n"},
		{"list", "xs = [1, 2, 3,]\n"},
		{"tabs and crlf", "\tx\t=\t1\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := syntaxtest.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.src, tree.String())
			assert.Equal(t, tt.src, tree.Source())
			assert.False(t, tree.Edited())
			assert.NoError(t, tree.Verify())
		})
	}
}

func TestShape(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"foo.bar()", `(call (call NAME:"foo" (trailer DOT:"." NAME:"bar")) (trailer LPAR:"(" RPAR:")"))`},
		{"a + b * c", `(arith_expr NAME:"a" PLUS:"+" (term NAME:"b" STAR:"*" NAME:"c"))`},
		{"f(x, y=1)", `(call NAME:"f" (trailer LPAR:"(" (arglist NAME:"x" COMMA:"," (argument NAME:"y" EQUAL:"=" NUMBER:"1")) RPAR:")"))`},
		{"mk('')", `(call NAME:"mk" (trailer LPAR:"(" STRING:"''" RPAR:")"))`},
		{"-x", `(factor MINUS:"-" NAME:"x")`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			n, err := syntaxtest.ParseExpr(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, syntax.Dump(n))
		})
	}
}

func TestNavigation(t *testing.T) {
	t.Parallel()
	tree := syntaxtest.MustParse("a = b\nc\n")
	root := tree.Root()
	require.Equal(t, syntaxtest.FileInput, root.Type())
	require.Equal(t, 3, root.NumChildren())

	stmt := root.Child(0)
	assign := stmt.Child(0)
	assert.Equal(t, syntaxtest.ExprStmt, assign.Type())
	assert.Equal(t, 0, stmt.Index())
	assert.Equal(t, root, stmt.Parent())
	assert.Equal(t, root.Child(1), stmt.NextSibling())
	assert.False(t, stmt.PrevSibling().Valid())
	assert.Equal(t, -1, root.Index())

	lhs := assign.Child(0)
	assert.True(t, lhs.IsLeaf())
	assert.Equal(t, "a", lhs.Value())
	assert.Equal(t, " ", assign.Child(1).Prefix())
	assert.Equal(t, "a", assign.FirstLeaf().Value())
	assert.True(t, root.Contains(lhs))
	assert.False(t, lhs.Contains(root))

	var zero syntax.Node
	assert.False(t, zero.Valid())
	assert.Equal(t, "", zero.Type())
	assert.Equal(t, 0, zero.NumChildren())
	assert.False(t, zero.Child(0).Valid())
}

func values(seq func(func(syntax.Node) bool)) []string {
	var out []string
	for n := range seq {
		if n.IsLeaf() {
			out = append(out, n.Value())
		} else {
			out = append(out, n.Type())
		}
	}
	return out
}

func TestTraversalOrder(t *testing.T) {
	t.Parallel()
	n, err := syntaxtest.ParseExpr("a + b * c")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"arith_expr", "a", "+", "term", "b", "*", "c"},
		values(syntax.PreOrder(n)))
	assert.Equal(t,
		[]string{"a", "+", "b", "*", "c", "term", "arith_expr"},
		values(syntax.PostOrder(n)))

	var visited []string
	syntax.Walk(n, func(c syntax.Node) bool {
		visited = append(visited, c.Type())
		return c.Type() != syntaxtest.Term
	})
	assert.Equal(t, []string{"arith_expr", "NAME", "PLUS", "term"}, visited)

	var first []string
	for c := range syntax.PreOrder(n) {
		first = append(first, c.Type())
		if len(first) == 2 {
			break
		}
	}
	assert.Len(t, first, 2)
	assert.Equal(t, []string{"a", "+", "b", "*", "c"}, values(n.Leaves()))
}

func TestEdits(t *testing.T) {
	t.Parallel()

	t.Run("replace keeps surrounding text", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("x = old  # keep\n")
		old := tree.Root().Child(0).Child(0).Child(2)
		require.Equal(t, "old", old.Value())

		require.NoError(t, tree.Replace(old, tree.NewLeaf(syntaxtest.NAME, "new", old.Prefix())))
		assert.Equal(t, "x = new  # keep\n", tree.String())
		assert.True(t, tree.Edited())
		assert.False(t, old.Attached())
		assert.NoError(t, tree.Verify())
	})

	t.Run("replace detached target", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("x\n")
		leaf := tree.NewLeaf(syntaxtest.NAME, "y", "")
		err := tree.Replace(leaf, tree.NewLeaf(syntaxtest.NAME, "z", ""))
		assert.ErrorIs(t, err, syntax.ErrDetached)
	})

	t.Run("replacement must be detached", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("x + y\n")
		sum := tree.Root().Child(0).Child(0)
		err := tree.Replace(sum.Child(0), sum.Child(2))
		assert.ErrorIs(t, err, syntax.ErrAttached)
	})

	t.Run("replace root", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("x\n")
		require.NoError(t, tree.Replace(tree.Root(), tree.NewLeaf(syntaxtest.NAME, "y", "")))
		assert.Equal(t, "y", tree.String())
	})

	t.Run("insert and detach", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("f(a)\n")
		trailer := tree.Root().Child(0).Child(0).Child(1)
		require.Equal(t, syntaxtest.Trailer, trailer.Type())

		require.NoError(t, tree.InsertChild(trailer, 2, tree.NewLeaf(syntaxtest.COMMA, ",", "")))
		require.NoError(t, tree.InsertChild(trailer, 3, tree.NewLeaf(syntaxtest.NAME, "b", " ")))
		assert.Equal(t, "f(a, b)\n", tree.String())

		require.NoError(t, tree.Detach(trailer.Child(1)))
		require.NoError(t, tree.Detach(trailer.Child(1)))
		assert.Equal(t, "f( b)\n", tree.String())

		assert.ErrorIs(t, tree.Detach(tree.Root()), syntax.ErrRoot)
		assert.Error(t, tree.InsertChild(trailer, 10, tree.NewLeaf(syntaxtest.NAME, "c", "")))
		assert.ErrorIs(t, tree.InsertChild(trailer.Child(0), 0, tree.NewLeaf(syntaxtest.NAME, "c", "")), syntax.ErrNotInternal)
	})

	t.Run("new node clones attached children", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("mk('')\n")
		str := tree.Root().Child(0).Child(0).Child(1).Child(1)
		require.Equal(t, syntaxtest.STRING, str.Type())

		wrapped := tree.NewNode(syntaxtest.Call,
			tree.NewLeaf(syntaxtest.NAME, "esc", str.Prefix()),
			tree.NewNode(syntaxtest.Trailer,
				tree.NewLeaf(syntaxtest.LPAR, "(", ""),
				str,
				tree.NewLeaf(syntaxtest.RPAR, ")", ""),
			),
		)
		assert.True(t, str.Attached())
		require.NoError(t, tree.Replace(str, wrapped))
		assert.Equal(t, "mk(esc(''))\n", tree.String())
		assert.NoError(t, tree.Verify())
	})

	t.Run("clone across trees", func(t *testing.T) {
		t.Parallel()
		src := syntaxtest.MustParse("a.b\n")
		dst := syntaxtest.MustParse("x\n")
		expr := src.Root().Child(0).Child(0)

		c := dst.Clone(expr)
		assert.Equal(t, dst, c.Tree())
		assert.False(t, c.Attached())
		require.NoError(t, dst.Replace(dst.Root().Child(0).Child(0), c))
		assert.Equal(t, "a.b\n", dst.String())
		assert.Equal(t, "a.b\n", src.String())
	})

	t.Run("set prefix", func(t *testing.T) {
		t.Parallel()
		tree := syntaxtest.MustParse("x = y\n")
		assign := tree.Root().Child(0).Child(0)
		tree.SetPrefix(assign.Child(2), "   ")
		assert.Equal(t, "x =   y\n", tree.String())
		assert.NoError(t, tree.Verify())
	})
}

func TestBuilder(t *testing.T) {
	t.Parallel()
	g := syntax.NewGrammar("toy", "expr", "NAME", "PLUS")

	tree, err := syntax.NewBuilder(g).
		Open("expr").
		Leaf("NAME", "", "a").
		Leaf("PLUS", " ", "+").
		Leaf("NAME", " ", "b").
		Close().
		Finish()
	require.NoError(t, err)
	assert.Equal(t, "a + b", tree.Source())
	assert.Equal(t, "a + b", tree.String())
	assert.NoError(t, tree.Verify())
	assert.Equal(t, g, tree.Grammar())

	_, err = syntax.NewBuilder(g).Open("expr").Finish()
	assert.Error(t, err)
	_, err = syntax.NewBuilder(g).Close().Finish()
	assert.Error(t, err)
	_, err = syntax.NewBuilder(g).Finish()
	assert.Error(t, err)
	_, err = syntax.NewBuilder(g).Leaf("NAME", "", "a").Leaf("NAME", "", "b").Finish()
	assert.Error(t, err)
}

func TestGrammar(t *testing.T) {
	t.Parallel()
	g := syntax.NewGrammar("toy", "b", "a")
	assert.True(t, g.Has("a"))
	assert.False(t, g.Has("c"))
	assert.Equal(t, []string{"a", "b"}, g.Types())

	g2 := g.With("c")
	assert.True(t, g2.Has("c"))
	assert.False(t, g.Has("c"))
	assert.True(t, slices.Equal([]string{"a", "b", "c"}, g2.Types()))

	open := syntax.OpenGrammar("any")
	assert.True(t, open.Has("whatever"))

	var nilGrammar *syntax.Grammar
	assert.False(t, nilGrammar.Has("a"))
	assert.Equal(t, "", nilGrammar.Name())
}
