package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/cstfix/syntax"
	"github.com/gnoverse/cstfix/syntax/syntaxtest"
)

func TestFromNode(t *testing.T) {
	t.Parallel()
	node, err := syntaxtest.ParseExpr("x + 1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		captures map[string][]syntax.Node
		want     string
	}{
		{
			name: "plain",
			want: "arith_expr < 'x' '+' '1' > ",
		},
		{
			name:     "capture",
			captures: map[string][]syntax.Node{"op": {node.Child(1)}},
			want:     "arith_expr < 'x' op='+' '1' > ",
		},
		{
			name:     "capture list",
			captures: map[string][]syntax.Node{"rest": node.Children()[1:]},
			want:     "arith_expr < 'x' rest='+' rest='1' > ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromNode(node, tt.captures))
		})
	}
}

func TestFromNode_Compiles(t *testing.T) {
	t.Parallel()
	node, err := syntaxtest.ParseExpr("foo.bar('it''s')")
	require.NoError(t, err)

	p, err := Compile(syntaxtest.Grammar, FromNode(node, nil))
	require.NoError(t, err)
	assert.Equal(t, `call< call< 'foo' trailer< '.' 'bar' > > trailer< '(' atom< '\'it\'' '\'s\'' > ')' > >`, p.String())
}
