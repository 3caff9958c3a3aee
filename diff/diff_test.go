package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a\n", "b\n"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"\n", "\n"}, SplitLines("\n\n"))
}

func TestLines(t *testing.T) {
	t.Parallel()

	t.Run("identical", func(t *testing.T) {
		t.Parallel()
		r := Lines("a\nb\n", "a\nb\n")
		assert.True(t, r.Empty())
		assert.Equal(t, "", r.Unified("a", "b"))
	})

	t.Run("replace one line", func(t *testing.T) {
		t.Parallel()
		r := Lines("a\nb\nc\n", "a\nx\nc\n")
		require.Len(t, r.Hunks, 1)
		h := r.Hunks[0]
		assert.Equal(t, "@@ -1,3 +1,3 @@", h.Header())
		assert.Equal(t, []Line{
			{Equal, "a\n"}, {Delete, "b\n"}, {Insert, "x\n"}, {Equal, "c\n"},
		}, h.Lines)
		added, removed := r.Stats()
		assert.Equal(t, 1, added)
		assert.Equal(t, 1, removed)
	})

	t.Run("unified", func(t *testing.T) {
		t.Parallel()
		r := Lines("a\nb\nc\n", "a\nx\nc\n")
		want := "--- old.py\n+++ new.py\n@@ -1,3 +1,3 @@\n a\n-b\n+x\n c\n"
		assert.Equal(t, want, r.Unified("old.py", "new.py"))
	})

	t.Run("context is limited", func(t *testing.T) {
		t.Parallel()
		before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n"
		after := "1\n2\n3\n4\nX\n6\n7\n8\n9\n"
		r := Lines(before, after)
		require.Len(t, r.Hunks, 1)
		assert.Equal(t, "@@ -2,7 +2,7 @@", r.Hunks[0].Header())
	})

	t.Run("far apart changes make two hunks", func(t *testing.T) {
		t.Parallel()
		var before, after strings.Builder
		for i := 1; i <= 20; i++ {
			fmt.Fprintf(&before, "%d\n", i)
			switch i {
			case 2, 18:
				fmt.Fprintf(&after, "x%d\n", i)
			default:
				fmt.Fprintf(&after, "%d\n", i)
			}
		}
		r := Lines(before.String(), after.String())
		require.Len(t, r.Hunks, 2)
		assert.Equal(t, "@@ -1,5 +1,5 @@", r.Hunks[0].Header())
		assert.Equal(t, "@@ -15,6 +15,6 @@", r.Hunks[1].Header())
	})

	t.Run("close changes share a hunk", func(t *testing.T) {
		t.Parallel()
		r := Lines("1\n2\n3\n4\n5\n6\n7\n8\n", "x\n2\n3\n4\n5\n6\n7\ny\n")
		require.Len(t, r.Hunks, 1)
		assert.Equal(t, "@@ -1,8 +1,8 @@", r.Hunks[0].Header())
	})

	t.Run("pure insertion", func(t *testing.T) {
		t.Parallel()
		r := Lines("", "a\n")
		require.Len(t, r.Hunks, 1)
		assert.Equal(t, "@@ -0,0 +1 @@", r.Hunks[0].Header())
	})

	t.Run("missing final newline", func(t *testing.T) {
		t.Parallel()
		r := Lines("a\nb", "a\nc")
		want := "--- a\n+++ b\n@@ -1,2 +1,2 @@\n a\n-b\n\\ No newline at end of file\n+c\n\\ No newline at end of file\n"
		assert.Equal(t, want, r.Unified("a", "b"))
	})

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()
		var r *Result
		assert.True(t, r.Empty())
		added, removed := r.Stats()
		assert.Zero(t, added+removed)
	})
}

func TestHints(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		old, cur string
		oldMarks string
		newMarks string
	}{
		{"added text", "f(a)", "f(a, b)", "", "   +++"},
		{"removed text", "foo(a, b)", "foo(a)", "     ---", ""},
		{"changed text", "x = 1", "x = 2", "    ^", "    ^"},
		{"wide characters", "s = '日本'", "s = '日本語'", "", strings.Repeat(" ", 9) + "++"},
		{"identical", "same", "same", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			oldMarks, newMarks := Hints(tt.old, tt.cur)
			assert.Equal(t, tt.oldMarks, oldMarks)
			assert.Equal(t, tt.newMarks, newMarks)
		})
	}
}

func TestUnifiedWithHints(t *testing.T) {
	t.Parallel()
	r := Lines("x = 1\ny\n", "x = 2\ny\n")
	want := "--- a\n+++ b\n@@ -1,2 +1,2 @@\n-x = 1\n?    ^\n+x = 2\n?    ^\n y\n"
	assert.Equal(t, want, r.Unified("a", "b", WithHints()))
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("only context", func(t *testing.T) {
		t.Parallel()
		hunk := SplitLines("@@ -1,2 +1,2 @@\n a\n b\n")
		out, err := Apply([][]string{hunk}, SplitLines("a\nb\n"))
		require.NoError(t, err)
		assert.Equal(t, SplitLines("a\nb\n"), out)
	})

	t.Run("replace line", func(t *testing.T) {
		t.Parallel()
		hunk := SplitLines("@@ -1,3 +1,3 @@\n a\n-b\n+x\n c\n")
		out, err := Apply([][]string{hunk}, SplitLines("a\nb\nc\n"))
		require.NoError(t, err)
		assert.Equal(t, SplitLines("a\nx\nc\n"), out)
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()
		hunk := SplitLines("@@ -1,2 +1,2 @@\n a\n-z\n+x\n")
		_, err := Apply([][]string{hunk}, SplitLines("a\nb\n"))
		var herr *HunkError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, 2, herr.Line)
		assert.Equal(t, "z\n", herr.Want)
		assert.Equal(t, "b\n", herr.Got)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := Apply([][]string{{"@@ nope @@\n"}}, nil)
		assert.ErrorIs(t, err, ErrMalformedHunk)
		_, err = Apply([][]string{{"@@ -1 +1 @@\n", "*a\n"}}, SplitLines("a\n"))
		assert.ErrorIs(t, err, ErrMalformedHunk)
	})

	t.Run("skipping hunks", func(t *testing.T) {
		t.Parallel()
		var before, after strings.Builder
		for i := 1; i <= 30; i++ {
			fmt.Fprintf(&before, "%d\n", i)
			switch i {
			case 2:
				after.WriteString("a\nb\n")
			case 15:
			case 28:
				after.WriteString("z\n")
			default:
				fmt.Fprintf(&after, "%d\n", i)
			}
		}
		r := Lines(before.String(), after.String())
		hunks := SplitHunks(SplitLines(r.Unified("a", "b")))
		require.Len(t, hunks, 3)

		out, err := Apply([][]string{hunks[0], hunks[2]}, SplitLines(before.String()))
		require.NoError(t, err)
		want := strings.Replace(before.String(), "2\n", "a\nb\n", 1)
		want = strings.Replace(want, "28\n", "z\n", 1)
		assert.Equal(t, want, strings.Join(out, ""))
	})
}

// TestApplyRoundTrip checks every combination of kept lines against a small
// file, with and without hint lines.
func TestApplyRoundTrip(t *testing.T) {
	t.Parallel()
	const pool = "abcdefghijkl"
	left := "a\nb\ng\n"
	for mask := 0; mask < 1<<len(pool); mask++ {
		var right strings.Builder
		for j := 0; j < len(pool); j++ {
			if mask&(1<<j) != 0 {
				right.WriteString(pool[j:j+1] + "\n")
			}
		}
		r := Lines(left, right.String())
		for _, opts := range [][]Option{nil, {WithHints()}} {
			hunks := SplitHunks(SplitLines(r.Unified("a", "b", opts...)))
			out, err := Apply(hunks, SplitLines(left))
			require.NoError(t, err, "mask %b", mask)
			require.Equal(t, right.String(), strings.Join(out, ""), "mask %b", mask)
		}
	}
}
