// Package fixture runs queries against annotated before/after text.
//
// A fixture is a block of lines, optionally indented as a whole. A line that
// is expected to change carries its expected text after a "#+" marker:
//
//	mk('')        #+ mk(esc(''))
//	mk(esc('x'))
//
// Blank lines separate independent cases. The indentation of the first line
// is removed from every line.
package fixture

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gnoverse/cstfix/diff"
	"github.com/gnoverse/cstfix/fixer"
)

// Marker separates a line's input from its expected output.
const Marker = "#+"

// DefaultFilename is the file name queries see when running a case.
const DefaultFilename = "fixture.py"

// Case is one block of a fixture.
type Case struct {
	Name     string
	Filename string
	// Line is the 1-based line of the block in the raw fixture.
	Line  int
	Input string
	Want  string
	// Err is set when the block is malformed; running the case returns it.
	Err error
}

// FormatError reports a malformed fixture line.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("fixture line %d: %s", e.Line, e.Msg)
}

// MismatchError reports a case whose output differs from what it expects.
type MismatchError struct {
	Case *Case
	Got  string
	Diff string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: output differs from expected\n%s", e.Case.Name, e.Diff)
}

// Parse splits raw into cases.
func Parse(raw string) []Case {
	return parse(raw, DefaultFilename)
}

func parse(raw, filename string) []Case {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	indent := ""
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			indent = l[:len(l)-len(strings.TrimLeft(l, " \t"))]
			break
		}
	}

	var cases []Case
	var block []string
	start := 0
	flush := func() {
		if len(block) > 0 {
			c := buildCase(block, start, indent)
			c.Name = fmt.Sprintf("%s:%d", filename, start)
			c.Filename = filename
			cases = append(cases, c)
		}
		block = nil
	}
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		if block == nil {
			start = i + 1
		}
		block = append(block, l)
	}
	flush()
	return cases
}

func buildCase(block []string, start int, indent string) Case {
	c := Case{Line: start}
	var in, want []string
	for i, l := range block {
		line := start + i
		if !strings.HasPrefix(l, indent) {
			c.Err = &FormatError{Line: line, Msg: "line is indented less than the first line"}
			return c
		}
		l = strings.TrimRight(l[len(indent):], " \t")
		before, after, found := strings.Cut(l, Marker)
		if !found {
			in = append(in, l)
			want = append(want, l)
			continue
		}
		if strings.Contains(after, Marker) {
			c.Err = &FormatError{Line: line, Msg: fmt.Sprintf("more than one %q marker", Marker)}
			return c
		}
		before = strings.TrimRight(before, " \t")
		lead := before[:len(before)-len(strings.TrimLeft(before, " \t"))]
		in = append(in, before)
		want = append(want, lead+strings.TrimLeft(after, " \t"))
	}
	c.Input = strings.Join(in, "\n") + "\n"
	c.Want = strings.Join(want, "\n") + "\n"
	return c
}

// Run executes q on the case input. It returns nil when the output matches,
// the first modifier error, a *MismatchError, or the case's *FormatError.
func Run(q *fixer.Query, c Case) error {
	if c.Err != nil {
		return c.Err
	}
	filename := c.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	res, err := q.Execute(c.Input, filename)
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return res.Errors[0]
	}

	got, want := normalize(res.Modified), normalize(c.Want)
	if got == want {
		return nil
	}
	return &MismatchError{
		Case: &c,
		Got:  got,
		Diff: diff.Lines(want, got).Unified("expected", "actual", diff.WithHints()),
	}
}

func normalize(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}

// Check runs every case of raw as a subtest.
func Check(t *testing.T, q *fixer.Query, raw string) {
	t.Helper()
	require.NoError(t, q.Err())
	cases := Parse(raw)
	require.NotEmpty(t, cases, "fixture has no cases")
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			require.NoError(t, Run(q, c))
		})
	}
}
