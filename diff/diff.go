// Package diff computes line diffs between two versions of a file, renders
// them as unified diffs and applies unified hunks back to text.
package diff

import (
	"strings"
)

// Context is the number of unchanged lines kept around each change.
const Context = 3

// maxCells bounds the size of the table used to align the changed middle of
// two texts. Larger middles are reported as one block of removals followed
// by one block of additions.
const maxCells = 1 << 24

type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) prefix() byte {
	switch o {
	case Delete:
		return '-'
	case Insert:
		return '+'
	default:
		return ' '
	}
}

// Line is one line of a hunk. Text keeps its line ending, except possibly
// for the last line of a file.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a group of changes with the context around them. Starts are
// 1-based; a zero count starts at the line before the hunk.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// Result is the line diff between two texts.
type Result struct {
	Hunks []Hunk
}

// Empty reports whether the texts were identical.
func (r *Result) Empty() bool { return r == nil || len(r.Hunks) == 0 }

// Stats returns the number of added and removed lines.
func (r *Result) Stats() (added, removed int) {
	if r == nil {
		return 0, 0
	}
	for _, h := range r.Hunks {
		for _, l := range h.Lines {
			switch l.Op {
			case Insert:
				added++
			case Delete:
				removed++
			}
		}
	}
	return added, removed
}

// SplitLines splits s after every newline. The last line has no newline when
// s does not end with one.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Lines diffs before and after line by line.
func Lines(before, after string) *Result {
	a, b := SplitLines(before), SplitLines(after)
	return &Result{Hunks: group(align(a, b), Context)}
}

// align returns the edit script turning a into b.
func align(a, b []string) []Line {
	pre := 0
	for pre < len(a) && pre < len(b) && a[pre] == b[pre] {
		pre++
	}
	suf := 0
	for suf < len(a)-pre && suf < len(b)-pre && a[len(a)-1-suf] == b[len(b)-1-suf] {
		suf++
	}

	script := make([]Line, 0, len(a)+len(b)-pre-suf)
	for _, l := range a[:pre] {
		script = append(script, Line{Equal, l})
	}
	script = append(script, lcs(a[pre:len(a)-suf], b[pre:len(b)-suf])...)
	for _, l := range a[len(a)-suf:] {
		script = append(script, Line{Equal, l})
	}
	return script
}

// lcs aligns a and b on a longest common subsequence. Removals come before
// additions within a change.
func lcs(a, b []string) []Line {
	n, m := len(a), len(b)
	var out []Line
	if n == 0 || m == 0 || n*m > maxCells {
		for _, l := range a {
			out = append(out, Line{Delete, l})
		}
		for _, l := range b {
			out = append(out, Line{Insert, l})
		}
		return out
	}

	// t[i][j] is the LCS length of a[i:] and b[j:].
	t := make([][]int32, n+1)
	for i := range t {
		t[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				t[i][j] = t[i+1][j+1] + 1
			} else {
				t[i][j] = max(t[i+1][j], t[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, Line{Equal, a[i]})
			i++
			j++
		case t[i+1][j] >= t[i][j+1]:
			out = append(out, Line{Delete, a[i]})
			i++
		default:
			out = append(out, Line{Insert, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, Line{Delete, a[i]})
	}
	for ; j < m; j++ {
		out = append(out, Line{Insert, b[j]})
	}
	return out
}

// group cuts an edit script into hunks with ctx lines of context.
func group(script []Line, ctx int) []Hunk {
	var hunks []Hunk
	// oldAt and newAt are the 0-based line numbers of script[k].
	oldAt := make([]int, len(script)+1)
	newAt := make([]int, len(script)+1)
	for k, l := range script {
		oldAt[k+1], newAt[k+1] = oldAt[k], newAt[k]
		if l.Op != Insert {
			oldAt[k+1]++
		}
		if l.Op != Delete {
			newAt[k+1]++
		}
	}

	k := 0
	for k < len(script) {
		if script[k].Op == Equal {
			k++
			continue
		}
		start := max(0, k-ctx)
		end := k
		// Extend over changes separated by at most 2*ctx equal lines.
		for end < len(script) {
			if script[end].Op != Equal {
				end++
				continue
			}
			run := end
			for run < len(script) && script[run].Op == Equal {
				run++
			}
			if run == len(script) || run-end > 2*ctx {
				end = min(end+ctx, len(script))
				break
			}
			end = run
		}

		h := Hunk{
			OldStart: oldAt[start] + 1,
			NewStart: newAt[start] + 1,
			OldLines: oldAt[end] - oldAt[start],
			NewLines: newAt[end] - newAt[start],
			Lines:    append([]Line(nil), script[start:end]...),
		}
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		k = end
	}
	return hunks
}
