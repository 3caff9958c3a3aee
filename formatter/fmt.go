// Package formatter renders query results for terminals: problem reports
// with source snippets, colored unified diffs and tree dumps.
package formatter

import (
	"fmt"
	"strings"

	"github.com/gnoverse/cstfix/diff"
	"github.com/gnoverse/cstfix/fixer"
)

// FormatResult renders the problems of res followed by its diff.
func FormatResult(res *fixer.Result) string {
	var sb strings.Builder
	sb.WriteString(FormatProblems(res))
	sb.WriteString(FormatDiff(res))
	return sb.String()
}

// FormatDiff renders the diff of res with "?" hint lines, coloring each line
// by its prefix. Unchanged results render as the empty string.
func FormatDiff(res *fixer.Result) string {
	if res.Diff.Empty() {
		return ""
	}
	text := res.Diff.Unified(res.Filename, res.Filename, diff.WithHints())
	var sb strings.Builder
	for _, line := range diff.SplitLines(text) {
		sb.WriteString(colorLine(line))
	}
	return sb.String()
}

func colorLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return fileStyle.Sprint(line)
	case strings.HasPrefix(line, "@@"):
		return lineStyle.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return removeStyle.Sprint(line)
	case strings.HasPrefix(line, "+"):
		return addStyle.Sprint(line)
	case strings.HasPrefix(line, "?"):
		return hintStyle.Sprint(line)
	default:
		return line
	}
}

// Summary describes a batch of results in one line.
func Summary(results []*fixer.Result) string {
	var files, changed, matches, errs, warns, added, removed int
	for _, res := range results {
		files++
		matches += res.Matches
		errs += len(res.Errors)
		warns += len(res.Warnings)
		if res.Changed() {
			changed++
			a, r := res.Diff.Stats()
			added += a
			removed += r
		}
	}
	return fmt.Sprintf("%d %s checked, %d changed (+%d -%d), %d %s, %d %s, %d %s\n",
		files, plural(files, "file"), changed, added, removed,
		matches, plural(matches, "match"), errs, plural(errs, "error"), warns, plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	if strings.HasSuffix(word, "ch") {
		return word + "es"
	}
	return word + "s"
}
