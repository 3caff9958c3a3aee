package diff

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type options struct {
	hints bool
}

type Option func(*options)

// WithHints adds a '?' line under every changed line that replaced exactly
// one other line, marking removed ('-'), added ('+') and changed ('^')
// characters.
func WithHints() Option {
	return func(o *options) { o.hints = true }
}

// Unified renders r as a unified diff. Nothing is rendered for an empty diff.
func (r *Result) Unified(oldName, newName string, opts ...Option) string {
	if r.Empty() {
		return ""
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", oldName, newName)
	for _, h := range r.Hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		writeLines(&sb, h.Lines, o.hints)
	}
	return sb.String()
}

// Header returns the hunk's "@@ -a,b +c,d @@" line without a newline.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", formatRange(h.OldStart, h.OldLines), formatRange(h.NewStart, h.NewLines))
}

func formatRange(start, count int) string {
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

func writeLines(sb *strings.Builder, lines []Line, hints bool) {
	for k := 0; k < len(lines); {
		if !hints || lines[k].Op != Delete {
			writeLine(sb, lines[k])
			k++
			continue
		}
		// A block of removals followed by a block of additions.
		del := k
		for k < len(lines) && lines[k].Op == Delete {
			k++
		}
		ins := k
		for k < len(lines) && lines[k].Op == Insert {
			k++
		}
		if ins-del != 1 || k-ins != 1 {
			for _, l := range lines[del:k] {
				writeLine(sb, l)
			}
			continue
		}
		old, cur := lines[del], lines[ins]
		oldMarks, newMarks := Hints(strings.TrimSuffix(old.Text, "\n"), strings.TrimSuffix(cur.Text, "\n"))
		writeLine(sb, old)
		writeHint(sb, oldMarks)
		writeLine(sb, cur)
		writeHint(sb, newMarks)
	}
}

func writeLine(sb *strings.Builder, l Line) {
	sb.WriteByte(l.Op.prefix())
	sb.WriteString(l.Text)
	if !strings.HasSuffix(l.Text, "\n") {
		sb.WriteString("\n\\ No newline at end of file\n")
	}
}

func writeHint(sb *strings.Builder, marks string) {
	if marks == "" {
		return
	}
	sb.WriteByte('?')
	sb.WriteString(marks)
	sb.WriteByte('\n')
}

// Hints returns marker lines for a line that changed from old to cur. Each
// marker sits under the character it describes, measured in display cells.
// A marker line is empty when it has nothing to mark.
func Hints(old, cur string) (oldMarks, newMarks string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, cur, false))

	var o, n strings.Builder
	for i, d := range diffs {
		w := uniseg.StringWidth(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o.WriteString(strings.Repeat(" ", w))
			n.WriteString(strings.Repeat(" ", w))
		case diffmatchpatch.DiffDelete:
			mark := "-"
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				mark = "^"
			}
			o.WriteString(strings.Repeat(mark, w))
		case diffmatchpatch.DiffInsert:
			mark := "+"
			if i > 0 && diffs[i-1].Type == diffmatchpatch.DiffDelete {
				mark = "^"
			}
			n.WriteString(strings.Repeat(mark, w))
		}
	}
	return strings.TrimRight(o.String(), " "), strings.TrimRight(n.String(), " ")
}
