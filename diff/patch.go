package diff

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedHunk = errors.New("malformed hunk")

var headerRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// HunkError reports a hunk line that does not agree with the text it is
// applied to.
type HunkError struct {
	Line int
	Want string
	Got  string
}

func (e *HunkError) Error() string {
	return fmt.Sprintf("line %d: hunk expects %q, found %q", e.Line, e.Want, e.Got)
}

// SplitHunks splits the lines of a unified diff into hunks, each starting
// with its "@@" line. File headers before the first hunk are dropped.
func SplitHunks(lines []string) [][]string {
	var hunks [][]string
	var cur []string
	for _, l := range lines {
		if strings.HasPrefix(l, "@@") {
			if cur != nil {
				hunks = append(hunks, cur)
			}
			cur = []string{l}
			continue
		}
		if cur != nil {
			cur = append(cur, l)
		}
	}
	if cur != nil {
		hunks = append(hunks, cur)
	}
	return hunks
}

func parseHeader(line string) (oldStart, oldLines, newLines int, err error) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: bad position line %q", ErrMalformedHunk, line)
	}
	count := func(s string) int {
		if s == "" {
			return 1
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	oldStart, _ = strconv.Atoi(m[1])
	return oldStart, count(m[2]), count(m[4]), nil
}

// Apply applies hunks, in order, to lines and returns the new lines. Hunks
// may be left out; the positions of the remaining ones are adjusted by the
// size change of the hunks applied before them. '?' hint lines are ignored;
// a "\ No newline at end of file" marker strips the newline of the line
// before it.
func Apply(hunks [][]string, lines []string) ([]string, error) {
	work := append([]string(nil), lines...)
	offset := 0
	for _, h := range hunks {
		if len(h) == 0 {
			continue
		}
		oldStart, oldLines, newLines, err := parseHeader(h[0])
		if err != nil {
			return nil, err
		}
		cur := oldStart + offset - 1
		if oldLines == 0 {
			cur++
		}
		body := h[1:]
		for i, l := range body {
			if l == "" || l == "\n" {
				return nil, fmt.Errorf("%w: empty line in hunk %q", ErrMalformedHunk, h[0])
			}
			text := l[1:]
			if i+1 < len(body) && strings.HasPrefix(body[i+1], "\\") {
				text = strings.TrimSuffix(text, "\n")
			}
			switch l[0] {
			case '-', ' ':
				if cur >= len(work) || work[cur] != text {
					got := ""
					if cur < len(work) {
						got = work[cur]
					}
					return nil, &HunkError{Line: cur + 1, Want: text, Got: got}
				}
				if l[0] == '-' {
					work = append(work[:cur], work[cur+1:]...)
				} else {
					cur++
				}
			case '+':
				work = append(work, "")
				copy(work[cur+1:], work[cur:])
				work[cur] = text
				cur++
			case '?', '\\':
			default:
				return nil, fmt.Errorf("%w: unknown line %q", ErrMalformedHunk, l)
			}
		}
		offset += newLines - oldLines
	}
	return work, nil
}
