package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnoverse/cstfix/fixer"
)

const tabWidth = 8

// rule set
const (
	RuleModifierError  = "modifier-error"
	RuleMatchAmbiguity = "match-ambiguity"
	RuleEditConflict   = "edit-conflict"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	addStyle     = color.New(color.FgGreen)
	removeStyle  = color.New(color.FgRed)
	hintStyle    = color.New(color.FgHiYellow)
)

// Problem is a modifier error or warning attached to a source line.
type Problem struct {
	Severity string
	Rule     string
	Filename string
	Line     int
	Message  string
}

// Problems lists the errors and warnings of a result, errors first.
func Problems(res *fixer.Result) []Problem {
	var out []Problem
	for _, e := range res.Errors {
		msg := fmt.Sprintf("stage %d, modifier %d on %s: %v", e.Stage, e.Modifier, e.NodeType, e.Err)
		out = append(out, Problem{Severity: "error", Rule: RuleModifierError, Filename: e.Filename, Line: e.Line, Message: msg})
	}
	for _, w := range res.Warnings {
		rule := RuleEditConflict
		if w.Kind == fixer.MatchAmbiguity {
			rule = RuleMatchAmbiguity
		}
		out = append(out, Problem{Severity: "warning", Rule: rule, Filename: w.Filename, Line: w.Line, Message: w.Message})
	}
	return out
}

const problemTemplate = `{{header .Severity .Rule .Padding .Filename .Line}}
{{- if .Snippet }}
{{snippet .Snippet .Line .MaxLineNumWidth .Padding}}
{{underline .Snippet .Padding}}
{{- end }}
{{message .Message .Padding}}
`

var problemTmpl = template.Must(template.New("problem").Funcs(template.FuncMap{
	"header":    header,
	"snippet":   codeSnippet,
	"underline": underline,
	"message":   message,
}).Parse(problemTemplate))

type problemData struct {
	Severity        string
	Rule            string
	Filename        string
	Line            int
	Message         string
	Snippet         string
	Padding         string
	MaxLineNumWidth int
}

// FormatProblems renders every problem of res with the offending line taken
// from the original source.
func FormatProblems(res *fixer.Result) string {
	lines := strings.Split(res.Original, "\n")
	var sb strings.Builder
	for _, p := range Problems(res) {
		sb.WriteString(buildProblem(p, lines))
	}
	return sb.String()
}

func buildProblem(p Problem, lines []string) string {
	width := calculateMaxLineNumWidth(p.Line)
	data := problemData{
		Severity:        p.Severity,
		Rule:            p.Rule,
		Filename:        p.Filename,
		Line:            p.Line,
		Message:         p.Message,
		Padding:         strings.Repeat(" ", width+1),
		MaxLineNumWidth: width,
	}
	if p.Line > 0 && p.Line <= len(lines) {
		data.Snippet = expandTabs(lines[p.Line-1])
	}

	var buf bytes.Buffer
	if err := problemTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting problem: %v\n", err)
	}
	buf.WriteByte('\n')
	return buf.String()
}

// utils functions used in the text template

func header(severity, rule, padding, filename string, line int) string {
	var s string
	if severity == "error" {
		s = errorStyle.Sprint("error: ")
	} else {
		s = warningStyle.Sprint("warning: ")
	}
	s += ruleStyle.Sprintf("%s\n", rule)
	s += lineStyle.Sprintf("%s--> ", padding[1:])
	if line > 0 {
		return s + fileStyle.Sprintf("%s:%d", filename, line)
	}
	return s + fileStyle.Sprint(filename)
}

func codeSnippet(line string, lineNum, width int, padding string) string {
	return lineStyle.Sprintf("%s|\n", padding) + lineStyle.Sprintf("%*d | ", width, lineNum) + line
}

func underline(line, padding string) string {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	start := len(line) - len(trimmed)
	length := len(strings.TrimRightFunc(trimmed, unicode.IsSpace))
	if length == 0 {
		return lineStyle.Sprintf("%s|", padding)
	}
	return lineStyle.Sprintf("%s| ", padding) + strings.Repeat(" ", start) + messageStyle.Sprint(strings.Repeat("~", length))
}

func message(msg, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprint(msg)
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(line string) string {
	var sb strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(ch)
		col++
	}
	return sb.String()
}

// FormatError renders a file-level failure such as a parse error or a strict
// mode abort.
func FormatError(filename string, err error) string {
	var merr *fixer.ModifierError
	if errors.As(err, &merr) {
		return errorStyle.Sprint("error: ") + ruleStyle.Sprintln(RuleModifierError) +
			lineStyle.Sprint(" --> ") + fileStyle.Sprintf("%s:%d\n", merr.Filename, merr.Line) +
			lineStyle.Sprint("  = ") + messageStyle.Sprintf("%v\n\n", err)
	}
	return errorStyle.Sprint("error: ") + fileStyle.Sprint(filename) + ": " + messageStyle.Sprintf("%v\n\n", err)
}
