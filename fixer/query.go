// Package fixer runs structural queries over syntax trees: it matches compiled
// patterns, hands every match to caller-supplied modifiers, applies the edits
// they record and renders the result back to source text.
package fixer

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/diff"
	"github.com/gnoverse/cstfix/fixer/pattern"
	"github.com/gnoverse/cstfix/syntax"
)

// Parser turns source text into a full-fidelity syntax tree.
type Parser interface {
	Grammar() *syntax.Grammar
	Parse(src, filename string) (*syntax.Tree, error)
}

// Result describes what Execute did to one file.
type Result struct {
	Filename string
	Original string
	Modified string
	Diff     *diff.Result
	Errors   []*ModifierError
	Warnings []Warning
	Matches  int
}

// Changed reports whether the file content changed.
func (r *Result) Changed() bool { return r.Original != r.Modified }

// Query is an ordered list of stages built with a fluent API. Builder errors
// are kept and reported by Err and Execute. A Query must not be modified
// while it is executing; executing the same Query concurrently is fine.
type Query struct {
	parser   Parser
	compiler *pattern.Compiler
	stages   []*stage
	strict   bool
	logger   *zap.Logger
	err      error
}

type Option func(*Query)

// WithStrict makes the first modifier failure abort the file.
func WithStrict(strict bool) Option {
	return func(q *Query) { q.strict = strict }
}

func WithLogger(l *zap.Logger) Option {
	return func(q *Query) { q.logger = l }
}

func NewQuery(p Parser, opts ...Option) *Query {
	q := &Query{
		parser:   p,
		compiler: pattern.NewCompiler(p.Grammar()),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

func (q *Query) current(method string) *stage {
	if len(q.stages) == 0 {
		q.fail(fmt.Errorf("fixer: %s called before Select", method))
		return nil
	}
	return q.stages[len(q.stages)-1]
}

// Select compiles text and starts a new stage with it.
func (q *Query) Select(text string) *Query {
	p, err := q.compiler.Compile(text)
	if err != nil {
		return q.fail(fmt.Errorf("stage %d: %w", len(q.stages), err))
	}
	return q.SelectPattern(p)
}

// SelectPattern starts a new stage with an already compiled pattern.
func (q *Query) SelectPattern(p *pattern.Pattern) *Query {
	if p == nil {
		return q.fail(errors.New("fixer: SelectPattern called with a nil pattern"))
	}
	q.stages = append(q.stages, &stage{pattern: p})
	return q
}

// Filter adds a filter to the current stage. All filters must accept a match.
func (q *Query) Filter(f Filter) *Query {
	if st := q.current("Filter"); st != nil {
		st.filters = append(st.filters, f)
	}
	return q
}

// Modify adds a modifier to the current stage. Modifiers run in the order
// they were added.
func (q *Query) Modify(m Modifier) *Query {
	if st := q.current("Modify"); st != nil {
		st.modifiers = append(st.modifiers, m)
	}
	return q
}

// InFiles restricts the current stage to files matching a doublestar glob.
func (q *Query) InFiles(glob string) *Query {
	if !doublestar.ValidatePattern(glob) {
		return q.fail(fmt.Errorf("fixer: invalid file glob %q", glob))
	}
	if st := q.current("InFiles"); st != nil {
		st.glob = glob
	}
	return q
}

// Order sets the traversal order of the current stage.
func (q *Query) Order(o Order) *Query {
	if st := q.current("Order"); st != nil {
		st.order = o
	}
	return q
}

// Err returns the first error met while building the query.
func (q *Query) Err() error { return q.err }

// Len returns the number of stages.
func (q *Query) Len() int { return len(q.stages) }

// Strict reports whether the query aborts a file on the first modifier failure.
func (q *Query) Strict() bool { return q.strict }

// Execute runs every stage over text. Stages run in order; each one sees the
// output of the previous one, parsed afresh.
func (q *Query) Execute(text, filename string) (*Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	res := &Result{Filename: filename, Original: text}

	current := text
	var tree *syntax.Tree
	for i, st := range q.stages {
		if !st.appliesTo(filename) {
			q.logger.Debug("stage skipped", zap.String("file", filename), zap.Int("stage", i))
			continue
		}
		if tree == nil {
			t, err := q.parser.Parse(current, filename)
			if err != nil {
				if i > 0 && current != text {
					return nil, fmt.Errorf("reparse %s before stage %d: %w", filename, i, err)
				}
				return nil, err
			}
			if err := t.Verify(); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filename, err)
			}
			tree = t
		}

		applied, err := q.runStage(i, st, tree, filename, res)
		if err != nil {
			return nil, err
		}
		if applied == 0 {
			continue
		}
		if err := tree.Verify(); err != nil {
			return nil, fmt.Errorf("stage %d on %s: %w", i, filename, err)
		}
		current = tree.String()
		tree = nil
	}

	res.Modified = current
	res.Diff = diff.Lines(text, current)
	return res, nil
}
