package fixer

import (
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/syntax"
)

var errNotLast = errors.New("only the last modifier of a stage may return a replacement")

// runStage matches one stage against tree, runs its modifiers on every match
// and applies the committed edits in one pass. It returns how many edits
// were applied.
func (q *Query) runStage(idx int, st *stage, tree *syntax.Tree, filename string, res *Result) (int, error) {
	warn := func(w Warning) {
		w.Filename, w.Stage = filename, idx
		q.logger.Warn(w.Kind.String(), zap.String("file", filename), zap.Int("line", w.Line), zap.String("detail", w.Message))
		res.Warnings = append(res.Warnings, w)
	}

	var pending []Edit
	matches := 0
	ignored := ignoredLines(tree)
	for node, caps := range FindAll(st.pattern, tree.Root(), st.order) {
		if ignored[node.Line()] {
			q.logger.Debug("match ignored", zap.String("file", filename), zap.Int("line", node.Line()))
			continue
		}
		m := Match{Node: node, Captures: caps, Filename: filename}
		if !st.accepts(m) {
			continue
		}
		matches++
		edits, merr := q.runMatch(idx, st, tree, m, warn)
		if merr != nil {
			q.logger.Warn("modifier failed",
				zap.String("file", filename),
				zap.Int("line", merr.Line),
				zap.Int("stage", idx),
				zap.Error(merr.Err),
			)
			if q.strict {
				return 0, fmt.Errorf("%w: %w", ErrStrict, merr)
			}
			res.Errors = append(res.Errors, merr)
			continue
		}
		pending = append(pending, edits...)
	}
	res.Matches += matches

	applied := apply(tree, pending, warn)
	q.logger.Debug("stage done",
		zap.String("file", filename),
		zap.Int("stage", idx),
		zap.Int("matches", matches),
		zap.Int("edits", applied),
	)
	return applied, nil
}

// runMatch runs the stage's modifiers on one match and returns the edits to
// commit. Nothing is returned when any modifier fails.
func (q *Query) runMatch(idx int, st *stage, tree *syntax.Tree, m Match, warn func(Warning)) ([]Edit, *ModifierError) {
	mc := newContext(tree, m.Filename, q.logger)
	fail := func(j int, err error) *ModifierError {
		return &ModifierError{
			Filename: m.Filename,
			Line:     m.Node.Line(),
			NodeType: m.Node.Type(),
			Stage:    idx,
			Modifier: j,
			Err:      err,
		}
	}

	var repl syntax.Node
	for j, mod := range st.modifiers {
		out, recovered, stack := callModifier(mod, mc, m)
		if recovered != nil {
			merr := fail(j, fmt.Errorf("panic: %v", recovered))
			merr.Panic, merr.Stack = recovered, stack
			return nil, merr
		}
		if err := out.Err(); err != nil {
			return nil, fail(j, err)
		}
		n, ok := out.Replacement()
		if !ok || n == m.Node {
			continue
		}
		if j != len(st.modifiers)-1 {
			return nil, fail(j, errNotLast)
		}
		repl = n
	}
	if !repl.Valid() {
		return mc.edits, nil
	}

	// The replacement wins over edits made inside the matched subtree.
	kept := mc.edits[:0]
	dropped := 0
	for _, e := range mc.edits {
		inside := m.Node.Contains(e.Target)
		if e.Target == m.Node && e.Kind != EditReplace && e.Kind != EditRemove {
			inside = false
		}
		if inside {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	mc.edits = kept
	if dropped > 0 {
		warn(Warning{
			Kind:    MatchAmbiguity,
			Line:    m.Node.Line(),
			Message: fmt.Sprintf("returned replacement for %s overrides %d edit(s) inside it", m.Node.Type(), dropped),
		})
	}
	if err := mc.Replace(m.Node, repl); err != nil {
		return nil, fail(len(st.modifiers)-1, err)
	}
	return mc.edits, nil
}

func callModifier(mod Modifier, mc *Context, m Match) (out Outcome, recovered any, stack string) {
	defer func() {
		if r := recover(); r != nil {
			recovered, stack = r, string(debug.Stack())
		}
	}()
	return mod(mc, m), nil, ""
}
