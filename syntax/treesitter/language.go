// Package treesitter turns tree-sitter parse trees into full-fidelity
// syntax.Tree values.
//
// Tree-sitter trees only know byte ranges. The adapter walks the parse tree in
// order and hands every byte between two tokens to the prefix of the following
// leaf, so rendering the result reproduces the input exactly. Comments are
// folded into prefixes too, and whatever follows the last token ends up in the
// prefix of a synthetic "endmarker" leaf appended to the root.
package treesitter

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/gnoverse/cstfix/syntax"
)

// EndMarker is the type of the leaf that carries trailing text.
const EndMarker = "endmarker"

// Language describes a tree-sitter grammar and how its trees are adapted.
type Language struct {
	Name       string
	Extensions []string
	// Atomic node types are turned into a single leaf holding their whole
	// text, so patterns can treat them as tokens.
	Atomic []string
	// Folded node types are treated as trivia and end up in prefixes.
	Folded []string

	ts      *sitter.Language
	once    sync.Once
	grammar *syntax.Grammar
}

// Grammar returns the grammar derived from the tree-sitter symbol table.
func (l *Language) Grammar() *syntax.Grammar {
	l.once.Do(func() {
		types := []string{EndMarker}
		for i := uint32(0); i < l.ts.SymbolCount(); i++ {
			types = append(types, l.ts.SymbolName(sitter.Symbol(i)))
		}
		l.grammar = syntax.NewGrammar(l.Name, types...)
	})
	return l.grammar
}

func (l *Language) isAtomic(typ string) bool { return slices.Contains(l.Atomic, typ) }
func (l *Language) isFolded(typ string) bool { return slices.Contains(l.Folded, typ) }

var (
	registryMu sync.RWMutex
	registry   = map[string]*Language{}
)

// Register makes a language available to Lookup and ForFile.
func Register(l *Language) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(l.Name)] = l
}

// Lookup finds a registered language by name, case-insensitively.
func Lookup(name string) (*Language, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[strings.ToLower(name)]
	return l, ok
}

// ForFile finds the registered language handling filename's extension.
func ForFile(filename string) (*Language, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, false
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, l := range registry {
		if slices.Contains(l.Extensions, ext) {
			return l, true
		}
	}
	return nil, false
}

// Languages returns the names of all registered languages, sorted.
func Languages() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for _, l := range registry {
		names = append(names, l.Name)
	}
	slices.Sort(names)
	return names
}

var (
	Python = &Language{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		Atomic:     []string{"string"},
		Folded:     []string{"comment"},
		ts:         python.GetLanguage(),
	}
	Go = &Language{
		Name:       "go",
		Extensions: []string{".go", ".gno"},
		Atomic:     []string{"interpreted_string_literal", "raw_string_literal", "rune_literal"},
		Folded:     []string{"comment"},
		ts:         golang.GetLanguage(),
	}
	JavaScript = &Language{
		Name:       "javascript",
		Extensions: []string{".js", ".mjs", ".cjs"},
		Atomic:     []string{"string", "template_string", "regex"},
		Folded:     []string{"comment"},
		ts:         javascript.GetLanguage(),
	}
)

func init() {
	Register(Python)
	Register(Go)
	Register(JavaScript)
}
