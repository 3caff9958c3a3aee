package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/syntax/treesitter"
)

// Parser returns the tree-sitter parser for the configured language.
func (c *Config) Parser(logger *zap.Logger) (*treesitter.Parser, error) {
	name := c.Language
	if name == "" {
		name = DefaultLanguage
	}
	lang, ok := treesitter.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown language %q, have %v", ErrInvalid, name, treesitter.Languages())
	}
	return treesitter.New(lang, treesitter.WithLogger(logger)), nil
}

// Extensions lists the file extensions of the configured language.
func (c *Config) Extensions() []string {
	name := c.Language
	if name == "" {
		name = DefaultLanguage
	}
	lang, ok := treesitter.Lookup(name)
	if !ok {
		return nil
	}
	return lang.Extensions
}

const starter = `# cstfix rules. Each rule is one stage; stages run in order.
name: cstfix
min_version: "%s"
language: %s
rules:
  - name: print to log
    select: "call< fn=identifier args=argument_list >"
    files: "*.py"
    filter:
      - capture: fn
        equals: print
    modifier:
      - rename: log
        capture: fn
`

// Starter returns the text of a starter rule file.
func Starter() string {
	return fmt.Sprintf(starter, Version, DefaultLanguage)
}

// Init writes a starter rule file to path. An existing file is left alone.
func Init(path string) error {
	if path == "" {
		path = DefaultFile
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists", path)
		}
		return err
	}
	defer f.Close()

	_, err = f.WriteString(Starter())
	return err
}
