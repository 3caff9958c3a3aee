// Package config loads rule files and turns them into queries.
//
// A rule file lists stages in order. Each rule selects nodes with a pattern,
// may narrow the matches with capture filters and names the built-in
// modifiers to run on them:
//
//	name: escapes
//	language: python
//	rules:
//	  - name: wrap literals
//	    select: "trailer< '(' str=STRING ')' >"
//	    files: "**/*.py"
//	    filter:
//	      - capture: str
//	        regex: "^'"
//	    modifier:
//	      - rewrite: "(esc(:[str]))"
//
// Files ending in .toml are read as TOML with the same keys.
package config

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/gnoverse/cstfix/fixer"
	"github.com/gnoverse/cstfix/syntax"
)

// Version is the version of the tool, compared against min_version.
var Version = "0.1.0"

const (
	DefaultFile     = ".cstfix.yaml"
	DefaultLanguage = "python"
)

var ErrInvalid = errors.New("invalid config")

// Config is a rule file.
type Config struct {
	Name       string   `yaml:"name" toml:"name"`
	MinVersion string   `yaml:"min_version,omitempty" toml:"min_version,omitempty"`
	Language   string   `yaml:"language,omitempty" toml:"language,omitempty"`
	Strict     bool     `yaml:"strict,omitempty" toml:"strict,omitempty"`
	Include    []string `yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Rules      []Rule   `yaml:"rules" toml:"rules"`
}

// Rule becomes one stage of the query.
type Rule struct {
	Name     string     `yaml:"name" toml:"name"`
	Select   string     `yaml:"select" toml:"select"`
	Files    string     `yaml:"files,omitempty" toml:"files,omitempty"`
	Order    string     `yaml:"order,omitempty" toml:"order,omitempty"`
	Filter   []Filter   `yaml:"filter,omitempty" toml:"filter,omitempty"`
	Modifier []Modifier `yaml:"modifier,omitempty" toml:"modifier,omitempty"`
}

// Filter keeps matches whose capture text equals a value or matches a
// regular expression. Not inverts the result.
type Filter struct {
	Capture string `yaml:"capture" toml:"capture"`
	Equals  string `yaml:"equals,omitempty" toml:"equals,omitempty"`
	Regex   string `yaml:"regex,omitempty" toml:"regex,omitempty"`
	Not     bool   `yaml:"not,omitempty" toml:"not,omitempty"`
}

// Modifier names one built-in modifier: rewrite the matched node from a
// template, rename the leaves of a capture, or remove a capture (the matched
// node when Capture is empty).
type Modifier struct {
	Rewrite string `yaml:"rewrite,omitempty" toml:"rewrite,omitempty"`
	Rename  string `yaml:"rename,omitempty" toml:"rename,omitempty"`
	Remove  bool   `yaml:"remove,omitempty" toml:"remove,omitempty"`
	Capture string `yaml:"capture,omitempty" toml:"capture,omitempty"`
}

// Load reads a rule file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = ParseTOML(data)
	} else {
		cfg, err = ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML decodes and validates a YAML rule file. Unknown keys are errors.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseTOML decodes and validates a TOML rule file. Unknown keys are errors.
func ParseTOML(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalid, keys)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the version constraint and every rule.
func (c *Config) Validate() error {
	if c.MinVersion != "" {
		want, err := semver.NewVersion(c.MinVersion)
		if err != nil {
			return fmt.Errorf("%w: min_version %q: %w", ErrInvalid, c.MinVersion, err)
		}
		have, err := semver.NewVersion(Version)
		if err != nil {
			return fmt.Errorf("tool version %q: %w", Version, err)
		}
		if have.LessThan(want) {
			return fmt.Errorf("%w: rules need version %s or later, this is %s", ErrInvalid, want, have)
		}
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: no rules", ErrInvalid)
	}
	for i, r := range c.Rules {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%w: rule %d (%s): %w", ErrInvalid, i, r.Name, err)
		}
	}
	return nil
}

// Key identifies the rule set and tool version, for result caching.
func (c *Config) Key() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", md5.Sum(append([]byte(Version+"\n"), data...)))
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Select) == "" {
		return errors.New("select is empty")
	}
	if _, err := parseOrder(r.Order); err != nil {
		return err
	}
	for _, f := range r.Filter {
		if f.Capture == "" {
			return errors.New("filter without capture")
		}
		if (f.Equals == "") == (f.Regex == "") {
			return fmt.Errorf("filter on %q needs exactly one of equals and regex", f.Capture)
		}
	}
	for _, m := range r.Modifier {
		set := 0
		for _, ok := range []bool{m.Rewrite != "", m.Rename != "", m.Remove} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return errors.New("modifier needs exactly one of rewrite, rename and remove")
		}
		if m.Rename != "" && m.Capture == "" {
			return errors.New("rename needs a capture")
		}
	}
	return nil
}

func parseOrder(s string) (fixer.Order, error) {
	switch strings.ToLower(s) {
	case "", "pre":
		return fixer.PreOrder, nil
	case "post":
		return fixer.PostOrder, nil
	}
	return 0, fmt.Errorf("unknown order %q", s)
}

// Build turns the rules into a query for p, one stage per rule.
func (c *Config) Build(p fixer.Parser, opts ...fixer.Option) (*fixer.Query, error) {
	if c.Strict {
		opts = append([]fixer.Option{fixer.WithStrict(true)}, opts...)
	}
	q := fixer.NewQuery(p, opts...)
	for i, r := range c.Rules {
		if err := r.addTo(q); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Name, err)
		}
		if err := q.Err(); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Name, err)
		}
	}
	return q, nil
}

func (r Rule) addTo(q *fixer.Query) error {
	q.Select(r.Select)
	if r.Files != "" {
		q.InFiles(r.Files)
	}
	order, err := parseOrder(r.Order)
	if err != nil {
		return err
	}
	q.Order(order)

	for _, f := range r.Filter {
		filter, err := f.build()
		if err != nil {
			return err
		}
		q.Filter(filter)
	}
	for _, m := range r.Modifier {
		mod, err := m.build()
		if err != nil {
			return err
		}
		q.Modify(mod)
	}
	return nil
}

func (f Filter) build() (fixer.Filter, error) {
	var filter fixer.Filter
	if f.Regex != "" {
		re, err := regexp.Compile(f.Regex)
		if err != nil {
			return nil, fmt.Errorf("filter on %q: %w", f.Capture, err)
		}
		filter = fixer.CaptureMatches(f.Capture, re)
	} else {
		filter = fixer.CaptureEquals(f.Capture, f.Equals)
	}
	if !f.Not {
		return filter, nil
	}
	return func(n syntax.Node, c fixer.Captures) bool { return !filter(n, c) }, nil
}

func (m Modifier) build() (fixer.Modifier, error) {
	switch {
	case m.Rewrite != "":
		t, err := fixer.ParseTemplate(m.Rewrite)
		if err != nil {
			return nil, err
		}
		return fixer.Rewrite(t), nil
	case m.Rename != "":
		return fixer.Rename(m.Capture, m.Rename), nil
	default:
		return fixer.Remove(m.Capture), nil
	}
}
