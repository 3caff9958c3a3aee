package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/syntax/syntaxtest"
)

const yamlRules = `
name: escapes
rules:
  - name: wrap literals
    select: "trailer< '(' str=STRING ')' >"
    filter:
      - capture: str
        regex: "^'"
    modifier:
      - rewrite: "(esc(:[str]))"
  - name: rename helper
    select: "call< fn=NAME any* >"
    order: post
    filter:
      - capture: fn
        equals: old
    modifier:
      - rename: new
        capture: fn
`

const tomlRules = `
name = "escapes"

[[rules]]
name = "wrap literals"
select = "trailer< '(' str=STRING ')' >"

[[rules.filter]]
capture = "str"
regex = "^'"

[[rules.modifier]]
rewrite = "(esc(:[str]))"

[[rules]]
name = "rename helper"
select = "call< fn=NAME any* >"
order = "post"

[[rules.filter]]
capture = "fn"
equals = "old"

[[rules.modifier]]
rename = "new"
capture = "fn"
`

func TestParse(t *testing.T) {
	t.Parallel()

	want := &Config{
		Name: "escapes",
		Rules: []Rule{
			{
				Name:     "wrap literals",
				Select:   "trailer< '(' str=STRING ')' >",
				Filter:   []Filter{{Capture: "str", Regex: "^'"}},
				Modifier: []Modifier{{Rewrite: "(esc(:[str]))"}},
			},
			{
				Name:     "rename helper",
				Select:   "call< fn=NAME any* >",
				Order:    "post",
				Filter:   []Filter{{Capture: "fn", Equals: "old"}},
				Modifier: []Modifier{{Rename: "new", Capture: "fn"}},
			},
		},
	}

	fromYAML, err := ParseYAML([]byte(yamlRules))
	require.NoError(t, err)
	assert.Equal(t, want, fromYAML)

	fromTOML, err := ParseTOML([]byte(tomlRules))
	require.NoError(t, err)
	assert.Equal(t, want, fromTOML)

	assert.Equal(t, fromYAML.Key(), fromTOML.Key())
	fromTOML.Rules[0].Files = "*.pyi"
	assert.NotEqual(t, fromYAML.Key(), fromTOML.Key())
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no rules",
			yaml:    "name: x\n",
			wantErr: "no rules",
		},
		{
			name:    "unknown key",
			yaml:    "name: x\nrulez: []\n",
			wantErr: "rulez",
		},
		{
			name:    "empty select",
			yaml:    "rules:\n  - name: a\n    select: ' '\n",
			wantErr: "select is empty",
		},
		{
			name:    "bad order",
			yaml:    "rules:\n  - select: NAME\n    order: sideways\n",
			wantErr: `unknown order "sideways"`,
		},
		{
			name:    "filter with both tests",
			yaml:    "rules:\n  - select: NAME\n    filter:\n      - capture: a\n        equals: x\n        regex: y\n",
			wantErr: "exactly one of equals and regex",
		},
		{
			name:    "modifier with two actions",
			yaml:    "rules:\n  - select: NAME\n    modifier:\n      - rewrite: x\n        remove: true\n",
			wantErr: "exactly one of rewrite, rename and remove",
		},
		{
			name:    "rename without capture",
			yaml:    "rules:\n  - select: NAME\n    modifier:\n      - rename: x\n",
			wantErr: "rename needs a capture",
		},
		{
			name:    "newer tool required",
			yaml:    "min_version: 99.0.0\nrules:\n  - select: NAME\n",
			wantErr: "rules need version 99.0.0 or later",
		},
		{
			name:    "bad version",
			yaml:    "min_version: soon\nrules:\n  - select: NAME\n",
			wantErr: "min_version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := ParseYAML([]byte(tt.yaml))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := ParseTOML([]byte("name = \"x\"\nextra = 1\n[[rules]]\nselect = \"NAME\"\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	cfg, err := ParseYAML([]byte("min_version: 0.0.1\nrules:\n  - select: NAME\n"))
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 1)
}

func TestBuild(t *testing.T) {
	t.Parallel()
	cfg, err := ParseYAML([]byte(yamlRules))
	require.NoError(t, err)

	q, err := cfg.Build(syntaxtest.Parser{})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Len())
	assert.False(t, q.Strict())

	res, err := q.Execute("x = old('a', \"b\")\nold(\"c\")\n", "a.py")
	require.NoError(t, err)
	assert.Equal(t, "x = new('a', \"b\")\nnew(\"c\")\n", res.Modified)

	res, err = q.Execute("f('a')\nf(\"b\")\n", "a.py")
	require.NoError(t, err)
	assert.Equal(t, "f(esc('a'))\nf(\"b\")\n", res.Modified)

	t.Run("strict", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Strict: true, Rules: []Rule{{Select: "NAME"}}}
		q, err := cfg.Build(syntaxtest.Parser{})
		require.NoError(t, err)
		assert.True(t, q.Strict())
	})

	t.Run("negated filter and remove", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Rules: []Rule{{
			Select:   "simple_stmt< call< fn=NAME any* > any* >",
			Filter:   []Filter{{Capture: "fn", Equals: "keep", Not: true}},
			Modifier: []Modifier{{Remove: true}},
		}}}
		q, err := cfg.Build(syntaxtest.Parser{})
		require.NoError(t, err)
		res, err := q.Execute("drop()\nkeep()\n", "a.py")
		require.NoError(t, err)
		assert.Equal(t, "keep()\n", res.Modified)
	})

	t.Run("bad pattern", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Rules: []Rule{{Name: "broken", Select: "call< "}}}
		_, err := cfg.Build(syntaxtest.Parser{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("bad template", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Rules: []Rule{{Select: "NAME", Modifier: []Modifier{{Rewrite: ":[x"}}}}}
		_, err := cfg.Build(syntaxtest.Parser{})
		assert.Error(t, err)
	})

	t.Run("bad regex", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Rules: []Rule{{Select: "NAME", Filter: []Filter{{Capture: "n", Regex: "("}}}}}
		_, err := cfg.Build(syntaxtest.Parser{})
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlRules), 0o644))
	tomlPath := filepath.Join(dir, "rules.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlRules), 0o644))

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)
	fromTOML, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromTOML)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("rules = ["), 0o644))
	_, err = Load(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken)
}

func TestInit(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Init(path))
	assert.Error(t, Init(path), "existing file is kept")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Version, cfg.MinVersion)
	assert.Equal(t, []string{".py", ".pyi"}, cfg.Extensions())

	p, err := cfg.Parser(zap.NewNop())
	require.NoError(t, err)
	q, err := cfg.Build(p)
	require.NoError(t, err)

	res, err := q.Execute("print('x')\nprinter('y')\n", "main.py")
	require.NoError(t, err)
	assert.Equal(t, "log('x')\nprinter('y')\n", res.Modified)
	assert.Empty(t, res.Errors)
}

func TestParserUnknownLanguage(t *testing.T) {
	t.Parallel()
	cfg := &Config{Language: "cobol"}
	_, err := cfg.Parser(zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Nil(t, cfg.Extensions())
}
