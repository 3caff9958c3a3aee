package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnoverse/cstfix/fixer"
	"github.com/gnoverse/cstfix/fixer/pattern"
	"github.com/gnoverse/cstfix/formatter"
	"github.com/gnoverse/cstfix/syntax"
	"github.com/gnoverse/cstfix/syntax/treesitter"
)

// variable for flags
var (
	language    string
	patternText string
	depth       int
	line        int
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the syntax tree of a file, or of every node a pattern matches",
	Long: `Prints the concrete syntax tree with each node's type and prefix.
Example) cstfix dump --pattern "call< fn=identifier any* >" main.py`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := parseFile(args[0], language)
		if err != nil {
			return err
		}
		return dumpTree(cmd.OutOrStdout(), tree, patternText, depth)
	},
}

var selectorCmd = &cobra.Command{
	Use:   "selector <file>",
	Short: "Print a pattern that matches a node exactly",
	Long: `Prints a selector for every node the pattern matches, or for the top-level
statements on --line. Captures of the pattern are kept in the output.
Example) cstfix selector --line 3 main.py`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := parseFile(args[0], language)
		if err != nil {
			return err
		}
		return printSelectors(cmd.OutOrStdout(), tree, patternText, line)
	},
}

func init() {
	for _, c := range []*cobra.Command{dumpCmd, selectorCmd} {
		c.Flags().StringVarP(&language, "language", "l", "", "Language of the file (default: by extension)")
		c.Flags().StringVarP(&patternText, "pattern", "p", "", "Only show nodes this pattern matches")
	}
	dumpCmd.Flags().IntVarP(&depth, "depth", "d", 0, "Elide nodes deeper than this (0: no limit)")
	selectorCmd.Flags().IntVar(&line, "line", 0, "Only show nodes starting on this line")
}

func parseFile(path, lang string) (*syntax.Tree, error) {
	var (
		l  *treesitter.Language
		ok bool
	)
	if lang != "" {
		l, ok = treesitter.Lookup(lang)
	} else {
		l, ok = treesitter.ForFile(path)
	}
	if !ok {
		return nil, fmt.Errorf("no language for %s, have %v", path, treesitter.Languages())
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return treesitter.New(l, treesitter.WithLogger(logger)).Parse(string(src), path)
}

// matches returns the nodes of tree that text matches, with their captures.
// An empty pattern yields the root.
func matches(tree *syntax.Tree, text string) ([]syntax.Node, []fixer.Captures, error) {
	if text == "" {
		return []syntax.Node{tree.Root()}, []fixer.Captures{nil}, nil
	}
	p, err := pattern.Compile(tree.Grammar(), text)
	if err != nil {
		return nil, nil, err
	}
	var nodes []syntax.Node
	var caps []fixer.Captures
	for n, c := range fixer.FindAll(p, tree.Root(), fixer.PreOrder) {
		nodes = append(nodes, n)
		caps = append(caps, c)
	}
	return nodes, caps, nil
}

func dumpTree(out io.Writer, tree *syntax.Tree, text string, depth int) error {
	nodes, caps, err := matches(tree, text)
	if err != nil {
		return err
	}
	for i, n := range nodes {
		if text != "" {
			fmt.Fprintf(out, "match %d at line %d:\n", i+1, n.Line())
		}
		if err := formatter.PrintTree(out, n, caps[i], depth); err != nil {
			return err
		}
	}
	return nil
}

func printSelectors(out io.Writer, tree *syntax.Tree, text string, line int) error {
	var nodes []syntax.Node
	var caps []fixer.Captures
	if text == "" {
		for _, n := range tree.Root().Children() {
			if !n.IsLeaf() {
				nodes = append(nodes, n)
				caps = append(caps, nil)
			}
		}
	} else {
		var err error
		if nodes, caps, err = matches(tree, text); err != nil {
			return err
		}
	}

	for i, n := range nodes {
		if line > 0 && n.Line() != line {
			continue
		}
		bound := map[string][]syntax.Node{}
		for name := range caps[i] {
			bound[name] = caps[i].Nodes(name)
		}
		fmt.Fprintln(out, pattern.FromNode(n, bound))
	}
	return nil
}
