package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnoverse/cstfix/fixer"
	"github.com/gnoverse/cstfix/fixture"
	"github.com/gnoverse/cstfix/internal/config"
)

var testCmd = &cobra.Command{
	Use:   "test <fixture files...>",
	Short: "Check the rules against fixture files",
	Long: `Each fixture holds input lines annotated with their expected output after
a "#+" marker. Files ending in .txtar hold one fixture per archived file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		parser, err := cfg.Parser(logger)
		if err != nil {
			return err
		}
		q, err := cfg.Build(parser, fixer.WithLogger(logger))
		if err != nil {
			return err
		}
		return runFixtures(cmd.OutOrStdout(), q, args)
	},
}

var errFixtures = errors.New("fixtures failed")

func runFixtures(out io.Writer, q *fixer.Query, paths []string) error {
	passed, failed := 0, 0
	for _, path := range paths {
		cases, err := fixture.Load(path)
		if err != nil {
			return err
		}
		for _, c := range cases {
			if err := fixture.Run(q, c); err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s (%s)\n%v\n", c.Name, path, err)
				continue
			}
			passed++
			fmt.Fprintf(out, "ok   %s (%s)\n", c.Name, path)
		}
	}
	fmt.Fprintf(out, "%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return errFixtures
	}
	return nil
}
