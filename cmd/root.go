package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/internal/config"
)

var (
	cfgFile string
	timeout time.Duration
	debug   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "cstfix [paths...]",
	Short:            "cstfix - structural search and rewrite over concrete syntax trees",
	Version:          config.Version,
	SilenceUsage:     true,
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: cstfix [path1 path2 ...] => behaves like the run subcommand
		return runCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	logger = zap.NewNop()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultFile, "Rule file (.yaml or .toml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Give up after this long")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(selectorCmd)
	rootCmd.AddCommand(testCmd)
}
