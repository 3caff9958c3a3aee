package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnoverse/cstfix/internal/config"
)

// initCmd: cstfix init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter rule file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}
