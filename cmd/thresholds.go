package cmd

import (
	"github.com/spf13/cobra"
)

// thresholdsCmd prints the admission limits without simulating
var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Print the selfish and socially optimal admission thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		printThresholds(cmd.OutOrStdout(), cfg)
		return nil
	},
}
