package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/balking-sim/sim/experiment"
)

// sweepCmd replicates the run across selfish proportions and emits YAML
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Replicate the simulation across selfish proportions 0..1",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		points, err := experiment.Sweep(cfg, experiment.Proportions(sweepSteps), replications)
		if err != nil {
			return err
		}
		return writeSweep(cmd.OutOrStdout(), points)
	},
}

func writeSweep(w io.Writer, points []experiment.SweepPoint) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(points); err != nil {
		return fmt.Errorf("encoding sweep: %w", err)
	}
	return enc.Close()
}
