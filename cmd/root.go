package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/balking-sim/sim"
)

var (
	// CLI flags shared by every command
	logLevel string // Log verbosity level

	// CLI flags for run
	customersCSV    string // Path for the customer record export
	observationsCSV string // Path for the (time, n) observation export

	// CLI flags for sweep
	replications int // Seeds per configuration
	sweepSteps   int // Number of proportion intervals between 0 and 1
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "balking-sim",
	Short: "Discrete-event simulator for a single-server queue with balking customers",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// runCmd executes one simulation and prints its summary
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the queue simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		res, err := sim.Run(cfg)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)

		if customersCSV != "" {
			if err := writeCustomersCSV(customersCSV, res.Customers); err != nil {
				return err
			}
			logrus.Infof("Wrote %d customer records to %s", len(res.Customers), customersCSV)
		}
		if observationsCSV != "" {
			if err := writeObservationsCSV(observationsCSV, res.Observations); err != nil {
				return err
			}
			logrus.Infof("Wrote %d observations to %s", len(res.Observations), observationsCSV)
		}
		logrus.Info("Simulation complete.")
		return nil
	},
}

// addModelFlags registers the run configuration flags. Only flags the user
// sets override the --config file; see resolveConfig.
func addModelFlags(fs *pflag.FlagSet) {
	def := sim.DefaultConfig()
	fs.String("config", "", "YAML run configuration; flags and BALKING_* env vars override it")
	fs.Float64P("arrival-rate", "l", def.ArrivalRate, "Arrival rate λ")
	fs.Float64P("service-rate", "m", def.ServiceRate, "Service rate μ")
	fs.Float64P("horizon", "T", def.Horizon, "Simulation horizon")
	fs.Float64P("warm-up", "w", def.WarmUp, "Warm-up period excluded from statistics")
	fs.Float64P("selfish-proportion", "p", def.SelfishProportion, "Proportion of selfish customers in [0,1]")
	fs.Float64P("toll", "c", math.Inf(1), "Balking toll β (inf: never balk)")
	fs.Int64("seed", 0, "Seed for the random streams (default: time-derived)")
	fs.String("trace-level", "none", "Decision trace level (none, decisions)")
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	addModelFlags(rootCmd.PersistentFlags())

	runCmd.Flags().StringVar(&customersCSV, "customers-csv", "", "Write finalized customer records to this CSV file")
	runCmd.Flags().StringVar(&observationsCSV, "observations-csv", "", "Write the (time, n) observation series to this CSV file")

	sweepCmd.Flags().IntVar(&replications, "replications", 5, "Replications per proportion (seeds seed..seed+n-1)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "Evaluate proportions 0, 1/steps, ..., 1")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(thresholdsCmd)
	rootCmd.AddCommand(sweepCmd)
}
