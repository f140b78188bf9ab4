package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/inference-sim/balking-sim/sim"
)

// envPrefix namespaces environment overrides, e.g. BALKING_ARRIVAL_RATE.
const envPrefix = "BALKING"

// newViper binds the command's flags and BALKING_* environment variables.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

// resolveConfig layers the run configuration: defaults, then the --config
// file, then any flag or environment variable that was explicitly set.
// The result is validated.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return sim.Config{}, err
	}
	return configFrom(v)
}

func configFrom(v *viper.Viper) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := sim.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	floatsByKey := map[string]*float64{
		"arrival-rate":       &cfg.ArrivalRate,
		"service-rate":       &cfg.ServiceRate,
		"horizon":            &cfg.Horizon,
		"warm-up":            &cfg.WarmUp,
		"selfish-proportion": &cfg.SelfishProportion,
		"toll":               &cfg.Toll,
	}
	for key, dst := range floatsByKey {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	if v.IsSet("seed") {
		cfg = cfg.WithSeed(v.GetInt64("seed"))
	}
	if v.IsSet("trace-level") {
		cfg.TraceLevel = v.GetString("trace-level")
	}
	return cfg, cfg.Validate()
}
