package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/balking-sim/sim"
)

// parseConfig resolves a configuration from command-line style args.
func parseConfig(t *testing.T, args ...string) (sim.Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addModelFlags(fs)
	require.NoError(t, fs.Parse(args))
	v, err := newViper(fs)
	require.NoError(t, err)
	return configFrom(v)
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigFrom_NoFlags_Defaults(t *testing.T) {
	// GIVEN no flags, file or environment
	// WHEN the configuration is resolved
	cfg, err := parseConfig(t)

	// THEN the defaults apply and no seed is fixed
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
	assert.Nil(t, cfg.Seed)
}

func TestConfigFrom_FlagOverridesFile(t *testing.T) {
	// GIVEN a config file for λ=5, μ=2, β=7 and an explicit arrival rate flag
	path := writeYAML(t, "arrival_rate: 5\nservice_rate: 2\nhorizon: 100\nselfish_proportion: 1\ntoll: 7\n")

	// WHEN the configuration is resolved
	cfg, err := parseConfig(t, "--config", path, "-l", "3")

	// THEN the flag wins and the rest comes from the file
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.ArrivalRate)
	assert.Equal(t, 2.0, cfg.ServiceRate)
	assert.Equal(t, 100.0, cfg.Horizon)
	assert.Equal(t, 1.0, cfg.SelfishProportion)
	assert.Equal(t, 7.0, cfg.Toll)
}

func TestConfigFrom_EnvOverridesFile(t *testing.T) {
	// GIVEN a config file and a BALKING_SERVICE_RATE environment variable
	path := writeYAML(t, "service_rate: 2\n")
	t.Setenv("BALKING_SERVICE_RATE", "4")

	// WHEN the configuration is resolved
	cfg, err := parseConfig(t, "--config", path)

	// THEN the environment wins
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.ServiceRate)
}

func TestConfigFrom_SeedAndInfiniteToll(t *testing.T) {
	cfg, err := parseConfig(t, "--seed", "7", "--toll", "inf")

	require.NoError(t, err)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(7), *cfg.Seed)
	assert.True(t, math.IsInf(cfg.Toll, 1))
}

func TestConfigFrom_InvalidValues_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"warm-up equals horizon", []string{"-T", "10", "-w", "10"}, sim.ErrInvalidWarmUp},
		{"zero service rate", []string{"-m", "0"}, sim.ErrInvalidRate},
		{"proportion above one", []string{"-p", "1.5"}, sim.ErrInvalidProportion},
		{"unknown trace level", []string{"--trace-level", "verbose"}, sim.ErrInvalidTraceLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigFrom_UnknownFileField_Rejected(t *testing.T) {
	path := writeYAML(t, "arival_rate: 5\n")

	_, err := parseConfig(t, "--config", path)

	assert.Error(t, err)
}
