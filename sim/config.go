package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/balking-sim/sim/trace"
)

// Config is the immutable parameter record for one simulation run.
// Rates are per unit of simulated time; Horizon and WarmUp are in the same unit.
type Config struct {
	ArrivalRate       float64 `yaml:"arrival_rate"`       // λ > 0
	ServiceRate       float64 `yaml:"service_rate"`       // μ > 0
	Horizon           float64 `yaml:"horizon"`            // T > 0
	WarmUp            float64 `yaml:"warm_up"`            // 0 ≤ w < T
	SelfishProportion float64 `yaml:"selfish_proportion"` // p in [0,1]
	Toll              float64 `yaml:"toll"`               // β > 0, +Inf means "never balk"
	Seed              *int64  `yaml:"seed"`               // nil = time-derived seed
	TraceLevel        string  `yaml:"trace_level"`        // "none" (default) or "decisions"
}

// DefaultConfig returns the command line defaults: λ=2, μ=1, T=500, no
// warm-up, all customers optimal, infinite toll.
func DefaultConfig() Config {
	return Config{
		ArrivalRate:       2,
		ServiceRate:       1,
		Horizon:           500,
		WarmUp:            0,
		SelfishProportion: 0,
		Toll:              math.Inf(1),
	}
}

// Validate checks every parameter range. The first violation is returned,
// wrapped around the matching sentinel error.
func (c Config) Validate() error {
	if !(c.ArrivalRate > 0) || math.IsInf(c.ArrivalRate, 0) {
		return fmt.Errorf("%w: arrival_rate must be a finite value > 0, got %v", ErrInvalidRate, c.ArrivalRate)
	}
	if !(c.ServiceRate > 0) || math.IsInf(c.ServiceRate, 0) {
		return fmt.Errorf("%w: service_rate must be a finite value > 0, got %v", ErrInvalidRate, c.ServiceRate)
	}
	if !(c.Horizon > 0) || math.IsInf(c.Horizon, 0) {
		return fmt.Errorf("%w: horizon must be a finite value > 0, got %v", ErrInvalidHorizon, c.Horizon)
	}
	if !(c.WarmUp >= 0) || c.WarmUp >= c.Horizon {
		return fmt.Errorf("%w: warm_up must satisfy 0 <= warm_up < horizon (%v), got %v", ErrInvalidWarmUp, c.Horizon, c.WarmUp)
	}
	if !(c.SelfishProportion >= 0 && c.SelfishProportion <= 1) {
		return fmt.Errorf("%w: selfish_proportion must be in [0,1], got %v", ErrInvalidProportion, c.SelfishProportion)
	}
	if !(c.Toll > 0) {
		return fmt.Errorf("%w: toll must be > 0, got %v", ErrInvalidToll, c.Toll)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidTraceLevel, c.TraceLevel)
	}
	return nil
}

// WithSeed returns a copy of c with the seed set.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = &seed
	return c
}

// LoadConfig reads a YAML run configuration. Fields absent from the file keep
// their DefaultConfig values; unknown fields are rejected so typos surface.
// The result is not validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading run config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing run config: %w", err)
	}
	return cfg, nil
}
