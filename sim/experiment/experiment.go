// Package experiment runs families of simulations: independent replications
// of one configuration, and sweeps of the selfish proportion over a shared
// seed family so that every point sees the same arrival and service streams.
package experiment

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/balking-sim/sim"
)

// z95 is the two-sided 95% standard normal quantile.
const z95 = 1.959963984540054

// Estimate summarises one statistic across replications.
type Estimate struct {
	Mean      float64 `yaml:"mean"`
	StdDev    float64 `yaml:"std_dev"`
	HalfWidth float64 `yaml:"half_width"` // 95% normal confidence half-width; 0 for a single replication
	N         int     `yaml:"n"`
}

func (e Estimate) String() string {
	return fmt.Sprintf("%.4f ± %.4f", e.Mean, e.HalfWidth)
}

// NewEstimate computes mean, sample standard deviation and 95% half-width.
func NewEstimate(samples []float64) Estimate {
	e := Estimate{N: len(samples)}
	switch len(samples) {
	case 0:
		return e
	case 1:
		e.Mean = samples[0]
		return e
	}
	e.Mean, e.StdDev = stat.MeanStdDev(samples, nil)
	e.HalfWidth = z95 * e.StdDev / math.Sqrt(float64(len(samples)))
	return e
}

// ReplicationReport aggregates n runs of one configuration with seeds
// base, base+1, ..., base+n-1.
type ReplicationReport struct {
	SelfishProportion float64        `yaml:"selfish_proportion"`
	Thresholds        sim.Thresholds `yaml:"thresholds"`
	Seeds             []int64        `yaml:"seeds"`
	MeanCost          Estimate       `yaml:"mean_cost"`
	MeanNumInSystem   Estimate       `yaml:"mean_num_in_system"`
	MeanNumInQueue    Estimate       `yaml:"mean_num_in_queue"`
	BalkProbability   Estimate       `yaml:"balk_probability"`
	Utilisation       Estimate       `yaml:"utilisation"`
}

// Replicate runs cfg n times. The base seed is cfg.Seed, or a time-derived
// seed when unset.
func Replicate(cfg sim.Config, n int) (*ReplicationReport, error) {
	if n < 1 {
		return nil, fmt.Errorf("replications must be >= 1, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := time.Now().UnixNano()
	if cfg.Seed != nil {
		base = *cfg.Seed
	}

	report := &ReplicationReport{SelfishProportion: cfg.SelfishProportion}
	var cost, inSystem, inQueue, balk, util []float64
	for i := 0; i < n; i++ {
		seed := base + int64(i)
		res, err := sim.Run(cfg.WithSeed(seed))
		if err != nil {
			return nil, fmt.Errorf("replication %d (seed %d): %w", i, seed, err)
		}
		s := res.Summary
		report.Thresholds = res.Thresholds
		report.Seeds = append(report.Seeds, seed)
		if s.Finalized > 0 {
			cost = append(cost, s.MeanCost)
		}
		inSystem = append(inSystem, s.MeanNumInSystem)
		inQueue = append(inQueue, s.MeanNumInQueue)
		util = append(util, s.Utilisation)
		if s.Arrivals > 0 {
			balk = append(balk, float64(s.Balked)/float64(s.Arrivals))
		}
		logrus.Debugf("replication %d seed=%d mean cost=%.4f L=%.4f", i, seed, s.MeanCost, s.MeanNumInSystem)
	}
	report.MeanCost = NewEstimate(cost)
	report.MeanNumInSystem = NewEstimate(inSystem)
	report.MeanNumInQueue = NewEstimate(inQueue)
	report.BalkProbability = NewEstimate(balk)
	report.Utilisation = NewEstimate(util)
	return report, nil
}

// SweepPoint is the replication report at one selfish proportion.
type SweepPoint struct {
	Proportion float64            `yaml:"proportion"`
	Report     *ReplicationReport `yaml:"report"`
}

// Sweep replicates cfg at every proportion in order, reusing one seed family
// so the points differ only in strategy mix.
func Sweep(cfg sim.Config, proportions []float64, n int) ([]SweepPoint, error) {
	if len(proportions) == 0 {
		return nil, fmt.Errorf("sweep needs at least one proportion")
	}
	if cfg.Seed == nil {
		cfg = cfg.WithSeed(time.Now().UnixNano())
	}
	points := make([]SweepPoint, 0, len(proportions))
	for _, p := range proportions {
		c := cfg
		c.SelfishProportion = p
		report, err := Replicate(c, n)
		if err != nil {
			return nil, fmt.Errorf("proportion %v: %w", p, err)
		}
		logrus.Infof("sweep p=%v mean cost %s", p, report.MeanCost)
		points = append(points, SweepPoint{Proportion: p, Report: report})
	}
	return points, nil
}

// Proportions returns steps+1 evenly spaced proportions from 0 to 1.
func Proportions(steps int) []float64 {
	if steps < 1 {
		return []float64{0}
	}
	out := make([]float64, steps+1)
	for i := range out {
		out[i] = float64(i) / float64(steps)
	}
	return out
}
