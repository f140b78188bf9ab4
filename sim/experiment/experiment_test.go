package experiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/balking-sim/sim"
)

func tolledQueue() sim.Config {
	return sim.Config{ArrivalRate: 5, ServiceRate: 2, Horizon: 1000, WarmUp: 100, SelfishProportion: 1, Toll: 7}
}

func TestNewEstimate(t *testing.T) {
	t.Run("several samples", func(t *testing.T) {
		e := NewEstimate([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		assert.Equal(t, 5.0, e.Mean)
		assert.InDelta(t, math.Sqrt(32.0/7), e.StdDev, 1e-12)
		assert.InDelta(t, z95*e.StdDev/math.Sqrt(8), e.HalfWidth, 1e-12)
		assert.Equal(t, 8, e.N)
	})
	t.Run("single sample has no spread", func(t *testing.T) {
		e := NewEstimate([]float64{3})
		assert.Equal(t, Estimate{Mean: 3, N: 1}, e)
	})
	t.Run("no samples", func(t *testing.T) {
		assert.Equal(t, Estimate{}, NewEstimate(nil))
	})
}

func TestReplicate_SeedsAreConsecutive(t *testing.T) {
	// GIVEN a base seed of 10
	cfg := tolledQueue().WithSeed(10)

	// WHEN three replications run
	r, err := Replicate(cfg, 3)

	// THEN seeds 10, 11, 12 were used and every estimate has three samples
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, r.Seeds)
	assert.Equal(t, 3, r.MeanCost.N)
	assert.Equal(t, 3, r.MeanNumInSystem.N)
	assert.Equal(t, 13, r.Thresholds.Selfish)
	assert.Greater(t, r.MeanCost.HalfWidth, 0.0)
}

func TestReplicate_MatchesIndividualRuns(t *testing.T) {
	cfg := tolledQueue().WithSeed(4)

	r, err := Replicate(cfg, 2)
	require.NoError(t, err)

	first, err := sim.Run(cfg.WithSeed(4))
	require.NoError(t, err)
	second, err := sim.Run(cfg.WithSeed(5))
	require.NoError(t, err)
	assert.InDelta(t, (first.Summary.MeanCost+second.Summary.MeanCost)/2, r.MeanCost.Mean, 1e-12)
}

func TestReplicate_InvalidInput(t *testing.T) {
	_, err := Replicate(tolledQueue(), 0)
	assert.Error(t, err)

	bad := tolledQueue()
	bad.WarmUp = bad.Horizon
	_, err = Replicate(bad, 2)
	assert.ErrorIs(t, err, sim.ErrInvalidWarmUp)
}

func TestReplicate_EmptyMeasurementWindow_NoCostSamples(t *testing.T) {
	// GIVEN arrivals so rare that nobody arrives after warm-up
	cfg := sim.Config{ArrivalRate: 1e-9, ServiceRate: 1, Horizon: 10, WarmUp: 5, Toll: 3}.WithSeed(1)

	// WHEN replicated
	r, err := Replicate(cfg, 3)

	// THEN the empty windows contribute no zero-cost samples
	require.NoError(t, err)
	assert.Equal(t, Estimate{}, r.MeanCost)
	assert.Equal(t, Estimate{}, r.BalkProbability)
	assert.Equal(t, 3, r.MeanNumInSystem.N)
}

func TestSweep_OptimalPopulationCheaper(t *testing.T) {
	// GIVEN λ=5, μ=2, β=7 swept from all-optimal to all-selfish
	points, err := Sweep(tolledQueue().WithSeed(1), []float64{0, 0.5, 1}, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// THEN each point carries its proportion and cost rises with selfishness
	for i, p := range []float64{0, 0.5, 1} {
		assert.Equal(t, p, points[i].Proportion)
		assert.Equal(t, p, points[i].Report.SelfishProportion)
		assert.Equal(t, []int64{1, 2, 3}, points[i].Report.Seeds, "shared seed family")
	}
	assert.Less(t, points[0].Report.MeanCost.Mean, points[2].Report.MeanCost.Mean)
}

func TestSweep_InvalidProportion(t *testing.T) {
	_, err := Sweep(tolledQueue().WithSeed(1), []float64{0, 2}, 1)
	assert.ErrorIs(t, err, sim.ErrInvalidProportion)

	_, err = Sweep(tolledQueue(), nil, 1)
	assert.Error(t, err)
}

func TestProportions(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Proportions(4))
	assert.Equal(t, []float64{0}, Proportions(0))
}
