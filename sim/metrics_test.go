package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/inference-sim/balking-sim/sim/internal/testutil"
)

// optimalOnly is n optimal customers in system, one of them in service.
func optimalOnly(n int) Occupancy {
	var o Occupancy
	o.InSystem[StrategyOptimal] = n
	o.InQueue[StrategyOptimal] = max(n-1, 0)
	return o
}

func TestStatisticsCollector_IntervalSplitAtWarmUp(t *testing.T) {
	// GIVEN warm-up 10 and an interval [8, 14) with 2 in system
	sc := NewStatisticsCollector(10)

	// WHEN the interval is recorded
	sc.RecordInterval(8, 14, optimalOnly(2))
	sc.RecordInterval(14, 20, optimalOnly(0))

	// THEN only the post-warm-up share counts
	s := sc.Summary()
	assert.Equal(t, 10.0, s.MeasuredTime)
	testutil.AssertFloat64Equal(t, "L", 0.8, s.MeanNumInSystem, 1e-12)
	testutil.AssertFloat64Equal(t, "Lq", 0.4, s.MeanNumInQueue, 1e-12)
	testutil.AssertFloat64Equal(t, "utilisation", 0.4, s.Utilisation, 1e-12)
	assert.InDeltaSlice(t, []float64{0.6, 0, 0.4}, s.Distribution, 1e-12)
}

func TestStatisticsCollector_PerStrategyOccupancy(t *testing.T) {
	// GIVEN a selfish customer in service with two optimal waiting over [0, 4),
	// then one optimal customer alone over [4, 10)
	sc := NewStatisticsCollector(0)
	sc.RecordInterval(0, 4, Occupancy{InSystem: [2]int{1, 2}, InQueue: [2]int{0, 2}})
	sc.RecordInterval(4, 10, optimalOnly(1))

	// WHEN summarized
	s := sc.Summary()
	selfish, optimal := s.ByStrategy[StrategySelfish], s.ByStrategy[StrategyOptimal]

	// THEN each strategy carries its own time-weighted share
	testutil.AssertFloat64Equal(t, "selfish L", 0.4, selfish.MeanNumInSystem, 1e-12)
	testutil.AssertFloat64Equal(t, "optimal L", 1.4, optimal.MeanNumInSystem, 1e-12)
	assert.Equal(t, 0.0, selfish.MeanNumInQueue)
	testutil.AssertFloat64Equal(t, "optimal Lq", 0.8, optimal.MeanNumInQueue, 1e-12)

	// AND the shares add up to the overall means
	testutil.AssertFloat64Equal(t, "L", s.MeanNumInSystem, selfish.MeanNumInSystem+optimal.MeanNumInSystem, 1e-12)
	testutil.AssertFloat64Equal(t, "Lq", s.MeanNumInQueue, selfish.MeanNumInQueue+optimal.MeanNumInQueue, 1e-12)
}

func TestStatisticsCollector_DistributionSumsToOne(t *testing.T) {
	sc := NewStatisticsCollector(0)
	for i, d := range []float64{0.3, 1.7, 2.2, 0.05, 4} {
		sc.RecordState(d, i%3, false)
	}

	s := sc.Summary()

	testutil.AssertFloat64Equal(t, "sum", 1, floats.Sum(s.Distribution), 1e-12)
}

func TestStatisticsCollector_NoWarmUp_EverythingMeasured(t *testing.T) {
	sc := NewStatisticsCollector(0)
	sc.RecordInterval(0, 5, optimalOnly(1))

	assert.False(t, sc.InWarmUp(0))
	assert.Equal(t, 5.0, sc.Summary().MeasuredTime)
}

func TestStatisticsCollector_CustomersAttributedByArrival(t *testing.T) {
	// GIVEN warm-up 10
	sc := NewStatisticsCollector(10)
	early := NewCustomer(0, 9, StrategyOptimal)
	early.Admitted = true
	late := NewCustomer(1, 11, StrategySelfish)
	late.Admitted = true
	balker := NewCustomer(2, 12, StrategyOptimal)

	// WHEN their decisions and outcomes are recorded (early departs after w)
	for _, c := range []*Customer{early, late, balker} {
		sc.RecordDecision(c)
	}
	sc.RecordCustomerOutcome(CustomerRecord{ID: 0, Strategy: StrategyOptimal, Admitted: true,
		ArrivalTime: 9, ServiceStartTime: 9, DepartureTime: 12, Cost: 3})
	sc.RecordCustomerOutcome(CustomerRecord{ID: 1, Strategy: StrategySelfish, Admitted: true,
		ArrivalTime: 11, ServiceStartTime: 12, DepartureTime: 15, Cost: 4})
	sc.RecordCustomerOutcome(CustomerRecord{ID: 2, Strategy: StrategyOptimal, ArrivalTime: 12, Cost: 7})

	// THEN the early customer is excluded everywhere
	s := sc.Summary()
	assert.Equal(t, 2, s.Arrivals)
	assert.Equal(t, 1, s.Admitted)
	assert.Equal(t, 1, s.Balked)
	assert.Equal(t, 2, s.Finalized)
	testutil.AssertFloat64Equal(t, "cost", 5.5, s.MeanCost, 1e-12)
	testutil.AssertFloat64Equal(t, "wait", 1, s.MeanWaitingTime, 1e-12)
	testutil.AssertFloat64Equal(t, "system", 4, s.MeanSystemTime, 1e-12)

	selfish := s.ByStrategy[StrategySelfish]
	assert.Equal(t, StrategySummary{Arrivals: 1, Admitted: 1, MeanWaitingTime: 1, MeanSystemTime: 4, MeanCost: 4}, selfish)
	optimal := s.ByStrategy[StrategyOptimal]
	assert.Equal(t, 1, optimal.Balked)
	assert.Equal(t, 1.0, optimal.BalkProbability)
	assert.Equal(t, 7.0, optimal.MeanCost)

	// AND totals still include the warm-up
	arrivals, admitted, balked := sc.Totals()
	assert.Equal(t, 3, arrivals)
	assert.Equal(t, 2, admitted)
	assert.Equal(t, 1, balked)
}

func TestStatisticsCollector_EmptyWindow_ZeroMeans(t *testing.T) {
	s := NewStatisticsCollector(5).Summary()

	assert.Equal(t, 0.0, s.MeanNumInSystem)
	assert.Equal(t, 0.0, s.MeanCost)
	assert.Nil(t, s.Distribution)
	assert.Len(t, s.ByStrategy, 2)
}

func TestStatisticsCollector_InvalidState_Panics(t *testing.T) {
	sc := NewStatisticsCollector(0)
	assert.Panics(t, func() { sc.RecordState(-1, 0, false) })
	assert.Panics(t, func() { sc.RecordState(1, -1, false) })
	assert.Panics(t, func() { sc.RecordInterval(5, 4, Occupancy{}) })
}

func TestStatisticsCollector_SystemTimePercentiles(t *testing.T) {
	sc := NewStatisticsCollector(0)
	for i := 1; i <= 101; i++ {
		sc.RecordCustomerOutcome(CustomerRecord{ID: int64(i), Admitted: true, ArrivalTime: 0,
			ServiceStartTime: 0, DepartureTime: float64(i), Cost: float64(i)})
	}

	s := sc.Summary()

	require.Equal(t, 101, s.Finalized)
	assert.Equal(t, 51.0, s.SystemTimeP50)
	assert.Equal(t, 91.0, s.SystemTimeP90)
	assert.Equal(t, 100.0, s.SystemTimeP99)
}

func TestCustomerRecord_Times(t *testing.T) {
	served := CustomerRecord{Admitted: true, ArrivalTime: 1, ServiceStartTime: 3, DepartureTime: 4.5}
	assert.Equal(t, 2.0, served.WaitingTime())
	assert.Equal(t, 1.5, served.ServiceTime())
	assert.Equal(t, 3.5, served.SystemTime())

	balked := CustomerRecord{ArrivalTime: 1, Cost: 7}
	assert.Zero(t, balked.WaitingTime())
	assert.Zero(t, balked.ServiceTime())
	assert.Zero(t, balked.SystemTime())
}

func TestCustomer_Finalize(t *testing.T) {
	t.Run("balked pays the toll", func(t *testing.T) {
		c := NewCustomer(3, 2, StrategySelfish)
		c.State = StateBalked
		rec := c.finalize(7)
		assert.Equal(t, CustomerRecord{ID: 3, Strategy: StrategySelfish, ArrivalTime: 2, Cost: 7}, rec)
	})
	t.Run("departed pays its sojourn", func(t *testing.T) {
		c := NewCustomer(4, 2, StrategyOptimal)
		c.Admitted = true
		c.ServiceStartTime = 3
		c.DepartureTime = 6
		c.State = StateDeparted
		assert.Equal(t, 4.0, c.finalize(7).Cost)
	})
	t.Run("still in system panics", func(t *testing.T) {
		c := NewCustomer(5, 2, StrategyOptimal)
		c.State = StateWaiting
		assert.Panics(t, func() { c.finalize(7) })
	})
}
