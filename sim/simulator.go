// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/balking-sim/sim/trace"
)

// Observation is the system state right after an event was processed.
type Observation struct {
	Time        float64 `json:"time"`
	NumInSystem int     `json:"num_in_system"`
	NumInQueue  int     `json:"num_in_queue"`

	NumSelfish        int `json:"num_selfish"`
	NumOptimal        int `json:"num_optimal"`
	NumSelfishInQueue int `json:"num_selfish_in_queue"`
	NumOptimalInQueue int `json:"num_optimal_in_queue"`
}

func newObservation(t float64, occ Occupancy) Observation {
	return Observation{
		Time:              t,
		NumInSystem:       occ.NumInSystem(),
		NumInQueue:        occ.NumInQueue(),
		NumSelfish:        occ.InSystem[StrategySelfish],
		NumOptimal:        occ.InSystem[StrategyOptimal],
		NumSelfishInQueue: occ.InQueue[StrategySelfish],
		NumOptimalInQueue: occ.InQueue[StrategyOptimal],
	}
}

// Result bundles every output of a run for downstream consumers
// (reporting, plotting, animation, CSV export).
type Result struct {
	RunID        string
	Seed         int64
	Config       Config
	Thresholds   Thresholds
	Summary      Summary
	Observations []Observation
	Customers    []CustomerRecord // finalized customers in finalization order
	Arrivals     int              // arrival events processed, warm-up included
	Unfinished   int              // admitted customers still in system at the horizon
	Trace        *trace.SimulationTrace
	TraceSummary *trace.TraceSummary
	Warnings     []string
	WallTime     time.Duration
}

// Simulator is the core object that holds simulation time, system state, and the event loop.
// A Simulator runs once; build a new one for every run.
type Simulator struct {
	Config     Config
	RNG        *PartitionedRNG
	Thresholds Thresholds
	Scheduler  *EventScheduler
	Queue      *QueueState
	Stats      *StatisticsCollector

	variates  *VariateSource
	assigner  *StrategyAssigner
	trace     *trace.SimulationTrace
	observers []func(Observation)

	nextID       int64
	lastTime     float64
	arrivals     int
	observations []Observation
	customers    []CustomerRecord
	warnings     []string
	ran          bool
}

// NewSimulator validates cfg and wires a ready-to-run engine. It never
// returns a Simulator for an invalid configuration.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		logrus.Infof("No seed configured, using %d", seed)
	}
	rng := NewPartitionedRNG(NewSimulationKey(seed))

	variates, err := NewVariateSource(cfg.ArrivalRate, cfg.ServiceRate, rng)
	if err != nil {
		return nil, err
	}
	assigner, err := NewStrategyAssigner(cfg.SelfishProportion, rng.ForSubsystem(SubsystemStrategy))
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		Config:     cfg,
		RNG:        rng,
		Thresholds: ComputeThresholds(cfg.ArrivalRate, cfg.ServiceRate, cfg.Toll),
		Scheduler:  NewEventScheduler(cfg.Horizon),
		Stats:      NewStatisticsCollector(cfg.WarmUp),
		variates:   variates,
		assigner:   assigner,
	}
	var policy AdmissionPolicy = NewThresholdPolicy(s.Thresholds)
	if s.Thresholds.Selfish == Unbounded && s.Thresholds.Optimal == Unbounded {
		policy = &AlwaysAdmit{}
	}
	s.Queue = NewQueueState(policy, s.Scheduler, variates)
	if s.Thresholds.Degenerate {
		s.warnings = append(s.warnings, fmt.Sprintf("%v: optimal threshold fell back to selfish threshold %s",
			ErrDegenerateOptimum, FormatThreshold(s.Thresholds.Selfish)))
	}
	if tc := (trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)}); tc.Enabled() {
		s.trace = trace.NewSimulationTrace(tc)
	}
	return s, nil
}

// Run builds a Simulator for cfg and executes it.
func Run(cfg Config) (*Result, error) {
	s, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(), nil
}

// Subscribe registers fn to receive every observation as it is produced.
// Observers must treat the value as read-only and must not call back into the
// Simulator.
func (sim *Simulator) Subscribe(fn func(Observation)) {
	sim.observers = append(sim.observers, fn)
}

// Run executes the event loop until the next event would fall beyond the horizon.
func (sim *Simulator) Run() *Result {
	if sim.ran {
		panic("Run: simulator has already run")
	}
	sim.ran = true
	start := time.Now()
	logrus.Infof("Starting simulation: lambda=%v mu=%v toll=%v p=%v horizon=%v warm-up=%v seed=%d, %v",
		sim.Config.ArrivalRate, sim.Config.ServiceRate, sim.Config.Toll, sim.Config.SelfishProportion,
		sim.Config.Horizon, sim.Config.WarmUp, sim.seed(), sim.Thresholds)

	sim.observe(0)
	sim.scheduleArrival(sim.variates.NextInterarrival())

	for {
		ev, err := sim.Scheduler.PopNext()
		if errors.Is(err, ErrEmptySchedule) {
			break
		}
		now := ev.Timestamp()
		sim.Stats.RecordInterval(sim.lastTime, now, sim.Queue.Occupancy())
		sim.lastTime = now
		logrus.Tracef("[t=%.4f] Executing %T", now, ev)
		ev.Execute(sim)
		sim.observe(now)
	}
	sim.Stats.RecordInterval(sim.lastTime, sim.Config.Horizon, sim.Queue.Occupancy())
	logrus.Infof("[t=%.4f] Simulation ended", sim.Config.Horizon)

	return sim.result(time.Since(start))
}

func (sim *Simulator) result(wall time.Duration) *Result {
	summary := sim.Stats.Summary()
	if summary.Finalized == 0 {
		msg := fmt.Sprintf("no customer finalized after warm-up %v; cost statistics are empty", sim.Config.WarmUp)
		logrus.Warn(msg)
		sim.warnings = append(sim.warnings, msg)
	}
	unfinished := sim.Queue.NumInSystem()
	if unfinished > 0 {
		logrus.Infof("%d customers still in system at the horizon are excluded from cost statistics", unfinished)
	}

	res := &Result{
		RunID:        runID(sim.seed(), sim.Config),
		Seed:         sim.seed(),
		Config:       sim.Config,
		Thresholds:   sim.Thresholds,
		Summary:      summary,
		Observations: sim.observations,
		Customers:    sim.customers,
		Arrivals:     sim.arrivals,
		Unfinished:   unfinished,
		Trace:        sim.trace,
		Warnings:     sim.warnings,
		WallTime:     wall,
	}
	if sim.trace != nil {
		res.TraceSummary = trace.Summarize(sim.trace)
	}
	return res
}

func (sim *Simulator) seed() int64 {
	return int64(sim.RNG.Key())
}

// runID derives a stable identifier from the seed and parameters, so identical
// runs share an ID.
func runID(seed int64, cfg Config) string {
	key := fmt.Sprintf("%d|%v|%v|%v|%v|%v|%v", seed, cfg.ArrivalRate, cfg.ServiceRate,
		cfg.Horizon, cfg.WarmUp, cfg.SelfishProportion, cfg.Toll)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// scheduleArrival creates the next customer, assigning its strategy now.
func (sim *Simulator) scheduleArrival(t float64) {
	c := NewCustomer(sim.nextID, t, sim.assigner.Assign())
	sim.nextID++
	sim.Scheduler.Schedule(NewArrivalEvent(c))
}

func (sim *Simulator) handleArrival(c *Customer) {
	sim.arrivals++
	seen := sim.Queue.NumInSystem()
	decision := sim.Queue.Arrive(c)
	sim.Stats.RecordDecision(c)

	if sim.trace != nil {
		limit := c.Strategy.Threshold(sim.Thresholds)
		sim.trace.RecordAdmission(trace.AdmissionRecord{
			CustomerID:  c.ID,
			Clock:       c.ArrivalTime,
			Strategy:    c.Strategy.String(),
			NumInSystem: seen,
			Threshold:   limit,
			Admitted:    c.Admitted,
			Reason:      fmt.Sprintf("%s: %d in system, limit %s", decision, seen, FormatThreshold(limit)),
		})
	}
	if decision == DecisionBalk {
		sim.finalize(c)
	}
	sim.scheduleArrival(sim.Scheduler.Clock() + sim.variates.NextInterarrival())
}

func (sim *Simulator) handleDeparture(c *Customer) {
	sim.Queue.Depart(c)
	rec := sim.finalize(c)
	if sim.trace != nil {
		sim.trace.RecordDeparture(trace.DepartureRecord{
			CustomerID:  c.ID,
			Clock:       c.DepartureTime,
			WaitingTime: rec.WaitingTime(),
			SystemTime:  rec.SystemTime(),
			NumInSystem: sim.Queue.NumInSystem(),
		})
	}
}

// finalize transfers a customer's outcome to the statistics; the live
// Customer is no longer referenced afterwards.
func (sim *Simulator) finalize(c *Customer) CustomerRecord {
	rec := c.finalize(sim.Config.Toll)
	sim.customers = append(sim.customers, rec)
	sim.Stats.RecordCustomerOutcome(rec)
	return rec
}

func (sim *Simulator) observe(t float64) {
	obs := newObservation(t, sim.Queue.Occupancy())
	sim.observations = append(sim.observations, obs)
	for _, fn := range sim.observers {
		fn(obs)
	}
}
