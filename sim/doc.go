// Package sim provides the discrete-event engine for a single-server
// Markovian queue whose customers decide to join or balk, after Naor's
// "The Regulation of Queue Size by Levying Tolls" (1969).
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - customer.go: Customer lifecycle (arrived → waiting → in-service → departed, or balked)
//   - event.go: Arrival and Departure events that drive the simulation
//   - simulator.go: The event loop, arrival/departure handling and Result
//
// # Architecture
//
// One run is a single-threaded loop owned by Simulator:
//   - scheduler.go: EventScheduler pops events in (time, insertion order) and owns the clock
//   - queue.go: QueueState applies the AdmissionPolicy and starts service
//   - metrics.go: StatisticsCollector splits time-weighted occupancy and cost at the warm-up cutoff
//
// Admission limits are derived once per run by threshold.go: the selfish
// limit floor(β·μ)-1 and the socially optimal limit found by minimising the
// cost of the truncated M/M/1/K queue (mm1k.go). Randomness comes only from
// rng.go, partitioned per subsystem so that a seed fully determines a run.
//
// Sub-packages:
//   - sim/trace/: join/balk decision trace recording
//   - sim/experiment/: replications and selfish-proportion sweeps
package sim
