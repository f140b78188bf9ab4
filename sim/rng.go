package sim

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemArrivals drives inter-arrival draws. Uses the master seed directly.
	SubsystemArrivals = "arrivals"

	// SubsystemService drives service-time draws.
	SubsystemService = "service"

	// SubsystemStrategy drives the Selfish/Optimal assignment of new customers.
	SubsystemStrategy = "strategy"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem,
// so that changing the strategy mix never perturbs the arrival or service stream.
//
// Derivation formula:
//   - For SubsystemArrivals: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemArrivals {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === VariateSource ===

// VariateSource draws exponential inter-arrival and service times. It is the
// only origin of randomness in a run besides strategy assignment.
type VariateSource struct {
	arrivalRate float64
	serviceRate float64
	arrivals    *rand.Rand
	service     *rand.Rand
}

// NewVariateSource builds a source over the arrival and service subsystems of rng.
// Non-positive or non-finite rates fail with ErrInvalidRate.
func NewVariateSource(arrivalRate, serviceRate float64, rng *PartitionedRNG) (*VariateSource, error) {
	if !(arrivalRate > 0) || math.IsInf(arrivalRate, 0) {
		return nil, fmt.Errorf("%w: arrival rate %v", ErrInvalidRate, arrivalRate)
	}
	if !(serviceRate > 0) || math.IsInf(serviceRate, 0) {
		return nil, fmt.Errorf("%w: service rate %v", ErrInvalidRate, serviceRate)
	}
	return &VariateSource{
		arrivalRate: arrivalRate,
		serviceRate: serviceRate,
		arrivals:    rng.ForSubsystem(SubsystemArrivals),
		service:     rng.ForSubsystem(SubsystemService),
	}, nil
}

// NextInterarrival returns a strictly positive Exp(λ) sample.
func (v *VariateSource) NextInterarrival() float64 {
	return positiveExp(v.arrivals, v.arrivalRate)
}

// NextServiceTime returns a strictly positive Exp(μ) sample.
func (v *VariateSource) NextServiceTime() float64 {
	return positiveExp(v.service, v.serviceRate)
}

// positiveExp redraws the (practically unreachable) zero sample so callers can
// rely on time strictly advancing between an event and the one it schedules.
func positiveExp(rng *rand.Rand, rate float64) float64 {
	for {
		if x := rng.ExpFloat64() / rate; x > 0 {
			return x
		}
	}
}
