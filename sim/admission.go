package sim

import (
	"fmt"
	"math/rand"
)

// Decision is the outcome of an admission decision.
type Decision int

const (
	DecisionJoin Decision = iota
	DecisionBalk
)

func (d Decision) String() string {
	if d == DecisionJoin {
		return "join"
	}
	return "balk"
}

// AdmissionPolicy decides whether an arriving customer joins the queue.
// numInSystem is the pre-arrival count: the customer does not count toward
// its own decision. Implementations set c.Admitted.
type AdmissionPolicy interface {
	Decide(c *Customer, numInSystem int) Decision
}

// AlwaysAdmit admits every customer unconditionally (plain M/M/1). The
// simulator uses it when neither strategy has a finite limit.
type AlwaysAdmit struct{}

func (a *AlwaysAdmit) Decide(c *Customer, _ int) Decision {
	c.Admitted = true
	return DecisionJoin
}

// ThresholdPolicy admits a customer iff the number already in system does not
// exceed the limit of the customer's own strategy.
type ThresholdPolicy struct {
	thresholds Thresholds
}

// NewThresholdPolicy creates a ThresholdPolicy over fixed thresholds.
func NewThresholdPolicy(th Thresholds) *ThresholdPolicy {
	return &ThresholdPolicy{thresholds: th}
}

// Thresholds returns the limits the policy applies.
func (p *ThresholdPolicy) Thresholds() Thresholds {
	return p.thresholds
}

// Decide implements AdmissionPolicy.
func (p *ThresholdPolicy) Decide(c *Customer, numInSystem int) Decision {
	if numInSystem < 0 {
		panic(fmt.Sprintf("Decide: negative number in system %d", numInSystem))
	}
	c.Admitted = numInSystem <= c.Strategy.Threshold(p.thresholds)
	if c.Admitted {
		return DecisionJoin
	}
	return DecisionBalk
}

// StrategyAssigner draws each new customer's strategy independently:
// Selfish with probability p, Optimal otherwise.
type StrategyAssigner struct {
	proportion float64
	rng        *rand.Rand
}

// NewStrategyAssigner fails with ErrInvalidProportion unless p is in [0,1].
func NewStrategyAssigner(p float64, rng *rand.Rand) (*StrategyAssigner, error) {
	if !(p >= 0 && p <= 1) {
		return nil, fmt.Errorf("%w: %v not in [0,1]", ErrInvalidProportion, p)
	}
	return &StrategyAssigner{proportion: p, rng: rng}, nil
}

// Assign returns the strategy of the next customer. One draw is consumed per
// call regardless of p, so the stream stays aligned across strategy mixes.
func (a *StrategyAssigner) Assign() Strategy {
	if a.rng.Float64() < a.proportion {
		return StrategySelfish
	}
	return StrategyOptimal
}
