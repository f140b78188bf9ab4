package sim

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// TruncatedQueue is the steady state of an M/M/1/K queue: a single server with
// room for at most K customers in system. It is the model behind an admission
// threshold n, which caps the system at K = n+1.
type TruncatedQueue struct {
	Lambda float64
	Mu     float64
	K      int
	p      []float64 // p[i] = P(i in system), i = 0..K
}

// NewTruncatedQueue solves the M/M/1/K queue. p_i ∝ ρ^i is normalised in log
// space so that ρ > 1 with a large K does not overflow.
func NewTruncatedQueue(lambda, mu float64, capacity int) *TruncatedQueue {
	if capacity < 0 {
		panic(fmt.Sprintf("NewTruncatedQueue: capacity must be >= 0, got %d", capacity))
	}
	logRho := math.Log(lambda / mu)
	p := make([]float64, capacity+1)
	for i := range p {
		p[i] = float64(i) * logRho
	}
	logZ := floats.LogSumExp(p)
	for i := range p {
		p[i] = math.Exp(p[i] - logZ)
	}
	return &TruncatedQueue{Lambda: lambda, Mu: mu, K: capacity, p: p}
}

// Probabilities returns the state distribution P(0..K). Callers must not modify it.
func (q *TruncatedQueue) Probabilities() []float64 {
	return q.p
}

// BlockingProbability is P(K): the chance an arrival finds the system full.
func (q *TruncatedQueue) BlockingProbability() float64 {
	return q.p[q.K]
}

// MeanNumberInSystem is L = Σ i·p_i.
func (q *TruncatedQueue) MeanNumberInSystem() float64 {
	var l float64
	for i, pi := range q.p {
		l += float64(i) * pi
	}
	return l
}

// MeanNumberInQueue is Lq = L - (1 - p_0).
func (q *TruncatedQueue) MeanNumberInQueue() float64 {
	return q.MeanNumberInSystem() - (1 - q.p[0])
}

// Throughput is the effective admission (and departure) rate λ(1 - P_K).
func (q *TruncatedQueue) Throughput() float64 {
	return q.Lambda * (1 - q.BlockingProbability())
}

// MeanResponseTime is the mean sojourn of an admitted customer, by Little's law.
func (q *TruncatedQueue) MeanResponseTime() float64 {
	tput := q.Throughput()
	if tput == 0 {
		return 0
	}
	return q.MeanNumberInSystem() / tput
}

// CostPerArrival is the long-run average cost per arriving customer when
// blocked arrivals pay the toll and admitted ones pay their sojourn time:
// P_K·β + L/λ.
func (q *TruncatedQueue) CostPerArrival(toll float64) float64 {
	return q.BlockingProbability()*toll + q.MeanNumberInSystem()/q.Lambda
}

func (q *TruncatedQueue) String() string {
	var b strings.Builder
	b.WriteString("TruncatedQueue: ")
	fmt.Fprintf(&b, "lambda=%v; mu=%v; K=%d; L=%.4f; Pblock=%.4f; tput=%.4f", q.Lambda, q.Mu, q.K,
		q.MeanNumberInSystem(), q.BlockingProbability(), q.Throughput())
	return b.String()
}
