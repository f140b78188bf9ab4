package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Unbounded is the threshold value meaning "always join".
const Unbounded = math.MaxInt

// MaxThresholdSearch caps the candidate limits evaluated by OptimalThreshold.
const MaxThresholdSearch = 1 << 20

// Thresholds holds the admission limits derived once per run from (λ, μ, β).
// A customer joins iff the number already in system is ≤ its strategy's limit;
// a negative limit means the customer always balks.
type Thresholds struct {
	Selfish int
	Optimal int
	// Degenerate is set when the optimal search could not stabilise and
	// Optimal fell back to Selfish.
	Degenerate bool
}

// MarshalYAML writes each limit as a number, or "unbounded".
func (t Thresholds) MarshalYAML() (any, error) {
	return struct {
		Selfish    any  `yaml:"selfish"`
		Optimal    any  `yaml:"optimal"`
		Degenerate bool `yaml:"degenerate"`
	}{yamlThreshold(t.Selfish), yamlThreshold(t.Optimal), t.Degenerate}, nil
}

func yamlThreshold(n int) any {
	if n == Unbounded {
		return FormatThreshold(n)
	}
	return n
}

func (t Thresholds) String() string {
	return fmt.Sprintf("Thresholds: (selfish: %s, optimal: %s, degenerate: %v)",
		FormatThreshold(t.Selfish), FormatThreshold(t.Optimal), t.Degenerate)
}

// FormatThreshold renders a limit, spelling out Unbounded.
func FormatThreshold(n int) string {
	if n == Unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", n)
}

// ExpectedSojourn is the expected time in an M/M/1 system for a customer who
// finds n others there: (n+1)/μ.
func ExpectedSojourn(n int, mu float64) float64 {
	return float64(n+1) / mu
}

// SelfishThreshold is the individually optimal limit floor(β·μ) - 1: the
// largest n with ExpectedSojourn(n, μ) ≤ β. It is -1 (always balk) when
// β·μ < 1 and Unbounded for an infinite toll.
//
// A customer whose expected sojourn equals the toll joins. When β·μ is an
// integer this admits one more customer than the strict rule (n+1)/μ < β.
func SelfishThreshold(mu, toll float64) int {
	v := math.Floor(toll * mu)
	if math.IsInf(v, 1) || v >= float64(Unbounded) {
		return Unbounded
	}
	// β·μ may round to either side of an integer; settle on the sojourn itself.
	n := int(v) - 1
	if ExpectedSojourn(n+1, mu) <= toll {
		n++
	}
	for n >= 0 && ExpectedSojourn(n, mu) > toll {
		n--
	}
	return n
}

// OptimalThreshold returns the admission limit in 0..selfish that minimises
// the long-run average cost per arrival of the truncated M/M/1/(n+1) queue.
// Ties resolve to the smaller limit. The boolean reports a degenerate search:
// λ ≥ μ with a selfish limit too large to truncate, in which case the selfish
// limit is returned unchanged.
func OptimalThreshold(lambda, mu, toll float64, selfish int) (int, bool) {
	if selfish < 0 {
		return selfish, false
	}
	if math.IsInf(toll, 1) {
		if lambda < mu {
			return Unbounded, false
		}
		return selfish, true
	}
	limit := selfish
	if limit > MaxThresholdSearch {
		if lambda >= mu {
			return selfish, true
		}
		limit = MaxThresholdSearch
	}
	best, bestCost := 0, math.Inf(1)
	costs := truncatedCosts(lambda, mu, toll)
	for n := 0; n <= limit; n++ {
		if c := costs(); c < bestCost {
			best, bestCost = n, c
		}
	}
	return best, false
}

// truncatedCosts returns an iterator yielding P_K·β + L/λ for K = 1, 2, ...
// in O(1) per step. With weights w_i = ρ^i (ρ ≤ 1) or w_i = ρ^(i-K) (ρ > 1),
// a = Σ w_i and b = Σ i·w_i (resp. Σ (K-i)·w_i) are accumulated so that
// neither sum overflows.
func truncatedCosts(lambda, mu, toll float64) func() float64 {
	rho := lambda / mu
	if rho <= 1 {
		a, b, w, k := 1.0, 0.0, 1.0, 0
		return func() float64 {
			k++
			w *= rho
			a += w
			b += float64(k) * w
			pBlock := w / a
			return pBlock*toll + (b/a)/lambda
		}
	}
	r := 1 / rho
	a, b, w, k := 1.0, 0.0, 1.0, 0
	return func() float64 {
		k++
		w *= r
		a += w
		b += float64(k) * w
		pBlock := 1 / a
		l := float64(k) - b/a
		return pBlock*toll + l/lambda
	}
}

// ComputeThresholds derives both limits for a run. A degenerate optimum is
// logged as a warning; the run continues with Optimal = Selfish.
func ComputeThresholds(lambda, mu, toll float64) Thresholds {
	selfish := SelfishThreshold(mu, toll)
	optimal, degenerate := OptimalThreshold(lambda, mu, toll, selfish)
	if degenerate {
		logrus.Warnf("%v: lambda=%v >= mu=%v, optimal threshold falls back to selfish threshold %s",
			ErrDegenerateOptimum, lambda, mu, FormatThreshold(selfish))
	}
	return Thresholds{Selfish: selfish, Optimal: optimal, Degenerate: degenerate}
}

// NaorThreshold evaluates Naor's (1969) closed-form condition for the socially
// optimal system capacity ν:
//
//	[ν(1-ρ) - ρ(1-ρ^ν)]/(1-ρ)² ≤ β·μ < [(ν+1)(1-ρ) - ρ(1-ρ^(ν+1))]/(1-ρ)²
//
// and returns ν-1, i.e. the limit in the same "join iff n ≤ limit" convention
// as OptimalThreshold. The search gives up at MaxThresholdSearch and returns
// Unbounded.
func NaorThreshold(lambda, mu, toll float64) int {
	if math.IsInf(toll, 1) {
		return Unbounded
	}
	v := mu * toll
	rho := lambda / mu
	for nu := 0; nu <= MaxThresholdSearch; nu++ {
		if naorBound(nu, rho) <= v && v < naorBound(nu+1, rho) {
			return nu - 1
		}
	}
	return Unbounded
}

// naorBound is [ν(1-ρ) - ρ(1-ρ^ν)]/(1-ρ)², with its limit ν(ν+1)/2 at ρ = 1.
func naorBound(nu int, rho float64) float64 {
	n := float64(nu)
	if rho == 1 {
		return n * (n + 1) / 2
	}
	return (n*(1-rho) - rho*(1-math.Pow(rho, n))) / ((1 - rho) * (1 - rho))
}
