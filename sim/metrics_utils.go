// sim/metrics_utils.go
package sim

import (
	"math"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile is a util function that calculates the p-th percentile
// of a sorted data list, interpolating linearly between ranks.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))

	if upperIdx >= n {
		return float64(data[n-1])
	}
	if lowerIdx == upperIdx {
		return float64(data[lowerIdx])
	}
	lowerVal := float64(data[lowerIdx])
	upperVal := float64(data[upperIdx])
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// MovingAverage returns the running mean of values: out[k] is the mean of
// values[0..k]. The observation export uses it for convergence columns.
func MovingAverage[T IntOrFloat64](values []T) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for k, v := range values {
		sum += float64(v)
		out[k] = sum / float64(k+1)
	}
	return out
}
