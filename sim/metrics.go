// Tracks time-weighted occupancy and per-customer cost, split into a warm-up
// window (discarded) and a measurement window (reported).

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// windowStats is the accumulator of one window.
type windowStats struct {
	occupancy []float64 // occupancy[n] = time spent with n in system
	duration  float64

	systemArea [2]float64 // ∫ customers of the strategy in system dt
	queueArea  [2]float64 // ∫ customers of the strategy waiting dt

	arrivals [2]int
	admitted [2]int
	balked   [2]int

	finalized   [2]int     // cost records (balked + departed)
	costSum     [2]float64 // Σ cost over cost records
	served      [2]int     // departed customers
	waitSum     [2]float64
	systemSum   [2]float64
	systemTimes []float64
}

func (w *windowStats) addState(duration float64, n int) {
	for len(w.occupancy) <= n {
		w.occupancy = append(w.occupancy, 0)
	}
	w.occupancy[n] += duration
	w.duration += duration
}

// StatisticsCollector accumulates the statistics of one run. Warm-up exclusion
// is a hard cutoff at WarmUp: state intervals straddling it are split, and
// customers arriving before it are left out of every customer statistic.
type StatisticsCollector struct {
	WarmUp   float64
	warm     windowStats
	measured windowStats
}

// NewStatisticsCollector creates a collector with warm-up cutoff w.
func NewStatisticsCollector(w float64) *StatisticsCollector {
	return &StatisticsCollector{WarmUp: w}
}

// InWarmUp reports whether time t falls in the warm-up window.
func (sc *StatisticsCollector) InWarmUp(t float64) bool {
	return t < sc.WarmUp
}

func (sc *StatisticsCollector) window(inWarmUp bool) *windowStats {
	if inWarmUp {
		return &sc.warm
	}
	return &sc.measured
}

// RecordState adds duration to the occupancy bucket for n in the chosen window.
func (sc *StatisticsCollector) RecordState(duration float64, n int, inWarmUp bool) {
	if duration < 0 {
		panic(fmt.Sprintf("RecordState: negative duration %v", duration))
	}
	if n < 0 {
		panic(fmt.Sprintf("RecordState: negative number in system %d", n))
	}
	sc.window(inWarmUp).addState(duration, n)
}

// RecordInterval records that the system held occ over [start, end),
// splitting the interval at the warm-up cutoff.
func (sc *StatisticsCollector) RecordInterval(start, end float64, occ Occupancy) {
	if end < start {
		panic(fmt.Sprintf("RecordInterval: end %v before start %v", end, start))
	}
	switch {
	case end <= sc.WarmUp:
		sc.recordOccupancy(end-start, occ, true)
	case start >= sc.WarmUp:
		sc.recordOccupancy(end-start, occ, false)
	default:
		sc.recordOccupancy(sc.WarmUp-start, occ, true)
		sc.recordOccupancy(end-sc.WarmUp, occ, false)
	}
}

func (sc *StatisticsCollector) recordOccupancy(duration float64, occ Occupancy, inWarmUp bool) {
	sc.RecordState(duration, occ.NumInSystem(), inWarmUp)
	w := sc.window(inWarmUp)
	for _, st := range Strategies {
		w.systemArea[st] += duration * float64(occ.InSystem[st])
		w.queueArea[st] += duration * float64(occ.InQueue[st])
	}
}

// RecordDecision counts an arrival and its join/balk outcome, attributed to
// the window of its arrival time.
func (sc *StatisticsCollector) RecordDecision(c *Customer) {
	w := sc.window(sc.InWarmUp(c.ArrivalTime))
	w.arrivals[c.Strategy]++
	if c.Admitted {
		w.admitted[c.Strategy]++
	} else {
		w.balked[c.Strategy]++
	}
}

// RecordCustomerOutcome accumulates the cost of a finalized customer,
// attributed to the window of its arrival time.
func (sc *StatisticsCollector) RecordCustomerOutcome(rec CustomerRecord) {
	w := sc.window(sc.InWarmUp(rec.ArrivalTime))
	w.finalized[rec.Strategy]++
	w.costSum[rec.Strategy] += rec.Cost
	if rec.Admitted {
		w.served[rec.Strategy]++
		w.waitSum[rec.Strategy] += rec.WaitingTime()
		w.systemSum[rec.Strategy] += rec.SystemTime()
		w.systemTimes = append(w.systemTimes, rec.SystemTime())
	}
}

// Totals returns arrival, admitted and balked counts across both windows.
func (sc *StatisticsCollector) Totals() (arrivals, admitted, balked int) {
	for _, w := range []*windowStats{&sc.warm, &sc.measured} {
		for _, s := range Strategies {
			arrivals += w.arrivals[s]
			admitted += w.admitted[s]
			balked += w.balked[s]
		}
	}
	return arrivals, admitted, balked
}

// StrategySummary is the measurement-window breakdown for one strategy.
type StrategySummary struct {
	Arrivals        int     `json:"arrivals" yaml:"arrivals"`
	Admitted        int     `json:"admitted" yaml:"admitted"`
	Balked          int     `json:"balked" yaml:"balked"`
	BalkProbability float64 `json:"balk_probability" yaml:"balk_probability"`
	MeanWaitingTime float64 `json:"mean_waiting_time" yaml:"mean_waiting_time"`
	MeanSystemTime  float64 `json:"mean_system_time" yaml:"mean_system_time"`
	MeanCost        float64 `json:"mean_cost" yaml:"mean_cost"`
	MeanNumInSystem float64 `json:"mean_num_in_system" yaml:"mean_num_in_system"`
	MeanNumInQueue  float64 `json:"mean_num_in_queue" yaml:"mean_num_in_queue"`
}

// Summary reports the measurement window only.
type Summary struct {
	MeasuredTime    float64   `json:"measured_time" yaml:"measured_time"`
	MeanNumInSystem float64   `json:"mean_num_in_system" yaml:"mean_num_in_system"`
	MeanNumInQueue  float64   `json:"mean_num_in_queue" yaml:"mean_num_in_queue"`
	Utilisation     float64   `json:"utilisation" yaml:"utilisation"`
	Distribution    []float64 `json:"distribution" yaml:"distribution"` // Distribution[n] = P(n in system)

	Arrivals        int     `json:"arrivals" yaml:"arrivals"`
	Admitted        int     `json:"admitted" yaml:"admitted"`
	Balked          int     `json:"balked" yaml:"balked"`
	Finalized       int     `json:"finalized" yaml:"finalized"`
	MeanCost        float64 `json:"mean_cost" yaml:"mean_cost"`
	MeanWaitingTime float64 `json:"mean_waiting_time" yaml:"mean_waiting_time"`
	MeanSystemTime  float64 `json:"mean_system_time" yaml:"mean_system_time"`
	SystemTimeP50   float64 `json:"system_time_p50" yaml:"system_time_p50"`
	SystemTimeP90   float64 `json:"system_time_p90" yaml:"system_time_p90"`
	SystemTimeP99   float64 `json:"system_time_p99" yaml:"system_time_p99"`

	ByStrategy map[Strategy]StrategySummary `json:"by_strategy" yaml:"by_strategy"`
}

// Summary computes the measurement-window statistics. Means over empty
// populations are zero.
func (sc *StatisticsCollector) Summary() Summary {
	w := &sc.measured
	s := Summary{
		MeasuredTime: w.duration,
		ByStrategy:   make(map[Strategy]StrategySummary, len(Strategies)),
	}

	if w.duration > 0 {
		s.Distribution = make([]float64, len(w.occupancy))
		copy(s.Distribution, w.occupancy)
		floats.Scale(1/w.duration, s.Distribution)

		sizes := make([]float64, len(w.occupancy))
		queued := make([]float64, len(w.occupancy))
		for n := range sizes {
			sizes[n] = float64(n)
			queued[n] = float64(max(n-1, 0))
		}
		s.MeanNumInSystem = stat.Mean(sizes, w.occupancy)
		s.MeanNumInQueue = stat.Mean(queued, w.occupancy)
		s.Utilisation = 1 - w.occupancy[0]/w.duration
	}

	var costSum, waitSum, systemSum float64
	var served int
	for _, st := range Strategies {
		s.Arrivals += w.arrivals[st]
		s.Admitted += w.admitted[st]
		s.Balked += w.balked[st]
		s.Finalized += w.finalized[st]
		costSum += w.costSum[st]
		waitSum += w.waitSum[st]
		systemSum += w.systemSum[st]
		served += w.served[st]

		s.ByStrategy[st] = StrategySummary{
			Arrivals:        w.arrivals[st],
			Admitted:        w.admitted[st],
			Balked:          w.balked[st],
			BalkProbability: ratio(float64(w.balked[st]), w.arrivals[st]),
			MeanWaitingTime: ratio(w.waitSum[st], w.served[st]),
			MeanSystemTime:  ratio(w.systemSum[st], w.served[st]),
			MeanCost:        ratio(w.costSum[st], w.finalized[st]),
		}
		if w.duration > 0 {
			b := s.ByStrategy[st]
			b.MeanNumInSystem = w.systemArea[st] / w.duration
			b.MeanNumInQueue = w.queueArea[st] / w.duration
			s.ByStrategy[st] = b
		}
	}
	s.MeanCost = ratio(costSum, s.Finalized)
	s.MeanWaitingTime = ratio(waitSum, served)
	s.MeanSystemTime = ratio(systemSum, served)

	if len(w.systemTimes) > 0 {
		sorted := make([]float64, len(w.systemTimes))
		copy(sorted, w.systemTimes)
		sort.Float64s(sorted)
		s.SystemTimeP50 = CalculatePercentile(sorted, 50)
		s.SystemTimeP90 = CalculatePercentile(sorted, 90)
		s.SystemTimeP99 = CalculatePercentile(sorted, 99)
	}
	return s
}

func ratio(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
