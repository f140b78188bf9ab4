package trace

// StrategyCounts tallies decisions for one strategy.
type StrategyCounts struct {
	Admitted int
	Balked   int
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions int
	AdmittedCount  int
	BalkedCount    int
	ByStrategy     map[string]StrategyCounts

	// MeanNumSeenOnArrival is the average pre-arrival count. With Poisson
	// arrivals it estimates the time-average number in system.
	MeanNumSeenOnArrival float64
	MaxNumSeenOnArrival  int

	Departures     int
	MeanSystemTime float64
	MaxSystemTime  float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ByStrategy: make(map[string]StrategyCounts),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	seen := 0
	for _, a := range st.Admissions {
		counts := summary.ByStrategy[a.Strategy]
		if a.Admitted {
			summary.AdmittedCount++
			counts.Admitted++
		} else {
			summary.BalkedCount++
			counts.Balked++
		}
		summary.ByStrategy[a.Strategy] = counts
		seen += a.NumInSystem
		if a.NumInSystem > summary.MaxNumSeenOnArrival {
			summary.MaxNumSeenOnArrival = a.NumInSystem
		}
	}
	if summary.TotalDecisions > 0 {
		summary.MeanNumSeenOnArrival = float64(seen) / float64(summary.TotalDecisions)
	}

	summary.Departures = len(st.Departures)
	if summary.Departures > 0 {
		total := 0.0
		for _, d := range st.Departures {
			total += d.SystemTime
			if d.SystemTime > summary.MaxSystemTime {
				summary.MaxSystemTime = d.SystemTime
			}
		}
		summary.MeanSystemTime = total / float64(summary.Departures)
	}

	return summary
}
