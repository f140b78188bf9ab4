package cmd

import (
	"fmt"
	"io"

	"github.com/inference-sim/balking-sim/sim"
)

// printResult displays the measurement-window summary of a run.
func printResult(w io.Writer, res *sim.Result) {
	s := res.Summary
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Run ID               : %s\n", res.RunID)
	fmt.Fprintf(w, "Seed                 : %d\n", res.Seed)
	fmt.Fprintf(w, "Selfish Threshold    : %s\n", sim.FormatThreshold(res.Thresholds.Selfish))
	fmt.Fprintf(w, "Optimal Threshold    : %s\n", sim.FormatThreshold(res.Thresholds.Optimal))
	fmt.Fprintf(w, "Measured Time        : %.2f\n", s.MeasuredTime)
	fmt.Fprintf(w, "Mean Number In System: %.4f\n", s.MeanNumInSystem)
	fmt.Fprintf(w, "Mean Number In Queue : %.4f\n", s.MeanNumInQueue)
	fmt.Fprintf(w, "Utilisation          : %.4f\n", s.Utilisation)
	fmt.Fprintf(w, "Arrivals             : %d (admitted %d, balked %d)\n", s.Arrivals, s.Admitted, s.Balked)
	if s.Finalized > 0 {
		fmt.Fprintf(w, "Mean Cost            : %.4f\n", s.MeanCost)
		fmt.Fprintf(w, "Mean Waiting Time    : %.4f\n", s.MeanWaitingTime)
		fmt.Fprintf(w, "Mean System Time     : %.4f (p50 %.4f, p90 %.4f, p99 %.4f)\n",
			s.MeanSystemTime, s.SystemTimeP50, s.SystemTimeP90, s.SystemTimeP99)
	}
	for _, st := range sim.Strategies {
		b := s.ByStrategy[st]
		if b.Arrivals == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-8s: arrivals %d, balk prob %.4f, wait %.4f, system %.4f, cost %.4f, in system %.4f, in queue %.4f\n",
			st, b.Arrivals, b.BalkProbability, b.MeanWaitingTime, b.MeanSystemTime, b.MeanCost,
			b.MeanNumInSystem, b.MeanNumInQueue)
	}
	fmt.Fprintln(w, "Distribution:")
	for n, p := range s.Distribution {
		if p > 0 {
			fmt.Fprintf(w, "  P(%d) = %.4f\n", n, p)
		}
	}
	if ts := res.TraceSummary; ts != nil {
		fmt.Fprintf(w, "Trace                : %d decisions, %d departures, mean seen on arrival %.4f\n",
			ts.TotalDecisions, ts.Departures, ts.MeanNumSeenOnArrival)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "WARNING: %s\n", warning)
	}
}

// printThresholds displays both admission limits, the closed-form check and
// the analytic truncated queue behind each finite limit.
func printThresholds(w io.Writer, cfg sim.Config) {
	th := sim.ComputeThresholds(cfg.ArrivalRate, cfg.ServiceRate, cfg.Toll)
	fmt.Fprintln(w, "=== Admission Thresholds ===")
	fmt.Fprintf(w, "lambda=%v mu=%v toll=%v rho=%.4f\n", cfg.ArrivalRate, cfg.ServiceRate, cfg.Toll,
		cfg.ArrivalRate/cfg.ServiceRate)
	fmt.Fprintf(w, "Selfish (floor(toll*mu)-1): %s\n", sim.FormatThreshold(th.Selfish))
	fmt.Fprintf(w, "Optimal (cost search)     : %s\n", sim.FormatThreshold(th.Optimal))
	fmt.Fprintf(w, "Optimal (Naor closed form): %s\n",
		sim.FormatThreshold(sim.NaorThreshold(cfg.ArrivalRate, cfg.ServiceRate, cfg.Toll)))
	if th.Degenerate {
		fmt.Fprintln(w, "WARNING: optimal search is degenerate; optimal customers follow the selfish limit")
	}
	for _, st := range sim.Strategies {
		limit := st.Threshold(th)
		if limit < 0 || limit == sim.Unbounded || limit >= sim.MaxThresholdSearch {
			continue
		}
		q := sim.NewTruncatedQueue(cfg.ArrivalRate, cfg.ServiceRate, limit+1)
		fmt.Fprintf(w, "  %-8s %s: cost/arrival %.4f\n", st, q, q.CostPerArrival(cfg.Toll))
	}
}
