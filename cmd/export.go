package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/inference-sim/balking-sim/sim"
)

var customerColumns = []string{
	"customer", "strategy", "admitted", "arrival", "wait", "service_start", "service_time", "service_end", "cost",
}

var observationColumns = []string{
	"time", "num_in_system", "num_in_queue",
	"num_selfish", "num_optimal", "num_selfish_in_queue", "num_optimal_in_queue",
	"running_mean_in_system", "running_mean_in_queue",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// customerRows renders records one row per customer; balkers leave the
// service columns empty.
func customerRows(records []sim.CustomerRecord) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, customerColumns)
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Strategy.String(),
			strconv.FormatBool(r.Admitted),
			formatFloat(r.ArrivalTime),
			"", "", "", "",
			formatFloat(r.Cost),
		}
		if r.Admitted {
			row[4] = formatFloat(r.WaitingTime())
			row[5] = formatFloat(r.ServiceStartTime)
			row[6] = formatFloat(r.ServiceTime())
			row[7] = formatFloat(r.DepartureTime)
		}
		rows = append(rows, row)
	}
	return rows
}

// observationRows renders one row per observation. The running means are the
// unweighted average over the observations so far, for convergence plots.
func observationRows(obs []sim.Observation) [][]string {
	inSystem := make([]int, len(obs))
	inQueue := make([]int, len(obs))
	for i, o := range obs {
		inSystem[i] = o.NumInSystem
		inQueue[i] = o.NumInQueue
	}
	meanInSystem := sim.MovingAverage(inSystem)
	meanInQueue := sim.MovingAverage(inQueue)

	rows := make([][]string, 0, len(obs)+1)
	rows = append(rows, observationColumns)
	for i, o := range obs {
		rows = append(rows, []string{
			formatFloat(o.Time),
			strconv.Itoa(o.NumInSystem),
			strconv.Itoa(o.NumInQueue),
			strconv.Itoa(o.NumSelfish),
			strconv.Itoa(o.NumOptimal),
			strconv.Itoa(o.NumSelfishInQueue),
			strconv.Itoa(o.NumOptimalInQueue),
			formatFloat(meanInSystem[i]),
			formatFloat(meanInQueue[i]),
		})
	}
	return rows
}

func writeCustomersCSV(path string, records []sim.CustomerRecord) error {
	return writeCSV(path, customerRows(records))
}

func writeObservationsCSV(path string, obs []sim.Observation) error {
	return writeCSV(path, observationRows(obs))
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
