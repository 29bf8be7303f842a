// Package ecokpi rebuilds daily site records from stored results.
package ecokpi

import (
	"time"

	"gonum.org/v1/gonum/floats"

	eco "github.com/kilianp07/energylp/core/metrics/eco"
	"github.com/kilianp07/energylp/core/results"
)

// Run is one stored optimisation result and the time its interval 0 starts.
type Run struct {
	Start  time.Time
	Result *results.SimulationResult
}

// Backfill adds the feasible runs of history to the store. Each run counts
// towards the day it starts on.
func Backfill(store eco.Store, history []Run, gasIntensity float64) error {
	for _, h := range history {
		res := h.Result
		if res == nil || !res.Feasible {
			continue
		}
		rec := eco.Record{
			Site:         res.Site,
			Date:         eco.Day(h.Start),
			ImportedMWh:  floats.Sum(res.ImportMWh()),
			ExportedMWh:  floats.Sum(res.ExportMWh()),
			CarbonTonnes: res.CarbonTonnes(gasIntensity),
			Runs:         1,
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}
