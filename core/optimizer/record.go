package optimizer

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/results"
)

// record sends the run to the metrics sink. Sink failures are logged and
// never fail the run.
func (o *Optimizer) record(res *results.SimulationResult, p *lp.Problem, sol lp.Solution, took time.Duration) {
	now := time.Now()
	start := o.start
	if start.IsZero() {
		start = now.Truncate(time.Duration(o.freq.Mins) * time.Minute)
	}
	imp, exp := res.ImportMWh(), res.ExportMWh()
	ev := metrics.SolveEvent{
		RunID:        res.RunID,
		Site:         res.Site,
		Objective:    o.objective.Mode,
		Feasible:     res.Feasible,
		Value:        res.Objective,
		Spill:        res.Spill,
		SpillColumns: len(res.SpillColumns),
		Intervals:    res.Table.Rows(),
		Variables:    len(p.Variables()),
		Constraints:  len(p.Constraints()),
		Nodes:        sol.Nodes,
		ImportMWh:    floats.Sum(imp),
		ExportMWh:    floats.Sum(exp),
		Cost:         res.Cost(),
		CarbonTonnes: res.CarbonTonnes(o.objective.GasCarbonIntensity),
		Duration:     took,
		Time:         now,
	}
	if err := o.sink.RecordSolve(ev); err != nil {
		o.log.Errorf("solve metrics error: %v", err)
	}

	ir, ok := o.sink.(metrics.IntervalRecorder)
	if !ok || !res.Feasible {
		return
	}
	step := time.Duration(o.freq.Mins) * time.Minute
	points := make([]metrics.IntervalPoint, res.Table.Rows())
	for i := range points {
		points[i] = metrics.IntervalPoint{
			Index:           i,
			Time:            start.Add(time.Duration(i) * step),
			ImportMWh:       imp[i],
			ExportMWh:       exp[i],
			Price:           res.Data.ElectricityPrices[i],
			CarbonIntensity: res.Data.ElectricityCarbonIntensities[i],
		}
	}
	if err := ir.RecordIntervals(res.RunID, points); err != nil {
		o.log.Errorf("interval metrics error: %v", err)
	}
}
