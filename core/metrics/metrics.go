package metrics

import "time"

// SolveEvent summarises one optimisation run.
type SolveEvent struct {
	RunID     string
	Site      string
	Objective string
	Feasible  bool
	// Value is the optimised objective, NaN when infeasible.
	Value        float64
	Spill        bool
	SpillColumns int
	Intervals    int
	Variables    int
	Constraints  int
	Nodes        int
	ImportMWh    float64
	ExportMWh    float64
	// Cost is the price weighted grid and gas bill of the run.
	Cost float64
	// CarbonTonnes is the grid and gas emission of the run.
	CarbonTonnes float64
	Duration     time.Duration
	Time         time.Time
}

// IntervalPoint is the site outcome of one interval.
type IntervalPoint struct {
	Index           int
	Time            time.Time
	ImportMWh       float64
	ExportMWh       float64
	Price           float64
	CarbonIntensity float64
}

// MetricsSink records optimisation runs for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// IntervalRecorder is implemented by sinks able to store per interval
// site flows.
type IntervalRecorder interface {
	RecordIntervals(runID string, points []IntervalPoint) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }

// Ensure NopSink implements IntervalRecorder.
func (NopSink) RecordIntervals(string, []IntervalPoint) error { return nil }
