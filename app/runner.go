// Package app wires a scenario configuration into a ready optimizer and
// hosts it behind the HTTP API.
package app

import (
	"fmt"
	"runtime"

	"github.com/kilianp07/energylp/config"
	"github.com/kilianp07/energylp/core/assets"
	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/logger"
	"github.com/kilianp07/energylp/core/lp"
	coremetrics "github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/optimizer"
	"github.com/kilianp07/energylp/core/results"
	_ "github.com/kilianp07/energylp/infra/metrics"
)

// Runner owns the optimizer and metric sinks built from a scenario. At most
// one Optimize call per CPU runs at a time; each is bounded by the solver
// time limit.
type Runner struct {
	slots chan struct{}
	opt   *optimizer.Optimizer
	sink  coremetrics.MetricsSink
}

// NewRunner builds the sinks, the solver and the optimizer described by cfg.
func NewRunner(cfg *config.Config, log logger.Logger) (*Runner, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	f, err := cfg.Freq()
	if err != nil {
		return nil, err
	}
	solver := lp.NewSimplexSolver(log)
	solver.Tolerance = cfg.Solver.Tolerance
	solver.MaxNodes = cfg.Solver.MaxNodes
	solver.TimeLimit = cfg.Solver.TimeLimit()

	opt, err := optimizer.New(
		optimizer.WithObjective(cfg.Objective),
		optimizer.WithFlags(cfg.Flags),
		optimizer.WithFreq(f),
		optimizer.WithSolver(solver),
		optimizer.WithMetrics(sink),
		optimizer.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return &Runner{slots: make(chan struct{}, runtime.NumCPU()), opt: opt, sink: sink}, nil
}

// Optimize solves one scenario.
func (r *Runner) Optimize(as []assets.Asset, data *intervals.Data) (*results.SimulationResult, error) {
	r.slots <- struct{}{}
	defer func() { <-r.slots }()
	return r.opt.Optimize(as, data)
}

// Close releases sinks holding a connection.
func (r *Runner) Close() {
	if c, ok := r.sink.(interface{ Close() }); ok {
		c.Close()
	}
}
