// Package optimizer runs the formulation pass over a set of assets, solves
// the resulting program once and returns the validated result table.
package optimizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/energylp/core/assets"
	"github.com/kilianp07/energylp/core/freq"
	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/logger"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/objective"
	"github.com/kilianp07/energylp/core/registry"
	"github.com/kilianp07/energylp/core/results"
)

var (
	// ErrSiteCount indicates zero or several site assets.
	ErrSiteCount = errors.New("optimizer: exactly one site asset is required")
	// ErrDuplicateAsset indicates two assets sharing a name.
	ErrDuplicateAsset = errors.New("optimizer: duplicate asset name")
)

// Optimizer formulates and solves one simulation per call to Optimize. It
// holds no per-run state and can be reused.
type Optimizer struct {
	objective objective.Config
	flags     assets.Flags
	freq      freq.Freq
	solver    lp.Solver
	sink      metrics.MetricsSink
	log       logger.Logger
	start     time.Time
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithObjective selects the objective and its penalties.
func WithObjective(cfg objective.Config) Option {
	return func(o *Optimizer) { o.objective = cfg }
}

// WithFlags sets the formulation flags.
func WithFlags(f assets.Flags) Option {
	return func(o *Optimizer) { o.flags = f }
}

// WithFreq sets the interval length.
func WithFreq(f freq.Freq) Option {
	return func(o *Optimizer) { o.freq = f }
}

// WithSolver replaces the default SimplexSolver.
func WithSolver(s lp.Solver) Option {
	return func(o *Optimizer) { o.solver = s }
}

// WithMetrics records every run on sink.
func WithMetrics(sink metrics.MetricsSink) Option {
	return func(o *Optimizer) { o.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) { o.log = l }
}

// WithStart timestamps interval 0 for recorded interval metrics. Without it
// the start of the current interval is used.
func WithStart(t time.Time) Option {
	return func(o *Optimizer) { o.start = t }
}

// New returns an Optimizer minimising price by default.
func New(opts ...Option) (*Optimizer, error) {
	o := &Optimizer{freq: freq.Freq{Mins: freq.DefaultMinutes}}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if o.sink == nil {
		o.sink = metrics.NopSink{}
	}
	if o.solver == nil {
		o.solver = lp.NewSimplexSolver(o.log)
	}
	if o.freq.Mins <= 0 {
		return nil, fmt.Errorf("optimizer: interval length must be positive, got %d minutes", o.freq.Mins)
	}
	o.objective.SetDefaults()
	if err := o.objective.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Optimize formulates the assets over data, solves and extracts the result.
// The caller's data is not modified. An infeasible program is reported
// through SimulationResult.Feasible, not as an error.
func (o *Optimizer) Optimize(as []assets.Asset, data *intervals.Data) (*results.SimulationResult, error) {
	began := time.Now()
	if data == nil {
		return nil, fmt.Errorf("optimizer: %w", intervals.ErrNoIntervals)
	}
	d := *data
	d.SetDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	as, err := withSpill(as)
	if err != nil {
		return nil, err
	}

	fc := assets.FormulationContext{Problem: lp.NewProblem(), Data: &d, Freq: o.freq, Flags: o.flags}
	r, err := formulate(fc, as)
	if err != nil {
		return nil, err
	}

	fn, err := objective.Lookup(o.objective.Mode)
	if err != nil {
		return nil, err
	}
	obj, err := fn(r, &d, o.objective)
	if err != nil {
		return nil, fmt.Errorf("optimizer: objective: %w", err)
	}
	p := fc.Problem
	p.SetObjective(obj)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("optimizer: formulation: %w", err)
	}
	o.log.Debugw("formulated", map[string]any{
		"intervals":   d.Len(),
		"assets":      len(as),
		"variables":   len(p.Variables()),
		"constraints": len(p.Constraints()),
		"objective":   o.objective.Mode,
	})

	sol, err := o.solver.Solve(p)
	if err != nil {
		return nil, fmt.Errorf("optimizer: solve: %w", err)
	}
	if sol.Feasible {
		o.log.Infof("solved %s objective %.4f in %d nodes", o.objective.Mode, sol.Objective, sol.Nodes)
	} else {
		o.log.Warnf("%s problem is infeasible after %d nodes", o.objective.Mode, sol.Nodes)
	}

	res, err := results.Extract(r, &d, sol, results.Options{
		FailOnSpillAssetUse: o.flags.FailOnSpillAssetUse,
		Log:                 o.log,
	})
	if err != nil {
		return nil, err
	}
	o.record(res, p, sol, time.Since(began))
	return res, nil
}

// withSpill checks asset names and the site count, and appends a default
// spill asset when none is configured.
func withSpill(as []assets.Asset) ([]assets.Asset, error) {
	sites, spills := 0, 0
	for _, a := range as {
		switch a.(type) {
		case *assets.Site:
			sites++
		case *assets.Spill:
			spills++
		}
	}
	if sites != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrSiteCount, sites)
	}
	out := append([]assets.Asset(nil), as...)
	if spills == 0 {
		out = append(out, assets.NewSpill(assets.SpillConfig{}))
	}
	seen := make(map[string]bool, len(out))
	for _, a := range out {
		if seen[a.Name()] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAsset, a.Name())
		}
		seen[a.Name()] = true
	}
	return out, nil
}

// formulate runs the three formulation steps in interval order and seals the
// registry.
func formulate(fc assets.FormulationContext, as []assets.Asset) (*registry.Registry, error) {
	r := registry.New()
	for i := 0; i < fc.Data.Len(); i++ {
		for _, a := range as {
			sets, err := a.CreateIntervalVariables(fc, i)
			if err != nil {
				return nil, fmt.Errorf("optimizer: %s interval %d: %w", a.Name(), i, err)
			}
			if err := r.Append(sets...); err != nil {
				return nil, fmt.Errorf("optimizer: %s interval %d: %w", a.Name(), i, err)
			}
		}
		for _, a := range as {
			if err := a.ConstrainWithinInterval(fc, r, i); err != nil {
				return nil, fmt.Errorf("optimizer: %s interval %d: %w", a.Name(), i, err)
			}
		}
	}
	for _, a := range as {
		if err := a.ConstrainAfterIntervals(fc, r); err != nil {
			return nil, fmt.Errorf("optimizer: %s: %w", a.Name(), err)
		}
	}
	r.Seal()
	return r, nil
}
