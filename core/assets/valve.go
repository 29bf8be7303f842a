package assets

import (
	"math"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// ValveConfig names a valve.
type ValveConfig struct {
	Name string `json:"name"`
}

// Valve lets high temperature heat flow to the low temperature side.
type Valve struct {
	cfg ValveConfig
}

// NewValve returns a Valve, named "valve" by default.
func NewValve(cfg ValveConfig) *Valve {
	if cfg.Name == "" {
		cfg.Name = "valve"
	}
	return &Valve{cfg: cfg}
}

func (v *Valve) Name() string { return v.cfg.Name }

func (v *Valve) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p, n := fc.Problem, v.cfg.Name
	return []registry.VariableSet{&registry.ValveInterval{
		Key:                         registry.Key{Asset: n, Index: i},
		HighTemperatureLoadMWh:      p.Continuous(varName(n, registry.HighTemperatureLoad, i), 0, math.Inf(1)),
		LowTemperatureGenerationMWh: p.Continuous(varName(n, registry.LowTemperatureGeneration, i), 0, math.Inf(1)),
	}}, nil
}

func (v *Valve) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	s, err := one[*registry.ValveInterval](r, registry.CategoryValve, v.cfg.Name, i)
	if err != nil {
		return err
	}
	fc.Problem.Eq(varName(v.cfg.Name, "heat_balance", i), lp.Sum(s.HighTemperatureLoadMWh), lp.Sum(s.LowTemperatureGenerationMWh))
	return nil
}

func (v *Valve) ConstrainAfterIntervals(FormulationContext, *registry.Registry) error { return nil }
