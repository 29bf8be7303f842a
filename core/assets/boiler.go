package assets

import (
	"math"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// DefaultBoilerEfficiency is the gas to heat efficiency used when unset.
const DefaultBoilerEfficiency = 0.8

// BoilerConfig describes a gas boiler producing high temperature heat.
type BoilerConfig struct {
	Name                           string  `json:"name"`
	HighTemperatureGenerationMaxMW float64 `json:"high_temperature_generation_max_mw"`
	HighTemperatureGenerationMinMW float64 `json:"high_temperature_generation_min_mw"`
	HighTemperatureEfficiencyPct   float64 `json:"high_temperature_efficiency_pct"`
}

// SetDefaults fills unset fields.
func (c *BoilerConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "boiler"
	}
	if c.HighTemperatureEfficiencyPct == 0 {
		c.HighTemperatureEfficiencyPct = DefaultBoilerEfficiency
	}
}

// Validate checks the configuration.
func (c BoilerConfig) Validate() error {
	if err := checkName(c.Name); err != nil {
		return err
	}
	if c.HighTemperatureGenerationMaxMW <= 0 {
		return invalid(c.Name, "high_temperature_generation_max_mw must be positive, got %v", c.HighTemperatureGenerationMaxMW)
	}
	if c.HighTemperatureGenerationMinMW < 0 || c.HighTemperatureGenerationMinMW > c.HighTemperatureGenerationMaxMW {
		return invalid(c.Name, "high_temperature_generation_min_mw %v outside [0, %v]",
			c.HighTemperatureGenerationMinMW, c.HighTemperatureGenerationMaxMW)
	}
	return checkFraction(c.Name, "high_temperature_efficiency_pct", c.HighTemperatureEfficiencyPct)
}

// Boiler burns gas into high temperature heat.
type Boiler struct {
	cfg BoilerConfig
}

// NewBoiler validates cfg and returns a Boiler.
func NewBoiler(cfg BoilerConfig) (*Boiler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Boiler{cfg: cfg}, nil
}

func (b *Boiler) Name() string { return b.cfg.Name }

func (b *Boiler) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p, n := fc.Problem, b.cfg.Name
	v := &registry.BoilerInterval{
		Key:                          registry.Key{Asset: n, Index: i},
		HighTemperatureGenerationMWh: p.Continuous(varName(n, registry.HighTemperatureGeneration, i), 0, fc.Freq.MWToMWh(b.cfg.HighTemperatureGenerationMaxMW)),
		GasConsumptionMWh:            p.Continuous(varName(n, registry.GasConsumption, i), 0, math.Inf(1)),
	}
	if b.cfg.HighTemperatureGenerationMinMW > 0 {
		v.Binary = p.Binary(varName(n, registry.BinaryAttr, i))
	}
	return []registry.VariableSet{v}, nil
}

func (b *Boiler) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	v, err := one[*registry.BoilerInterval](r, registry.CategoryBoiler, b.cfg.Name, i)
	if err != nil {
		return err
	}
	p, n := fc.Problem, b.cfg.Name
	p.Eq(varName(n, "efficiency", i), lp.Term(v.GasConsumptionMWh, b.cfg.HighTemperatureEfficiencyPct), lp.Sum(v.HighTemperatureGenerationMWh))
	if v.Binary != nil {
		p.ConstrainMax(varName(n, "max", i), v.HighTemperatureGenerationMWh, v.Binary, fc.Freq.MWToMWh(b.cfg.HighTemperatureGenerationMaxMW))
		p.ConstrainMin(varName(n, "min", i), v.HighTemperatureGenerationMWh, v.Binary, fc.Freq.MWToMWh(b.cfg.HighTemperatureGenerationMinMW))
	}
	return nil
}

func (b *Boiler) ConstrainAfterIntervals(FormulationContext, *registry.Registry) error { return nil }
