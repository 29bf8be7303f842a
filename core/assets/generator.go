package assets

import (
	"math"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// GeneratorConfig describes a gas fired combined heat and power generator.
// Efficiencies are fractions of the gas consumed.
type GeneratorConfig struct {
	Name                         string  `json:"name"`
	ElectricPowerMaxMW           float64 `json:"electric_power_max_mw"`
	ElectricPowerMinMW           float64 `json:"electric_power_min_mw"`
	ElectricEfficiencyPct        float64 `json:"electric_efficiency_pct"`
	HighTemperatureEfficiencyPct float64 `json:"high_temperature_efficiency_pct"`
	LowTemperatureEfficiencyPct  float64 `json:"low_temperature_efficiency_pct"`
}

// SetDefaults fills unset fields.
func (c *GeneratorConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "generator"
	}
}

// Validate checks the configuration.
func (c GeneratorConfig) Validate() error {
	if err := checkName(c.Name); err != nil {
		return err
	}
	if c.ElectricPowerMaxMW <= 0 {
		return invalid(c.Name, "electric_power_max_mw must be positive, got %v", c.ElectricPowerMaxMW)
	}
	if c.ElectricPowerMinMW < 0 || c.ElectricPowerMinMW > c.ElectricPowerMaxMW {
		return invalid(c.Name, "electric_power_min_mw %v outside [0, %v]", c.ElectricPowerMinMW, c.ElectricPowerMaxMW)
	}
	if err := checkFraction(c.Name, "electric_efficiency_pct", c.ElectricEfficiencyPct); err != nil {
		return err
	}
	for field, v := range map[string]float64{
		"high_temperature_efficiency_pct": c.HighTemperatureEfficiencyPct,
		"low_temperature_efficiency_pct":  c.LowTemperatureEfficiencyPct,
	} {
		if v < 0 || v > 1 {
			return invalid(c.Name, "%s must be in [0, 1], got %v", field, v)
		}
	}
	if total := c.ElectricEfficiencyPct + c.HighTemperatureEfficiencyPct + c.LowTemperatureEfficiencyPct; total > 1 {
		return invalid(c.Name, "efficiencies sum to %v, above 1", total)
	}
	return nil
}

// Generator turns gas into electricity and heat at fixed ratios.
type Generator struct {
	cfg GeneratorConfig
}

// NewGenerator validates cfg and returns a Generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

func (g *Generator) Name() string { return g.cfg.Name }

func (g *Generator) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p, n, inf := fc.Problem, g.cfg.Name, math.Inf(1)
	return []registry.VariableSet{&registry.GeneratorInterval{
		Key:                          registry.Key{Asset: n, Index: i},
		ElectricGenerationMWh:        p.Continuous(varName(n, registry.ElectricGeneration, i), 0, fc.Freq.MWToMWh(g.cfg.ElectricPowerMaxMW)),
		GasConsumptionMWh:            p.Continuous(varName(n, registry.GasConsumption, i), 0, inf),
		HighTemperatureGenerationMWh: p.Continuous(varName(n, registry.HighTemperatureGeneration, i), 0, inf),
		LowTemperatureGenerationMWh:  p.Continuous(varName(n, registry.LowTemperatureGeneration, i), 0, inf),
		Binary:                       p.Binary(varName(n, registry.BinaryAttr, i)),
	}}, nil
}

func (g *Generator) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	v, err := one[*registry.GeneratorInterval](r, registry.CategoryGenerator, g.cfg.Name, i)
	if err != nil {
		return err
	}
	p, n := fc.Problem, g.cfg.Name
	gas := v.GasConsumptionMWh
	p.Eq(varName(n, "electric_ratio", i), lp.Sum(v.ElectricGenerationMWh), lp.Term(gas, g.cfg.ElectricEfficiencyPct))
	p.Eq(varName(n, "high_temperature_ratio", i), lp.Sum(v.HighTemperatureGenerationMWh), lp.Term(gas, g.cfg.HighTemperatureEfficiencyPct))
	p.Eq(varName(n, "low_temperature_ratio", i), lp.Sum(v.LowTemperatureGenerationMWh), lp.Term(gas, g.cfg.LowTemperatureEfficiencyPct))
	p.ConstrainMax(varName(n, "electric_max", i), v.ElectricGenerationMWh, v.Binary, fc.Freq.MWToMWh(g.cfg.ElectricPowerMaxMW))
	p.ConstrainMin(varName(n, "electric_min", i), v.ElectricGenerationMWh, v.Binary, fc.Freq.MWToMWh(g.cfg.ElectricPowerMinMW))
	return nil
}

func (g *Generator) ConstrainAfterIntervals(FormulationContext, *registry.Registry) error { return nil }
