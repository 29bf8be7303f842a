package assets

import (
	"math"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// HeatPumpConfig describes an electric heat pump lifting low temperature
// heat to high temperature.
type HeatPumpConfig struct {
	Name            string  `json:"name"`
	ElectricPowerMW float64 `json:"electric_power_mw"`
	COP             float64 `json:"cop"`
}

// SetDefaults fills unset fields.
func (c *HeatPumpConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "heat-pump"
	}
	if c.COP == 0 {
		c.COP = 3
	}
}

// Validate checks the configuration.
func (c HeatPumpConfig) Validate() error {
	if err := checkName(c.Name); err != nil {
		return err
	}
	if c.ElectricPowerMW <= 0 {
		return invalid(c.Name, "electric_power_mw must be positive, got %v", c.ElectricPowerMW)
	}
	if c.COP < 1 {
		return invalid(c.Name, "COP must be 1 or above, got %v", c.COP)
	}
	return nil
}

// HeatPump consumes electricity and low temperature heat to produce high
// temperature heat.
type HeatPump struct {
	cfg HeatPumpConfig
}

// NewHeatPump validates cfg and returns a HeatPump.
func NewHeatPump(cfg HeatPumpConfig) (*HeatPump, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HeatPump{cfg: cfg}, nil
}

func (h *HeatPump) Name() string { return h.cfg.Name }

func (h *HeatPump) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p, n := fc.Problem, h.cfg.Name
	return []registry.VariableSet{&registry.HeatPumpInterval{
		Key:                          registry.Key{Asset: n, Index: i},
		ElectricLoadMWh:              p.Continuous(varName(n, registry.ElectricLoad, i), 0, fc.Freq.MWToMWh(h.cfg.ElectricPowerMW)),
		HighTemperatureGenerationMWh: p.Continuous(varName(n, registry.HighTemperatureGeneration, i), 0, math.Inf(1)),
		LowTemperatureLoadMWh:        p.Continuous(varName(n, registry.LowTemperatureLoad, i), 0, math.Inf(1)),
	}}, nil
}

func (h *HeatPump) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	v, err := one[*registry.HeatPumpInterval](r, registry.CategoryHeatPump, h.cfg.Name, i)
	if err != nil {
		return err
	}
	p, n := fc.Problem, h.cfg.Name
	p.Eq(varName(n, "cop", i), lp.Sum(v.HighTemperatureGenerationMWh), lp.Term(v.ElectricLoadMWh, h.cfg.COP))
	p.Eq(varName(n, "energy_balance", i), lp.Sum(v.HighTemperatureGenerationMWh), lp.Sum(v.ElectricLoadMWh, v.LowTemperatureLoadMWh))
	return nil
}

func (h *HeatPump) ConstrainAfterIntervals(FormulationContext, *registry.Registry) error { return nil }
