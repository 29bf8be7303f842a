package assets

import (
	"math"

	"github.com/kilianp07/energylp/core/registry"
)

// SpillConfig names a spill asset.
type SpillConfig struct {
	Name string `json:"name"`
}

// Spill is an unbounded source and sink for every flow. The objective
// penalises its use so it only runs when nothing else can balance a flow.
type Spill struct {
	nop
	cfg SpillConfig
}

// NewSpill returns a Spill, named "spill" by default.
func NewSpill(cfg SpillConfig) *Spill {
	if cfg.Name == "" {
		cfg.Name = "spill"
	}
	return &Spill{cfg: cfg}
}

func (s *Spill) Name() string { return s.cfg.Name }

func (s *Spill) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p, inf := fc.Problem, math.Inf(1)
	return []registry.VariableSet{&registry.SpillInterval{
		Key:                          registry.Key{Asset: s.cfg.Name, Index: i},
		ElectricGenerationMWh:        p.Continuous(varName(s.cfg.Name, registry.ElectricGeneration, i), 0, inf),
		ElectricLoadMWh:              p.Continuous(varName(s.cfg.Name, registry.ElectricLoad, i), 0, inf),
		HighTemperatureGenerationMWh: p.Continuous(varName(s.cfg.Name, registry.HighTemperatureGeneration, i), 0, inf),
		LowTemperatureLoadMWh:        p.Continuous(varName(s.cfg.Name, registry.LowTemperatureLoad, i), 0, inf),
	}}, nil
}
