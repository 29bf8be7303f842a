package assets

import (
	"math"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// DefaultBatteryEfficiency is the round trip efficiency used when unset.
const DefaultBatteryEfficiency = 0.9

// BatteryConfig describes an electric battery.
type BatteryConfig struct {
	Name             string  `json:"name"`
	PowerMW          float64 `json:"power_mw"`
	CapacityMWh      float64 `json:"capacity_mwh"`
	EfficiencyPct    float64 `json:"efficiency_pct"`
	InitialChargeMWh float64 `json:"initial_charge_mwh"`
	// FinalChargeMWh pins the state of charge after the last interval.
	FinalChargeMWh *float64 `json:"final_charge_mwh,omitempty"`
}

// SetDefaults fills unset fields.
func (c *BatteryConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "battery"
	}
	if c.EfficiencyPct == 0 {
		c.EfficiencyPct = DefaultBatteryEfficiency
	}
}

// Validate checks the configuration.
func (c BatteryConfig) Validate() error {
	if err := checkName(c.Name); err != nil {
		return err
	}
	if c.PowerMW <= 0 {
		return invalid(c.Name, "power_mw must be positive, got %v", c.PowerMW)
	}
	if c.CapacityMWh <= 0 {
		return invalid(c.Name, "capacity_mwh must be positive, got %v", c.CapacityMWh)
	}
	if err := checkFraction(c.Name, "efficiency_pct", c.EfficiencyPct); err != nil {
		return err
	}
	if c.InitialChargeMWh < 0 || c.InitialChargeMWh > c.CapacityMWh {
		return invalid(c.Name, "initial_charge_mwh %v outside [0, %v]", c.InitialChargeMWh, c.CapacityMWh)
	}
	if f := c.FinalChargeMWh; f != nil && (*f < 0 || *f > c.CapacityMWh) {
		return invalid(c.Name, "final_charge_mwh %v outside [0, %v]", *f, c.CapacityMWh)
	}
	return nil
}

// Battery stores electricity. Losses are charged on the way in.
type Battery struct {
	cfg BatteryConfig
}

// NewBattery validates cfg and returns a Battery.
func NewBattery(cfg BatteryConfig) (*Battery, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Battery{cfg: cfg}, nil
}

func (b *Battery) Name() string { return b.cfg.Name }

func (b *Battery) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p, n := fc.Problem, b.cfg.Name
	maxMWh := fc.Freq.MWToMWh(b.cfg.PowerMW)
	return []registry.VariableSet{&registry.BatteryInterval{
		Key:                     registry.Key{Asset: n, Index: i},
		ElectricChargeMWh:       p.Continuous(varName(n, registry.ElectricCharge, i), 0, maxMWh),
		ElectricChargeBinary:    p.Binary(varName(n, registry.ElectricChargeBinary, i)),
		ElectricDischargeMWh:    p.Continuous(varName(n, registry.ElectricDischarge, i), 0, maxMWh),
		ElectricDischargeBinary: p.Binary(varName(n, registry.ElectricDischargeBinary, i)),
		ElectricLossMWh:         p.Continuous(varName(n, registry.ElectricLoss, i), 0, math.Inf(1)),
		InitialSOCMWh:           p.Continuous(varName(n, registry.InitialSOC, i), 0, b.cfg.CapacityMWh),
		FinalSOCMWh:             p.Continuous(varName(n, registry.FinalSOC, i), 0, b.cfg.CapacityMWh),
	}}, nil
}

func (b *Battery) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	v, err := one[*registry.BatteryInterval](r, registry.CategoryBattery, b.cfg.Name, i)
	if err != nil {
		return err
	}
	p, n := fc.Problem, b.cfg.Name
	maxMWh := fc.Freq.MWToMWh(b.cfg.PowerMW)

	p.ConstrainMax(varName(n, "charge_max", i), v.ElectricChargeMWh, v.ElectricChargeBinary, maxMWh)
	p.ConstrainMax(varName(n, "discharge_max", i), v.ElectricDischargeMWh, v.ElectricDischargeBinary, maxMWh)
	p.Le(varName(n, "charge_or_discharge", i), lp.Sum(v.ElectricChargeBinary, v.ElectricDischargeBinary), lp.Constant(1))

	p.Eq(varName(n, "losses", i), lp.Sum(v.ElectricLossMWh), lp.Term(v.ElectricChargeMWh, 1-b.cfg.EfficiencyPct))
	p.Eq(varName(n, "soc_balance", i),
		lp.Sum(v.InitialSOCMWh, v.ElectricChargeMWh).Add(v.ElectricDischargeMWh, -1).Add(v.ElectricLossMWh, -1),
		lp.Sum(v.FinalSOCMWh),
	)
	return nil
}

func (b *Battery) ConstrainAfterIntervals(fc FormulationContext, r *registry.Registry) error {
	seq := registry.Typed[*registry.BatteryInterval](r.AcrossTime(registry.CategoryBattery, b.cfg.Name))
	if len(seq) == 0 {
		return nil
	}
	p, n := fc.Problem, b.cfg.Name
	for i := 1; i < len(seq); i++ {
		p.Eq(varName(n, "soc_link", i), lp.Sum(seq[i].InitialSOCMWh), lp.Sum(seq[i-1].FinalSOCMWh))
	}
	p.Eq(n+"-initial_charge", lp.Sum(seq[0].InitialSOCMWh), lp.Constant(b.cfg.InitialChargeMWh))
	if f := b.cfg.FinalChargeMWh; f != nil {
		p.Eq(n+"-final_charge", lp.Sum(seq[len(seq)-1].FinalSOCMWh), lp.Constant(*f))
	}
	return nil
}
