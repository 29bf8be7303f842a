package assets

import (
	"fmt"
	"math"

	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

const (
	DefaultChargerTurndown       = 0.1
	DefaultChargeEventEfficiency = 0.9
	DefaultSpillChargerPowerMW   = 10_000.0
)

// EVsConfig describes a set of chargers serving the charge events of the
// interval data. Each charger has a minimum output of turndown × its power.
type EVsConfig struct {
	Name                  string    `json:"name"`
	ChargersPowerMW       []float64 `json:"chargers_power_mw"`
	ChargerTurndown       float64   `json:"charger_turndown"`
	ChargeEventEfficiency float64   `json:"charge_event_efficiency"`
	SpillChargerPowerMW   float64   `json:"spill_charger_power_mw"`
}

// SetDefaults fills unset fields.
func (c *EVsConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "evs"
	}
	if c.ChargerTurndown == 0 {
		c.ChargerTurndown = DefaultChargerTurndown
	}
	if c.ChargeEventEfficiency == 0 {
		c.ChargeEventEfficiency = DefaultChargeEventEfficiency
	}
	if c.SpillChargerPowerMW == 0 {
		c.SpillChargerPowerMW = DefaultSpillChargerPowerMW
	}
}

// Validate checks the configuration.
func (c EVsConfig) Validate() error {
	if err := checkName(c.Name); err != nil {
		return err
	}
	if len(c.ChargersPowerMW) == 0 {
		return invalid(c.Name, "at least one charger is required")
	}
	for k, mw := range c.ChargersPowerMW {
		if mw <= 0 {
			return invalid(c.Name, "charger %d power must be positive, got %v", k, mw)
		}
	}
	if c.ChargerTurndown < 0 || c.ChargerTurndown > 1 {
		return invalid(c.Name, "charger_turndown must be in [0, 1], got %v", c.ChargerTurndown)
	}
	if c.SpillChargerPowerMW <= 0 {
		return invalid(c.Name, "spill_charger_power_mw must be positive, got %v", c.SpillChargerPowerMW)
	}
	return checkFraction(c.Name, "charge_event_efficiency", c.ChargeEventEfficiency)
}

type charger struct {
	name  string
	maxMW float64
	minMW float64
}

// EVs smart-charges electric vehicles. Every interval holds a charger
// array and a spill charger array over the same charge events; the spill
// chargers keep charge events satisfiable and are penalised.
type EVs struct {
	cfg      EVsConfig
	chargers []charger
	spill    []charger
}

// NewEVs validates cfg and returns an EVs asset.
func NewEVs(cfg EVsConfig) (*EVs, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &EVs{cfg: cfg}
	for k, mw := range cfg.ChargersPowerMW {
		e.chargers = append(e.chargers, charger{name: fmt.Sprintf("charger-%d", k), maxMW: mw, minMW: mw * cfg.ChargerTurndown})
	}
	e.spill = []charger{{name: "spill-charger-0", maxMW: cfg.SpillChargerPowerMW}}
	return e, nil
}

func (e *EVs) Name() string { return e.cfg.Name }

func names(cs []charger) []string {
	out := make([]string, len(cs))
	for k, c := range cs {
		out[k] = c.name
	}
	return out
}

func slotName(asset, attr string, i, event int, charger string) string {
	return fmt.Sprintf("%s-event-%d-%s", varName(asset, attr, i), event, charger)
}

func (e *EVs) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	evs := fc.Data.EVs
	if evs == nil {
		return nil, invalid(e.cfg.Name, "interval data has no charge events")
	}
	p, n, events := fc.Problem, e.cfg.Name, evs.Events()

	fleet := registry.NewEVArray(n, i, false, names(e.chargers), events)
	spill := registry.NewEVArray(n, i, true, names(e.spill), events)
	for j := 0; j < events; j++ {
		required := evs.ChargeEventMWh[j]
		fleet.InitialSOCMWh[j] = p.Continuous(fmt.Sprintf("%s-event-%d", varName(n, registry.InitialSOC, i), j), 0, required)
		fleet.FinalSOCMWh[j] = p.Continuous(fmt.Sprintf("%s-event-%d", varName(n, registry.FinalSOC, i), j), 0, required)

		skip := fc.Flags.LimitChargeVariablesToValidEvents && !evs.Active(i, j)
		if skip {
			continue
		}
		for k, c := range e.chargers {
			maxMWh := fc.Freq.MWToMWh(c.maxMW)
			fleet.ElectricChargeMWh[j][k] = p.Continuous(slotName(n, registry.ElectricCharge, i, j, c.name), 0, maxMWh)
			fleet.ElectricChargeBinary[j][k] = p.Binary(slotName(n, registry.ElectricChargeBinary, i, j, c.name))
			fleet.ElectricLossMWh[j][k] = p.Continuous(slotName(n, registry.ElectricLoss, i, j, c.name), 0, math.Inf(1))
			if fc.Flags.AllowEVsDischarge {
				fleet.ElectricDischargeMWh[j][k] = p.Continuous(slotName(n, registry.ElectricDischarge, i, j, c.name), 0, maxMWh)
				fleet.ElectricDischargeBinary[j][k] = p.Binary(slotName(n, registry.ElectricDischargeBinary, i, j, c.name))
			}
		}
		for k, c := range e.spill {
			spill.ElectricChargeMWh[j][k] = p.Continuous(slotName(n, registry.ElectricCharge, i, j, c.name), 0, fc.Freq.MWToMWh(c.maxMW))
			spill.ElectricChargeBinary[j][k] = p.Binary(slotName(n, registry.ElectricChargeBinary, i, j, c.name))
		}
	}
	return []registry.VariableSet{fleet, spill}, nil
}

func activeRHS(active bool) lp.Expr {
	if active {
		return lp.Constant(1)
	}
	return lp.Constant(0)
}

func (e *EVs) constrainSlots(fc FormulationContext, a *registry.EVArray, chargers []charger, i int) {
	p, n := fc.Problem, e.cfg.Name
	for j := 0; j < a.Events; j++ {
		active := activeRHS(fc.Data.EVs.Active(i, j))
		for k, c := range chargers {
			pairs := []struct {
				attr      string
				cont, bin *lp.Variable
			}{
				{"charge", a.ElectricChargeMWh[j][k], a.ElectricChargeBinary[j][k]},
				{"discharge", a.ElectricDischargeMWh[j][k], a.ElectricDischargeBinary[j][k]},
			}
			for _, pair := range pairs {
				if pair.cont == nil {
					continue
				}
				prefix := slotName(n, pair.attr, i, j, c.name)
				if a.Spill {
					prefix = slotName(n, "spill-"+pair.attr, i, j, c.name)
				}
				p.ConstrainMax(prefix+"-max", pair.cont, pair.bin, fc.Freq.MWToMWh(c.maxMW))
				p.ConstrainMin(prefix+"-min", pair.cont, pair.bin, fc.Freq.MWToMWh(c.minMW))
				p.Le(prefix+"-active", lp.Sum(pair.bin), active)
			}
		}
	}
}

func (e *EVs) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	fleet, err := r.EVArray(false, i, e.cfg.Name)
	if err != nil {
		return err
	}
	spill, err := r.EVArray(true, i, e.cfg.Name)
	if err != nil {
		return err
	}
	p, n := fc.Problem, e.cfg.Name

	e.constrainSlots(fc, fleet, e.chargers, i)
	e.constrainSlots(fc, spill, e.spill, i)

	// one charger per charge event and one charge event per charger
	for j := 0; j < fleet.Events; j++ {
		busy := fleet.SumOverChargers(registry.ElectricChargeBinary, j).
			AddExpr(fleet.SumOverChargers(registry.ElectricDischargeBinary, j))
		if len(busy.Terms) > 0 {
			p.Le(fmt.Sprintf("%s-event-%d", varName(n, "single_charger", i), j), busy, lp.Constant(1))
		}
	}
	for k := range fleet.Chargers {
		busy := fleet.SumOverEvents(registry.ElectricChargeBinary, k).
			AddExpr(fleet.SumOverEvents(registry.ElectricDischargeBinary, k))
		if len(busy.Terms) > 0 {
			p.Le(fmt.Sprintf("%s-%s", varName(n, "single_event", i), fleet.Chargers[k]), busy, lp.Constant(1))
		}
	}

	for j := 0; j < fleet.Events; j++ {
		lhs := lp.Sum(fleet.InitialSOCMWh[j]).
			AddExpr(fleet.SumOverChargers(registry.ElectricCharge, j)).
			AddExpr(spill.SumOverChargers(registry.ElectricCharge, j)).
			Sub(fleet.SumOverChargers(registry.ElectricDischarge, j)).
			Sub(spill.SumOverChargers(registry.ElectricDischarge, j)).
			Sub(fleet.SumOverChargers(registry.ElectricLoss, j))
		p.Eq(fmt.Sprintf("%s-event-%d", varName(n, "soc_balance", i), j), lhs, lp.Sum(fleet.FinalSOCMWh[j]))

		for k := range fleet.Chargers {
			loss := fleet.ElectricLossMWh[j][k]
			if loss == nil {
				continue
			}
			p.Eq(slotName(n, "losses", i, j, fleet.Chargers[k]), lp.Sum(loss),
				lp.Term(fleet.ElectricChargeMWh[j][k], 1-e.cfg.ChargeEventEfficiency))
		}
	}
	return nil
}

func (e *EVs) ConstrainAfterIntervals(fc FormulationContext, r *registry.Registry) error {
	seq := r.EVArrays(false, e.cfg.Name)
	if len(seq) == 0 {
		return nil
	}
	p, n := fc.Problem, e.cfg.Name
	first, last := seq[0], seq[len(seq)-1]
	for j := 0; j < first.Events; j++ {
		for i := 1; i < len(seq); i++ {
			p.Eq(fmt.Sprintf("%s-event-%d", varName(n, "soc_link", i), j), lp.Sum(seq[i].InitialSOCMWh[j]), lp.Sum(seq[i-1].FinalSOCMWh[j]))
		}
		p.Eq(fmt.Sprintf("%s-event-%d-initial_soc", n, j), lp.Sum(first.InitialSOCMWh[j]), lp.Constant(0))
		p.Eq(fmt.Sprintf("%s-event-%d-final_soc", n, j), lp.Sum(last.FinalSOCMWh[j]), lp.Constant(fc.Data.EVs.ChargeEventMWh[j]))
	}
	return nil
}
