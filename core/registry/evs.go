package registry

import (
	"fmt"

	"github.com/kilianp07/energylp/core/lp"
)

// EVArray holds the EV charging variables of one interval as a
// charge-event × charger grid. The interval dimension is the registry
// sequence, so together the arena forms interval × event × charger.
// Nil slots are the constant zero.
type EVArray struct {
	Key
	Spill    bool
	Chargers []string
	Events   int

	// per event, nil for spill arrays
	InitialSOCMWh []*lp.Variable
	FinalSOCMWh   []*lp.Variable

	// [event][charger]
	ElectricChargeMWh       [][]*lp.Variable
	ElectricChargeBinary    [][]*lp.Variable
	ElectricDischargeMWh    [][]*lp.Variable
	ElectricDischargeBinary [][]*lp.Variable
	ElectricLossMWh         [][]*lp.Variable
}

// NewEVArray allocates an empty grid for the given chargers and events.
func NewEVArray(asset string, interval int, spill bool, chargers []string, events int) *EVArray {
	grid := func() [][]*lp.Variable {
		g := make([][]*lp.Variable, events)
		for j := range g {
			g[j] = make([]*lp.Variable, len(chargers))
		}
		return g
	}
	return &EVArray{
		Key:                     Key{Asset: asset, Index: interval},
		Spill:                   spill,
		Chargers:                chargers,
		Events:                  events,
		InitialSOCMWh:           make([]*lp.Variable, events),
		FinalSOCMWh:             make([]*lp.Variable, events),
		ElectricChargeMWh:       grid(),
		ElectricChargeBinary:    grid(),
		ElectricDischargeMWh:    grid(),
		ElectricDischargeBinary: grid(),
		ElectricLossMWh:         grid(),
	}
}

func (a *EVArray) Category() Category {
	if a.Spill {
		return CategorySpillEVArray
	}
	return CategoryEVArray
}

// Grid returns the [event][charger] matrix of a slot attribute.
func (a *EVArray) Grid(attr string) ([][]*lp.Variable, error) {
	switch attr {
	case ElectricCharge:
		return a.ElectricChargeMWh, nil
	case ElectricChargeBinary:
		return a.ElectricChargeBinary, nil
	case ElectricDischarge:
		return a.ElectricDischargeMWh, nil
	case ElectricDischargeBinary:
		return a.ElectricDischargeBinary, nil
	case ElectricLoss:
		return a.ElectricLossMWh, nil
	default:
		return nil, fmt.Errorf("registry: ev array has no attribute %q", attr)
	}
}

func (a *EVArray) mustGrid(attr string) [][]*lp.Variable {
	g, err := a.Grid(attr)
	if err != nil {
		panic(err)
	}
	return g
}

// SumOverChargers sums attr over every charger for one charge event.
func (a *EVArray) SumOverChargers(attr string, event int) lp.Expr {
	return lp.Sum(a.mustGrid(attr)[event]...)
}

// SumOverEvents sums attr over every charge event for one charger.
func (a *EVArray) SumOverEvents(attr string, charger int) lp.Expr {
	g := a.mustGrid(attr)
	var e lp.Builder
	for j := range g {
		e.Add(g[j][charger], 1)
	}
	return e.Expr()
}

// EventTotal is the solved value of SumOverChargers.
func (a *EVArray) EventTotal(sol lp.Solution, attr string, event int) float64 {
	return sol.Eval(a.SumOverChargers(attr, event))
}

// ChargerTotal is the solved value of SumOverEvents.
func (a *EVArray) ChargerTotal(sol lp.Solution, attr string, charger int) float64 {
	return sol.Eval(a.SumOverEvents(attr, charger))
}

var slotAttributes = []struct {
	attr   string
	binary bool
}{
	{ElectricCharge, false},
	{ElectricChargeBinary, true},
	{ElectricDischarge, false},
	{ElectricDischargeBinary, true},
	{ElectricLoss, false},
}

// Fields flattens every non-nil slot. Flow sums over an interval see all
// charger slots through this.
func (a *EVArray) Fields() []Field {
	var out []Field
	for _, s := range slotAttributes {
		for _, row := range a.mustGrid(s.attr) {
			for _, v := range row {
				if v != nil {
					out = append(out, Field{Attribute: s.attr, Var: v, Binary: s.binary})
				}
			}
		}
	}
	for _, v := range a.InitialSOCMWh {
		if v != nil {
			out = append(out, Field{Attribute: InitialSOC, Var: v})
		}
	}
	for _, v := range a.FinalSOCMWh {
		if v != nil {
			out = append(out, Field{Attribute: FinalSOC, Var: v})
		}
	}
	return out
}
