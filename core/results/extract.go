package results

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/logger"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

const (
	// BalanceTolerance is the absolute error allowed on every balance.
	BalanceTolerance = 1e-4
	// ChargeEventTolerance is the absolute error allowed on delivered EV energy.
	ChargeEventTolerance = 1e-5
	// SpillTolerance is the total below which a spill column counts as unused.
	SpillTolerance = 1e-6
)

// Options control extraction.
type Options struct {
	FailOnSpillAssetUse bool
	// RunID identifies the run; a random one is generated when empty.
	RunID string
	Log   logger.Logger
}

// SimulationResult is the validated outcome of one optimisation. It must not
// be modified once returned.
type SimulationResult struct {
	RunID        string
	Site         string
	Table        *Table
	Data         *intervals.Data
	Feasible     bool
	Spill        bool
	SpillColumns map[string]float64
	Objective    float64
}

// Extract reads the solved values of every registered variable into a table,
// derives totals and EV projections, and validates the balances. Validation
// and spill detection are skipped for infeasible solutions, whose values are
// NaN.
func Extract(r *registry.Registry, data *intervals.Data, sol lp.Solution, opts Options) (*SimulationResult, error) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	n := data.Len()
	if r.Intervals() != n {
		return nil, fmt.Errorf("results: registry holds %d intervals, data has %d", r.Intervals(), n)
	}

	t := NewTable(n)
	extractAssets(t, r, sol)
	extractEVs(t, r, sol)
	if err := addTotals(t); err != nil {
		return nil, err
	}
	if err := addInputs(t, data); err != nil {
		return nil, err
	}

	res := &SimulationResult{
		RunID:     opts.RunID,
		Table:     t,
		Data:      data,
		Feasible:  sol.Feasible,
		Objective: sol.Objective,
	}
	if sites := r.Assets(registry.CategorySite); len(sites) > 0 {
		res.Site = sites[0]
	}
	if !sol.Feasible {
		opts.Log.Warnf("run %s is infeasible, skipping validation", res.RunID)
		return res, nil
	}
	if err := Validate(t, r, data); err != nil {
		return nil, err
	}
	if err := detectSpill(res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// eval is Solution.Eval that stays NaN for infeasible solutions even when
// the expression has no terms.
func eval(sol lp.Solution, e lp.Expr) float64 {
	if !sol.Feasible {
		return math.NaN()
	}
	return sol.Eval(e)
}

func extractAssets(t *Table, r *registry.Registry, sol lp.Solution) {
	for _, c := range registry.Categories() {
		if c == registry.CategoryEVArray || c == registry.CategorySpillEVArray {
			continue
		}
		for _, asset := range r.Assets(c) {
			for i, s := range r.AcrossTime(c, asset) {
				for _, f := range s.Fields() {
					col := t.ensure(Column{
						Name:      asset + "-" + f.Attribute,
						Asset:     asset,
						Attribute: f.Attribute,
						Kind:      KindAsset,
						Spill:     c == registry.CategorySpill,
						Binary:    f.Binary,
					})
					col.Values[i] = sol.Value(f.Var)
				}
			}
		}
	}
}

var evSlots = []struct {
	attr   string
	binary bool
}{
	{registry.ElectricCharge, false},
	{registry.ElectricChargeBinary, true},
	{registry.ElectricDischarge, false},
	{registry.ElectricDischargeBinary, true},
	{registry.ElectricLoss, false},
}

// hasSlot reports whether any interval allocated a variable for attr.
func hasSlot(arrays []*registry.EVArray, attr string) bool {
	for _, a := range arrays {
		g, err := a.Grid(attr)
		if err != nil {
			return false
		}
		for _, row := range g {
			for _, v := range row {
				if v != nil {
					return true
				}
			}
		}
	}
	return false
}

func eventPrefix(asset string, spill bool, event int) string {
	if spill {
		return fmt.Sprintf("%s-spill-charge-event-%d-", asset, event)
	}
	return fmt.Sprintf("%s-charge-event-%d-", asset, event)
}

// extractEVs writes per charger columns, which take part in totals, and per
// charge event projections, which do not.
func extractEVs(t *Table, r *registry.Registry, sol lp.Solution) {
	for _, asset := range r.Assets(registry.CategoryEVArray) {
		fleet := r.EVArrays(false, asset)
		spill := r.EVArrays(true, asset)
		for _, arrays := range [][]*registry.EVArray{fleet, spill} {
			if len(arrays) == 0 {
				continue
			}
			isSpill := arrays[0].Spill
			for _, slot := range evSlots {
				if !hasSlot(arrays, slot.attr) {
					continue
				}
				for k, charger := range arrays[0].Chargers {
					col := t.ensure(Column{
						Name:      fmt.Sprintf("%s-%s-%s", asset, charger, slot.attr),
						Asset:     asset,
						Attribute: slot.attr,
						Kind:      KindAsset,
						Spill:     isSpill,
						Binary:    slot.binary,
					})
					for i, a := range arrays {
						col.Values[i] = eval(sol, a.SumOverEvents(slot.attr, k))
					}
				}
				for j := 0; j < arrays[0].Events; j++ {
					col := t.ensure(Column{
						Name:      eventPrefix(asset, isSpill, j) + slot.attr,
						Asset:     asset,
						Attribute: slot.attr,
						Kind:      KindProjection,
						Spill:     isSpill,
						Binary:    slot.binary,
					})
					for i, a := range arrays {
						col.Values[i] = eval(sol, a.SumOverChargers(slot.attr, j))
					}
				}
			}
		}
		if len(fleet) == 0 {
			continue
		}
		for j := 0; j < fleet[0].Events; j++ {
			prefix := eventPrefix(asset, false, j)
			soc := []struct {
				attr string
				vars func(a *registry.EVArray) *lp.Variable
			}{
				{registry.InitialSOC, func(a *registry.EVArray) *lp.Variable { return a.InitialSOCMWh[j] }},
				{registry.FinalSOC, func(a *registry.EVArray) *lp.Variable { return a.FinalSOCMWh[j] }},
			}
			for _, s := range soc {
				col := t.ensure(Column{Name: prefix + s.attr, Asset: asset, Attribute: s.attr, Kind: KindProjection})
				for i, a := range fleet {
					col.Values[i] = sol.Value(s.vars(a))
				}
			}

			total := t.ensure(Column{
				Name:      prefix + "total-" + registry.ElectricCharge,
				Asset:     asset,
				Attribute: registry.ElectricCharge,
				Kind:      KindProjection,
			})
			for i := range fleet {
				total.Values[i] = eval(sol, fleet[i].SumOverChargers(registry.ElectricCharge, j))
				if i < len(spill) {
					total.Values[i] += eval(sol, spill[i].SumOverChargers(registry.ElectricCharge, j))
				}
			}
		}
	}
}

// addTotals sums the asset columns of every flow attribute.
func addTotals(t *Table) error {
	for _, attr := range registry.FlowAttributes {
		vals := make([]float64, t.Rows())
		for _, c := range t.Select(func(c *Column) bool {
			return c.Kind == KindAsset && !c.Binary && c.Attribute == attr
		}) {
			floats.Add(vals, c.Values)
		}
		if err := t.Add(Column{Name: attr, Attribute: attr, Kind: KindTotal, Values: vals}); err != nil {
			return err
		}
	}
	return nil
}

func addInputs(t *Table, data *intervals.Data) error {
	inputs := []struct {
		name string
		s    []float64
	}{
		{"electricity_prices", data.ElectricityPrices},
		{"electricity_carbon_intensities", data.ElectricityCarbonIntensities},
		{"gas_prices", data.GasPrices},
	}
	for _, in := range inputs {
		vals := make([]float64, t.Rows())
		copy(vals, in.s)
		if err := t.Add(Column{Name: in.name, Attribute: in.name, Kind: KindInput, Values: vals}); err != nil {
			return err
		}
	}
	return nil
}

func detectSpill(res *SimulationResult, opts Options) error {
	cols := res.Table.Select(func(c *Column) bool {
		return c.Kind == KindAsset && c.Spill && !c.Binary
	})
	used := make(map[string]float64)
	for _, c := range cols {
		if s := c.Sum(); s > SpillTolerance {
			used[c.Name] = s
		}
	}
	res.Spill = len(used) > 0
	res.SpillColumns = used
	if !res.Spill {
		return nil
	}
	if opts.FailOnSpillAssetUse {
		return &SpillError{Columns: used, Total: len(cols)}
	}
	opts.Log.Warnf("run %s: spill occurred: %s", res.RunID, describeSpill(used, len(cols)))
	return nil
}
