package results

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// values assigns solved values to variables by name.
type values map[string]float64

type heatFixture struct {
	p    *lp.Problem
	r    *registry.Registry
	data *intervals.Data
}

// newHeatFixture registers a site, a spill and a heat pump over two
// intervals.
func newHeatFixture(t *testing.T) heatFixture {
	t.Helper()
	data := &intervals.Data{
		ElectricityPrices:           []float64{10, 20},
		HighTemperatureLoadMWh:      []float64{3, 1.5},
		LowTemperatureGenerationMWh: []float64{2, 1},
	}
	data.SetDefaults()
	require.NoError(t, data.Validate())

	p, r := lp.NewProblem(), registry.New()
	inf := math.Inf(1)
	for i := 0; i < 2; i++ {
		v := func(name string) *lp.Variable { return p.Continuous(fmt.Sprintf("%s-%d", name, i), 0, inf) }
		require.NoError(t, r.Append(
			&registry.SiteInterval{
				Key:            registry.Key{Asset: "site", Index: i},
				ImportPowerMWh: v("import"),
				ExportPowerMWh: v("export"),
			},
			&registry.SpillInterval{
				Key:                          registry.Key{Asset: "spill", Index: i},
				ElectricGenerationMWh:        v("spill-gen"),
				ElectricLoadMWh:              v("spill-load"),
				HighTemperatureGenerationMWh: v("spill-ht-gen"),
				LowTemperatureLoadMWh:        v("spill-lt-load"),
			},
			&registry.HeatPumpInterval{
				Key:                          registry.Key{Asset: "heat-pump", Index: i},
				ElectricLoadMWh:              v("hp-load"),
				HighTemperatureGenerationMWh: v("hp-ht"),
				LowTemperatureLoadMWh:        v("hp-lt"),
			},
		))
	}
	r.Seal()
	return heatFixture{p: p, r: r, data: data}
}

func solve(t *testing.T, p *lp.Problem, vals values) lp.Solution {
	t.Helper()
	x := make([]float64, len(p.Variables()))
	for name, val := range vals {
		v, ok := p.Variable(name)
		require.True(t, ok, name)
		x[v.ID()] = val
	}
	return lp.NewSolution(0, x)
}

func balanced() values {
	return values{
		"import-0": 1, "hp-load-0": 1, "hp-ht-0": 3, "hp-lt-0": 2,
		"import-1": 0.5, "hp-load-1": 0.5, "hp-ht-1": 1.5, "hp-lt-1": 1,
	}
}

func TestExtractColumns(t *testing.T) {
	f := newHeatFixture(t)
	res, err := Extract(f.r, f.data, solve(t, f.p, balanced()), Options{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.True(t, res.Feasible)
	assert.False(t, res.Spill)
	assert.Empty(t, res.SpillColumns)

	tbl := res.Table
	assert.Equal(t, []float64{1, 0.5}, tbl.Values("site-import_power_mwh"))
	assert.Equal(t, []float64{3, 1.5}, tbl.Values("heat-pump-high_temperature_generation_mwh"))
	assert.Equal(t, []float64{1, 0.5}, tbl.Values(registry.ElectricLoad))
	assert.Equal(t, []float64{0, 0}, tbl.Values(registry.ElectricCharge))
	assert.Equal(t, []float64{10, 20}, tbl.Values("electricity_prices"))

	col, ok := tbl.Column("spill-low_temperature_load_mwh")
	require.True(t, ok)
	assert.True(t, col.Spill)
	assert.Equal(t, KindAsset, col.Kind)

	total, ok := tbl.Column(registry.HighTemperatureGeneration)
	require.True(t, ok)
	assert.Equal(t, KindTotal, total.Kind)
	assert.InDelta(t, 4.5, total.Sum(), 1e-12)
}

func TestExtractGeneratesRunID(t *testing.T) {
	f := newHeatFixture(t)
	res, err := Extract(f.r, f.data, solve(t, f.p, balanced()), Options{})
	require.NoError(t, err)
	assert.Len(t, res.RunID, 36)
}

func TestExtractImbalance(t *testing.T) {
	f := newHeatFixture(t)
	vals := balanced()
	vals["import-1"] = 0.7
	_, err := Extract(f.r, f.data, solve(t, f.p, vals), Options{})
	var be *BalanceError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "electricity balance", be.Check)
	assert.Equal(t, 1, be.Interval)
	assert.InDelta(t, 0.7, be.In, 1e-12)

	vals = balanced()
	vals["hp-lt-0"] = 1
	_, err = Extract(f.r, f.data, solve(t, f.p, vals), Options{})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "low temperature balance", be.Check)
	assert.Equal(t, 0, be.Interval)
}

func TestExtractSpill(t *testing.T) {
	f := newHeatFixture(t)
	vals := balanced()
	vals["hp-ht-0"] = 2
	vals["spill-ht-gen-0"] = 1
	vals["hp-lt-0"] = 1.5
	vals["spill-lt-load-0"] = 0.5
	sol := solve(t, f.p, vals)

	res, err := Extract(f.r, f.data, sol, Options{})
	require.NoError(t, err)
	assert.True(t, res.Spill)
	assert.Equal(t, map[string]float64{
		"spill-high_temperature_generation_mwh": 1,
		"spill-low_temperature_load_mwh":        0.5,
	}, res.SpillColumns)

	_, err = Extract(f.r, f.data, sol, Options{FailOnSpillAssetUse: true})
	var se *SpillError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 4, se.Total)
	assert.Contains(t, se.Error(), "2 of 4 spill columns")
}

func TestExtractInfeasible(t *testing.T) {
	f := newHeatFixture(t)
	res, err := Extract(f.r, f.data, lp.Infeasible(), Options{FailOnSpillAssetUse: true})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.True(t, math.IsNaN(res.Objective))
	assert.True(t, math.IsNaN(res.Table.Values("site-import_power_mwh")[0]))
	assert.True(t, math.IsNaN(res.Table.Values(registry.ElectricLoad)[1]))
}

func TestExtractIntervalMismatch(t *testing.T) {
	f := newHeatFixture(t)
	data := &intervals.Data{ElectricityPrices: []float64{1, 2, 3}}
	data.SetDefaults()
	_, err := Extract(f.r, data, solve(t, f.p, balanced()), Options{})
	assert.Error(t, err)
}

type evFixture struct {
	p    *lp.Problem
	r    *registry.Registry
	data *intervals.Data
}

// newEVFixture registers one interval with a single charger serving a
// single charge event.
func newEVFixture(t *testing.T, required float64) evFixture {
	t.Helper()
	data := &intervals.Data{
		ElectricityPrices: []float64{10},
		EVs:               &intervals.EVData{ChargeEvents: [][]int{{1}}, ChargeEventMWh: []float64{required}},
	}
	data.SetDefaults()
	require.NoError(t, data.Validate())

	p, r := lp.NewProblem(), registry.New()
	inf := math.Inf(1)
	fleet := registry.NewEVArray("evs", 0, false, []string{"charger-0"}, 1)
	fleet.ElectricChargeMWh[0][0] = p.Continuous("charge", 0, inf)
	fleet.ElectricChargeBinary[0][0] = p.Binary("charge-binary")
	fleet.ElectricLossMWh[0][0] = p.Continuous("loss", 0, inf)
	fleet.InitialSOCMWh[0] = p.Continuous("initial", 0, inf)
	fleet.FinalSOCMWh[0] = p.Continuous("final", 0, inf)
	spill := registry.NewEVArray("evs", 0, true, []string{"spill-charger-0"}, 1)
	spill.ElectricChargeMWh[0][0] = p.Continuous("spill-charge", 0, inf)
	spill.ElectricChargeBinary[0][0] = p.Binary("spill-binary")

	require.NoError(t, r.Append(
		&registry.SiteInterval{
			Key:            registry.Key{Asset: "site", Index: 0},
			ImportPowerMWh: p.Continuous("import", 0, inf),
			ExportPowerMWh: p.Continuous("export", 0, inf),
		},
		fleet,
		spill,
	))
	r.Seal()
	return evFixture{p: p, r: r, data: data}
}

func evValues() values {
	return values{
		"import": 1.1, "charge": 1, "charge-binary": 1, "loss": 0.1,
		"final": 0.9, "spill-charge": 0.1, "spill-binary": 1,
	}
}

func TestExtractEVs(t *testing.T) {
	f := newEVFixture(t, 1)
	res, err := Extract(f.r, f.data, solve(t, f.p, evValues()), Options{})
	require.NoError(t, err)

	tbl := res.Table
	assert.Equal(t, []float64{1}, tbl.Values("evs-charger-0-electric_charge_mwh"))
	assert.Equal(t, []float64{0.1}, tbl.Values("evs-spill-charger-0-electric_charge_mwh"))
	assert.Equal(t, []float64{0.9}, tbl.Values("evs-charge-event-0-final_soc_mwh"))
	assert.Equal(t, []float64{0.1}, tbl.Values("evs-spill-charge-event-0-electric_charge_mwh"))
	assert.InDelta(t, 1.1, tbl.Values("evs-charge-event-0-total-electric_charge_mwh")[0], 1e-12)
	assert.InDelta(t, 1.1, tbl.Values(registry.ElectricCharge)[0], 1e-12)
	assert.InDelta(t, 0.1, tbl.Values(registry.ElectricLoss)[0], 1e-12)

	// discharge was never allocated
	assert.Nil(t, tbl.Values("evs-charger-0-electric_discharge_mwh"))

	proj, ok := tbl.Column("evs-charge-event-0-electric_charge_mwh")
	require.True(t, ok)
	assert.Equal(t, KindProjection, proj.Kind)

	assert.True(t, res.Spill)
	assert.Equal(t, map[string]float64{"evs-spill-charger-0-electric_charge_mwh": 0.1}, res.SpillColumns)
}

func TestExtractEVShortfall(t *testing.T) {
	f := newEVFixture(t, 2)
	_, err := Extract(f.r, f.data, solve(t, f.p, evValues()), Options{})
	var be *BalanceError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, -1, be.Interval)
	assert.InDelta(t, 1.0, be.In, 1e-9)
	assert.Equal(t, 2.0, be.Out)
}

func TestTable(t *testing.T) {
	tbl := NewTable(2)
	require.NoError(t, tbl.Add(Column{Name: "a", Kind: KindInput, Values: []float64{1, 2}}))
	assert.Error(t, tbl.Add(Column{Name: "a", Values: []float64{1, 2}}))
	assert.Error(t, tbl.Add(Column{Name: "b", Values: []float64{1}}))

	c := tbl.ensure(Column{Name: "c", Kind: KindAsset})
	c.Values[1] = 5
	assert.Same(t, c, tbl.ensure(Column{Name: "c"}))
	assert.Equal(t, []string{"a", "c"}, tbl.Names())
	assert.Len(t, tbl.Select(func(c *Column) bool { return c.Kind == KindAsset }), 1)
	assert.Equal(t, 5.0, c.Sum())
	assert.Equal(t, "asset", KindAsset.String())
	assert.Nil(t, tbl.Values("missing"))
}

func TestAccounts(t *testing.T) {
	f := newHeatFixture(t)
	vals := balanced()
	vals["export-1"] = 0.25
	vals["import-1"] = 0.75
	res, err := Extract(f.r, f.data, solve(t, f.p, vals), Options{})
	require.NoError(t, err)

	assert.Equal(t, "site", res.Site)
	assert.Equal(t, []float64{1, 0.5}, res.NetImportMWh())
	// 1 × 10 + 0.5 × 20
	assert.InDelta(t, 20.0, res.Cost(), 1e-9)
	// default carbon intensity of 0.1 and no gas
	assert.InDelta(t, 0.15, res.CarbonTonnes(0.185), 1e-9)
}

func TestExtractEventOnTwoChargers(t *testing.T) {
	data := &intervals.Data{
		ElectricityPrices: []float64{10},
		EVs:               &intervals.EVData{ChargeEvents: [][]int{{1}}, ChargeEventMWh: []float64{1.8}},
	}
	data.SetDefaults()
	require.NoError(t, data.Validate())

	p, r := lp.NewProblem(), registry.New()
	inf := math.Inf(1)
	fleet := registry.NewEVArray("evs", 0, false, []string{"charger-0", "charger-1"}, 1)
	for k := range fleet.Chargers {
		fleet.ElectricChargeMWh[0][k] = p.Continuous(fmt.Sprintf("charge-%d", k), 0, inf)
		fleet.ElectricChargeBinary[0][k] = p.Binary(fmt.Sprintf("binary-%d", k))
		fleet.ElectricLossMWh[0][k] = p.Continuous(fmt.Sprintf("loss-%d", k), 0, inf)
	}
	fleet.InitialSOCMWh[0] = p.Continuous("initial", 0, inf)
	fleet.FinalSOCMWh[0] = p.Continuous("final", 0, inf)
	spill := registry.NewEVArray("evs", 0, true, []string{"spill-charger-0"}, 1)
	spill.ElectricChargeMWh[0][0] = p.Continuous("spill-charge", 0, inf)
	spill.ElectricChargeBinary[0][0] = p.Binary("spill-binary")
	require.NoError(t, r.Append(
		&registry.SiteInterval{
			Key:            registry.Key{Asset: "site", Index: 0},
			ImportPowerMWh: p.Continuous("import", 0, inf),
			ExportPowerMWh: p.Continuous("export", 0, inf),
		},
		fleet,
		spill,
	))
	r.Seal()

	// the energy adds up but the event sits on both chargers at once
	sol := solve(t, p, values{
		"import": 2, "charge-0": 1, "charge-1": 1, "binary-0": 1, "binary-1": 1,
		"loss-0": 0.1, "loss-1": 0.1, "final": 1.8,
	})
	_, err := Extract(r, data, sol, Options{})
	var be *BalanceError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "evs charge event 0 single charger", be.Check)
	assert.Equal(t, 0, be.Interval)
	assert.InDelta(t, 2, be.In, 1e-12)
}
