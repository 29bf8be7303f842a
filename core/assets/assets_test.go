package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/energylp/core/factory"
	"github.com/kilianp07/energylp/core/freq"
	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

func newContext(t *testing.T, data *intervals.Data, flags Flags) FormulationContext {
	t.Helper()
	data.SetDefaults()
	require.NoError(t, data.Validate())
	f, err := freq.New(60)
	require.NoError(t, err)
	return FormulationContext{Problem: lp.NewProblem(), Data: data, Freq: f, Flags: flags}
}

// formulate runs the three formulation steps for every asset.
func formulate(t *testing.T, fc FormulationContext, as ...Asset) *registry.Registry {
	t.Helper()
	r := registry.New()
	for i := 0; i < fc.Data.Len(); i++ {
		for _, a := range as {
			sets, err := a.CreateIntervalVariables(fc, i)
			require.NoError(t, err)
			require.NoError(t, r.Append(sets...))
		}
		for _, a := range as {
			require.NoError(t, a.ConstrainWithinInterval(fc, r, i))
		}
	}
	for _, a := range as {
		require.NoError(t, a.ConstrainAfterIntervals(fc, r))
	}
	r.Seal()
	require.NoError(t, fc.Problem.Err())
	return r
}

func TestFactoryBuiltins(t *testing.T) {
	assert.Subset(t, Types(), []string{"site", "spill", "battery", "generator", "boiler", "valve", "heat-pump", "evs"})

	a, err := New(factory.ModuleConfig{Type: "battery", Name: "b1", Conf: map[string]any{"power_mw": 2, "capacity_mwh": 4, "final_charge_mwh": 0}})
	require.NoError(t, err)
	b, ok := a.(*Battery)
	require.True(t, ok)
	assert.Equal(t, "b1", b.Name())
	assert.Equal(t, DefaultBatteryEfficiency, b.cfg.EfficiencyPct)
	require.NotNil(t, b.cfg.FinalChargeMWh)

	_, err = New(factory.ModuleConfig{Type: "nuclear"})
	assert.ErrorIs(t, err, ErrUnknownAssetType)

	all, err := NewAll([]factory.ModuleConfig{{Type: "site"}, {Type: "valve"}})
	require.NoError(t, err)
	assert.Equal(t, "site", all[0].Name())
	assert.Equal(t, "valve", all[1].Name())
}

func TestInvalidConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfg  factory.ModuleConfig
	}{
		{"heat pump cop", factory.ModuleConfig{Type: "heat-pump", Conf: map[string]any{"electric_power_mw": 1, "cop": 0.5}}},
		{"heat pump power", factory.ModuleConfig{Type: "heat-pump", Conf: map[string]any{"cop": 3}}},
		{"battery efficiency", factory.ModuleConfig{Type: "battery", Conf: map[string]any{"power_mw": 1, "capacity_mwh": 1, "efficiency_pct": 1.5}}},
		{"battery initial charge", factory.ModuleConfig{Type: "battery", Conf: map[string]any{"power_mw": 1, "capacity_mwh": 1, "initial_charge_mwh": 2}}},
		{"boiler min above max", factory.ModuleConfig{Type: "boiler", Conf: map[string]any{"high_temperature_generation_max_mw": 1, "high_temperature_generation_min_mw": 2}}},
		{"generator efficiencies", factory.ModuleConfig{Type: "generator", Conf: map[string]any{
			"electric_power_max_mw": 1, "electric_efficiency_pct": 0.5, "high_temperature_efficiency_pct": 0.6,
		}}},
		{"evs without chargers", factory.ModuleConfig{Type: "evs"}},
		{"site negative limit", factory.ModuleConfig{Type: "site", Conf: map[string]any{"import_limit_mw": -1}}},
		{"unknown key", factory.ModuleConfig{Type: "valve", Conf: map[string]any{"size": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidAsset)
		})
	}
}

func TestBatteryFormulation(t *testing.T) {
	fc := newContext(t, &intervals.Data{ElectricityPrices: []float64{10, 20}}, Flags{})
	site, err := NewSite(SiteConfig{})
	require.NoError(t, err)
	b, err := NewBattery(BatteryConfig{PowerMW: 2, CapacityMWh: 4})
	require.NoError(t, err)
	r := formulate(t, fc, site, NewSpill(SpillConfig{}), b)

	for _, name := range []string{
		"battery-electric_charge_mwh-0",
		"battery-electric_discharge_binary-1",
		"battery-initial_soc_mwh-1",
		"site-import_power_mwh-1",
		"spill-low_temperature_load_mwh-0",
	} {
		_, ok := fc.Problem.Variable(name)
		assert.True(t, ok, name)
	}
	v, _ := fc.Problem.Variable("battery-electric_charge_mwh-0")
	assert.Equal(t, 2.0, v.Upper)
	assert.Equal(t, lp.Binary, mustVar(t, fc.Problem, "battery-electric_charge_binary-0").Kind)

	charge := r.Flow(0, registry.ElectricCharge)
	require.Len(t, charge.Terms, 1)
	assert.Equal(t, "battery-electric_charge_mwh-0", charge.Terms[0].Var.Name)
	assert.NotEmpty(t, fc.Problem.Constraints())
}

func TestDuplicateAssetNames(t *testing.T) {
	fc := newContext(t, &intervals.Data{ElectricityPrices: []float64{10}}, Flags{})
	v := NewValve(ValveConfig{})
	_, err := v.CreateIntervalVariables(fc, 0)
	require.NoError(t, err)
	_, err = v.CreateIntervalVariables(fc, 0)
	require.NoError(t, err)
	var dup *lp.DuplicateVariableError
	assert.ErrorAs(t, fc.Problem.Err(), &dup)
}

func TestBoilerBinaryOnlyWithMinimum(t *testing.T) {
	fc := newContext(t, &intervals.Data{ElectricityPrices: []float64{10}}, Flags{})
	free, err := NewBoiler(BoilerConfig{Name: "free", HighTemperatureGenerationMaxMW: 5})
	require.NoError(t, err)
	turndown, err := NewBoiler(BoilerConfig{Name: "turndown", HighTemperatureGenerationMaxMW: 5, HighTemperatureGenerationMinMW: 1})
	require.NoError(t, err)

	sets, err := free.CreateIntervalVariables(fc, 0)
	require.NoError(t, err)
	assert.Nil(t, sets[0].(*registry.BoilerInterval).Binary)

	sets, err = turndown.CreateIntervalVariables(fc, 0)
	require.NoError(t, err)
	assert.NotNil(t, sets[0].(*registry.BoilerInterval).Binary)
}

func TestEVsRequireChargeEvents(t *testing.T) {
	fc := newContext(t, &intervals.Data{ElectricityPrices: []float64{10}}, Flags{})
	e, err := NewEVs(EVsConfig{ChargersPowerMW: []float64{1}})
	require.NoError(t, err)
	_, err = e.CreateIntervalVariables(fc, 0)
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestEVsArrays(t *testing.T) {
	data := &intervals.Data{
		ElectricityPrices: []float64{10, 20},
		EVs: &intervals.EVData{
			ChargeEvents:   [][]int{{1, 0}, {1, 1}},
			ChargeEventMWh: []float64{1, 2},
		},
	}
	fc := newContext(t, data, Flags{LimitChargeVariablesToValidEvents: true})
	e, err := NewEVs(EVsConfig{ChargersPowerMW: []float64{2, 3}})
	require.NoError(t, err)
	site, err := NewSite(SiteConfig{})
	require.NoError(t, err)
	r := formulate(t, fc, site, NewSpill(SpillConfig{}), e)

	fleet, err := r.EVArray(false, 1, "evs")
	require.NoError(t, err)
	assert.Equal(t, []string{"charger-0", "charger-1"}, fleet.Chargers)
	// event 0 is unplugged in interval 1
	assert.Nil(t, fleet.ElectricChargeMWh[0][0])
	assert.NotNil(t, fleet.ElectricChargeMWh[1][1])
	assert.Nil(t, fleet.ElectricDischargeMWh[1][1])
	assert.NotNil(t, fleet.FinalSOCMWh[0])

	spill, err := r.EVArray(true, 0, "evs")
	require.NoError(t, err)
	assert.Len(t, spill.Chargers, 1)
	assert.NotNil(t, spill.ElectricChargeMWh[0][0])
	assert.Nil(t, spill.ElectricLossMWh[0][0])

	// both arrays feed the site electricity balance
	assert.Len(t, r.Flow(0, registry.ElectricCharge).Terms, 6)
}

func TestEVsDischargeFlag(t *testing.T) {
	data := &intervals.Data{
		ElectricityPrices: []float64{10},
		EVs:               &intervals.EVData{ChargeEvents: [][]int{{1}}, ChargeEventMWh: []float64{1}},
	}
	fc := newContext(t, data, Flags{AllowEVsDischarge: true})
	e, err := NewEVs(EVsConfig{ChargersPowerMW: []float64{2}})
	require.NoError(t, err)
	sets, err := e.CreateIntervalVariables(fc, 0)
	require.NoError(t, err)
	fleet := sets[0].(*registry.EVArray)
	spill := sets[1].(*registry.EVArray)
	assert.NotNil(t, fleet.ElectricDischargeMWh[0][0])
	assert.Nil(t, spill.ElectricDischargeMWh[0][0])
}

func mustVar(t *testing.T, p *lp.Problem, name string) *lp.Variable {
	t.Helper()
	v, ok := p.Variable(name)
	require.True(t, ok, name)
	return v
}
