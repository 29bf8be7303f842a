package registry

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/energylp/core/lp"
)

func site(p *lp.Problem, i int) *SiteInterval {
	return &SiteInterval{
		Key:            Key{Asset: "site", Index: i},
		ImportPowerMWh: p.Continuous(fmt.Sprintf("site-import-%d", i), 0, 10),
		ExportPowerMWh: p.Continuous(fmt.Sprintf("site-export-%d", i), 0, 10),
	}
}

func spill(p *lp.Problem, i int) *SpillInterval {
	return &SpillInterval{
		Key:                   Key{Asset: "spill", Index: i},
		ElectricGenerationMWh: p.Continuous(fmt.Sprintf("spill-gen-%d", i), 0, math.Inf(1)),
		ElectricLoadMWh:       p.Continuous(fmt.Sprintf("spill-load-%d", i), 0, math.Inf(1)),
	}
}

func TestAppendOrdering(t *testing.T) {
	p := lp.NewProblem()
	r := New()
	require.NoError(t, r.Append(site(p, 0), spill(p, 0)))
	require.NoError(t, r.Append(site(p, 1)))

	err := r.Append(site(p, 1))
	var dup *DuplicateRegistrationError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, CategorySite, dup.Category)
	assert.Equal(t, 1, dup.Interval)

	err = r.Append(spill(p, 2))
	assert.ErrorIs(t, err, ErrIntervalOrder)

	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Append(spill(p, 1)), ErrSealed)
}

func TestQueries(t *testing.T) {
	p := lp.NewProblem()
	r := New()
	for i := 0; i < 2; i++ {
		require.NoError(t, r.Append(site(p, i), spill(p, i)))
	}
	b := &BatteryInterval{
		Key:               Key{Asset: "battery", Index: 0},
		ElectricChargeMWh: p.Continuous("battery-charge-0", 0, 1),
	}
	require.NoError(t, r.Append(b))
	r.Seal()

	assert.Equal(t, 2, r.Intervals())
	assert.Len(t, r.AtInterval(CategorySpill, 1, ""), 1)
	assert.Len(t, r.AtInterval(CategorySpill, 1, "other"), 0)
	assert.Len(t, r.AtInterval(CategoryBattery, 1, ""), 0)

	byInterval := r.ByInterval(CategoryBattery, "")
	require.Len(t, byInterval, 2)
	assert.Len(t, byInterval[0], 1)
	assert.Empty(t, byInterval[1])

	assert.Len(t, r.AcrossTime(CategorySite, "site"), 2)
	assert.Equal(t, []string{"battery"}, r.Assets(CategoryBattery))
	assert.Len(t, r.All(0), 3)

	s, err := r.Site(1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Interval())

	_, err = r.EVArray(false, 0, "evs")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlow(t *testing.T) {
	p := lp.NewProblem()
	r := New()
	require.NoError(t, r.Append(site(p, 0), spill(p, 0)))
	b := &BatteryInterval{
		Key:                  Key{Asset: "battery", Index: 0},
		ElectricChargeMWh:    p.Continuous("battery-charge-0", 0, 1),
		ElectricDischargeMWh: p.Continuous("battery-discharge-0", 0, 1),
	}
	require.NoError(t, r.Append(b))

	load := r.Flow(0, ElectricLoad)
	require.Len(t, load.Terms, 1)
	assert.Equal(t, "spill-load-0", load.Terms[0].Var.Name)

	assert.Len(t, r.Flow(0, ElectricCharge).Terms, 1)
	assert.True(t, r.Flow(0, HighTemperatureLoad).IsZero())
}

func TestEVArray(t *testing.T) {
	p := lp.NewProblem()
	a := NewEVArray("evs", 0, false, []string{"c0", "c1"}, 2)
	a.ElectricChargeMWh[0][0] = p.Continuous("c-0-0", 0, 1)
	a.ElectricChargeMWh[0][1] = p.Continuous("c-0-1", 0, 1)
	a.ElectricChargeMWh[1][1] = p.Continuous("c-1-1", 0, 1)
	a.InitialSOCMWh[0] = p.Continuous("soc-0", 0, 1)

	assert.Equal(t, CategoryEVArray, a.Category())
	assert.Len(t, a.SumOverChargers(ElectricCharge, 0).Terms, 2)
	assert.Len(t, a.SumOverEvents(ElectricCharge, 1).Terms, 2)
	assert.Len(t, a.SumOverEvents(ElectricCharge, 0).Terms, 1)
	assert.Len(t, a.Fields(), 4)

	sol := lp.NewSolution(0, []float64{0.25, 0.5, 0.75, 0})
	assert.InDelta(t, 0.75, a.EventTotal(sol, ElectricCharge, 0), 1e-12)
	assert.InDelta(t, 1.25, a.ChargerTotal(sol, ElectricCharge, 1), 1e-12)

	_, err := a.Grid("nope")
	assert.Error(t, err)

	r := New()
	require.NoError(t, r.Append(a, NewEVArray("evs", 0, true, a.Chargers, 2)))
	got, err := r.EVArray(true, 0, "evs")
	require.NoError(t, err)
	assert.True(t, got.Spill)
	assert.Len(t, r.EVArrays(false, "evs"), 1)
}
