package results

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/registry"
)

// Validate checks the electricity, high temperature and low temperature
// balances of every interval, then the EV charge event constraints.
func Validate(t *Table, r *registry.Registry, data *intervals.Data) error {
	sites := r.Assets(registry.CategorySite)
	if len(sites) == 0 {
		return fmt.Errorf("results: %w: site", registry.ErrNotFound)
	}
	site := sites[0]
	col := func(name string) []float64 {
		if v := t.Values(name); v != nil {
			return v
		}
		return make([]float64, t.Rows())
	}
	imp, exp := col(site+"-"+registry.ImportPower), col(site+"-"+registry.ExportPower)
	gen, load := col(registry.ElectricGeneration), col(registry.ElectricLoad)
	charge, discharge := col(registry.ElectricCharge), col(registry.ElectricDischarge)
	htGen, htLoad := col(registry.HighTemperatureGeneration), col(registry.HighTemperatureLoad)
	ltGen, ltLoad := col(registry.LowTemperatureGeneration), col(registry.LowTemperatureLoad)

	for i := 0; i < t.Rows(); i++ {
		checks := []struct {
			name    string
			in, out float64
		}{
			{"electricity balance", imp[i] + gen[i] + discharge[i], exp[i] + load[i] + charge[i]},
			{"high temperature balance", htGen[i], htLoad[i] + data.HighTemperatureLoadMWh[i]},
			{"low temperature balance", ltGen[i] + data.LowTemperatureGenerationMWh[i], ltLoad[i] + data.LowTemperatureLoadMWh[i]},
		}
		for _, c := range checks {
			if math.Abs(c.in-c.out) > BalanceTolerance {
				return &BalanceError{Check: c.name, Interval: i, In: c.in, Out: c.out}
			}
		}
	}
	return validateEVs(t, r, data)
}

func validateEVs(t *Table, r *registry.Registry, data *intervals.Data) error {
	assets := r.Assets(registry.CategoryEVArray)
	if len(assets) == 0 {
		return nil
	}
	if data.EVs == nil {
		return fmt.Errorf("results: EV assets without charge events")
	}
	for _, asset := range assets {
		for j, required := range data.EVs.ChargeEventMWh {
			prefix := eventPrefix(asset, false, j)
			delivered := floats.Sum(t.Values(prefix+"total-"+registry.ElectricCharge)) -
				floats.Sum(t.Values(prefix+registry.ElectricDischarge)) -
				floats.Sum(t.Values(prefix+registry.ElectricLoss))
			if math.Abs(delivered-required) > ChargeEventTolerance {
				return &BalanceError{
					Check:    fmt.Sprintf("%s charge event %d energy", asset, j),
					Interval: -1,
					In:       delivered,
					Out:      required,
				}
			}

			busy := make([]float64, t.Rows())
			for _, attr := range []string{registry.ElectricChargeBinary, registry.ElectricDischargeBinary} {
				if v := t.Values(prefix + attr); v != nil {
					floats.Add(busy, v)
				}
			}
			for i, b := range busy {
				if b > 1+BalanceTolerance {
					return &BalanceError{
						Check:    fmt.Sprintf("%s charge event %d single charger", asset, j),
						Interval: i,
						In:       b,
						Out:      1,
					}
				}
			}
		}
	}
	return nil
}
