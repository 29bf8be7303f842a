package results

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/energylp/core/registry"
)

func (r *SimulationResult) column(name string) []float64 {
	if v := r.Table.Values(name); v != nil {
		return v
	}
	return make([]float64, r.Table.Rows())
}

// ImportMWh returns the site import of every interval.
func (r *SimulationResult) ImportMWh() []float64 {
	return r.column(r.Site + "-" + registry.ImportPower)
}

// ExportMWh returns the site export of every interval.
func (r *SimulationResult) ExportMWh() []float64 {
	return r.column(r.Site + "-" + registry.ExportPower)
}

// NetImportMWh returns import minus export for every interval. Simultaneous
// import and export cost nothing, so only the net exchange is determined by
// the optimisation.
func (r *SimulationResult) NetImportMWh() []float64 {
	out := make([]float64, r.Table.Rows())
	floats.SubTo(out, r.ImportMWh(), r.ExportMWh())
	return out
}

// Cost returns the grid and gas bill of the solution, without spill
// penalties.
func (r *SimulationResult) Cost() float64 {
	return floats.Dot(r.NetImportMWh(), r.Data.ElectricityPrices) +
		floats.Dot(r.column(registry.GasConsumption), r.Data.GasPrices)
}

// CarbonTonnes returns the grid and gas emissions of the solution.
func (r *SimulationResult) CarbonTonnes(gasIntensity float64) float64 {
	return floats.Dot(r.NetImportMWh(), r.Data.ElectricityCarbonIntensities) +
		floats.Sum(r.column(registry.GasConsumption))*gasIntensity
}
