package eco

import "time"

// Record aggregates the grid exchange and emissions of a site for one day.
type Record struct {
	Site         string
	Date         time.Time
	ImportedMWh  float64
	ExportedMWh  float64
	CarbonTonnes float64
	Runs         int
}

// NetImportMWh returns imports minus exports.
func (r Record) NetImportMWh() float64 {
	return r.ImportedMWh - r.ExportedMWh
}

// CarbonIntensity returns the emitted tonnes per imported MWh.
func (r Record) CarbonIntensity() float64 {
	if r.ImportedMWh == 0 {
		return 0
	}
	return r.CarbonTonnes / r.ImportedMWh
}
