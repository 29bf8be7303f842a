// Package intervals holds the exogenous per-interval inputs of a simulation.
package intervals

import (
	"errors"
	"fmt"
)

const (
	DefaultGasPrice                   = 20.0
	DefaultElectricityCarbonIntensity = 0.1
)

var (
	// ErrSeriesLength indicates series of different lengths in one simulation.
	ErrSeriesLength = errors.New("intervals: series length mismatch")
	// ErrNoIntervals indicates an empty price series.
	ErrNoIntervals = errors.New("intervals: electricity prices are required")
	// ErrChargeEvents indicates a malformed EV charge event matrix.
	ErrChargeEvents = errors.New("intervals: invalid charge events")
)

// EVData describes EV charge events. ChargeEvents has one row per charge
// event and one column per interval; a 1 marks the event as plugged in.
type EVData struct {
	ChargeEvents   [][]int   `json:"charge_events"`
	ChargeEventMWh []float64 `json:"charge_event_mwh"`
}

// Events returns the number of charge events.
func (e *EVData) Events() int { return len(e.ChargeEventMWh) }

// Active reports whether charge event j is plugged in during interval i.
func (e *EVData) Active(i, j int) bool {
	return e.ChargeEvents[j][i] == 1
}

// Data holds the exogenous series of one simulation. All series share the
// index defined by ElectricityPrices.
type Data struct {
	ElectricityPrices            []float64 `json:"electricity_prices"`
	GasPrices                    []float64 `json:"gas_prices"`
	ElectricityCarbonIntensities []float64 `json:"electricity_carbon_intensities"`
	HighTemperatureLoadMWh       []float64 `json:"high_temperature_load_mwh"`
	LowTemperatureLoadMWh        []float64 `json:"low_temperature_load_mwh"`
	LowTemperatureGenerationMWh  []float64 `json:"low_temperature_generation_mwh"`
	EVs                          *EVData   `json:"evs,omitempty"`
}

// Len returns the number of intervals.
func (d *Data) Len() int { return len(d.ElectricityPrices) }

// SetDefaults fills missing series with their default value. A series of
// length one is broadcast over the index.
func (d *Data) SetDefaults() {
	n := d.Len()
	d.GasPrices = broadcast(d.GasPrices, n, DefaultGasPrice)
	d.ElectricityCarbonIntensities = broadcast(d.ElectricityCarbonIntensities, n, DefaultElectricityCarbonIntensity)
	d.HighTemperatureLoadMWh = broadcast(d.HighTemperatureLoadMWh, n, 0)
	d.LowTemperatureLoadMWh = broadcast(d.LowTemperatureLoadMWh, n, 0)
	d.LowTemperatureGenerationMWh = broadcast(d.LowTemperatureGenerationMWh, n, 0)
}

func broadcast(s []float64, n int, def float64) []float64 {
	if len(s) == 0 {
		s = []float64{def}
	}
	if len(s) != 1 || n == 1 {
		return s
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = s[0]
	}
	return out
}

// Validate checks that every series shares the index of ElectricityPrices.
func (d *Data) Validate() error {
	n := d.Len()
	if n == 0 {
		return ErrNoIntervals
	}
	series := []struct {
		name string
		s    []float64
	}{
		{"gas_prices", d.GasPrices},
		{"electricity_carbon_intensities", d.ElectricityCarbonIntensities},
		{"high_temperature_load_mwh", d.HighTemperatureLoadMWh},
		{"low_temperature_load_mwh", d.LowTemperatureLoadMWh},
		{"low_temperature_generation_mwh", d.LowTemperatureGenerationMWh},
	}
	for _, s := range series {
		if len(s.s) != n {
			return fmt.Errorf("%w: %s has %d values, expected %d", ErrSeriesLength, s.name, len(s.s), n)
		}
	}
	if d.EVs != nil {
		return d.EVs.validate(n)
	}
	return nil
}

func (e *EVData) validate(n int) error {
	if len(e.ChargeEvents) != len(e.ChargeEventMWh) {
		return fmt.Errorf("%w: %d charge event rows for %d charge event energies", ErrChargeEvents, len(e.ChargeEvents), len(e.ChargeEventMWh))
	}
	for j, row := range e.ChargeEvents {
		if len(row) != n {
			return fmt.Errorf("%w: charge event %d has %d values, expected %d", ErrSeriesLength, j, len(row), n)
		}
		for i, v := range row {
			if v != 0 && v != 1 {
				return fmt.Errorf("%w: charge event %d interval %d is %d, expected 0 or 1", ErrChargeEvents, j, i, v)
			}
		}
	}
	for j, mwh := range e.ChargeEventMWh {
		if mwh < 0 {
			return fmt.Errorf("%w: charge event %d requires negative energy", ErrChargeEvents, j)
		}
	}
	return nil
}
