// Package freq converts between power and energy for a fixed interval length.
package freq

import "fmt"

// DefaultMinutes is the interval length used when none is configured.
const DefaultMinutes = 60

// Freq is the length of one simulation interval.
type Freq struct {
	Mins int
}

// New returns a Freq of the given number of minutes.
func New(mins int) (Freq, error) {
	if mins <= 0 {
		return Freq{}, fmt.Errorf("freq: interval length must be positive, got %d minutes", mins)
	}
	return Freq{Mins: mins}, nil
}

// MWToMWh converts a power held over one interval to energy.
func (f Freq) MWToMWh(mw float64) float64 {
	return mw * float64(f.Mins) / 60
}

// MWhToMW converts the energy of one interval to average power.
func (f Freq) MWhToMW(mwh float64) float64 {
	return mwh * 60 / float64(f.Mins)
}
