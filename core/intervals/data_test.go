package intervals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultsBroadcasts(t *testing.T) {
	d := Data{
		ElectricityPrices: []float64{10, 20, 30},
		GasPrices:         []float64{15},
	}
	d.SetDefaults()
	require.NoError(t, d.Validate())
	assert.Equal(t, []float64{15, 15, 15}, d.GasPrices)
	assert.Equal(t, []float64{0.1, 0.1, 0.1}, d.ElectricityCarbonIntensities)
	assert.Equal(t, []float64{0, 0, 0}, d.HighTemperatureLoadMWh)
}

func TestValidateLengthMismatch(t *testing.T) {
	d := Data{
		ElectricityPrices:      []float64{10, 20, 30},
		HighTemperatureLoadMWh: []float64{1, 2},
	}
	d.SetDefaults()
	err := d.Validate()
	assert.ErrorIs(t, err, ErrSeriesLength)
}

func TestValidateEmpty(t *testing.T) {
	var d Data
	assert.ErrorIs(t, d.Validate(), ErrNoIntervals)
}

func TestValidateChargeEvents(t *testing.T) {
	tests := []struct {
		name string
		evs  EVData
		want error
	}{
		{"ok", EVData{ChargeEvents: [][]int{{1, 0}, {0, 1}}, ChargeEventMWh: []float64{1, 2}}, nil},
		{"row count", EVData{ChargeEvents: [][]int{{1, 0}}, ChargeEventMWh: []float64{1, 2}}, ErrChargeEvents},
		{"row length", EVData{ChargeEvents: [][]int{{1}}, ChargeEventMWh: []float64{1}}, ErrSeriesLength},
		{"not binary", EVData{ChargeEvents: [][]int{{2, 0}}, ChargeEventMWh: []float64{1}}, ErrChargeEvents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := tt.evs
			d := Data{ElectricityPrices: []float64{1, 2}, EVs: &evs}
			d.SetDefaults()
			err := d.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, evs.Active(0, 0))
				assert.False(t, evs.Active(1, 0))
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
