package freq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreqConversions(t *testing.T) {
	tests := []struct {
		mins int
		mw   float64
		mwh  float64
	}{
		{60, 2, 2},
		{30, 2, 1},
		{5, 12, 1},
	}
	for _, tt := range tests {
		f, err := New(tt.mins)
		require.NoError(t, err)
		assert.InDelta(t, tt.mwh, f.MWToMWh(tt.mw), 1e-12)
		assert.InDelta(t, tt.mw, f.MWhToMW(tt.mwh), 1e-12)
	}
}

func TestFreqInvalid(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}
