package kpi

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/kilianp07/energylp/core/metrics/eco"
)

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	day := core.Day(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Add(core.Record{Site: "plant", Date: day.Add(time.Hour), ImportedMWh: 2, CarbonTonnes: 0.4}))
	require.NoError(t, s.Add(core.Record{Site: "plant", Date: day.Add(5 * time.Hour), ImportedMWh: 1, ExportedMWh: 0.5, Runs: 2}))
	require.NoError(t, s.Add(core.Record{Site: "plant", Date: day.Add(-time.Hour), ImportedMWh: 7}))
	require.NoError(t, s.Add(core.Record{Site: "other", Date: day, ImportedMWh: 9}))

	recs, err := s.Query("plant", day, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "plant", recs[0].Site)
	assert.True(t, recs[0].Date.Equal(day))
	assert.InDelta(t, 3, recs[0].ImportedMWh, 1e-12)
	assert.InDelta(t, 0.5, recs[0].ExportedMWh, 1e-12)
	assert.InDelta(t, 0.4, recs[0].CarbonTonnes, 1e-12)
	assert.Equal(t, 3, recs[0].Runs)

	all, err := s.Query("plant", day.Add(-24*time.Hour), day)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Date.Before(all[1].Date))
	require.NoError(t, s.Close())

	// records survive a reopen
	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	recs, err = s.Query("plant", day, day)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
