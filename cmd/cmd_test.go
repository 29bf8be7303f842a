package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `assets:
  - type: site
  - type: battery
    conf:
      power_mw: 1
      capacity_mwh: 1
data:
  series:
    electricity_prices: [10, 30]
logging:
  level: error
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outPath, outFormat = "", ""
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	return path
}

func TestOptimizeCSV(t *testing.T) {
	out, err := run(t, "optimize", "-c", writeScenario(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "interval,"))
	assert.Contains(t, lines[0], "site-import_power_mwh")
	assert.Contains(t, lines[0], "battery-electric_charge_mwh")
}

func TestOptimizeJSONFile(t *testing.T) {
	path := writeScenario(t)
	dest := filepath.Join(filepath.Dir(path), "result.json")
	_, err := run(t, "optimize", "-c", path, "-o", dest, "--format", "json")
	require.NoError(t, err)
	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"feasible": true`)
}

func TestOptimizeBadFormat(t *testing.T) {
	_, err := run(t, "optimize", "-c", writeScenario(t), "--format", "xml")
	assert.Error(t, err)
}

func TestValidateAndTypes(t *testing.T) {
	out, err := run(t, "validate", "-c", writeScenario(t))
	require.NoError(t, err)
	assert.Contains(t, out, "2 assets over 2 intervals of 60 minutes")

	out, err = run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "heat-pump")
	assert.Contains(t, out, "objectives: carbon, price")
	assert.Contains(t, out, "sinks: eco, influx, nop, prometheus")

	_, err = run(t, "validate", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
