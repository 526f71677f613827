package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoda/bifrost/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"host": "0.0.0.0",
		"port": 9000,
		"oracle_url": "http://localhost:9100",
		"calculator": {"enabled": true, "thresholds": {"fail_pct": 25, "energy_min": 40, "useful_bond_min": 10}}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	require.NotNil(t, cfg.Calculator)
	assert.InDelta(t, 25.0, cfg.Calculator.Thresholds.FailPct, 1e-9)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{Port: 70000}
	assert.Error(t, cfg.Validate())

	cfg.Port = 8721
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CourseDataMustExist(t *testing.T) {
	cfg := &Config{CourseDataPath: filepath.Join(t.TempDir(), "missing.json")}
	assert.Error(t, cfg.Validate())
}

func TestValidate_CalculatorThresholds(t *testing.T) {
	calc := types.DefaultCalculator()
	calc.Thresholds.FailPct = 150
	cfg := &Config{Calculator: &calc}
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults_FillsUnset(t *testing.T) {
	cfg := Config{Port: 9000}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "127.0.0.1", merged.Host)
	assert.Equal(t, "http://127.0.0.1:8722", merged.OracleURL)
	require.NotNil(t, merged.Calculator)
	require.NotNil(t, merged.Targets)
}

func TestMergeWithDefaults_ExplicitValuesWin(t *testing.T) {
	targets := types.Targets{Survival: 80, Spurt: 60, FinalLeg: 10}
	cfg := Config{Host: "10.0.0.1", Targets: &targets}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "10.0.0.1", merged.Host)
	assert.Equal(t, targets, *merged.Targets)
}

func TestDefaults_CalculatorValues(t *testing.T) {
	def := Defaults()
	require.NotNil(t, def.Calculator)

	w := def.Calculator.Weights
	assert.InDelta(t, 1.0, w.Speed, 1e-9)
	assert.InDelta(t, 0.4, w.Bond, 1e-9)
	assert.InDelta(t, 0.6, w.UsefulBond, 1e-9)
	assert.InDelta(t, -2.0, w.Fail, 1e-9)
	assert.Zero(t, w.SkillPoints)

	th := def.Calculator.Thresholds
	assert.InDelta(t, 20.0, th.FailPct, 1e-9)
	assert.InDelta(t, 30.0, th.EnergyMin, 1e-9)
	assert.InDelta(t, 10.0, th.UsefulBondMin, 1e-9)

	require.NotNil(t, def.Targets)
	assert.InDelta(t, 50.0, def.Targets.Survival, 1e-9)
	assert.Zero(t, def.Targets.FinalLeg)
}
