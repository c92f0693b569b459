package sched

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 5, cfg.RunBudget)
	assert.Equal(t, 5, cfg.SliceSteps)
	assert.Equal(t, 5*time.Millisecond, cfg.TickInterval())

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tick_ms: 16
slice_steps: 3
run_budget: 10
model: models/resnet.yaml
backend: cpu
csv_path: events.csv
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.TickMS)
	assert.Equal(t, 3, cfg.SliceSteps)
	assert.Equal(t, 10, cfg.RunBudget)
	assert.Equal(t, "models/resnet.yaml", cfg.Model)
	assert.Equal(t, "cpu", cfg.Backend)
	assert.Equal(t, "events.csv", cfg.CSVPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep their defaults")
}

func TestLoadClampsNonPositiveValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, "tick_ms: 0\nslice_steps: -1\nrun_budget: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TickMS)
	assert.Equal(t, 5, cfg.SliceSteps)
	assert.Equal(t, 5, cfg.RunBudget)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "run_budget: [1, 2"))
	assert.Error(t, err)
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv("SLICEBENCH_RUN_BUDGET", "7")
	t.Setenv("SLICEBENCH_SLICE_STEPS", "not-a-number")
	t.Setenv("SLICEBENCH_MODEL", "env.yaml")

	cfg, err := Load(writeConfig(t, "run_budget: 2\nslice_steps: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RunBudget)
	assert.Equal(t, 4, cfg.SliceSteps, "unparseable values are ignored")
	assert.Equal(t, "env.yaml", cfg.Model)
}
