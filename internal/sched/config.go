package sched

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	TickMS     int    `yaml:"tick_ms"`     // 5 (by default)
	SliceSteps int    `yaml:"slice_steps"` // 5 (by default)
	RunBudget  int    `yaml:"run_budget"`  // 5 (by default)
	Model      string `yaml:"model"`       // path to the model asset
	Backend    string `yaml:"backend"`     // "cpu" or "gpu-sim"
	CSVPath    string `yaml:"csv_path"`    // status event log, empty = off
	ReportCSV  string `yaml:"report_csv"`  // per-run report rows, empty = off
	ReportJSON string `yaml:"report_json"` // per-run report lines, empty = off
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

const (
	defaultTickMS     = 5
	defaultSliceSteps = 5
	defaultRunBudget  = 5
)

// DefaultConfig is used when no config file exists.
func DefaultConfig() Config {
	return Config{
		TickMS:     defaultTickMS,
		SliceSteps: defaultSliceSteps,
		RunBudget:  defaultRunBudget,
		Model:      "assets/mlp.yaml",
		Backend:    "gpu-sim",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// TickInterval is the period of the tick source.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// Load reads YAML over the defaults, then applies SLICEBENCH_* environment
// overrides. An empty path or a missing file yields defaults; a file that
// does not parse is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = defaultTickMS
	}
	if cfg.SliceSteps <= 0 {
		cfg.SliceSteps = defaultSliceSteps
	}
	if cfg.RunBudget <= 0 {
		cfg.RunBudget = defaultRunBudget
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.RunBudget = envInt("SLICEBENCH_RUN_BUDGET", c.RunBudget)
	c.SliceSteps = envInt("SLICEBENCH_SLICE_STEPS", c.SliceSteps)
	c.TickMS = envInt("SLICEBENCH_TICK_MS", c.TickMS)
	c.Model = envStr("SLICEBENCH_MODEL", c.Model)
	c.LogLevel = envStr("SLICEBENCH_LOG_LEVEL", c.LogLevel)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
