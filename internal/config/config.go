package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EvaluationConfig controls the compression-evaluation pipeline.
type EvaluationConfig struct {
	// Window is the aggregation window width, e.g. "50us".
	Window string `yaml:"window"`
	// Cycle is the compress-and-score period, e.g. "1ms". Must be a
	// multiple of Window.
	Cycle string `yaml:"cycle"`
	// MemoriesKB lists the memory budgets to sweep.
	MemoriesKB []uint32 `yaml:"memories_kb"`
	// Codecs names the registered codecs to evaluate.
	Codecs []string `yaml:"codecs"`
	// Output is the fidelity report CSV path.
	Output string `yaml:"output"`
}

// SamplingConfig controls the congestion-recall branch.
type SamplingConfig struct {
	Ratio                    float64 `yaml:"ratio"`
	CongestionThresholdBytes float64 `yaml:"congestion_threshold_bytes"`
	QueueOutput              string  `yaml:"queue_output"`
	RateOutput               string  `yaml:"rate_output"`
}

// ProbeConfig holds the NATS transport settings shared by the probe and the
// live engine.
type ProbeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection settings for the ClickHouse writer
// and the API querier.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIConfig holds the HTTP query service settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration for the entire application.
type Config struct {
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Probe      ProbeConfig      `yaml:"probe"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	API        APIConfig        `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file, applies defaults and
// validates it. Invalid configuration aborts the run before any processing.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WindowUS returns the window width in microseconds.
func (c *Config) WindowUS() (uint64, error) {
	return durationUS(c.Evaluation.Window, "evaluation.window")
}

// CycleUS returns the cycle duration in microseconds.
func (c *Config) CycleUS() (uint64, error) {
	return durationUS(c.Evaluation.Cycle, "evaluation.cycle")
}

func durationUS(s, field string) (uint64, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", field)
	}
	us := d.Microseconds()
	if us == 0 {
		return 0, fmt.Errorf("%s must be at least 1us", field)
	}
	return uint64(us), nil
}

// Validate fails fast on configuration errors; a partial run with a bad
// window width or sampling ratio produces useless reports.
func (c *Config) Validate() error {
	windowUS, err := c.WindowUS()
	if err != nil {
		return err
	}
	cycleUS, err := c.CycleUS()
	if err != nil {
		return err
	}
	if cycleUS%windowUS != 0 {
		return fmt.Errorf("evaluation.cycle (%dus) must be a multiple of evaluation.window (%dus)", cycleUS, windowUS)
	}
	if len(c.Evaluation.MemoriesKB) == 0 {
		return fmt.Errorf("evaluation.memories_kb must list at least one budget")
	}
	for _, m := range c.Evaluation.MemoriesKB {
		if m == 0 {
			return fmt.Errorf("evaluation.memories_kb entries must be positive")
		}
	}
	if len(c.Evaluation.Codecs) == 0 {
		return fmt.Errorf("evaluation.codecs must list at least one codec")
	}
	if c.Evaluation.Output == "" {
		return fmt.Errorf("evaluation.output must be set")
	}
	if c.Sampling.Ratio < 0 || c.Sampling.Ratio > 1 {
		return fmt.Errorf("sampling.ratio %g outside [0, 1]", c.Sampling.Ratio)
	}
	if c.Sampling.CongestionThresholdBytes < 0 {
		return fmt.Errorf("sampling.congestion_threshold_bytes must be non-negative")
	}
	return nil
}
