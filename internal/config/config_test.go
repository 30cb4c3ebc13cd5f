package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
evaluation:
  window: 50us
  cycle: 1ms
  memories_kb: [4, 8]
  codecs: [wavesketch-ideal]
  output: fidelity.csv
sampling:
  ratio: 0.1
  congestion_threshold_bytes: 50000
probe:
  nats_url: "nats://localhost:4222"
  subject: "wavebench.events"
clickhouse:
  enabled: false
api:
  listen_addr: ":8080"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	windowUS, err := cfg.WindowUS()
	if err != nil || windowUS != 50 {
		t.Errorf("Expected window 50us, got %d (%v)", windowUS, err)
	}
	cycleUS, err := cfg.CycleUS()
	if err != nil || cycleUS != 1000 {
		t.Errorf("Expected cycle 1000us, got %d (%v)", cycleUS, err)
	}
	if cfg.Sampling.Ratio != 0.1 {
		t.Errorf("Expected sampling ratio 0.1, got %g", cfg.Sampling.Ratio)
	}
	if cfg.Probe.Subject != "wavebench.events" {
		t.Errorf("Unexpected probe subject: %s", cfg.Probe.Subject)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := map[string]func(c *Config){
		"cycle not multiple of window": func(c *Config) { c.Evaluation.Cycle = "130us" },
		"zero window":                  func(c *Config) { c.Evaluation.Window = "0s" },
		"negative window":              func(c *Config) { c.Evaluation.Window = "-1ms" },
		"sub-microsecond window":       func(c *Config) { c.Evaluation.Window = "100ns" },
		"no memory budgets":            func(c *Config) { c.Evaluation.MemoriesKB = nil },
		"zero memory budget":           func(c *Config) { c.Evaluation.MemoriesKB = []uint32{4, 0} },
		"no codecs":                    func(c *Config) { c.Evaluation.Codecs = nil },
		"no output":                    func(c *Config) { c.Evaluation.Output = "" },
		"ratio above 1":                func(c *Config) { c.Sampling.Ratio = 1.5 },
		"negative ratio":               func(c *Config) { c.Sampling.Ratio = -0.5 },
		"negative threshold":           func(c *Config) { c.Sampling.CongestionThresholdBytes = -1 },
	}

	for name, mutate := range cases {
		cfg, err := LoadConfig(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("[%s] baseline config failed to load: %v", name, err)
		}
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("[%s] expected validation error", name)
		}
	}
}
