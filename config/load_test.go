package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
simulation:
  initialX: 1000
  initialY: 1000
  initialPrice: 1.0
  gbmMu: 0.0
  gbmSigma: 0.01
  gbmDt: 1.0
  nSteps: 500
  seed: 7
retail:
  arrivalRate: 2.0
  meanSize: 1.0
  sizeSigma: 0.5
  buyProb: 0.5
logging:
  level: info
  format: console
metrics:
  enabled: false
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.NSteps != 500 || cfg.Retail.ArrivalRate != 2.0 {
		t.Fatalf("unexpected cfg values: %+v", cfg)
	}
	if cfg.Simulation.Seed == nil || *cfg.Simulation.Seed != 7 {
		t.Fatalf("seed not parsed: %+v", cfg.Simulation.Seed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "simulation: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() AppConfig {
		return AppConfig{
			Simulation: SimulationConfig{
				InitialX: 1000, InitialY: 1000, InitialPrice: 1, GBMDt: 1, NSteps: 10,
			},
			Retail: RetailConfig{ArrivalRate: 1, MeanSize: 1, SizeSigma: 0.5, BuyProb: 0.5},
		}
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"zero initial x", func(c *AppConfig) { c.Simulation.InitialX = 0 }},
		{"zero price", func(c *AppConfig) { c.Simulation.InitialPrice = 0 }},
		{"zero dt", func(c *AppConfig) { c.Simulation.GBMDt = 0 }},
		{"negative sigma", func(c *AppConfig) { c.Simulation.GBMSigma = -1 }},
		{"negative steps", func(c *AppConfig) { c.Simulation.NSteps = -1 }},
		{"bad buy prob", func(c *AppConfig) { c.Retail.BuyProb = 2 }},
		{"metrics without addr", func(c *AppConfig) { c.Metrics.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := Validate(base()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestSeedEnvOverride(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	t.Setenv("AMM_MATCH_SEED", "99")
	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Seed == nil || *cfg.Simulation.Seed != 99 {
		t.Fatalf("env override not applied: %+v", cfg.Simulation.Seed)
	}
}

func TestSeedEnvOverrideInvalid(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	t.Setenv("AMM_MATCH_SEED", "abc")
	if _, err := LoadWithEnvOverrides(path); err == nil {
		t.Fatal("expected error for invalid seed")
	}
}

func TestToSimConfig(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	simCfg := cfg.ToSimConfig()
	if simCfg.NSteps != 500 || simCfg.RetailMeanSize != 1.0 || simCfg.InitialPrice != 1.0 {
		t.Fatalf("unexpected sim config: %+v", simCfg)
	}
}
