package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDefaultDetectionValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Detection.BruteForceThreshold != 5 {
		t.Fatalf("expected brute_force_threshold 5, got %d", cfg.Detection.BruteForceThreshold)
	}
	if cfg.Detection.NSigma != 3.0 {
		t.Fatalf("expected n_sigma 3.0, got %g", cfg.Detection.NSigma)
	}
	if cfg.Detection.Contamination != 0.1 {
		t.Fatalf("expected contamination 0.1, got %g", cfg.Detection.Contamination)
	}
	if cfg.Detection.Strategy != StrategyAuto {
		t.Fatalf("expected auto strategy, got %s", cfg.Detection.Strategy)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log_level: debug
detection:
  brute_force_threshold: 10
  n_sigma: 2.5
  strategy: zscore
alerting:
  webhook_url: https://hooks.example.com/alerts
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, got %s", cfg.LogLevel)
	}
	if cfg.Detection.BruteForceThreshold != 10 || cfg.Detection.NSigma != 2.5 {
		t.Fatalf("detection overrides not applied: %+v", cfg.Detection)
	}
	if cfg.Detection.Strategy != StrategyZScore {
		t.Fatalf("expected zscore, got %s", cfg.Detection.Strategy)
	}
	if cfg.Alerting.WebhookURL != "https://hooks.example.com/alerts" {
		t.Fatalf("alerting override not applied: %+v", cfg.Alerting)
	}
	if cfg.Alerting.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.Alerting.Timeout)
	}
	// untouched sections keep defaults
	if cfg.Detection.Contamination != 0.1 {
		t.Fatalf("expected default contamination, got %g", cfg.Detection.Contamination)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"detection": {"brute_force_threshold": 3, "n_sigma": 4.0, "contamination": 0.2, "strategy": "iforest"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Detection.BruteForceThreshold != 3 || cfg.Detection.Contamination != 0.2 {
		t.Fatalf("json overrides not applied: %+v", cfg.Detection)
	}
}

func TestValidateRejectsBadDetection(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Detection.NSigma = -3 },
		func(c *Config) { c.Detection.Contamination = 1.5 },
		func(c *Config) { c.Detection.Contamination = -0.1 },
		func(c *Config) { c.Detection.Strategy = "sklearn" },
		func(c *Config) { c.Detection.BruteForceThreshold = -1 },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestValidateRejectsIncompleteCollectors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collector.File.Enabled = true
	cfg.Collector.File.Path = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for file collector without path")
	}
	cfg = DefaultConfig()
	cfg.Collector.Kafka.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for kafka collector without brokers")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty config")
	}
}

func TestManagerReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.Get().LogLevel != "info" {
		t.Fatalf("expected info, got %s", m.Get().LogLevel)
	}
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if _, err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.Get().LogLevel != "debug" {
		t.Fatalf("expected debug after reload, got %s", m.Get().LogLevel)
	}
}

func TestStaticManager(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	m := NewStaticManager(cfg)
	if m.Get().LogLevel != "warn" {
		t.Fatalf("static manager lost config")
	}
	if _, err := m.Reload(); err == nil {
		t.Fatalf("static manager must refuse to reload")
	}
}
