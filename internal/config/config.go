package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StrategyAuto   = "auto"
	StrategyForest = "iforest"
	StrategyZScore = "zscore"
)

type Config struct {
	LogLevel  string          `json:"log_level" yaml:"log_level"`
	Collector CollectorConfig `json:"collector" yaml:"collector"`
	Parser    ParserConfig    `json:"parser" yaml:"parser"`
	Compact   CompactConfig   `json:"compact" yaml:"compact"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Alerting  AlertingConfig  `json:"alerting" yaml:"alerting"`
	Report    ReportConfig    `json:"report" yaml:"report"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Alerts    AlertsConfig    `json:"alerts" yaml:"alerts"`
	API       APIConfig       `json:"api" yaml:"api"`
}

type CollectorConfig struct {
	File  FileConfig  `json:"file" yaml:"file"`
	Kafka KafkaConfig `json:"kafka" yaml:"kafka"`
	REST  RESTConfig  `json:"rest" yaml:"rest"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

type KafkaConfig struct {
	Enabled     bool          `json:"enabled" yaml:"enabled"`
	Brokers     []string      `json:"brokers" yaml:"brokers"`
	Topic       string        `json:"topic" yaml:"topic"`
	GroupID     string        `json:"group_id" yaml:"group_id"`
	MaxBatch    int           `json:"max_batch" yaml:"max_batch"`
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

type RESTConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type ParserConfig struct {
	Timezone    string `json:"timezone" yaml:"timezone"`
	FillMissing string `json:"fill_missing" yaml:"fill_missing"`
}

type CompactConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type DetectionConfig struct {
	BruteForceThreshold int     `json:"brute_force_threshold" yaml:"brute_force_threshold"`
	NSigma              float64 `json:"n_sigma" yaml:"n_sigma"`
	Contamination       float64 `json:"contamination" yaml:"contamination"`
	Strategy            string  `json:"strategy" yaml:"strategy"`
	ForestTrees         int     `json:"forest_trees" yaml:"forest_trees"`
	ForestSubsample     int     `json:"forest_subsample" yaml:"forest_subsample"`
}

type AlertingConfig struct {
	WebhookURL string        `json:"webhook_url" yaml:"webhook_url"`
	APIKey     string        `json:"api_key" yaml:"api_key"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

type ReportConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type AlertsConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Collector: CollectorConfig{
			File:  FileConfig{Enabled: true, Path: "data/sample_logs.json"},
			Kafka: KafkaConfig{Enabled: false, MaxBatch: 10000, IdleTimeout: 5 * time.Second},
			REST:  RESTConfig{Enabled: false, Addr: ":8080"},
		},
		Parser:  ParserConfig{Timezone: "UTC", FillMissing: "unknown"},
		Compact: CompactConfig{Enabled: true},
		Detection: DetectionConfig{
			BruteForceThreshold: 5,
			NSigma:              3.0,
			Contamination:       0.1,
			Strategy:            StrategyAuto,
			ForestTrees:         100,
			ForestSubsample:     256,
		},
		Alerting: AlertingConfig{Timeout: 10 * time.Second},
		Report:   ReportConfig{Enabled: true, Path: "data/report.json"},
		Storage:  StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:logguard.db?_pragma=busy_timeout(5000)"},
		Alerts:   AlertsConfig{StoreLimit: 1000},
		API:      APIConfig{Enabled: false, Addr: ":8081"},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Parser.FillMissing == "" {
		cfg.Parser.FillMissing = "unknown"
	}
	if cfg.Parser.Timezone == "" {
		cfg.Parser.Timezone = "UTC"
	}
	if cfg.Detection.BruteForceThreshold == 0 {
		cfg.Detection.BruteForceThreshold = 5
	}
	if cfg.Detection.NSigma == 0 {
		cfg.Detection.NSigma = 3.0
	}
	if cfg.Detection.Contamination == 0 {
		cfg.Detection.Contamination = 0.1
	}
	if cfg.Detection.Strategy == "" {
		cfg.Detection.Strategy = StrategyAuto
	}
	if cfg.Detection.ForestTrees <= 0 {
		cfg.Detection.ForestTrees = 100
	}
	if cfg.Detection.ForestSubsample <= 0 {
		cfg.Detection.ForestSubsample = 256
	}
	if cfg.Alerting.Timeout <= 0 {
		cfg.Alerting.Timeout = 10 * time.Second
	}
	if cfg.Alerts.StoreLimit <= 0 {
		cfg.Alerts.StoreLimit = 1000
	}
	if cfg.Collector.Kafka.MaxBatch <= 0 {
		cfg.Collector.Kafka.MaxBatch = 10000
	}
	if cfg.Collector.Kafka.IdleTimeout <= 0 {
		cfg.Collector.Kafka.IdleTimeout = 5 * time.Second
	}
	if cfg.Report.Path == "" {
		cfg.Report.Path = "data/report.json"
	}
}

func Validate(cfg *Config) error {
	if cfg.Detection.BruteForceThreshold < 0 {
		return errors.New("detection.brute_force_threshold must be >= 0")
	}
	if cfg.Detection.NSigma <= 0 {
		return errors.New("detection.n_sigma must be > 0")
	}
	if cfg.Detection.Contamination <= 0 || cfg.Detection.Contamination >= 1 {
		return errors.New("detection.contamination must be in (0, 1)")
	}
	switch cfg.Detection.Strategy {
	case StrategyAuto, StrategyForest, StrategyZScore:
	default:
		return fmt.Errorf("detection.strategy must be one of %s, %s, %s", StrategyAuto, StrategyForest, StrategyZScore)
	}
	if cfg.Collector.File.Enabled && cfg.Collector.File.Path == "" {
		return errors.New("collector.file.path required when collector.file.enabled is true")
	}
	if cfg.Collector.Kafka.Enabled {
		if len(cfg.Collector.Kafka.Brokers) == 0 || cfg.Collector.Kafka.Topic == "" || cfg.Collector.Kafka.GroupID == "" {
			return errors.New("collector.kafka requires brokers, topic, group_id")
		}
	}
	if cfg.Collector.REST.Enabled && cfg.Collector.REST.Addr == "" {
		return errors.New("collector.rest.addr required when collector.rest.enabled is true")
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Report.Enabled && cfg.Report.Path == "" {
		return errors.New("report.path required when report.enabled is true")
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	if info, err := os.Stat(path); err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

// NewStaticManager wraps an already-built config, for runs without a
// config file on disk.
func NewStaticManager(cfg *Config) *Manager {
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return nil, errors.New("no config file to reload")
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) NeedsReload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
