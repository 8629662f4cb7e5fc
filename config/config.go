// Package config loads the service configuration from JSON or YAML files with
// optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ngworks1909/pulse-backend/core/metrics"
	"github.com/ngworks1909/pulse-backend/infra/faresource"
	"github.com/ngworks1909/pulse-backend/infra/mqtt"
	"github.com/ngworks1909/pulse-backend/infra/push"
)

type Config struct {
	Store      StoreConfig       `json:"store"`
	FareSource faresource.Config `json:"fare_source"`
	Push       push.Config       `json:"push"`
	Sweep      SweepConfig       `json:"sweep"`
	Metrics    metrics.Config    `json:"metrics"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Journal    JournalConfig     `json:"journal"`
	API        APIConfig         `json:"api"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `json:"path"`
}

// SweepConfig controls the periodic sweep loop.
type SweepConfig struct {
	IntervalMinutes int `json:"interval_minutes"`
	Workers         int `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *SweepConfig) SetDefaults() {
	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 30
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// JournalConfig enables the JSONL sweep journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// APIConfig exposes the fare history endpoint.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	Token   string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.FareSource.SetDefaults()
	cfg.Push.SetDefaults()
	cfg.Sweep.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when journal is enabled")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if c.Metrics.InfluxEnabled && c.Metrics.InfluxURL == "" {
		return fmt.Errorf("metrics.influx_url is required when influx is enabled")
	}
	return nil
}
