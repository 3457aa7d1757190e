// Package config loads groundwork configuration from
// .groundwork/config.yaml, merging file values over defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the groundwork state directory inside a project.
const Dir = ".groundwork"

// Config is the resolved configuration passed explicitly into the controller
// and executor at construction. No ambient process-wide state.
type Config struct {
	Engine         string        // LLM engine name
	BeadsBin       string        // tracker CLI binary
	PhasesDir      string        // where decomposed phase files land
	CheckpointDir  string        // checkpoint store location
	SessionDir     string        // session audit logs
	LLMTimeout     time.Duration // per LLM step bound
	TrackerTimeout time.Duration // per tracker call bound
	Retention      Retention
}

// Retention controls checkpoint cleanup.
type Retention struct {
	MaxAgeDays int // checkpoints older than this are eligible for cleanup
	MaxCount   int // keep at most this many checkpoints
}

// rawConfig mirrors the YAML file. Pointer fields distinguish "not set"
// (nil) from "set to zero".
type rawConfig struct {
	Engine         *string `yaml:"engine"`
	BeadsBin       *string `yaml:"beadsBin"`
	PhasesDir      *string `yaml:"phasesDir"`
	CheckpointDir  *string `yaml:"checkpointDir"`
	SessionDir     *string `yaml:"sessionDir"`
	LLMTimeout     *string `yaml:"llmTimeout"`
	TrackerTimeout *string `yaml:"trackerTimeout"`
	Retention      struct {
		MaxAgeDays *int `yaml:"maxAgeDays"`
		MaxCount   *int `yaml:"maxCount"`
	} `yaml:"retention"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:         "claude",
		BeadsBin:       "bd",
		PhasesDir:      filepath.Join(Dir, "phases"),
		CheckpointDir:  filepath.Join(Dir, "checkpoints"),
		SessionDir:     filepath.Join(Dir, "sessions"),
		LLMTimeout:     60 * time.Second,
		TrackerTimeout: 30 * time.Second,
		Retention: Retention{
			MaxAgeDays: 30,
			MaxCount:   20,
		},
	}
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if c.Engine == "" {
		return fmt.Errorf("engine must not be empty")
	}
	if c.BeadsBin == "" {
		return fmt.Errorf("beadsBin must not be empty")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llmTimeout must be greater than 0")
	}
	if c.TrackerTimeout <= 0 {
		return fmt.Errorf("trackerTimeout must be greater than 0")
	}
	if c.Retention.MaxAgeDays < 0 {
		return fmt.Errorf("retention.maxAgeDays must not be negative")
	}
	if c.Retention.MaxCount < 0 {
		return fmt.Errorf("retention.maxCount must not be negative")
	}
	return nil
}

// Load reads configuration from <dir>/.groundwork/config.yaml. A missing
// file yields the defaults; set keys override them individually.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, Dir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
	}

	if raw.Engine != nil {
		cfg.Engine = *raw.Engine
	}
	if raw.BeadsBin != nil {
		cfg.BeadsBin = *raw.BeadsBin
	}
	if raw.PhasesDir != nil {
		cfg.PhasesDir = *raw.PhasesDir
	}
	if raw.CheckpointDir != nil {
		cfg.CheckpointDir = *raw.CheckpointDir
	}
	if raw.SessionDir != nil {
		cfg.SessionDir = *raw.SessionDir
	}
	if raw.LLMTimeout != nil {
		d, err := time.ParseDuration(*raw.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid llmTimeout: %w", err)
		}
		cfg.LLMTimeout = d
	}
	if raw.TrackerTimeout != nil {
		d, err := time.ParseDuration(*raw.TrackerTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid trackerTimeout: %w", err)
		}
		cfg.TrackerTimeout = d
	}
	if raw.Retention.MaxAgeDays != nil {
		cfg.Retention.MaxAgeDays = *raw.Retention.MaxAgeDays
	}
	if raw.Retention.MaxCount != nil {
		cfg.Retention.MaxCount = *raw.Retention.MaxCount
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
