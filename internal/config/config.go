// Package config provides configuration management for the drilling-machine worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dmworker/internal/normalizer"
	"dmworker/internal/pipeline"
)

// Trigger modes.
const (
	ModeOnce     = "once"
	ModeWatch    = "watch"
	ModeSchedule = "schedule"
)

// timestampToken in logging.file is replaced by the run start time.
const timestampToken = "{timestamp}"

// Configuration validation errors.
var (
	ErrMissingInputDir   = errors.New("pipeline.input_dir is required")
	ErrMissingOutputDir  = errors.New("pipeline.output_dir is required")
	ErrSameDirs          = errors.New("pipeline.output_dir must differ from pipeline.input_dir")
	ErrInvalidPattern    = errors.New("pipeline.pattern is not a valid glob")
	ErrNoSteps           = errors.New("pipeline.steps must list at least one step")
	ErrUnknownStep       = errors.New("pipeline.steps contains an unknown step")
	ErrDuplicateStep     = errors.New("pipeline.steps contains a duplicate step")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidMode       = errors.New("trigger.mode must be one of: once, watch, schedule")
	ErrMissingSchedule   = errors.New("trigger.schedule is required when trigger.mode is schedule")
	ErrInvalidDebounceMs = errors.New("trigger.debounce_ms must be non-negative")
)

// Config represents the complete worker configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
	Trigger  TriggerConfig  `yaml:"trigger"`
}

// PipelineConfig selects the files to process and the transforms to apply.
type PipelineConfig struct {
	InputDir  string   `yaml:"input_dir"`
	OutputDir string   `yaml:"output_dir"`
	Pattern   string   `yaml:"pattern"`
	Steps     []string `yaml:"steps"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TriggerConfig defines when batches run.
type TriggerConfig struct {
	Mode       string `yaml:"mode"`
	Schedule   string `yaml:"schedule"`
	DebounceMs int    `yaml:"debounce_ms"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputDir:  "./raw",
			OutputDir: "./processed",
			Pattern:   pipeline.DefaultPattern,
			Steps:     normalizer.DefaultStepNames(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Trigger: TriggerConfig{
			Mode:       ModeOnce,
			DebounceMs: 500,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Pipeline.InputDir == "" {
		return ErrMissingInputDir
	}

	if c.Pipeline.OutputDir == "" {
		return ErrMissingOutputDir
	}

	if filepath.Clean(c.Pipeline.InputDir) == filepath.Clean(c.Pipeline.OutputDir) {
		return ErrSameDirs
	}

	if _, err := filepath.Match(c.Pipeline.Pattern, ""); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, c.Pipeline.Pattern)
	}

	if len(c.Pipeline.Steps) == 0 {
		return ErrNoSteps
	}

	seen := make(map[string]bool, len(c.Pipeline.Steps))
	for i, name := range c.Pipeline.Steps {
		if !normalizer.IsKnownStep(name) {
			return fmt.Errorf("%w: steps[%d] %q", ErrUnknownStep, i, name)
		}

		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateStep, name)
		}

		seen[name] = true
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	switch c.Trigger.Mode {
	case ModeOnce, ModeWatch:
	case ModeSchedule:
		if strings.TrimSpace(c.Trigger.Schedule) == "" {
			return ErrMissingSchedule
		}
	default:
		return ErrInvalidMode
	}

	if c.Trigger.DebounceMs < 0 {
		return ErrInvalidDebounceMs
	}

	return nil
}

// GetDebounce returns the watch debounce delay.
func (t *TriggerConfig) GetDebounce() time.Duration {
	return time.Duration(t.DebounceMs) * time.Millisecond
}

// GetLogFile returns the log file path with {timestamp} expanded, or "" when
// file logging is off.
func (l *LoggingConfig) GetLogFile(now time.Time) string {
	if l.File == "" {
		return ""
	}

	return strings.ReplaceAll(l.File, timestampToken, now.Format("20060102_150405"))
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Output: %s, Pattern: %s, Steps: %d, Mode: %s}",
		c.Pipeline.InputDir,
		c.Pipeline.OutputDir,
		c.Pipeline.Pattern,
		len(c.Pipeline.Steps),
		c.Trigger.Mode,
	)
}
