package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"dmworker/internal/normalizer"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
pipeline:
  input_dir: "/data/raw"
  output_dir: "/data/processed"
  pattern: "drilling_machine*.json"
  steps:
    - normalize_key_casing
    - filter_relevant_fields
logging:
  level: "debug"
  file: "/var/log/dm/worker_{timestamp}.log"
trigger:
  mode: "schedule"
  schedule: "@every 10m"
  debounce_ms: 250
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Pipeline.InputDir != "/data/raw" {
		t.Errorf("Expected InputDir '/data/raw', got '%s'", cfg.Pipeline.InputDir)
	}

	want := []string{normalizer.StepNormalizeKeyCasing, normalizer.StepFilterRelevantFields}
	if !reflect.DeepEqual(cfg.Pipeline.Steps, want) {
		t.Errorf("Expected steps %v, got %v", want, cfg.Pipeline.Steps)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level 'debug', got '%s'", cfg.Logging.Level)
	}

	if cfg.Trigger.Mode != ModeSchedule || cfg.Trigger.Schedule != "@every 10m" {
		t.Errorf("Unexpected trigger %+v", cfg.Trigger)
	}

	if cfg.Trigger.GetDebounce() != 250*time.Millisecond {
		t.Errorf("Expected debounce 250ms, got %v", cfg.Trigger.GetDebounce())
	}
}

func TestLoadConfig_PartialUsesDefaults(t *testing.T) {
	configPath := createTempConfigFile(t, `
pipeline:
  input_dir: "in"
  output_dir: "out"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	defaults := DefaultConfig()

	if cfg.Pipeline.Pattern != defaults.Pipeline.Pattern {
		t.Errorf("Pattern = %q, want default %q", cfg.Pipeline.Pattern, defaults.Pipeline.Pattern)
	}

	if !reflect.DeepEqual(cfg.Pipeline.Steps, normalizer.DefaultStepNames()) {
		t.Errorf("Steps = %v, want defaults", cfg.Pipeline.Steps)
	}

	if cfg.Trigger.Mode != ModeOnce || cfg.Logging.Level != "info" {
		t.Errorf("Unexpected defaults: %+v %+v", cfg.Trigger, cfg.Logging)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "pipeline: [unclosed")

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := createTempConfigFile(t, `
pipeline:
  input_dir: "in"
  output_dir: "out"
  steps: [shout_keys]
`)

	_, err := LoadConfig(configPath)
	if !errors.Is(err, ErrUnknownStep) {
		t.Errorf("Expected ErrUnknownStep, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"missing input", func(c *Config) { c.Pipeline.InputDir = "" }, ErrMissingInputDir},
		{"missing output", func(c *Config) { c.Pipeline.OutputDir = "" }, ErrMissingOutputDir},
		{"same dirs", func(c *Config) { c.Pipeline.OutputDir = "./raw/" }, ErrSameDirs},
		{"bad pattern", func(c *Config) { c.Pipeline.Pattern = "[" }, ErrInvalidPattern},
		{"no steps", func(c *Config) { c.Pipeline.Steps = nil }, ErrNoSteps},
		{"unknown step", func(c *Config) { c.Pipeline.Steps = []string{"nope"} }, ErrUnknownStep},
		{"duplicate step", func(c *Config) {
			c.Pipeline.Steps = []string{normalizer.StepReformatDates, normalizer.StepReformatDates}
		}, ErrDuplicateStep},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"bad mode", func(c *Config) { c.Trigger.Mode = "forever" }, ErrInvalidMode},
		{"schedule without expression", func(c *Config) { c.Trigger.Mode = ModeSchedule }, ErrMissingSchedule},
		{"negative debounce", func(c *Config) { c.Trigger.DebounceMs = -1 }, ErrInvalidDebounceMs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetLogFile(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 5, 3, 0, time.UTC)

	l := LoggingConfig{File: "logs/dm_{timestamp}.log"}
	if got := l.GetLogFile(now); got != "logs/dm_20261019_080503.log" {
		t.Errorf("GetLogFile = %q", got)
	}

	if got := (&LoggingConfig{}).GetLogFile(now); got != "" {
		t.Errorf("GetLogFile with no file = %q, want empty", got)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trigger.Mode = ModeWatch

	savePath := filepath.Join(t.TempDir(), "saved_config.yaml")
	if err := cfg.SaveConfig(savePath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(savePath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Round trip mismatch:\ngot  %+v\nwant %+v", loaded, cfg)
	}
}

func TestString(t *testing.T) {
	got := DefaultConfig().String()
	want := "Config{Input: ./raw, Output: ./processed, Pattern: drilling_machine*.json, Steps: 5, Mode: once}"

	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
