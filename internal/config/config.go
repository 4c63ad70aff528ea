// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default values used when neither the config file nor a flag sets a field.
const (
	DefaultPageCapacity      = 1043
	DefaultMaxIterations     = 15
	DefaultHistoryMaxLength  = 100
	DefaultHistoryDebounceMS = 500
	DefaultFrameIntervalMS   = 16
	DefaultPort              = 8080
	DefaultDraftTTLMinutes   = 60 * 24
	DefaultLogMode           = "dev"
)

// Config represents the editor configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Layout
	PageCapacity    float64 `json:"page_capacity,omitempty" validate:"gte=0"`     // Usable page height in CSS pixels
	MaxIterations   int     `json:"max_iterations,omitempty" validate:"gte=0"`    // Pagination relaxation cap
	FrameIntervalMS int     `json:"frame_interval_ms,omitempty" validate:"gte=0"` // Per-frame re-measure interval

	// History
	HistoryMaxLength  int `json:"history_max_length,omitempty" validate:"gte=0"`  // Committed entries kept
	HistoryDebounceMS int `json:"history_debounce_ms,omitempty" validate:"gte=0"` // Quiet period before an edit is committed

	// Server
	Port            int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	DatabaseURL     string `json:"database_url,omitempty"`                       // PostgreSQL connection URL
	RedisAddr       string `json:"redis_addr,omitempty"`                         // Redis address for draft autosave
	DraftTTLMinutes int    `json:"draft_ttl_minutes,omitempty" validate:"gte=0"` // Draft expiry

	// Behavior
	LogMode string `json:"log_mode,omitempty" validate:"omitempty,oneof=dev development prod production"`
	Verbose bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns a Config with every field set to its default value.
func Defaults() Config {
	return Config{
		PageCapacity:      DefaultPageCapacity,
		MaxIterations:     DefaultMaxIterations,
		FrameIntervalMS:   DefaultFrameIntervalMS,
		HistoryMaxLength:  DefaultHistoryMaxLength,
		HistoryDebounceMS: DefaultHistoryDebounceMS,
		Port:              DefaultPort,
		DraftTTLMinutes:   DefaultDraftTTLMinutes,
		LogMode:           DefaultLogMode,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' (got %v)", jsonName(fe.StructField()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if c.FrameIntervalMS > 0 && c.FrameIntervalMS < 4 {
		return fmt.Errorf("config error: 'frame_interval_ms' must be at least 4 when set")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.PageCapacity == 0 {
		result.PageCapacity = defaults.PageCapacity
	}
	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.FrameIntervalMS == 0 {
		result.FrameIntervalMS = defaults.FrameIntervalMS
	}
	if result.HistoryMaxLength == 0 {
		result.HistoryMaxLength = defaults.HistoryMaxLength
	}
	if result.HistoryDebounceMS == 0 {
		result.HistoryDebounceMS = defaults.HistoryDebounceMS
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.DraftTTLMinutes == 0 {
		result.DraftTTLMinutes = defaults.DraftTTLMinutes
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// HistoryDebounce returns the debounce delay as a duration.
func (c *Config) HistoryDebounce() time.Duration {
	return time.Duration(c.HistoryDebounceMS) * time.Millisecond
}

// FrameInterval returns the per-frame re-measure interval as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// DraftTTL returns the draft expiry as a duration.
func (c *Config) DraftTTL() time.Duration {
	return time.Duration(c.DraftTTLMinutes) * time.Minute
}

var jsonNames = map[string]string{
	"PageCapacity":      "page_capacity",
	"MaxIterations":     "max_iterations",
	"FrameIntervalMS":   "frame_interval_ms",
	"HistoryMaxLength":  "history_max_length",
	"HistoryDebounceMS": "history_debounce_ms",
	"Port":              "port",
	"DraftTTLMinutes":   "draft_ttl_minutes",
	"LogMode":           "log_mode",
}

func jsonName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return field
}
