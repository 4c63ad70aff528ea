package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/logger"
)

// loadSettings resolves the effective configuration: config file first, then
// environment, then explicitly set flags, then defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if cmd.Flags().Changed("log-mode") {
		cfg.LogMode = logMode
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}

	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// newLogger builds the process logger. One-shot commands stay quiet unless
// verbose output was asked for.
func newLogger(cfg config.Config, always bool) (*logger.Logger, error) {
	if !always && !cfg.Verbose {
		return logger.Nop(), nil
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// diagnostics is where verbose summaries go: stdout when the result is
// written to a file, stderr when the result itself goes to stdout.
func diagnostics(outPath string) io.Writer {
	if outPath == "" {
		return os.Stderr
	}
	return os.Stdout
}
