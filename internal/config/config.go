// Package config provides configuration loading and validation for the tool.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkoda/bifrost/internal/types"
)

// Config represents the tool configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Server
	Host string `json:"host,omitempty"` // Bind address for the web server
	Port int    `json:"port,omitempty"` // Listen port for the web server

	// External services
	OracleURL     string `json:"oracle_url,omitempty"`      // Race simulation service base URL
	CourseDataURL string `json:"course_data_url,omitempty"` // Course metadata service base URL

	// Paths
	CourseDataPath string `json:"course_data_path,omitempty"` // Local course metadata JSON file
	DatabasePath   string `json:"database_path,omitempty"`    // SQLite database path

	// Behavior
	Verbose    bool                    `json:"verbose,omitempty"`    // Print detailed debug information
	Calculator *types.CalculatorConfig `json:"calculator,omitempty"` // Training scorer weights and thresholds
	Targets    *types.Targets          `json:"targets,omitempty"`    // Build acceptance thresholds
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
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.CourseDataPath != "" {
		if _, err := os.Stat(c.CourseDataPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: course data file not found: %s", c.CourseDataPath)
		}
	}

	if c.Calculator != nil {
		if err := c.Calculator.Validate(); err != nil {
			return fmt.Errorf("config error: invalid calculator settings: %w", err)
		}
	}
	if c.Targets != nil {
		if err := c.Targets.Validate(); err != nil {
			return fmt.Errorf("config error: invalid targets: %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Host == "" {
		result.Host = defaults.Host
	}
	if result.OracleURL == "" {
		result.OracleURL = defaults.OracleURL
	}
	if result.CourseDataURL == "" {
		result.CourseDataURL = defaults.CourseDataURL
	}
	if result.CourseDataPath == "" {
		result.CourseDataPath = defaults.CourseDataPath
	}
	if result.DatabasePath == "" {
		result.DatabasePath = defaults.DatabasePath
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Pointer fields: nil means unset
	if result.Calculator == nil {
		result.Calculator = defaults.Calculator
	}
	if result.Targets == nil {
		result.Targets = defaults.Targets
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in configuration used when no config file or
// flag overrides a value.
func Defaults() Config {
	calculator := types.DefaultCalculator()
	targets := types.DefaultTargets()
	return Config{
		Host:         "127.0.0.1",
		Port:         8721,
		OracleURL:    "http://127.0.0.1:8722",
		DatabasePath: defaultDatabasePath(),
		Calculator:   &calculator,
		Targets:      &targets,
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bifrost.db"
	}
	return filepath.Join(home, ".bifrost", "bifrost.db")
}
