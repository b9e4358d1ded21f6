// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the run configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or come from
// CLI flags, which win over file values.
type Config struct {
	// Range
	Start int `json:"start,omitempty"` // First identifier (inclusive)
	End   int `json:"end,omitempty"`   // Last identifier (inclusive)

	// Output
	Out string `json:"out,omitempty"` // Output directory for id_<N>.json files

	// Source
	BaseURL string `json:"base_url,omitempty"` // Endpoint or record page base URL
	Mode    string `json:"mode,omitempty"`     // Direct access mode: auto, download, or view

	// Pacing
	Delay    float64 `json:"delay,omitempty"`     // Seconds between record fetches
	Timeout  int     `json:"timeout,omitempty"`   // HTTP timeout in seconds
	GateWait int     `json:"gate_wait,omitempty"` // Verification gate ceiling in seconds

	// Behavior
	Resume      bool `json:"resume,omitempty"`       // Skip identifiers already on disk
	CheckRobots bool `json:"check_robots,omitempty"` // Read the advisory crawl policy before starting
	Verbose     bool `json:"verbose,omitempty"`      // Print detailed debug information
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

// Validate checks that the configuration has valid values. Range bounds are
// not ordered here: a descending range is legal and harvested high-to-low.
func (c *Config) Validate() error {
	if c.Start < 0 || c.End < 0 {
		return fmt.Errorf("config error: 'start' and 'end' must be non-negative")
	}
	if c.Delay < 0 {
		return fmt.Errorf("config error: 'delay' must be non-negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config error: 'timeout' must be non-negative")
	}
	if c.GateWait < 0 {
		return fmt.Errorf("config error: 'gate_wait' must be non-negative")
	}
	switch c.Mode {
	case "", "auto", "download", "view":
	default:
		return fmt.Errorf("config error: 'mode' must be auto, download, or view")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. Bool fields are not merged: unset and false are
// indistinguishable, so CLI flags always win for them.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Start == 0 {
		result.Start = defaults.Start
	}
	if result.End == 0 {
		result.End = defaults.End
	}
	if result.Out == "" {
		result.Out = defaults.Out
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.Delay == 0 {
		result.Delay = defaults.Delay
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.GateWait == 0 {
		result.GateWait = defaults.GateWait
	}

	return result
}
