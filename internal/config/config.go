// Package config loads the TOML configuration for the report generator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Report storage source
	Source SourceConfig `toml:"source"`

	// Aggregation thresholds
	Aggregation AggregationConfig `toml:"aggregation"`

	// Local persistence
	Storage StorageConfig `toml:"storage"`

	// Chart rendering
	Charts ChartsConfig `toml:"charts"`
}

// SourceConfig locates the remote report storage.
type SourceConfig struct {
	BaseURL     string `toml:"base_url"`     // Root URL of the report bucket
	Concurrency int    `toml:"concurrency"`  // Parallel tournament fetches
	Timeout     string `toml:"timeout"`      // Per-request timeout (e.g., "30s")
	SynonymFile string `toml:"synonym_file"` // Optional local synonym table path
}

// AggregationConfig contains report thresholds.
type AggregationConfig struct {
	MinDeckCount   int    `toml:"min_deck_count"`  // Decks required per archetype report
	MinAppearances int    `toml:"min_appearances"` // Tournaments required per trend series
	TopCount       int    `toml:"top_count"`       // Rising/falling list length
	Granularity    string `toml:"granularity"`     // tournament, daily or weekly
	SuccessFilter  string `toml:"success_filter"`  // Optional success tag filter
	AnonymizeNames bool   `toml:"anonymize_names"` // Hash player names in outputs
}

// StorageConfig contains SQLite report store settings.
type StorageConfig struct {
	Path    string `toml:"path"`    // SQLite database path; empty disables the store
	OutDir  string `toml:"out_dir"` // Directory for JSON report files
	Migrate bool   `toml:"migrate"` // Run schema migrations on open
}

// ChartsConfig contains trend chart rendering settings.
type ChartsConfig struct {
	Enabled bool   `toml:"enabled"`
	OutDir  string `toml:"out_dir"`
	Width   string `toml:"width"`  // e.g., "900px"
	Height  string `toml:"height"` // e.g., "500px"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:     "",
			Concurrency: 4,
			Timeout:     "30s",
			SynonymFile: "",
		},
		Aggregation: AggregationConfig{
			MinDeckCount:   1,
			MinAppearances: 1,
			TopCount:       10,
			Granularity:    "tournament",
		},
		Storage: StorageConfig{
			Path:    "",
			OutDir:  "reports",
			Migrate: true,
		},
		Charts: ChartsConfig{
			Enabled: false,
			OutDir:  "charts",
			Width:   "900px",
			Height:  "500px",
		},
	}
}

// Load loads the configuration from the given path. Returns the default
// config when the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(".", "ptcg-meta.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Source.Timeout); err != nil {
		return fmt.Errorf("invalid source timeout %q: %w", c.Source.Timeout, err)
	}

	if c.Source.Concurrency < 0 {
		return fmt.Errorf("source concurrency cannot be negative: %d", c.Source.Concurrency)
	}

	switch c.Aggregation.Granularity {
	case "", "tournament", "daily", "weekly":
	default:
		return fmt.Errorf("invalid granularity %q", c.Aggregation.Granularity)
	}

	if c.Aggregation.TopCount < 0 {
		return fmt.Errorf("top count cannot be negative: %d", c.Aggregation.TopCount)
	}

	return nil
}

// GetSourceTimeout returns the source timeout as a duration.
func (c *Config) GetSourceTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Source.Timeout)
}
