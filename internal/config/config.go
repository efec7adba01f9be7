// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Search
	Keywords []string `json:"keywords,omitempty"`
	Location string   `json:"location,omitempty"`
	Limit    int      `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`

	// Profile
	ProfilePath string `json:"profile,omitempty"` // Path to the profile JSON export

	// Career-page boards to poll directly, by company slug.
	GreenhouseBoards []string `json:"greenhouse_boards,omitempty"`
	LeverCompanies   []string `json:"lever_companies,omitempty"`

	// Aggregation
	MaxConcurrent           int           `json:"max_concurrent,omitempty" validate:"omitempty,min=1,max=64"`
	PerSourceTimeoutSeconds int           `json:"per_source_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	GlobalBudgetSeconds     int           `json:"global_budget_seconds,omitempty" validate:"omitempty,min=1"`
	PerSourceTimeout        time.Duration `json:"-"`
	GlobalBudget            time.Duration `json:"-"`

	// Matching
	APIKey   string  `json:"api_key,omitempty"` // Gemini API key for the embedding backend
	MinScore float64 `json:"min_score,omitempty" validate:"omitempty,min=0,max=1"`

	// Application automation
	MaxSessions int `json:"max_sessions,omitempty" validate:"omitempty,min=1,max=16"`
	MaxRetries  int `json:"max_retries,omitempty" validate:"omitempty,min=0,max=5"`

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty runs in-memory

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
	JSONLog bool `json:"json_log,omitempty"`
}

// Defaults returns a Config with every tunable at its default value.
func Defaults() *Config {
	return &Config{
		Limit:            50,
		MaxConcurrent:    8,
		PerSourceTimeout: 15 * time.Second,
		GlobalBudget:     60 * time.Second,
		MinScore:         0.5,
		MaxSessions:      2,
		MaxRetries:       2,
	}
}

// Load loads configuration from a JSON file and applies defaults for unset
// values. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg.applyDurations()

	return cfg, nil
}

// applyDurations converts the JSON second counts into time.Durations, keeping
// defaults when unset.
func (c *Config) applyDurations() {
	if c.PerSourceTimeoutSeconds > 0 {
		c.PerSourceTimeout = time.Duration(c.PerSourceTimeoutSeconds) * time.Second
	}
	if c.GlobalBudgetSeconds > 0 {
		c.GlobalBudget = time.Duration(c.GlobalBudgetSeconds) * time.Second
	}
	if c.PerSourceTimeout == 0 {
		c.PerSourceTimeout = 15 * time.Second
	}
	if c.GlobalBudget == 0 {
		c.GlobalBudget = 60 * time.Second
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.PerSourceTimeout > c.GlobalBudget {
		return fmt.Errorf("invalid config: per-source timeout %s exceeds global budget %s", c.PerSourceTimeout, c.GlobalBudget)
	}
	return nil
}
