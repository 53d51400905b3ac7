//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-warehouse.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DateFormat is the layout for all date values in configuration and flags.
const DateFormat = "2006-01-02"

// Config holds all configuration for pgedge-warehouse.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// DataDir is the root directory for generated CSV files and reports.
	DataDir string `mapstructure:"data_dir"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Validation holds configuration for the validate subcommand.
	Validation ValidateConfig `mapstructure:"validate"`
}

// InitConfig holds configuration for schema provisioning.
type InitConfig struct {
	// DropExisting drops existing schemas before initialization.
	DropExisting bool `mapstructure:"drop_existing"`

	// CalendarStart is the first date populated into dim_date (YYYY-MM-DD).
	CalendarStart string `mapstructure:"calendar_start"`

	// CalendarEnd is the last date populated into dim_date (YYYY-MM-DD).
	CalendarEnd string `mapstructure:"calendar_end"`
}

// SeedConfig holds configuration for synthetic operational data generation.
type SeedConfig struct {
	// Customers is the number of customers to generate.
	Customers int `mapstructure:"customers"`

	// Products is the number of products to generate.
	Products int `mapstructure:"products"`

	// Transactions is the number of transactions to generate.
	Transactions int `mapstructure:"transactions"`

	// StartDate is the earliest transaction date (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`

	// EndDate is the latest transaction date (YYYY-MM-DD).
	EndDate string `mapstructure:"end_date"`

	// Seed is the RNG seed for reproducible data (0 = random).
	Seed uint64 `mapstructure:"seed"`
}

// LoadConfig holds configuration for the warehouse load.
type LoadConfig struct {
	// BatchDate is the load date for dimension versioning (YYYY-MM-DD).
	// Empty means the current date.
	BatchDate string `mapstructure:"batch_date"`

	// AbortOnError stops the batch on the first fact resolution failure
	// instead of skipping the row and continuing.
	AbortOnError bool `mapstructure:"abort_on_error"`

	// SkipAggregates skips the aggregate refresh after fact loading.
	SkipAggregates bool `mapstructure:"skip_aggregates"`
}

// ValidateConfig holds configuration for data quality validation.
type ValidateConfig struct {
	// ReportPath is where the JSON quality report is written.
	ReportPath string `mapstructure:"report_path"`

	// FailOnViolation makes the validate command exit non-zero when any
	// check reports violations.
	FailOnViolation bool `mapstructure:"fail_on_violation"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		DataDir:  "./data",
		Init: InitConfig{
			DropExisting:  false,
			CalendarStart: "2024-01-01",
			CalendarEnd:   "2026-12-31",
		},
		Seed: SeedConfig{
			Customers:    1000,
			Products:     500,
			Transactions: 5000,
			StartDate:    "2024-01-01",
			EndDate:      "2024-12-31",
		},
		Load: LoadConfig{
			AbortOnError:   false,
			SkipAggregates: false,
		},
		Validation: ValidateConfig{
			ReportPath:      "data/quality/quality_report.json",
			FailOnViolation: false,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-warehouse.yaml
// 3. ~/.config/pgedge-warehouse/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-warehouse")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-warehouse"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	start, err := time.Parse(DateFormat, c.Init.CalendarStart)
	if err != nil {
		return fmt.Errorf("invalid calendar_start %q: expected YYYY-MM-DD", c.Init.CalendarStart)
	}
	end, err := time.Parse(DateFormat, c.Init.CalendarEnd)
	if err != nil {
		return fmt.Errorf("invalid calendar_end %q: expected YYYY-MM-DD", c.Init.CalendarEnd)
	}
	if end.Before(start) {
		return fmt.Errorf("calendar_end must not be before calendar_start")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required for seed")
	}
	if c.Seed.Customers < 1 {
		return fmt.Errorf("seed customers must be at least 1")
	}
	if c.Seed.Products < 1 {
		return fmt.Errorf("seed products must be at least 1")
	}
	if c.Seed.Transactions < 1 {
		return fmt.Errorf("seed transactions must be at least 1")
	}
	start, err := time.Parse(DateFormat, c.Seed.StartDate)
	if err != nil {
		return fmt.Errorf("invalid seed start_date %q: expected YYYY-MM-DD", c.Seed.StartDate)
	}
	end, err := time.Parse(DateFormat, c.Seed.EndDate)
	if err != nil {
		return fmt.Errorf("invalid seed end_date %q: expected YYYY-MM-DD", c.Seed.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("seed end_date must not be before start_date")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.BatchDate != "" {
		if _, err := time.Parse(DateFormat, c.Load.BatchDate); err != nil {
			return fmt.Errorf("invalid batch_date %q: expected YYYY-MM-DD", c.Load.BatchDate)
		}
	}
	return nil
}

// ValidateValidate checks configuration required for the validate command.
func (c *Config) ValidateValidate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Validation.ReportPath == "" {
		return fmt.Errorf("report_path is required for validate")
	}
	return nil
}
