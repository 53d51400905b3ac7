//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-warehouse.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/quality"
	"github.com/pgEdge/pgedge-warehouse/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-warehouse",
		Short: "Batch load pipeline for a PostgreSQL dimensional warehouse",
		Long: `pgedge-warehouse moves operational retail data through a batch
pipeline: raw CSV files land in a staging schema, are cleansed into a
production schema, and load into a star-schema warehouse with slowly
changing (Type 2) dimensions, immutable facts, and summary aggregates.

Typical flow:
  pgedge-warehouse init       # create schemas and the date dimension
  pgedge-warehouse seed       # generate synthetic operational CSVs
  pgedge-warehouse ingest     # land the CSVs in staging
  pgedge-warehouse transform  # cleanse staging into production
  pgedge-warehouse load       # merge dimensions and load facts
  pgedge-warehouse validate   # run the data quality checks`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-warehouse.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checksCmd)
	rootCmd.AddCommand(runsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the data quality check catalogue",
	Long: `List every registered data quality check with its category and
description. Checks are pure reads and never modify data; run them with
the 'validate' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		var lastCategory string
		for _, check := range quality.All() {
			if check.Category != lastCategory {
				if lastCategory != "" {
					cmd.Println()
				}
				cmd.Printf("%s:\n", check.Category)
				lastCategory = check.Category
			}
			cmd.Printf("  %-32s %s\n", check.Name, check.Description)
		}
	},
}
