// =============================================================================
// Picking List Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (picker)
//   ├── pickCmd     (picker pick)
//   ├── validateCmd (picker validate)
//   ├── sheetsCmd   (picker sheets list|export)
//   ├── historyCmd  (picker history list|show|prune)
//   └── versionCmd  (picker version)
//
// The root command owns the global flags (--config, --verbose). Commands
// load the configuration and the logger through loadConfig and openLogger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging to stdout.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "picker",
	Short: "Picking List Generator - turn order exports into warehouse picking lists",
	Long: `Picking List Generator reads merchant order exports (CSV), checks every line
against the product reference spreadsheet, and writes a deduplicated picking
list with quantities converted to single units.

Key Features:
  - Reference table from a local workbook, a CSV file or Google Sheets
  - Unit overrides by exact SKU or pattern
  - Kit/set products totalled in order terms
  - Printable XLSX and machine-readable XML output
  - Run history with reprint support

Example Usage:
  picker pick                     # Process every export in the input directory
  picker pick --file orders.csv   # Process a single export
  picker validate                 # Check the reference table and configuration
  picker sheets export            # Save a snapshot of the reference spreadsheet`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the main configuration named by --config.
func loadConfig() (*config.MainConfig, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	return mainConfig, nil
}

// openLogger builds the run logger from the configuration and --verbose.
// The caller closes it.
func openLogger(cfg *config.MainConfig) (*logging.LevelLogger, error) {
	logger, err := logging.NewFromConfig(cfg.LogFile, cfg.LogLevel, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}
