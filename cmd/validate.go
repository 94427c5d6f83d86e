// =============================================================================
// Picking List Generator - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   picker validate [order.csv ...]
//
// Loads the configuration and the reference table and reports every finding
// without writing output. Order exports given as arguments are parsed and
// checked as well.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/csvparser"
	"github.com/ginjaninja78/picking-list/internal/picker"
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [order.csv ...]",
	Short: "Check the configuration, the reference table and order exports",
	Long: `The validate command loads the configuration and the reference table and
reports every problem it finds. Order exports given as arguments are checked
too. Nothing is written.

The command fails if the configuration is invalid, the reference table does
not match the column layout, or an order export has an error-level finding.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := picker.NewRewriter(mainConfig.FieldRewrites); err != nil {
		return err
	}

	table, err := picker.LoadReference(cmd.Context(), mainConfig.Reference, nil)
	if validation.IsMalformed(err) {
		fmt.Println("Reference table: columns E-R are expected (JAN in F, key in Q, name in R)")
	}
	if err != nil {
		return err
	}
	fmt.Printf("Configuration OK: %s\n", cfgFile)

	total, parseFailures := validateAll(picker.NewValidator(mainConfig), table, args, mainConfig.CSVSettings)
	fmt.Printf("Total: %d row(s), %d error(s), %d warning(s)\n",
		total.RowsValidated, total.ErrorCount, total.WarningCount)

	if !total.IsValid || parseFailures > 0 {
		return fmt.Errorf("validation failed")
	}
	fmt.Println("Validation passed.")
	return nil
}

// validateAll checks the reference table and every order export in paths,
// printing the findings per source. The returned result holds all findings;
// exports that could not be parsed are counted separately.
func validateAll(validator *validation.Validator, table *reference.Table, paths []string, settings config.CSVSettings) (*validation.ValidationResult, int) {
	total := validator.ValidateReference(table)
	fmt.Printf("Reference table: %d rows, %d error(s), %d warning(s)\n",
		total.RowsValidated, total.ErrorCount, total.WarningCount)
	if len(total.Errors) > 0 {
		fmt.Print(validation.FormatErrors(total.Errors))
	}

	parseFailures := 0
	for _, path := range paths {
		data, err := csvparser.Parse(path, settings)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			parseFailures++
			continue
		}

		orders := validator.ValidateOrders(data)
		fmt.Printf("%s: %d line(s), %d error(s), %d warning(s)\n",
			path, orders.RowsValidated, orders.ErrorCount, orders.WarningCount)
		if len(orders.Errors) > 0 {
			fmt.Print(validation.FormatErrors(orders.Errors))
		}
		total.Merge(orders)
	}

	return total, parseFailures
}
