// =============================================================================
// Picking List Generator - Validation Engine
// =============================================================================
//
// This module checks the two inputs of a run before the engine sees them:
//   - the order export (required headers, quantities, item codes)
//   - the reference table (column contract, unit cells, kit rows, duplicate
//     keys)
//
// The engine itself never fails on bad cells: a bad quantity drops the line
// and a bad unit cell counts as 1. Validation makes those silent recoveries
// visible to the operator.
//
// ERROR HANDLING:
//   - Findings are collected, not returned one at a time
//   - Each finding carries the source, row, field and value
//   - "error" findings make the result invalid, "warning" findings do not
//
// =============================================================================

package validation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/picking-list/internal/csvparser"
	"github.com/ginjaninja78/picking-list/internal/picking"
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding sources.
const (
	SourceOrders    = "orders"
	SourceReference = "reference"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is "error" or "warning".
	Severity string

	// Source is "orders" or "reference".
	Source string

	// Field is the header (orders) or column (reference) that was checked.
	Field string

	// Value is the offending value.
	Value string

	// Rule names the check that failed.
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-indexed row in the source. 0 means the whole input.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Source,
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RowsValidated is the number of rows checked.
	RowsValidated int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

func (r *ValidationResult) add(e *ValidationError, opts ValidationOptions) {
	if opts.TreatWarningsAsErrors && e.Severity == SeverityWarning {
		e.Severity = SeverityError
	}
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// Merge appends the findings of other.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.ErrorCount += other.ErrorCount
	r.WarningCount += other.WarningCount
	r.RowsValidated += other.RowsValidated
	r.IsValid = r.IsValid && other.IsValid
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes every finding fatal.
	// Default: false
	TreatWarningsAsErrors bool

	// RequiredHeaders must be present in the order export.
	// Default: 個数 and 商品名
	RequiredHeaders []string
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		RequiredHeaders: []string{types.HeaderQuantity, types.HeaderProductName},
	}
}

// Validator checks order exports and reference tables.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with default options.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// ORDER EXPORT CHECKS
// =============================================================================

// ValidateOrders checks a parsed order export.
//
// CHECKS:
//   - every required header is present (error)
//   - at least one of 商品コード / 商品SKU is present (error)
//   - quantities are non-negative integers (warning: the line is skipped)
//   - each line has an item code or item SKU (warning: the line is excluded)
func (v *Validator) ValidateOrders(data *csvparser.OrderData) *ValidationResult {
	result := newResult()
	if data == nil {
		return result
	}

	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}

	for _, h := range v.options.RequiredHeaders {
		if !present[h] {
			result.add(&ValidationError{
				Severity: SeverityError,
				Source:   SourceOrders,
				Field:    h,
				Rule:     "required_header",
				Message:  "required column is missing",
			}, v.options)
		}
	}
	if !present[types.HeaderItemCode] && !present[types.HeaderItemSKU] {
		result.add(&ValidationError{
			Severity: SeverityError,
			Source:   SourceOrders,
			Field:    types.HeaderItemCode + "/" + types.HeaderItemSKU,
			Rule:     "lookup_key_header",
			Message:  "no item code column; every line would be excluded",
		}, v.options)
	}

	for _, line := range data.Lines {
		result.RowsValidated++

		if !picking.ValidCount(line.Quantity) {
			result.add(&ValidationError{
				Severity:  SeverityWarning,
				Source:    SourceOrders,
				Field:     types.HeaderQuantity,
				Value:     line.Quantity,
				Rule:      "numeric",
				Message:   "quantity is not a non-negative integer; line will be skipped",
				RowNumber: line.RowNumber,
			}, v.options)
		}

		if strings.TrimSpace(line.ItemCode) == "" && strings.TrimSpace(line.ItemSKU) == "" {
			result.add(&ValidationError{
				Severity:  SeverityWarning,
				Source:    SourceOrders,
				Field:     types.HeaderItemCode,
				Rule:      "lookup_key",
				Message:   "line has neither item code nor item SKU; it will be excluded",
				RowNumber: line.RowNumber,
			}, v.options)
		}
	}

	return result
}

// =============================================================================
// REFERENCE TABLE CHECKS
// =============================================================================

// ValidateReference checks the reference table contract and rows.
//
// CHECKS:
//   - the table satisfies the column contract (error)
//   - the units cell of a keyed row is empty or numeric (warning)
//   - a kit row has a parent JAN (warning: it will be totalled in units)
//   - alt keys are unique, ignoring case (warning: the first row wins)
func (v *Validator) ValidateReference(table *reference.Table) *ValidationResult {
	result := newResult()

	if err := table.Validate(); err != nil {
		result.add(&ValidationError{
			Severity: SeverityError,
			Source:   SourceReference,
			Rule:     "contract",
			Message:  err.Error(),
		}, v.options)
		return result
	}

	seen := make(map[string]int)
	for _, row := range table.Rows() {
		result.RowsValidated++
		if strings.TrimSpace(row.AltKey) == "" {
			continue
		}
		rowNumber := row.Index + 1

		if row.UnitsPerPackage != "" && !picking.ValidCount(row.UnitsPerPackage) {
			result.add(&ValidationError{
				Severity:  SeverityWarning,
				Source:    SourceReference,
				Field:     "G",
				Value:     row.UnitsPerPackage,
				Rule:      "numeric",
				Message:   "units per package is not numeric; 1 will be used",
				RowNumber: rowNumber,
			}, v.options)
		}

		if row.IsKit() && strings.TrimSpace(row.ParentJAN) == "" {
			result.add(&ValidationError{
				Severity:  SeverityWarning,
				Source:    SourceReference,
				Field:     "I",
				Value:     row.ParentASIN,
				Rule:      "kit_parent_jan",
				Message:   "kit row has no parent JAN; it will be totalled in units",
				RowNumber: rowNumber,
			}, v.options)
		}

		key := strings.ToLower(row.AltKey)
		if first, ok := seen[key]; ok {
			result.add(&ValidationError{
				Severity:  SeverityWarning,
				Source:    SourceReference,
				Field:     "Q",
				Value:     row.AltKey,
				Rule:      "duplicate_key",
				Message:   fmt.Sprintf("duplicate key; row %d is used", first),
				RowNumber: rowNumber,
			}, v.options)
			continue
		}
		seen[key] = rowNumber
	}

	return result
}

// IsMalformed reports whether err is a reference contract failure.
func IsMalformed(err error) bool {
	return errors.Is(err, reference.ErrMalformedTable)
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errs)))
	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errs: The validation errors to write.
//   - sourceFile: The input the errors belong to, for the header.
//   - filePath: The path to the output file.
func WriteErrorLog(errs []*ValidationError, sourceFile, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Source: %s\n", sourceFile)
	fmt.Fprintf(writer, "Written: %s\n\n", time.Now().Format(time.RFC3339))
	writer.WriteString(FormatErrors(errs))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
