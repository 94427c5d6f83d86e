// =============================================================================
// Picking List Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading the YAML configuration file. The
// configuration carries everything that changes with the business rather
// than with the code:
//   - where order exports come from and where picking lists go
//   - how the order CSV is encoded
//   - where the reference table lives (XLSX, CSV or Google Sheets)
//   - unit override rules and JAN display exceptions
//   - field rewrite rules applied to order lines before resolution
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/picking-list/internal/picking"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for order exports when no file is given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated picking lists.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives order exports after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file that receives a copy of the log.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds how many order files are processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps going when an order file has validation errors.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveInputs moves processed order files to InputArchiveDir.
	ArchiveInputs bool `yaml:"archive_inputs"`

	// =========================================================================
	// SECTIONS
	// =========================================================================

	CSVSettings          CSVSettings        `yaml:"csv_settings"`
	Reference            ReferenceSettings  `yaml:"reference"`
	Output               OutputSettings     `yaml:"output"`
	UnitOverrides        UnitOverrideConfig `yaml:"unit_overrides"`
	JANDisplayExceptions map[string]string  `yaml:"jan_display_exceptions"`
	FieldRewrites        []FieldRewriteRule `yaml:"field_rewrites"`
	Validation           ValidationSettings `yaml:"validation"`
	History              HistorySettings    `yaml:"history"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings describes the merchant order export.
type CSVSettings struct {
	// Delimiter separates fields. "," "tab" "|" and ";" are understood.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is "Shift_JIS" or "UTF-8".
	// Default: "Shift_JIS" (the merchant tool exports Shift_JIS)
	Encoding string `yaml:"encoding"`

	// HeaderRow is the 1-indexed row holding the column headers.
	// Default: 1
	HeaderRow int `yaml:"header_row"`

	// FilePattern selects order exports in InputDir.
	// Default: "*.csv"
	FilePattern string `yaml:"file_pattern"`
}

// =============================================================================
// REFERENCE TABLE SETTINGS
// =============================================================================

// Reference sources.
const (
	SourceXLSX   = "xlsx"
	SourceCSV    = "csv"
	SourceSheets = "sheets"
)

// ReferenceSettings describes where the reference table comes from.
type ReferenceSettings struct {
	// Source is "xlsx", "csv" or "sheets".
	// Default: "xlsx"
	Source string `yaml:"source"`

	// Path is the workbook or CSV file for the xlsx and csv sources.
	Path string `yaml:"path"`

	// Sheet is the worksheet name for the xlsx source. Empty means the
	// first sheet.
	Sheet string `yaml:"sheet"`

	// SkipRows drops leading rows (headers) before lookups.
	SkipRows int `yaml:"skip_rows"`

	// Encoding of a CSV reference file. Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// SpreadsheetURL or SpreadsheetID identify the Google spreadsheet.
	SpreadsheetURL string `yaml:"spreadsheet_url"`
	SpreadsheetID  string `yaml:"spreadsheet_id"`

	// Range is the A1 range to read, e.g. "出品管理!A:R".
	Range string `yaml:"range"`

	// APIKeyEnv names the environment variable holding the API key.
	// Default: "GOOGLE_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// ExportSheets lists the sheets copied by "sheets export".
	ExportSheets []string `yaml:"export_sheets"`
}

// =============================================================================
// OUTPUT SETTINGS
// =============================================================================

// OutputSettings controls the generated picking list.
type OutputSettings struct {
	// Formats lists the files to write: "xlsx", "xml".
	// Default: ["xlsx"]
	Formats []string `yaml:"formats"`

	// FileNameFormat names the output files. Placeholders: {uuid},
	// {timestamp}, {date}, {original}. The extension is added per format.
	// Default: "picking_{original}_{timestamp}"
	FileNameFormat string `yaml:"file_name_format"`

	// Sort is "insertion" (first seen) or "name" (Japanese collation).
	// Default: "insertion"
	Sort string `yaml:"sort"`
}

// =============================================================================
// UNIT OVERRIDES
// =============================================================================

// UnitOverrideConfig is the YAML form of the unit override table.
type UnitOverrideConfig struct {
	// Exact maps a management SKU code to units per package.
	Exact map[string]int `yaml:"exact"`

	// Patterns are tried in order after Exact.
	Patterns []UnitPatternConfig `yaml:"patterns"`
}

// UnitPatternConfig is one pattern override.
type UnitPatternConfig struct {
	// Pattern is a Go regular expression over the management SKU code.
	Pattern string `yaml:"pattern"`

	// Group is the capture group holding the unit count. 0 means use Units.
	Group int `yaml:"group"`

	// Units is the fixed unit count when Group is 0.
	Units int `yaml:"units"`
}

// Compile turns the YAML form into the engine's override table.
func (u UnitOverrideConfig) Compile() (picking.UnitOverrides, error) {
	overrides := picking.UnitOverrides{Exact: make(map[string]int, len(u.Exact))}
	for code, units := range u.Exact {
		if units < 0 {
			return picking.UnitOverrides{}, fmt.Errorf("unit override %q: units must not be negative", code)
		}
		overrides.Exact[code] = units
	}

	for _, p := range u.Patterns {
		rule, err := picking.NewPatternRule(p.Pattern, p.Group, p.Units)
		if err != nil {
			return picking.UnitOverrides{}, err
		}
		overrides.Patterns = append(overrides.Patterns, rule)
	}
	return overrides, nil
}

// =============================================================================
// FIELD REWRITE RULES
// =============================================================================

// FieldRewriteRule rewrites one order field before resolution.
type FieldRewriteRule struct {
	// Field is the order export header, e.g. "商品SKU".
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []RewriteAction `yaml:"actions"`
}

// RewriteAction is a single rewrite step.
//
// Supported types:
//   - "trim"                 : remove surrounding whitespace
//   - "uppercase"            : convert to upper case
//   - "lowercase"            : convert to lower case
//   - "prepend_string"       : prefix Value
//   - "append_string"        : suffix Value
//   - "replace"              : replace Find with Value
//   - "regex_replace"        : replace matches of the regexp Find with Value
//   - "narrow"               : fold full-width letters and digits to half-width
//   - "lookup"               : replace the whole value via LookupTable
//   - "lookup_with_default"  : as lookup, Value when not found
//   - "if_empty_use_default" : Value when the field is empty
//   - "if_empty_use_field"   : the field named by Value when empty
type RewriteAction struct {
	Type        string            `yaml:"type"`
	Value       string            `yaml:"value"`
	Find        string            `yaml:"find,omitempty"`
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// VALIDATION SETTINGS
// =============================================================================

// ValidationSettings controls how order findings are judged.
type ValidationSettings struct {
	// WarningsAsErrors makes every finding an error, so that with
	// continue_on_error: false a file with a bad quantity is not processed.
	// Default: false
	WarningsAsErrors bool `yaml:"warnings_as_errors"`
}

// =============================================================================
// HISTORY SETTINGS
// =============================================================================

// HistorySettings controls the run history database.
type HistorySettings struct {
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file.
	// Default: "./picking_history.db"
	DBPath string `yaml:"db_path"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses YAML bytes into a MainConfig.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset option.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		yes := true
		config.ContinueOnError = &yes
	}

	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "Shift_JIS"
	}
	if config.CSVSettings.HeaderRow <= 0 {
		config.CSVSettings.HeaderRow = 1
	}
	if config.CSVSettings.FilePattern == "" {
		config.CSVSettings.FilePattern = "*.csv"
	}

	if config.Reference.Source == "" {
		config.Reference.Source = SourceXLSX
	}
	if config.Reference.Encoding == "" {
		config.Reference.Encoding = "UTF-8"
	}
	if config.Reference.APIKeyEnv == "" {
		config.Reference.APIKeyEnv = "GOOGLE_API_KEY"
	}

	if len(config.Output.Formats) == 0 {
		config.Output.Formats = []string{"xlsx"}
	}
	if config.Output.FileNameFormat == "" {
		config.Output.FileNameFormat = "picking_{original}_{timestamp}"
	}
	if config.Output.Sort == "" {
		config.Output.Sort = "insertion"
	}

	if config.History.DBPath == "" {
		config.History.DBPath = "./picking_history.db"
	}
}

// validateMainConfig checks values that defaults cannot fix.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	switch config.Reference.Source {
	case SourceXLSX, SourceCSV:
		if config.Reference.Path == "" {
			return fmt.Errorf("reference.path is required for source %q", config.Reference.Source)
		}
	case SourceSheets:
		if config.Reference.SpreadsheetID == "" && config.Reference.SpreadsheetURL == "" {
			return fmt.Errorf("reference.spreadsheet_id or reference.spreadsheet_url is required for source %q", SourceSheets)
		}
		if config.Reference.Range == "" {
			return fmt.Errorf("reference.range is required for source %q", SourceSheets)
		}
	default:
		return fmt.Errorf("unknown reference.source %q", config.Reference.Source)
	}

	if config.Reference.SkipRows < 0 {
		return fmt.Errorf("reference.skip_rows must not be negative")
	}

	for _, f := range config.Output.Formats {
		switch f {
		case "xlsx", "xml":
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}

	switch config.Output.Sort {
	case "insertion", "name":
	default:
		return fmt.Errorf("unknown output.sort %q", config.Output.Sort)
	}

	if _, err := config.UnitOverrides.Compile(); err != nil {
		return err
	}

	return nil
}

// EnsureDirectories creates the working directories.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{c.InputDir, c.OutputDir}
	if c.ArchiveInputs {
		dirs = append(dirs, c.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// JANDisplay returns the JAN display formatter configured by
// jan_display_exceptions.
func (c *MainConfig) JANDisplay() picking.JANDisplay {
	return picking.JANDisplay{Exceptions: c.JANDisplayExceptions}
}
