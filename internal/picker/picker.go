// =============================================================================
// Picking List Generator - Picker Module
// =============================================================================
//
// The picker runs the whole pipeline for one order export. One Picker is
// built per command invocation and shared by every file of the run; it holds
// the reference table, the engine and the output settings, and keeps no
// per-file state, so Run may be called from several goroutines.
//
// =============================================================================

package picker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/csvparser"
	"github.com/ginjaninja78/picking-list/internal/logging"
	"github.com/ginjaninja78/picking-list/internal/picking"
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/types"
	"github.com/ginjaninja78/picking-list/internal/validation"
	"github.com/ginjaninja78/picking-list/internal/xlsxwriter"
	"github.com/ginjaninja78/picking-list/internal/xmlwriter"
	"github.com/ginjaninja78/picking-list/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result contains the outcome of processing one order export.
type Result struct {
	// FilePath is the path to the order export.
	FilePath string

	// OutputFiles are the written picking list files.
	OutputFiles []string

	// ErrorLog is the validation log, if one was written.
	ErrorLog string

	// List is the computed picking list.
	List *types.PickingList

	// Validation holds the order export findings.
	Validation *validation.ValidationResult

	Success bool
	Error   error
	Stats   ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	LinesRead      int
	ProcessingTime time.Duration
}

// HistoryRecorder stores finished runs. *store.Store implements it.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, list *types.PickingList) error
}

// =============================================================================
// PICKER
// =============================================================================

// Picker turns order exports into picking lists.
type Picker struct {
	cfg       *config.MainConfig
	table     *reference.Table
	engine    *picking.Engine
	rewriter  *Rewriter
	validator *validation.Validator
	display   picking.JANDisplay
	files     *utils.FileManager

	continueOnError bool

	history HistoryRecorder
	logger  logging.Logger
	now     func() time.Time
}

// Option configures a Picker.
type Option func(*Picker)

// WithLogger sets the logger. Engine decisions are traced to it at debug
// level.
func WithLogger(l logging.Logger) Option {
	return func(p *Picker) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithHistory records every successful run.
func WithHistory(h HistoryRecorder) Option {
	return func(p *Picker) { p.history = h }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Picker) { p.now = now }
}

// New builds a Picker.
//
// PARAMETERS:
//   - cfg: The main configuration (overrides, rewrites, output settings).
//   - table: The validated reference table.
//   - opts: Optional logger, history recorder and clock.
//
// RETURNS:
//   - The picker.
//   - An error if the unit overrides or rewrite rules are invalid.
func New(cfg *config.MainConfig, table *reference.Table, opts ...Option) (*Picker, error) {
	overrides, err := cfg.UnitOverrides.Compile()
	if err != nil {
		return nil, fmt.Errorf("invalid unit overrides: %w", err)
	}
	rewriter, err := NewRewriter(cfg.FieldRewrites)
	if err != nil {
		return nil, err
	}

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	files.ArchiveOnSuccess = cfg.ArchiveInputs
	files.UseTimestampSubdirs = true

	p := &Picker{
		cfg:             cfg,
		table:           table,
		rewriter:        rewriter,
		validator:       NewValidator(cfg),
		display:         cfg.JANDisplay(),
		files:           files,
		continueOnError: cfg.ContinueOnError == nil || *cfg.ContinueOnError,
		logger:          logging.Discard,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.engine = picking.NewEngine(overrides, picking.WithTracer(logging.NewTracer(p.logger)))
	return p, nil
}

// NewValidator returns the validator configured by the validation section.
func NewValidator(cfg *config.MainConfig) *validation.Validator {
	opts := validation.DefaultValidationOptions()
	opts.TreatWarningsAsErrors = cfg.Validation.WarningsAsErrors
	return validation.NewValidatorWithOptions(opts)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for one order export.
//
// PROCESSING STEPS:
//  1. Parse the order export
//  2. Apply field rewrite rules
//  3. Validate the order lines
//  4. Build the picking list
//  5. Write the output files
//  6. Record the run and archive the export
func (p *Picker) Run(ctx context.Context, csvPath string) Result {
	startTime := time.Now()
	result := Result{FilePath: csvPath}

	p.logger.Info("Processing file: %s", csvPath)

	// =========================================================================
	// STEP 1: PARSE ORDER EXPORT
	// =========================================================================

	data, err := csvparser.Parse(csvPath, p.cfg.CSVSettings)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse CSV: %w", err)
		return result
	}
	loadedAt := p.now()
	result.Stats.LinesRead = len(data.Lines)
	p.logger.Debug("Parsed %d order lines", len(data.Lines))
	if len(data.DroppedColumns) > 0 {
		p.logger.Debug("Dropped unknown columns: %v", data.DroppedColumns)
	}

	// =========================================================================
	// STEP 2: APPLY FIELD REWRITES
	// =========================================================================

	data.Lines = p.rewriter.RewriteLines(data.Lines)

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================

	result.Validation = p.validator.ValidateOrders(data)
	for _, ve := range result.Validation.Errors {
		p.logger.Warn("Validation: %s", ve.Error())
	}
	if len(result.Validation.Errors) > 0 {
		logPath := filepath.Join(p.cfg.OutputDir, utils.StemOf(csvPath)+"_errors.log")
		if err := validation.WriteErrorLog(result.Validation.Errors, csvPath, logPath); err != nil {
			p.logger.Warn("Failed to write error log: %v", err)
		} else {
			result.ErrorLog = logPath
		}
	}
	if !result.Validation.IsValid && !p.continueOnError {
		result.Error = fmt.Errorf("validation failed with %d errors", result.Validation.ErrorCount)
		return result
	}

	// =========================================================================
	// STEP 4: BUILD PICKING LIST
	// =========================================================================

	list := p.Compute(data.Lines)
	list.RunID = uuid.NewString()
	list.SourceFile = filepath.Base(csvPath)
	list.ShippingMethod = data.ShippingMethod()
	list.LoadedAt = loadedAt
	result.List = list

	p.logger.Info("%s: %d entries, total %d, %d excluded, %d skipped",
		list.SourceFile, len(list.Entries), list.Total, list.ExcludedCount, list.SkippedCount)

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILES
	// =========================================================================

	outputs, err := p.writeOutputs(csvPath, list, data.Lines)
	result.OutputFiles = outputs
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	// =========================================================================
	// STEP 6: RECORD AND ARCHIVE
	// =========================================================================

	if p.history != nil {
		if err := p.history.RecordRun(ctx, list); err != nil {
			p.logger.Warn("Failed to record run %s: %v", list.RunID, err)
		}
	}

	if archived, err := p.files.ArchiveInputFile(csvPath, loadedAt); err != nil {
		p.logger.Warn("Failed to archive %s: %v", csvPath, err)
	} else if archived != csvPath {
		p.logger.Debug("Archived input to %s", archived)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// Preview parses and computes the picking list for csvPath without writing,
// recording or archiving anything. The returned list has no run ID.
func (p *Picker) Preview(csvPath string) (*types.PickingList, error) {
	data, err := csvparser.Parse(csvPath, p.cfg.CSVSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	list := p.Compute(p.rewriter.RewriteLines(data.Lines))
	list.SourceFile = filepath.Base(csvPath)
	list.ShippingMethod = data.ShippingMethod()
	list.LoadedAt = p.now()
	return list, nil
}

// Compute builds the picking list for lines without touching the file
// system. Header fields (run ID, source, load time) are left empty.
func (p *Picker) Compute(lines []types.OrderLine) *types.PickingList {
	res := p.engine.Build(lines, p.table)

	entries := res.Entries
	if p.cfg.Output.Sort == "name" {
		entries = picking.SortByName(entries)
	}

	return &types.PickingList{
		Entries:       entries,
		Total:         res.Total,
		ExcludedCount: res.ExcludedCount,
		EligibleCount: res.EligibleCount,
		SkippedCount:  res.SkippedCount,
	}
}

// writeOutputs writes one file per configured format.
func (p *Picker) writeOutputs(csvPath string, list *types.PickingList, lines []types.OrderLine) ([]string, error) {
	base := utils.OutputBaseName(p.cfg.Output.FileNameFormat, map[string]string{
		"uuid":     list.RunID,
		"original": utils.StemOf(csvPath),
	}, list.LoadedAt)

	var written []string
	for _, format := range p.cfg.Output.Formats {
		path := filepath.Join(p.cfg.OutputDir, base+"."+format)

		var err error
		switch format {
		case "xlsx":
			err = xlsxwriter.WritePickingList(path, xlsxwriter.Workbook{
				List:    list,
				Orders:  p.orderRows(lines),
				Display: p.display,
			})
		case "xml":
			err = xmlwriter.WriteFile(path, list, p.display)
		default:
			err = fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return written, err
		}

		p.logger.Info("Wrote output to: %s", path)
		written = append(written, path)
	}
	return written, nil
}

func (p *Picker) orderRows(lines []types.OrderLine) []xlsxwriter.OrderRow {
	rows := make([]xlsxwriter.OrderRow, len(lines))
	for i, line := range lines {
		rows[i] = xlsxwriter.OrderRow{
			Line:     line,
			Excluded: !picking.IsEligible(line, p.table),
		}
	}
	return rows
}
