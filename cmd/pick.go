// =============================================================================
// Picking List Generator - Pick Command
// =============================================================================
//
// This file defines the 'pick' command, the main command of the tool. It
// turns every order export in the input directory into a picking list.
//
// COMMAND USAGE:
//   picker pick [flags]
//
// FLAGS:
//   --file     : Process only this export instead of scanning the input dir
//   --dry-run  : Compute and print the lists without writing anything
//
// PROCESSING PIPELINE:
//   1. Load the configuration and the reference table
//   2. Discover order exports in the input directory
//   3. For each file (concurrently, at most max_concurrency at a time):
//      a. Parse the export
//      b. Apply field rewrites
//      c. Validate the lines
//      d. Build the picking list
//      e. Write the output files
//      f. Record the run and archive the export
//   4. Print the results and write the summary report
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/logging"
	"github.com/ginjaninja78/picking-list/internal/picker"
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/store"
	"github.com/ginjaninja78/picking-list/internal/types"
	"github.com/ginjaninja78/picking-list/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun computes the lists without writing output files.
var dryRun bool

// pickFile is a single export to process (skips input discovery).
var pickFile string

// =============================================================================
// PICK COMMAND DEFINITION
// =============================================================================

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Build picking lists from order exports",
	Long: `The pick command scans the input directory for order exports and builds a
picking list for each one against the reference table.

Files are processed concurrently. An error in one file does not stop the
others.

On successful processing:
  - The picking list is written to the output directory (xlsx and/or xml)
  - The run is recorded in the history database (if enabled)
  - The export is moved to the input archive (if enabled)

On error:
  - Validation findings are logged to <name>_errors.log in the output directory
  - The export remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Compute and print the picking lists without writing output files",
	)

	pickCmd.Flags().StringVar(
		&pickFile,
		"file",
		"",
		"Path to a single order export to process",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runPick(ctx context.Context) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION AND REFERENCE TABLE
	// =========================================================================

	fmt.Println("=== Picking List Generator ===")

	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := openLogger(mainConfig)
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := mainConfig.EnsureDirectories(); err != nil {
		return err
	}

	table, err := loadReference(ctx, mainConfig, logger)
	if err != nil {
		return err
	}

	opts := []picker.Option{picker.WithLogger(logger)}
	if mainConfig.History.Enabled && !dryRun {
		history, err := store.Open(ctx, mainConfig.History.DBPath)
		if err != nil {
			return err
		}
		defer history.Close()
		opts = append(opts, picker.WithHistory(history))
	}

	p, err := picker.New(mainConfig, table, opts...)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := discoverInputFiles(mainConfig)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Println("No order exports found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	if dryRun {
		return previewFiles(p, inputFiles)
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processFiles(ctx, p, inputFiles, mainConfig.MaxConcurrency)

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND WRITE SUMMARY
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}

	for result := range results {
		name := filepath.Base(result.FilePath)
		if result.Validation != nil {
			summary.Findings += len(result.Validation.Errors)
		}

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
			continue
		}

		list := result.List
		summary.SuccessfulFiles++
		summary.TotalLines += result.Stats.LinesRead
		summary.ExcludedLines += list.ExcludedCount
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFiles: result.OutputFiles,
			RunID:       list.RunID,
			Lines:       result.Stats.LinesRead,
			Entries:     len(list.Entries),
			Total:       list.Total,
			Excluded:    list.ExcludedCount,
			ProcessTime: result.Stats.ProcessingTime,
		})
		fmt.Printf("  ✓ %s -> total %d, %d excluded\n", name, list.Total, list.ExcludedCount)
		for _, out := range result.OutputFiles {
			fmt.Printf("      %s\n", out)
		}
	}
	summary.EndTime = time.Now()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
	if err != nil {
		logger.Warn("Failed to write summary: %v", err)
	} else {
		fmt.Printf("Summary:         %s\n", summaryPath)
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadReference loads the reference table and logs its findings.
func loadReference(ctx context.Context, cfg *config.MainConfig, logger logging.Logger) (*reference.Table, error) {
	table, err := picker.LoadReference(ctx, cfg.Reference, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded reference table: %d rows", table.Len())

	findings := picker.NewValidator(cfg).ValidateReference(table)
	for _, ve := range findings.Errors {
		logger.Warn("Reference: %s", ve.Error())
	}
	return table, nil
}

// discoverInputFiles returns --file, or the exports in the input directory.
func discoverInputFiles(cfg *config.MainConfig) ([]string, error) {
	if pickFile != "" {
		if !utils.FileExists(pickFile) {
			return nil, fmt.Errorf("file not found: %s", pickFile)
		}
		return []string{pickFile}, nil
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	return fm.DiscoverInputFiles(cfg.CSVSettings.FilePattern)
}

// processFiles runs p on every file with at most limit files in flight. The
// results channel is closed once every file is done.
func processFiles(ctx context.Context, p *picker.Picker, files []string, limit int) <-chan picker.Result {
	if limit <= 0 {
		limit = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)
	results := make(chan picker.Result, len(files))

	for _, file := range files {
		wg.Add(1)
		go func(filePath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- p.Run(ctx, filePath)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// previewFiles prints the picking list of each file without writing.
func previewFiles(p *picker.Picker, files []string) error {
	failed := 0
	for _, file := range files {
		list, err := p.Preview(file)
		if err != nil {
			failed++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(file), err)
			continue
		}
		printList(list)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
	}
	return nil
}

// printList writes a picking list as a text table to stdout.
func printList(list *types.PickingList) {
	fmt.Printf("\n%s  (%s)\n", list.SourceFile, list.ShippingMethod)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "No\t商品名\tJAN\t数量\t単品数\t親JAN\t親数量")
	for i, e := range list.Entries {
		parentUnits := ""
		if e.IsKit() {
			parentUnits = fmt.Sprintf("%d", e.ParentNormalizedUnits)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			i+1, e.ProductName, e.JANCode, e.Quantity, e.NormalizedUnits, e.ParentJANCode, parentUnits)
	}
	w.Flush()

	fmt.Printf("合計: %d   対象外: %d   スキップ: %d\n", list.Total, list.ExcludedCount, list.SkippedCount)
}
