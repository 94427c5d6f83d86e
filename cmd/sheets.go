// =============================================================================
// Picking List Generator - Sheets Command
// =============================================================================
//
// COMMAND USAGE:
//   picker sheets list
//   picker sheets export [--out file.xlsx]
//
// The reference spreadsheet is maintained by the catalogue team. These
// commands list its sheets and save an offline snapshot workbook that can be
// used as an xlsx reference source when the spreadsheet is unreachable.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/picker"
	"github.com/ginjaninja78/picking-list/internal/xlsxparser"
	"github.com/ginjaninja78/picking-list/internal/xlsxwriter"
)

// snapshotPath overrides the snapshot file name.
var snapshotPath string

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Inspect and snapshot the reference spreadsheet",
}

var sheetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sheets of the reference source",
	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, err := loadConfig()
		if err != nil {
			return err
		}

		names, err := referenceSheetNames(cmd.Context(), mainConfig.Reference)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var sheetsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save the reference source as a snapshot workbook",
	Long: `Copies the configured sheets (reference.export_sheets, or every sheet) of
the reference source into one workbook in the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSheetsExport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
	sheetsCmd.AddCommand(sheetsListCmd)
	sheetsCmd.AddCommand(sheetsExportCmd)

	sheetsExportCmd.Flags().StringVar(
		&snapshotPath,
		"out",
		"",
		"Snapshot file path (default: output_dir/reference_snapshot_<timestamp>.xlsx)",
	)
}

func runSheetsExport(ctx context.Context) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := openLogger(mainConfig)
	if err != nil {
		return err
	}
	defer logger.Close()

	names, data, err := readReferenceSheets(ctx, mainConfig.Reference)
	if err != nil {
		return err
	}

	path := snapshotPath
	if path == "" {
		if err := mainConfig.EnsureDirectories(); err != nil {
			return err
		}
		path = filepath.Join(mainConfig.OutputDir, xlsxwriter.SnapshotName(time.Now()))
	}

	if err := xlsxwriter.WriteSnapshot(path, names, data); err != nil {
		return err
	}
	logger.Info("Exported %d sheet(s) to %s", len(names), path)
	return nil
}

// referenceSheetNames lists the sheets of the configured reference source.
func referenceSheetNames(ctx context.Context, ref config.ReferenceSettings) ([]string, error) {
	switch ref.Source {
	case config.SourceSheets:
		id, err := picker.SpreadsheetIDOf(ref)
		if err != nil {
			return nil, err
		}
		client, err := picker.NewSheetsClient(ctx, ref)
		if err != nil {
			return nil, err
		}
		return client.SheetNames(ctx, id)
	case config.SourceXLSX:
		return xlsxparser.SheetNames(ref.Path)
	default:
		return []string{filepath.Base(ref.Path)}, nil
	}
}

// readReferenceSheets reads the sheets to snapshot. export_sheets narrows
// the selection; otherwise every sheet is read.
func readReferenceSheets(ctx context.Context, ref config.ReferenceSettings) ([]string, map[string][][]string, error) {
	switch ref.Source {
	case config.SourceSheets:
		id, err := picker.SpreadsheetIDOf(ref)
		if err != nil {
			return nil, nil, err
		}
		client, err := picker.NewSheetsClient(ctx, ref)
		if err != nil {
			return nil, nil, err
		}

		names := ref.ExportSheets
		if len(names) == 0 {
			if names, err = client.SheetNames(ctx, id); err != nil {
				return nil, nil, err
			}
		}
		data, err := client.Export(ctx, id, names)
		if err != nil {
			return nil, nil, err
		}
		return names, data, nil

	case config.SourceXLSX:
		wb, err := xlsxparser.ReadWorkbook(ref.Path)
		if err != nil {
			return nil, nil, err
		}
		names := ref.ExportSheets
		if len(names) == 0 {
			names = wb.SheetNames
		}
		for _, name := range names {
			if _, ok := wb.Sheets[name]; !ok {
				return nil, nil, fmt.Errorf("sheet %q not found in %s", name, ref.Path)
			}
		}
		return names, wb.Sheets, nil

	default:
		table, err := picker.LoadReference(ctx, ref, nil)
		if err != nil {
			return nil, nil, err
		}
		name := filepath.Base(ref.Path)
		return []string{name}, map[string][][]string{name: table.Raw()}, nil
	}
}
