// =============================================================================
// Picking List Generator - XLSX Reference Reader
// =============================================================================
//
// This module reads the reference table (出品管理) from an XLSX workbook.
// The workbook is usually a download of the Google spreadsheet the team
// maintains, so the sheet layout is the same as the Sheets range:
//
//   | ... | E (4)  | F (5) | G (6)  | H (7)       | I (8)      | J (9)        | ... | P (15)    | Q (16)  | R (17)       |
//   |-----|--------|-------|--------|-------------|------------|--------------|-----|-----------|---------|--------------|
//   |     | ASIN   | JAN   | Units  | Parent ASIN | Parent JAN | Parent Units |     | Item code | Alt key | Display name |
//
// Cells are returned as displayed strings. Column meaning is owned by the
// reference package; this module only extracts the grid.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is the grid content of one or more sheets.
type Workbook struct {
	// SourceFile is the path of the workbook.
	SourceFile string

	// SheetNames lists the sheets in workbook order.
	SheetNames []string

	// Sheets maps a sheet name to its rows.
	Sheets map[string][][]string
}

// ReadSheet reads a single sheet as a cell grid.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - sheet: The sheet name. An empty name selects the first sheet.
//
// RETURNS:
//   - The rows of the sheet. Trailing empty cells are not returned, so rows
//     may have different lengths.
//   - An error if the file or sheet cannot be read.
func ReadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("reference workbook has no sheets")
		}
	}

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// SheetNames lists the sheets of a workbook.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// ReadWorkbook reads every visible sheet. Sheets whose names start with "_"
// are treated as scratch sheets and skipped.
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{
		SourceFile: path,
		Sheets:     make(map[string][][]string),
	}

	for _, name := range f.GetSheetList() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		visible, err := f.GetSheetVisible(name)
		if err == nil && !visible {
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet '%s': %w", name, err)
		}

		wb.SheetNames = append(wb.SheetNames, name)
		wb.Sheets[name] = rows
	}

	return wb, nil
}
