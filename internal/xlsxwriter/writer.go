// =============================================================================
// Picking List Generator - XLSX Writer Module
// =============================================================================
//
// This module writes the printable picking list workbook and the reference
// snapshot workbook.
//
// PICKING LIST WORKBOOK:
//   Sheet "ピッキングリスト"
//     rows 1-4  header block (shipping method, load time, total, excluded)
//     row 6     column titles
//     row 7..   one row per picking entry
//   Sheet "注文"
//     the order lines as read, with a trailing 対象外 flag column
//
// SNAPSHOT WORKBOOK:
//   One sheet per exported reference sheet, cells copied as text.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/picking-list/internal/picking"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// Sheet names of the picking list workbook.
const (
	SheetPicking = "ピッキングリスト"
	SheetOrders  = "注文"
)

// listStartRow is the first entry row of the picking sheet.
const listStartRow = 7

var listColumns = []string{"No", "商品名", "JAN", "JAN(下4桁)", "数量", "単品数", "親JAN", "親数量"}

// OrderRow is an order line together with its exclusion status.
type OrderRow struct {
	Line     types.OrderLine
	Excluded bool
}

// Workbook is everything the picking list workbook shows.
type Workbook struct {
	List    *types.PickingList
	Orders  []OrderRow
	Display picking.JANDisplay
}

// =============================================================================
// PICKING LIST WORKBOOK
// =============================================================================

// WritePickingList saves the picking list workbook to path.
//
// PARAMETERS:
//   - path: The output .xlsx path.
//   - wb: The list, the order lines and the JAN display settings.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func WritePickingList(path string, wb Workbook) error {
	if wb.List == nil {
		return fmt.Errorf("picking list is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPicking); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writePickingSheet(f, wb, bold); err != nil {
		return err
	}
	if err := writeOrdersSheet(f, wb.Orders, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writePickingSheet(f *excelize.File, wb Workbook, bold int) error {
	list := wb.List

	loadedAt := ""
	if !list.LoadedAt.IsZero() {
		loadedAt = list.LoadedAt.Format("2006/01/02 15:04")
	}

	header := [][]interface{}{
		{"配送方法", list.ShippingMethod},
		{"読込日時", loadedAt},
		{"合計", list.Total},
		{"対象外", list.ExcludedCount},
	}
	for i, row := range header {
		if err := setRow(f, SheetPicking, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetPicking, "A1", "A4", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	titles := make([]interface{}, len(listColumns))
	for i, c := range listColumns {
		titles[i] = c
	}
	if err := setRow(f, SheetPicking, listStartRow-1, titles); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(listColumns), listStartRow-1)
	if err := f.SetCellStyle(SheetPicking, "A6", last, bold); err != nil {
		return fmt.Errorf("failed to style titles: %w", err)
	}

	for i, e := range list.Entries {
		row := []interface{}{
			i + 1,
			e.ProductName,
			e.JANCode,
			wb.Display.Format(e.JANCode),
			e.Quantity,
			e.NormalizedUnits,
			"",
			"",
		}
		if e.IsKit() {
			row[6] = e.ParentJANCode
			row[7] = e.ParentNormalizedUnits
		}
		if err := setRow(f, SheetPicking, listStartRow+i, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetPicking, "B", "B", 48); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(SheetPicking, "C", "C", 16)
}

func writeOrdersSheet(f *excelize.File, orders []OrderRow, bold int) error {
	if _, err := f.NewSheet(SheetOrders); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	titles := make([]interface{}, 0, len(types.KnownHeaders)+1)
	for _, h := range types.KnownHeaders {
		titles = append(titles, h)
	}
	titles = append(titles, "対象外")
	if err := setRow(f, SheetOrders, 1, titles); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	if err := f.SetCellStyle(SheetOrders, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style titles: %w", err)
	}

	for i, o := range orders {
		fields := o.Line.Fields()
		row := make([]interface{}, 0, len(titles))
		for _, h := range types.KnownHeaders {
			row = append(row, fields[h])
		}
		flag := ""
		if o.Excluded {
			flag = "○"
		}
		row = append(row, flag)

		if err := setRow(f, SheetOrders, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SNAPSHOT WORKBOOK
// =============================================================================

// WriteSnapshot saves several sheets of cell text into one workbook, in the
// order given by names.
func WriteSnapshot(path string, names []string, sheets map[string][][]string) error {
	if len(names) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, name := range names {
		title := uniqueTitle(SheetTitle(name), used)

		if i == 0 {
			if err := f.SetSheetName("Sheet1", title); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(title); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", title, err)
		}

		for r, cells := range sheets[name] {
			row := make([]interface{}, len(cells))
			for c, v := range cells {
				row[c] = v
			}
			if err := setRow(f, title, r+1, row); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// SheetTitle makes name usable as a worksheet title: at most 31 characters
// and none of []:*?/\ .
func SheetTitle(name string) string {
	title := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	if title == "" {
		title = "Sheet"
	}
	if r := []rune(title); len(r) > 31 {
		title = string(r[:31])
	}
	return title
}

func uniqueTitle(title string, used map[string]bool) string {
	candidate := title
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(title)
		if len(r)+len([]rune(suffix)) > 31 {
			r = r[:31-len([]rune(suffix))]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// SnapshotName returns the default file name of a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return fmt.Sprintf("reference_snapshot_%s.xlsx", t.Format("20060102_150405"))
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
