// =============================================================================
// Picking List Generator - Reference Table
// =============================================================================
//
// The reference table is a 2-D grid of strings copied from the catalogue
// spreadsheet. Its column layout is a de facto contract with the spreadsheet
// owners:
//
//   | Col | Index | Meaning                                  |
//   |-----|-------|------------------------------------------|
//   | E   | 4     | ASIN                                     |
//   | F   | 5     | JAN code (canonical unit code)           |
//   | G   | 6     | units per package                        |
//   | H   | 7     | parent ASIN (non-empty => kit component) |
//   | I   | 8     | parent JAN code                          |
//   | J   | 9     | parent units per package                 |
//   | P   | 15    | primary item code                        |
//   | Q   | 16    | alternate lookup key                     |
//   | R   | 17    | display name                             |
//
// Each raw row is parsed once into a Row with named fields so that callers
// never index cells by number. Lookups are case-insensitive and are
// recomputed on every call; the table keeps no index.
//
// =============================================================================

package reference

import (
	"errors"
	"fmt"
	"strings"
)

// Column positions of the spreadsheet contract (0-based).
const (
	ColASIN              = 4
	ColJAN               = 5
	ColUnitsPerPackage   = 6
	ColParentASIN        = 7
	ColParentJAN         = 8
	ColParentUnits       = 9
	ColPrimaryCode       = 15
	ColAltKey            = 16
	ColDisplayName       = 17
	MinimumContractWidth = ColDisplayName + 1
)

// ErrMalformedTable is returned when the table cannot satisfy the column
// contract at all.
var ErrMalformedTable = errors.New("reference table does not match the column layout")

// =============================================================================
// ROW
// =============================================================================

// Row is one parsed reference table row.
type Row struct {
	// Index is the 0-based position of the row in the source table.
	Index int

	ASIN            string
	JAN             string
	UnitsPerPackage string
	ParentASIN      string
	ParentJAN       string
	ParentUnits     string
	PrimaryCode     string
	AltKey          string
	DisplayName     string

	// Cells holds the raw cells as read from the source.
	Cells []string
}

// ParseRow maps raw cells onto a Row. Missing cells read as "".
func ParseRow(index int, cells []string) Row {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	return Row{
		Index:           index,
		ASIN:            cell(ColASIN),
		JAN:             cell(ColJAN),
		UnitsPerPackage: cell(ColUnitsPerPackage),
		ParentASIN:      cell(ColParentASIN),
		ParentJAN:       cell(ColParentJAN),
		ParentUnits:     cell(ColParentUnits),
		PrimaryCode:     cell(ColPrimaryCode),
		AltKey:          cell(ColAltKey),
		DisplayName:     cell(ColDisplayName),
		Cells:           cells,
	}
}

// IsKit reports whether the row describes a kit component.
func (r Row) IsKit() bool {
	return strings.TrimSpace(r.ParentASIN) != ""
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an immutable, ordered set of reference rows.
type Table struct {
	rows []Row
}

// NewTable parses a raw 2-D grid. The first skipRows rows (typically a
// header) are left out; row indexes still refer to the raw grid.
func NewTable(raw [][]string, skipRows int) *Table {
	if skipRows < 0 {
		skipRows = 0
	}

	t := &Table{}
	for i := skipRows; i < len(raw); i++ {
		t.rows = append(t.rows, ParseRow(i, raw[i]))
	}
	return t
}

// Rows returns the rows in table order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Raw returns the raw cells of every row, for snapshot export.
func (t *Table) Raw() [][]string {
	raw := make([][]string, 0, t.Len())
	for _, r := range t.Rows() {
		raw = append(raw, r.Cells)
	}
	return raw
}

// =============================================================================
// LOOKUPS
// =============================================================================

// FindByAltKey returns the first row whose Q-column equals key, ignoring
// case. Table order decides between duplicates.
func (t *Table) FindByAltKey(key string) (Row, bool) {
	if key == "" {
		return Row{}, false
	}
	for _, r := range t.Rows() {
		if strings.EqualFold(r.AltKey, key) {
			return r, true
		}
	}
	return Row{}, false
}

// FindAllByPrimaryKey returns every row whose P-column equals key, ignoring
// case, in table order.
func (t *Table) FindAllByPrimaryKey(key string) []Row {
	if key == "" {
		return nil
	}
	var matches []Row
	for _, r := range t.Rows() {
		if strings.EqualFold(r.PrimaryCode, key) {
			matches = append(matches, r)
		}
	}
	return matches
}

// HasAltKey reports whether any row carries key in its Q-column.
func (t *Table) HasAltKey(key string) bool {
	_, ok := t.FindByAltKey(key)
	return ok
}

// =============================================================================
// CONTRACT CHECK
// =============================================================================

// Validate fails fast when no row reaches the contract width. Individual
// short rows are accepted: spreadsheet exports drop trailing empty cells.
func (t *Table) Validate() error {
	if t.Len() == 0 {
		return fmt.Errorf("%w: table is empty", ErrMalformedTable)
	}

	widest := 0
	for _, r := range t.rows {
		if len(r.Cells) > widest {
			widest = len(r.Cells)
		}
	}
	if widest < MinimumContractWidth {
		return fmt.Errorf("%w: widest row has %d columns, need at least %d",
			ErrMalformedTable, widest, MinimumContractWidth)
	}
	return nil
}
