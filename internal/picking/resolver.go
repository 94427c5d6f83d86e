// =============================================================================
// Picking List Generator - Row Resolver
// =============================================================================
//
// The resolver picks the single reference row that describes an order line.
//
// RESOLUTION POLICY:
//   1. Look the line up in the Q-column, first hit wins:
//        item SKU  ->  management SKU  ->  item code
//   2. No hit: the line stays unresolved (own name, no JAN, 1 unit).
//   3. Hit: JAN, units and display name come from the row. Kit rows (parent
//      ASIN present) also surface the parent JAN and parent units.
//
//   Duplicate Q-column values resolve to the first row in table order. The
//   P-column is not consulted.
//
// =============================================================================

package picking

import (
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// LookupSource names the order line field that produced the match.
type LookupSource string

const (
	SourceNone          LookupSource = ""
	SourceItemSKU       LookupSource = "item_sku"
	SourceManagementSKU LookupSource = "management_sku"
	SourceItemCode      LookupSource = "item_code"
)

// Resolution is the outcome of resolving one order line.
type Resolution struct {
	// Matched is false when no reference row describes the line.
	Matched bool

	// Source is the field whose value matched the Q-column.
	Source LookupSource

	// Row is the chosen reference row; zero when Matched is false.
	Row reference.Row

	JANCode     string
	ProductName string

	// UnitsPerPackage is column G of the row, 1 when missing or unresolved.
	UnitsPerPackage int

	// Kit is set when the row carries a parent ASIN.
	Kit           bool
	ParentJANCode string

	// ParentUnits is column J of a kit row, 1 when missing.
	ParentUnits int
}

// Resolve returns the reference row describing line, if any.
func Resolve(line types.OrderLine, table *reference.Table) Resolution {
	row, source, ok := findQRow(line, table)
	if !ok {
		return Resolution{
			ProductName:     line.ProductName,
			UnitsPerPackage: 1,
		}
	}

	res := Resolution{
		Matched:         true,
		Source:          source,
		Row:             row,
		JANCode:         row.JAN,
		ProductName:     row.DisplayName,
		UnitsPerPackage: ParseUnits(row.UnitsPerPackage),
	}
	if res.ProductName == "" {
		res.ProductName = line.ProductName
	}

	if row.IsKit() {
		res.Kit = true
		res.ParentJANCode = row.ParentJAN
		res.ParentUnits = ParseUnits(row.ParentUnits)
	}

	return res
}

// findQRow walks the lookup chain in priority order.
func findQRow(line types.OrderLine, table *reference.Table) (reference.Row, LookupSource, bool) {
	chain := []struct {
		source LookupSource
		key    string
	}{
		{SourceItemSKU, line.ItemSKU},
		{SourceManagementSKU, line.ManagementSKU},
		{SourceItemCode, line.ItemCode},
	}

	for _, step := range chain {
		if row, ok := table.FindByAltKey(step.key); ok {
			return row, step.source, true
		}
	}
	return reference.Row{}, SourceNone, false
}
