package picking

import (
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// IsEligible reports whether the line belongs on the picking list: its item
// code or its item SKU must appear in the reference table's Q-column.
func IsEligible(line types.OrderLine, table *reference.Table) bool {
	return table.HasAltKey(line.ItemCode) || table.HasAltKey(line.ItemSKU)
}

// Partition splits lines into eligible and excluded, preserving order.
func Partition(lines []types.OrderLine, table *reference.Table) (eligible, excluded []types.OrderLine) {
	for _, line := range lines {
		if IsEligible(line, table) {
			eligible = append(eligible, line)
		} else {
			excluded = append(excluded, line)
		}
	}
	return eligible, excluded
}
