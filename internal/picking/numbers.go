package picking

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// parseCount parses a base-10, non-negative integer. Full-width digits, which
// Japanese spreadsheets often contain, are narrowed first. ok is false for
// empty, non-numeric or negative input.
func parseCount(s string) (n int, ok bool) {
	s = strings.TrimSpace(width.Narrow.String(s))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseQuantity parses an order line quantity. Anything unparsable counts as
// zero, which drops the line from aggregation.
func ParseQuantity(s string) int {
	n, ok := parseCount(s)
	if !ok {
		return 0
	}
	return n
}

// ParseUnits parses a units-per-package cell, defaulting to 1.
func ParseUnits(s string) int {
	n, ok := parseCount(s)
	if !ok {
		return 1
	}
	return n
}

// ValidCount reports whether s parses as a non-negative count.
func ValidCount(s string) bool {
	_, ok := parseCount(s)
	return ok
}
