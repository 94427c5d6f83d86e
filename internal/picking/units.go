// =============================================================================
// Picking List Generator - Unit Normalizer
// =============================================================================
//
// Converts a resolved row into the number of single units one order line
// quantity stands for.
//
// PRECEDENCE (highest first):
//   1. Exact override keyed by the management SKU code
//   2. Pattern override over the management SKU code (first rule that fires)
//   3. Units per package from the reference row (default 1)
//   4. 1 when the line was not resolved
//
// Kit rows additionally yield a parent quantity: parent units x quantity.
//
// =============================================================================

package picking

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ginjaninja78/picking-list/internal/types"
)

// PatternRule derives units from a management SKU code that matches Pattern.
// When Group > 0 the captured group is parsed as the unit count, otherwise
// Units is used as is.
type PatternRule struct {
	Pattern *regexp.Regexp
	Group   int
	Units   int
}

// UnitOverrides is the injected override table.
type UnitOverrides struct {
	Exact    map[string]int
	Patterns []PatternRule
}

// NewPatternRule compiles a pattern rule.
func NewPatternRule(pattern string, group, units int) (PatternRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return PatternRule{}, fmt.Errorf("invalid override pattern %q: %w", pattern, err)
	}
	if group > re.NumSubexp() {
		return PatternRule{}, fmt.Errorf("override pattern %q has no group %d", pattern, group)
	}
	return PatternRule{Pattern: re, Group: group, Units: units}, nil
}

// Lookup returns the override for a management SKU code. rule describes the
// entry that fired, for tracing.
func (o UnitOverrides) Lookup(managementSKU string) (units int, rule string, ok bool) {
	if managementSKU == "" {
		return 0, "", false
	}

	if units, ok := o.Exact[managementSKU]; ok {
		return units, "exact:" + managementSKU, true
	}

	for _, p := range o.Patterns {
		if p.Pattern == nil {
			continue
		}
		m := p.Pattern.FindStringSubmatch(managementSKU)
		if m == nil {
			continue
		}
		if p.Group <= 0 {
			return p.Units, "pattern:" + p.Pattern.String(), true
		}
		n, err := strconv.Atoi(m[p.Group])
		if err != nil || n < 0 {
			continue
		}
		return n, "pattern:" + p.Pattern.String(), true
	}

	return 0, "", false
}

// Normalized is one order line's contribution after unit conversion.
type Normalized struct {
	Quantity int

	// UnitsPerLine is the multiplier applied to Quantity.
	UnitsPerLine int

	// NormalizedUnits is Quantity x UnitsPerLine.
	NormalizedUnits int

	// ParentQuantity is the kit parent quantity, 0 for regular products.
	ParentQuantity int

	Overridden   bool
	OverrideRule string
}

// Normalize applies the precedence rules to one line.
func Normalize(line types.OrderLine, quantity int, res Resolution, overrides UnitOverrides) Normalized {
	n := Normalized{
		Quantity:     quantity,
		UnitsPerLine: 1,
	}

	if res.Matched {
		n.UnitsPerLine = res.UnitsPerPackage
	}

	if units, rule, ok := overrides.Lookup(line.ManagementSKU); ok {
		n.UnitsPerLine = units
		n.Overridden = true
		n.OverrideRule = rule
	}

	if res.Kit {
		n.ParentQuantity = res.ParentUnits * quantity
	}

	n.NormalizedUnits = n.UnitsPerLine * quantity
	return n
}
