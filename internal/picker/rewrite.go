// =============================================================================
// Picking List Generator - Field Rewrite Engine
// =============================================================================
//
// Merchant exports are not always consistent with the reference table: a
// shop may add a prefix to its item codes, type SKUs in full-width letters
// or use an old code for a renamed product. Field rewrite rules fix the
// order lines before they are resolved.
//
// REWRITE TYPES:
//   - String manipulations (trim, case, prepend, append, replace)
//   - Width folding (full-width to half-width)
//   - Lookup table replacements
//   - Fallbacks for empty fields
//
// =============================================================================

package picker

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// Rewriter applies field rewrite rules to order lines.
type Rewriter struct {
	rules   []config.FieldRewriteRule
	regexps map[string]*regexp.Regexp
}

// NewRewriter validates rules and compiles their regular expressions.
func NewRewriter(rules []config.FieldRewriteRule) (*Rewriter, error) {
	known := make(map[string]bool, len(types.KnownHeaders))
	for _, h := range types.KnownHeaders {
		known[h] = true
	}

	r := &Rewriter{rules: rules, regexps: make(map[string]*regexp.Regexp)}
	for _, rule := range rules {
		if !known[rule.Field] {
			return nil, fmt.Errorf("field rewrite: unknown field %q", rule.Field)
		}
		for _, action := range rule.Actions {
			if !knownAction(action.Type) {
				return nil, fmt.Errorf("field rewrite %s: unknown action %q", rule.Field, action.Type)
			}
			if action.Type == "regex_replace" {
				re, err := regexp.Compile(action.Find)
				if err != nil {
					return nil, fmt.Errorf("field rewrite %s: invalid regex pattern: %w", rule.Field, err)
				}
				r.regexps[action.Find] = re
			}
		}
	}
	return r, nil
}

func knownAction(t string) bool {
	switch t {
	case "trim", "uppercase", "lowercase", "prepend_string", "append_string",
		"replace", "regex_replace", "narrow", "lookup", "lookup_with_default",
		"if_empty_use_default", "if_empty_use_field":
		return true
	}
	return false
}

// RewriteLines returns rewritten copies of lines. The input is not modified.
func (r *Rewriter) RewriteLines(lines []types.OrderLine) []types.OrderLine {
	if r == nil || len(r.rules) == 0 {
		return lines
	}

	out := make([]types.OrderLine, len(lines))
	for i, line := range lines {
		out[i] = r.RewriteLine(line)
	}
	return out
}

// RewriteLine applies every rule to one line. Rules run in configuration
// order and see the result of earlier rules.
func (r *Rewriter) RewriteLine(line types.OrderLine) types.OrderLine {
	fields := line.Fields()
	for _, rule := range r.rules {
		value := fields[rule.Field]
		for _, action := range rule.Actions {
			value = r.apply(value, action, fields)
		}
		fields[rule.Field] = value
	}

	rewritten := types.OrderLineFromFields(fields)
	rewritten.RowNumber = line.RowNumber
	return rewritten
}

// apply applies a single rewrite action.
func (r *Rewriter) apply(value string, action config.RewriteAction, fields map[string]string) string {
	switch action.Type {
	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "prepend_string":
		// EXAMPLE: "123456" with value "A" -> "A123456"
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "replace":
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		return r.regexps[action.Find].ReplaceAllString(value, action.Value)

	case "narrow":
		// EXAMPLE: "ＡＢＣ－１２" -> "ABC-12"
		return width.Narrow.String(value)

	case "lookup":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement
		}
		return value

	case "lookup_with_default":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement
		}
		return action.Value

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value
		}
		return value

	case "if_empty_use_field":
		if strings.TrimSpace(value) == "" {
			return fields[action.Value]
		}
		return value
	}

	return value
}
