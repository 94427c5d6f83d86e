// =============================================================================
// Picking List Generator - Engine
// =============================================================================
//
// The engine runs the reconciliation pipeline over one batch of order lines:
//
//   order lines ──> Partition ──> eligible lines
//                                   │
//                                   ├─> Resolve   (reference row)
//                                   ├─> Normalize (units, kit parent qty)
//                                   └─> Aggregator.Add
//                                              │
//                                              └─> entries + grand total
//
// The engine holds configuration only. Build keeps all state on its own
// stack, so one Engine may serve concurrent callers and identical inputs
// always give identical results.
//
// =============================================================================

package picking

import (
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// Result is the computed picking list for one batch.
type Result struct {
	// Entries is the picking list in first-seen order.
	Entries []types.PickingEntry

	// Total is the grand total (see GrandTotal).
	Total int

	// ExcludedCount is the number of lines not found in the reference table.
	ExcludedCount int

	// EligibleCount is the number of lines that passed the exclusion filter.
	EligibleCount int

	// SkippedCount is the number of eligible lines dropped for a zero or
	// unparsable quantity.
	SkippedCount int
}

// Engine computes picking lists.
type Engine struct {
	overrides UnitOverrides
	tracer    Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer installs a tracer.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine returns an engine using the given override table.
func NewEngine(overrides UnitOverrides, opts ...Option) *Engine {
	e := &Engine{
		overrides: overrides,
		tracer:    NopTracer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build computes the picking list for lines against table.
func (e *Engine) Build(lines []types.OrderLine, table *reference.Table) Result {
	eligible, excluded := Partition(lines, table)

	result := Result{
		ExcludedCount: len(excluded),
		EligibleCount: len(eligible),
	}

	agg := NewAggregator(e.tracer)
	for _, line := range eligible {
		quantity := ParseQuantity(line.Quantity)
		if quantity == 0 {
			result.SkippedCount++
			continue
		}

		res := Resolve(line, table)
		e.tracer.Resolved(line, res)

		n := Normalize(line, quantity, res, e.overrides)
		if n.Overridden {
			e.tracer.OverrideApplied(line, n.UnitsPerLine, n.OverrideRule)
		}

		agg.Add(res, n)
	}

	result.Entries = agg.Entries()
	result.Total = agg.Total()
	return result
}
