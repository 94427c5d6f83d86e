package picking

import "github.com/ginjaninja78/picking-list/internal/types"

// Tracer receives decisions at component boundaries. Implementations must
// not change the outcome of a run; the engine works the same with NopTracer.
type Tracer interface {
	// Resolved is called once per eligible, non-zero order line.
	Resolved(line types.OrderLine, res Resolution)

	// OverrideApplied is called when an override table rule replaced the
	// units-per-package value.
	OverrideApplied(line types.OrderLine, units int, rule string)

	// Merged is called after a contribution was added to an entry.
	Merged(key string, entry types.PickingEntry, created bool)
}

// NopTracer discards every event.
type NopTracer struct{}

func (NopTracer) Resolved(types.OrderLine, Resolution) {}

func (NopTracer) OverrideApplied(types.OrderLine, int, string) {}

func (NopTracer) Merged(string, types.PickingEntry, bool) {}
