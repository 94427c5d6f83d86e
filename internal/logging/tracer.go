package logging

import (
	"github.com/ginjaninja78/picking-list/internal/picking"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// Tracer logs engine decisions at debug level.
type Tracer struct {
	log Logger
}

// NewTracer returns a picking.Tracer writing to l.
func NewTracer(l Logger) *Tracer {
	if l == nil {
		l = Discard
	}
	return &Tracer{log: l}
}

var _ picking.Tracer = (*Tracer)(nil)

func (t *Tracer) Resolved(line types.OrderLine, res picking.Resolution) {
	if !res.Matched {
		t.log.Debug("row %d: no reference row for SKU=%q code=%q", line.RowNumber, line.ItemSKU, line.ItemCode)
		return
	}
	t.log.Debug("row %d: resolved via %s to sheet row %d (JAN=%s units=%d kit=%v)",
		line.RowNumber, res.Source, res.Row.Index, res.JANCode, res.UnitsPerPackage, res.Kit)
}

func (t *Tracer) OverrideApplied(line types.OrderLine, units int, rule string) {
	t.log.Debug("row %d: units overridden to %d by %s", line.RowNumber, units, rule)
}

func (t *Tracer) Merged(key string, entry types.PickingEntry, created bool) {
	if created {
		t.log.Debug("entry %q created (qty=%d units=%d)", key, entry.Quantity, entry.NormalizedUnits)
		return
	}
	t.log.Debug("entry %q merged (qty=%d units=%d)", key, entry.Quantity, entry.NormalizedUnits)
}
