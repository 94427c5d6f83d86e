package picking

import "github.com/ginjaninja78/picking-list/internal/types"

// Aggregator merges line contributions into picking entries. Entries keep
// the order in which their key was first seen.
type Aggregator struct {
	index   map[string]int
	entries []types.PickingEntry
	tracer  Tracer
}

// NewAggregator returns an empty aggregator. A nil tracer is allowed.
func NewAggregator(tracer Tracer) *Aggregator {
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &Aggregator{
		index:  make(map[string]int),
		tracer: tracer,
	}
}

// EntryKey is the JAN code, or the product name when the JAN is unknown.
func EntryKey(res Resolution) string {
	if res.JANCode != "" {
		return res.JANCode
	}
	return res.ProductName
}

// Add merges one normalized line into its entry.
func (a *Aggregator) Add(res Resolution, n Normalized) {
	key := EntryKey(res)

	if i, ok := a.index[key]; ok {
		e := &a.entries[i]
		e.Quantity += n.Quantity
		e.NormalizedUnits += n.NormalizedUnits
		e.ParentNormalizedUnits += n.ParentQuantity
		if e.ParentJANCode == "" && res.ParentJANCode != "" {
			e.ParentJANCode = res.ParentJANCode
		}
		a.tracer.Merged(key, *e, false)
		return
	}

	a.index[key] = len(a.entries)
	a.entries = append(a.entries, types.PickingEntry{
		ProductName:           res.ProductName,
		JANCode:               res.JANCode,
		ParentJANCode:         res.ParentJANCode,
		Quantity:              n.Quantity,
		NormalizedUnits:       n.NormalizedUnits,
		ParentNormalizedUnits: n.ParentQuantity,
	})
	a.tracer.Merged(key, a.entries[len(a.entries)-1], true)
}

// Entries returns a copy of the entries in insertion order.
func (a *Aggregator) Entries() []types.PickingEntry {
	out := make([]types.PickingEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Total is the grand total of the list: normalized units for regular
// entries, raw quantity for kit entries.
func (a *Aggregator) Total() int {
	return GrandTotal(a.entries)
}

// GrandTotal sums TotalContribution over entries.
func GrandTotal(entries []types.PickingEntry) int {
	total := 0
	for _, e := range entries {
		total += e.TotalContribution()
	}
	return total
}
