package picking

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/picking-list/internal/types"
)

// JANDisplay formats JAN codes for the printed list.
type JANDisplay struct {
	// Exceptions maps a JAN code to a fixed display string.
	Exceptions map[string]string
}

// Format returns the exception text for jan if one is configured, otherwise
// its last four characters.
func (d JANDisplay) Format(jan string) string {
	if jan == "" {
		return ""
	}
	if s, ok := d.Exceptions[jan]; ok && s != "" {
		return s
	}
	r := []rune(jan)
	if len(r) <= 4 {
		return jan
	}
	return string(r[len(r)-4:])
}

// SortByName returns a copy of entries ordered by product name using
// Japanese collation. Equal names keep their insertion order.
func SortByName(entries []types.PickingEntry) []types.PickingEntry {
	out := make([]types.PickingEntry, len(entries))
	copy(out, entries)

	c := collate.New(language.Japanese)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].SortKey(), out[j].SortKey()) < 0
	})
	return out
}
