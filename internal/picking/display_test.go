package picking

import (
	"testing"

	"github.com/ginjaninja78/picking-list/internal/types"
)

func TestJANDisplay_Format(t *testing.T) {
	d := JANDisplay{Exceptions: map[string]string{"000000000A003": "なし"}}

	testCases := []struct {
		jan  string
		want string
	}{
		{"4901234567894", "7894"},
		{"000000000A003", "なし"},
		{"123", "123"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := d.Format(tc.jan); got != tc.want {
			t.Errorf("Format(%q): expected %q, got %q", tc.jan, tc.want, got)
		}
	}
}

func TestSortByName_LeavesInputUntouched(t *testing.T) {
	entries := []types.PickingEntry{
		{ProductName: "ゴマ油"},
		{ProductName: "アロエ"},
		{ProductName: "カレー"},
	}

	sorted := SortByName(entries)

	want := []string{"アロエ", "カレー", "ゴマ油"}
	for i, name := range want {
		if sorted[i].ProductName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, sorted[i].ProductName)
		}
	}
	if entries[0].ProductName != "ゴマ油" {
		t.Error("SortByName must not reorder its input")
	}
}
