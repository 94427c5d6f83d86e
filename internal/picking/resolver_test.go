package picking

import (
	"testing"

	"github.com/ginjaninja78/picking-list/internal/types"
)

func TestResolve_LookupChainPriority(t *testing.T) {
	table := newTable(
		sheetRow{altKey: "CODE", jan: "JAN-CODE"},
		sheetRow{altKey: "MGMT", jan: "JAN-MGMT"},
		sheetRow{altKey: "SKU", jan: "JAN-SKU"},
	)

	testCases := []struct {
		name       string
		line       types.OrderLine
		wantJAN    string
		wantSource LookupSource
	}{
		{
			"item SKU wins over everything",
			types.OrderLine{ItemSKU: "sku", ManagementSKU: "MGMT", ItemCode: "CODE"},
			"JAN-SKU", SourceItemSKU,
		},
		{
			"management SKU when item SKU misses",
			types.OrderLine{ItemSKU: "gone", ManagementSKU: "mgmt", ItemCode: "CODE"},
			"JAN-MGMT", SourceManagementSKU,
		},
		{
			"item code last",
			types.OrderLine{ItemCode: "Code"},
			"JAN-CODE", SourceItemCode,
		},
		{
			"no hit",
			types.OrderLine{ItemCode: "nothing", ProductName: "注文名"},
			"", SourceNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Resolve(tc.line, table)
			if res.JANCode != tc.wantJAN {
				t.Errorf("expected JAN %q, got %q", tc.wantJAN, res.JANCode)
			}
			if res.Source != tc.wantSource {
				t.Errorf("expected source %q, got %q", tc.wantSource, res.Source)
			}
			if res.Matched != (tc.wantSource != SourceNone) {
				t.Errorf("unexpected Matched=%v", res.Matched)
			}
		})
	}
}

func TestResolve_UnmatchedFallsBackToLine(t *testing.T) {
	res := Resolve(types.OrderLine{ItemCode: "X", ProductName: "注文名"}, newTable())

	if res.Matched {
		t.Fatal("expected no match against an empty table")
	}
	if res.ProductName != "注文名" || res.JANCode != "" || res.UnitsPerPackage != 1 {
		t.Errorf("expected fallback (name, no JAN, 1 unit), got %+v", res)
	}
}

func TestResolve_DuplicateAltKeyTakesFirstRow(t *testing.T) {
	table := newTable(
		sheetRow{altKey: "DUP", primary: "LEGACY", jan: "JAN-OLD", units: "1"},
		sheetRow{altKey: "DUP", primary: "LEGACY", jan: "JAN-NEW", units: "2"},
	)

	res := Resolve(types.OrderLine{ItemCode: "LEGACY", ItemSKU: "DUP"}, table)

	if res.JANCode != "JAN-OLD" {
		t.Errorf("expected first row in table order, got %q", res.JANCode)
	}
	if res.Row.Index != 0 {
		t.Errorf("expected row index 0, got %d", res.Row.Index)
	}
}

func TestResolve_KitFields(t *testing.T) {
	table := newTable(sheetRow{
		altKey: "KIT", jan: "JAN-C", units: "x", name: "セット",
		parentASIN: "B0P", parentJAN: "JAN-P", parentUnits: "",
	})

	res := Resolve(types.OrderLine{ItemSKU: "KIT"}, table)

	if !res.Kit {
		t.Fatal("expected kit resolution")
	}
	if res.ParentJANCode != "JAN-P" {
		t.Errorf("expected parent JAN JAN-P, got %q", res.ParentJANCode)
	}
	if res.ParentUnits != 1 {
		t.Errorf("expected default parent units 1, got %d", res.ParentUnits)
	}
	if res.UnitsPerPackage != 1 {
		t.Errorf("expected non-numeric units to default to 1, got %d", res.UnitsPerPackage)
	}
}
