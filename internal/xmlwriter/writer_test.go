package xmlwriter

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/picking-list/internal/picking"
	"github.com/ginjaninja78/picking-list/internal/types"
)

func sampleList() *types.PickingList {
	return &types.PickingList{
		RunID:          "run-1",
		SourceFile:     "orders.csv",
		ShippingMethod: "ネコポス",
		LoadedAt:       time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Entries: []types.PickingEntry{
			{ProductName: "カレー & ライス", JANCode: "4900000000001", Quantity: 2, NormalizedUnits: 12},
			{ProductName: "セット", JANCode: "000000000A003", ParentJANCode: "4900000000009", Quantity: 4, NormalizedUnits: 4, ParentNormalizedUnits: 8},
		},
		Total:         16,
		ExcludedCount: 1,
		EligibleCount: 3,
	}
}

func TestGenerate(t *testing.T) {
	display := picking.JANDisplay{Exceptions: map[string]string{"000000000A003": "なし"}}

	out, err := Generate(sampleList(), display)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, xml.Header) {
		t.Error("expected XML declaration")
	}
	for _, want := range []string{
		`<pickingList runId="run-1" source="orders.csv" shippingMethod="ネコポス" loadedAt="2024-05-01T09:00:00Z">`,
		`<item n="1">`,
		`<productName>カレー &amp; ライス</productName>`,
		`<janDisplay>0001</janDisplay>`,
		`<item n="2" kit="true">`,
		`<janDisplay>なし</janDisplay>`,
		`<parentUnits>8</parentUnits>`,
		`<summary total="16" excluded="1" eligible="3" skipped="0"></summary>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in output:\n%s", want, s)
		}
	}
}

func TestGenerate_RoundTripsItemCount(t *testing.T) {
	out, err := GenerateWithOptions(sampleList(), GenerateOptions{Indent: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not well formed: %v", err)
	}
	if len(doc.Items) != 2 || doc.Items[0].ParentJAN != "" {
		t.Errorf("unexpected items: %+v", doc.Items)
	}
}

func TestGenerate_NilList(t *testing.T) {
	if _, err := Generate(nil, picking.JANDisplay{}); err == nil {
		t.Error("expected error for nil list")
	}
}
