package picker

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/types"
	"github.com/ginjaninja78/picking-list/internal/xlsxwriter"
)

// refRow builds a raw reference row with the given contract cells.
func refRow(altKey, jan, units, name string) []string {
	cells := make([]string, reference.MinimumContractWidth)
	cells[reference.ColAltKey] = altKey
	cells[reference.ColJAN] = jan
	cells[reference.ColUnitsPerPackage] = units
	cells[reference.ColDisplayName] = name
	return cells
}

func testConfig(t *testing.T, extra string) *config.MainConfig {
	t.Helper()
	dir := t.TempDir()
	yaml := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"input_archive_dir: " + filepath.Join(dir, "archive") + "\n" +
		"csv_settings:\n  encoding: UTF-8\n" +
		"reference:\n  source: xlsx\n  path: ref.xlsx\n" + extra

	cfg, err := config.ParseMainConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeOrders(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleOrders = "配送方法(複数配送先),商品名,個数,商品コード,SKU管理番号,商品SKU\n" +
	"ネコポス,注文A,2,,,SKU-A\n" +
	"ネコポス,注文B,1,,,SKU-B\n" +
	"ネコポス,対象外,5,,,UNKNOWN\n"

func sampleTable() *reference.Table {
	return reference.NewTable([][]string{
		refRow("SKU-A", "4901111111111", "1", "石鹸"),
		refRow("SKU-B", "4902222222222", "3", "歯ブラシ3本"),
	}, 0)
}

type recorder struct {
	lists []*types.PickingList
}

func (r *recorder) RecordRun(_ context.Context, list *types.PickingList) error {
	r.lists = append(r.lists, list)
	return nil
}

func TestPicker_RunWritesOutputs(t *testing.T) {
	cfg := testConfig(t, "output:\n  formats: [xlsx, xml]\n  file_name_format: \"{original}_{date}\"\n")
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	history := &recorder{}

	p, err := New(cfg, sampleTable(), WithClock(func() time.Time { return now }), WithHistory(history))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := writeOrders(t, cfg.InputDir, "orders.csv", sampleOrders)
	result := p.Run(context.Background(), path)
	if !result.Success {
		t.Fatalf("run failed: %v", result.Error)
	}

	list := result.List
	if len(list.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list.Entries))
	}
	if list.Total != 5 {
		t.Errorf("expected total 5, got %d", list.Total)
	}
	if list.ExcludedCount != 1 {
		t.Errorf("expected 1 excluded line, got %d", list.ExcludedCount)
	}
	if list.ShippingMethod != "ネコポス" || list.SourceFile != "orders.csv" || !list.LoadedAt.Equal(now) {
		t.Errorf("unexpected list header: %+v", list)
	}
	if list.RunID == "" {
		t.Error("expected a run ID")
	}

	want := []string{
		filepath.Join(cfg.OutputDir, "orders_20240501.xlsx"),
		filepath.Join(cfg.OutputDir, "orders_20240501.xml"),
	}
	if len(result.OutputFiles) != 2 || result.OutputFiles[0] != want[0] || result.OutputFiles[1] != want[1] {
		t.Errorf("unexpected outputs: %v", result.OutputFiles)
	}

	f, err := excelize.OpenFile(want[0])
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	total, _ := f.GetCellValue(xlsxwriter.SheetPicking, "B3")
	if total != "5" {
		t.Errorf("expected total 5 in workbook, got %q", total)
	}

	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if err := xml.Unmarshal(data, new(struct{})); err != nil {
		t.Errorf("invalid xml: %v", err)
	}

	if len(history.lists) != 1 || history.lists[0].RunID != list.RunID {
		t.Errorf("expected the run to be recorded once")
	}
}

func TestPicker_RunArchivesInput(t *testing.T) {
	cfg := testConfig(t, "archive_inputs: true\n")
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	path := writeOrders(t, cfg.InputDir, "orders.csv", sampleOrders)
	if result := p.Run(context.Background(), path); !result.Success {
		t.Fatalf("run failed: %v", result.Error)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the input to be moved to the archive")
	}
}

func TestPicker_RunWritesErrorLog(t *testing.T) {
	cfg := testConfig(t, "")
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	orders := "商品名,個数,商品SKU\n石鹸,abc,SKU-A\n歯ブラシ,1,SKU-B\n"
	path := writeOrders(t, cfg.InputDir, "bad.csv", orders)
	result := p.Run(context.Background(), path)
	if !result.Success {
		t.Fatalf("warnings should not fail the run: %v", result.Error)
	}
	if result.ErrorLog != filepath.Join(cfg.OutputDir, "bad_errors.log") {
		t.Errorf("unexpected error log path %q", result.ErrorLog)
	}
	if result.List.SkippedCount != 1 || result.List.Total != 3 {
		t.Errorf("expected 1 skipped line and total 3, got %d / %d", result.List.SkippedCount, result.List.Total)
	}
}

func TestPicker_RunStopsOnInvalidOrders(t *testing.T) {
	cfg := testConfig(t, "continue_on_error: false\n")
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	path := writeOrders(t, cfg.InputDir, "nokey.csv", "商品名,個数\n石鹸,1\n")
	result := p.Run(context.Background(), path)
	if result.Success {
		t.Fatal("expected the run to fail without a lookup key column")
	}
	if !strings.Contains(result.Error.Error(), "validation failed") {
		t.Errorf("unexpected error: %v", result.Error)
	}
	if len(result.OutputFiles) != 0 {
		t.Errorf("expected no output, got %v", result.OutputFiles)
	}
}

func TestPicker_RunMissingFile(t *testing.T) {
	cfg := testConfig(t, "")
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	result := p.Run(context.Background(), filepath.Join(cfg.InputDir, "missing.csv"))
	if result.Success || result.Error == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestPicker_PreviewWritesNothing(t *testing.T) {
	cfg := testConfig(t, "archive_inputs: true\n")
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	path := writeOrders(t, cfg.InputDir, "orders.csv", sampleOrders)
	list, err := p.Preview(path)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if list.Total != 5 || list.RunID != "" {
		t.Errorf("unexpected preview: total=%d runID=%q", list.Total, list.RunID)
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected an empty output directory, found %d files", len(entries))
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("expected the input to stay in place")
	}
}

func TestPicker_ComputeSortsByName(t *testing.T) {
	cfg := testConfig(t, "output:\n  sort: name\n")
	table := reference.NewTable([][]string{
		refRow("B", "JAN-B", "1", "ぶどう"),
		refRow("A", "JAN-A", "1", "あめ"),
	}, 0)
	p, err := New(cfg, table)
	if err != nil {
		t.Fatal(err)
	}

	list := p.Compute([]types.OrderLine{
		{Quantity: "1", ItemSKU: "B"},
		{Quantity: "1", ItemSKU: "A"},
	})
	if len(list.Entries) != 2 || list.Entries[0].ProductName != "あめ" {
		t.Errorf("expected entries sorted by name, got %+v", list.Entries)
	}
}

func TestNew_RejectsBadRewrite(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.FieldRewrites = []config.FieldRewriteRule{{Field: "存在しない列", Actions: []config.RewriteAction{{Type: "trim"}}}}

	if _, err := New(cfg, sampleTable()); err == nil {
		t.Error("expected an error for an unknown rewrite field")
	}
}

func TestPicker_WarningsAsErrorsStopsRun(t *testing.T) {
	cfg := testConfig(t, "continue_on_error: false\nvalidation:\n  warnings_as_errors: true\n")
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	orders := "商品名,個数,商品SKU\n石鹸,abc,SKU-A\n歯ブラシ,1,SKU-B\n"
	path := writeOrders(t, cfg.InputDir, "bad.csv", orders)
	result := p.Run(context.Background(), path)
	if result.Success {
		t.Fatal("expected a bad quantity to fail the run")
	}
	if result.Validation == nil || result.Validation.ErrorCount != 1 || result.Validation.WarningCount != 0 {
		t.Errorf("expected the warning to count as an error, got %+v", result.Validation)
	}
}

func TestPicker_NilContinueOnErrorContinues(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.MainConfig{
		InputDir:    dir,
		OutputDir:   dir,
		CSVSettings: config.CSVSettings{Encoding: "UTF-8", Delimiter: ","},
		Output:      config.OutputSettings{Formats: []string{"xml"}, FileNameFormat: "{original}_list"},
	}
	p, err := New(cfg, sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	path := writeOrders(t, dir, "nokey.csv", "商品名,個数\n石鹸,1\n")
	result := p.Run(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected the run to continue past validation errors, got %v", result.Error)
	}
	if result.Validation.IsValid {
		t.Error("expected an error-level finding")
	}
	if result.List.ExcludedCount != 1 {
		t.Errorf("expected the line to be excluded, got %d", result.List.ExcludedCount)
	}
}
