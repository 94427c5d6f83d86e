package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/picker"
	"github.com/ginjaninja78/picking-list/internal/reference"
)

func refRow(altKey, jan, units string) []string {
	cells := make([]string, reference.MinimumContractWidth)
	cells[reference.ColAltKey] = altKey
	cells[reference.ColJAN] = jan
	cells[reference.ColUnitsPerPackage] = units
	return cells
}

func testTable() *reference.Table {
	return reference.NewTable([][]string{
		refRow("SKU-A", "4901111111111", "1"),
		refRow("SKU-B", "4902222222222", "3"),
	}, 0)
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	dir := t.TempDir()
	yaml := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"csv_settings:\n  encoding: UTF-8\n" +
		"reference:\n  source: xlsx\n  path: ref.xlsx\n" +
		"output:\n  formats: [xml]\n  file_name_format: \"{original}\"\n"

	cfg, err := config.ParseMainConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeExports(t *testing.T, dir string, n int) []string {
	t.Helper()
	var paths []string
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("orders_%02d.csv", i))
		content := fmt.Sprintf("商品名,個数,商品SKU\n石鹸,%d,SKU-A\n歯ブラシ,1,SKU-B\n", i+1)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestProcessFiles(t *testing.T) {
	testCases := []struct {
		name  string
		limit int
	}{
		{"sequential", 1},
		{"bounded", 3},
		{"one per file", 6},
		{"non-positive limit", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			p, err := picker.New(cfg, testTable())
			if err != nil {
				t.Fatal(err)
			}
			files := writeExports(t, cfg.InputDir, 6)

			var got []string
			for result := range processFiles(context.Background(), p, files, tc.limit) {
				if !result.Success {
					t.Errorf("%s failed: %v", result.FilePath, result.Error)
					continue
				}
				// orders_NN has NN+1 soap and one pack of three brushes.
				var i int
				fmt.Sscanf(filepath.Base(result.FilePath), "orders_%02d.csv", &i)
				if want := i + 1 + 3; result.List.Total != want {
					t.Errorf("%s: expected total %d, got %d", result.FilePath, want, result.List.Total)
				}
				got = append(got, result.FilePath)
			}

			sort.Strings(got)
			if len(got) != len(files) {
				t.Fatalf("expected %d results, got %d", len(files), len(got))
			}
			for i := range files {
				if got[i] != files[i] {
					t.Errorf("missing result for %s", files[i])
				}
			}
		})
	}
}

func TestProcessFiles_NoFiles(t *testing.T) {
	cfg := testConfig(t)
	p, err := picker.New(cfg, testTable())
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for range processFiles(context.Background(), p, nil, 2) {
		count++
	}
	if count != 0 {
		t.Errorf("expected no results, got %d", count)
	}
}

func TestValidateAll_MergesFindings(t *testing.T) {
	cfg := testConfig(t)
	table := reference.NewTable([][]string{
		refRow("SKU-A", "4901111111111", "1"),
		refRow("sku-a", "4901111111111", "x"),
	}, 0)

	good := filepath.Join(cfg.InputDir, "good.csv")
	bad := filepath.Join(cfg.InputDir, "bad.csv")
	if err := os.WriteFile(good, []byte("商品名,個数,商品SKU\n石鹸,1,SKU-A\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("商品名,個数,商品SKU\n石鹸,abc,SKU-A\n"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(cfg.InputDir, "missing.csv")

	total, parseFailures := validateAll(picker.NewValidator(cfg), table, []string{good, bad, missing}, cfg.CSVSettings)

	if parseFailures != 1 {
		t.Errorf("expected 1 unreadable export, got %d", parseFailures)
	}
	// Reference: non-numeric units and a duplicate key. Orders: one bad quantity.
	if total.WarningCount != 3 || total.ErrorCount != 0 {
		t.Errorf("expected 3 warnings and no errors, got %d / %d", total.WarningCount, total.ErrorCount)
	}
	if total.RowsValidated != 4 {
		t.Errorf("expected 4 rows validated, got %d", total.RowsValidated)
	}
	if !total.IsValid {
		t.Error("expected warnings only")
	}

	cfg.Validation.WarningsAsErrors = true
	strict, _ := validateAll(picker.NewValidator(cfg), table, []string{bad}, cfg.CSVSettings)
	if strict.IsValid || strict.ErrorCount != 3 {
		t.Errorf("expected every finding to be an error, got %d errors (valid=%v)", strict.ErrorCount, strict.IsValid)
	}
}
