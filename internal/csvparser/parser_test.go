package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/picking-list/internal/config"
)

const sampleOrders = "注文日時,配送方法(複数配送先),商品名,個数,商品コード,SKU管理番号,商品SKU,備考\n" +
	"2024/05/01,ネコポス,カレー,2,ABC,-2-6,,至急\n" +
	",,,,,,,\n" +
	"2024/05/01,宅配便,ゴマ油,1,XYZ,,SKU-9,\n"

func shiftJIS(t *testing.T, s string) []byte {
	t.Helper()
	b, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

func TestParseReader_ShiftJIS(t *testing.T) {
	settings := config.CSVSettings{Delimiter: ",", Encoding: "Shift_JIS", HeaderRow: 1}

	data, err := ParseReader(bytes.NewReader(shiftJIS(t, sampleOrders)), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data.Lines) != 2 {
		t.Fatalf("expected 2 lines (blank row skipped), got %d", len(data.Lines))
	}

	line := data.Lines[0]
	if line.ProductName != "カレー" || line.Quantity != "2" || line.ItemCode != "ABC" || line.ManagementSKU != "-2-6" {
		t.Errorf("unexpected first line: %+v", line)
	}
	if line.RowNumber != 2 {
		t.Errorf("expected row number 2, got %d", line.RowNumber)
	}
	if data.Lines[1].RowNumber != 4 {
		t.Errorf("expected row number 4 after the blank row, got %d", data.Lines[1].RowNumber)
	}
	if data.Lines[1].ItemSKU != "SKU-9" {
		t.Errorf("expected item SKU SKU-9, got %q", data.Lines[1].ItemSKU)
	}

	if len(data.DroppedColumns) != 1 || data.DroppedColumns[0] != "備考" {
		t.Errorf("expected 備考 to be dropped, got %v", data.DroppedColumns)
	}
	if data.ShippingMethod() != "ネコポス" {
		t.Errorf("expected shipping method of the first line, got %q", data.ShippingMethod())
	}
}

func TestParseReader_UTF8WithBOMAndDecomposedHeader(t *testing.T) {
	// "JANコード" with the voiced mark written as a combining character.
	input := "\xEF\xBB\xBF商品名\tJANコー\u30c8\u3099\t個数\n" +
		"アロエ\t4901234567894\t3\n"
	settings := config.CSVSettings{Delimiter: "tab", Encoding: "UTF-8", HeaderRow: 1}

	data, err := ParseReader(strings.NewReader(input), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(data.Lines))
	}
	if data.Lines[0].ProductName != "アロエ" {
		t.Errorf("expected BOM to be stripped from the first header, got %+v", data.Lines[0])
	}
	if data.Lines[0].JANCode != "4901234567894" {
		t.Errorf("expected decomposed header to match JANコード, got %+v", data.Lines[0])
	}
}

func TestParseReader_HeaderRowOffset(t *testing.T) {
	input := "export generated 2024-05-01\n商品名,個数\nカレー,1\n"
	settings := config.CSVSettings{Delimiter: ",", Encoding: "UTF-8", HeaderRow: 2}

	data, err := ParseReader(strings.NewReader(input), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Lines) != 1 || data.Lines[0].RowNumber != 3 {
		t.Fatalf("expected one line at row 3, got %+v", data.Lines)
	}
}

func TestParseReader_Errors(t *testing.T) {
	settings := config.CSVSettings{Delimiter: ",", Encoding: "UTF-8", HeaderRow: 1}

	if _, err := ParseReader(strings.NewReader(""), settings); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ParseReader(strings.NewReader("a,b\n1,2\n"), settings); err == nil {
		t.Error("expected error when no known header is present")
	}
	settings.Encoding = "KOI8-R"
	if _, err := ParseReader(strings.NewReader(sampleOrders), settings); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

func TestParseAndReadTable(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	if err := os.WriteFile(orders, shiftJIS(t, sampleOrders), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := Parse(orders, config.CSVSettings{Delimiter: ",", Encoding: "sjis", HeaderRow: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.SourceFile != orders {
		t.Errorf("expected source file %s, got %s", orders, data.SourceFile)
	}

	ref := filepath.Join(dir, "reference.csv")
	if err := os.WriteFile(ref, []byte("a,b\nc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadTable(ref, "UTF-8", ",")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || len(rows[1]) != 1 {
		t.Errorf("expected ragged rows to be kept, got %v", rows)
	}
}
