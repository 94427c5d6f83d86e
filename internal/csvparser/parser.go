// =============================================================================
// Picking List Generator - CSV Parser Module
// =============================================================================
//
// This module parses the merchant order export and CSV copies of the
// reference table. It handles:
//   - Shift_JIS or UTF-8 input (with or without a UTF-8 BOM)
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - A header row that is not the first line of the file
//   - Header cells written with decomposed kana or stray whitespace
//
// Only the known order export headers are kept; every other column is
// dropped and reported in OrderData.DroppedColumns.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// =============================================================================
// ORDER DATA STRUCTURE
// =============================================================================

// OrderData represents a parsed order export.
type OrderData struct {
	// Headers are the known headers found in the file, in file order.
	Headers []string

	// DroppedColumns are the headers that were not recognised.
	DroppedColumns []string

	// Lines are the non-empty data rows.
	Lines []types.OrderLine

	// SourceFile is the path (or name) the data came from.
	SourceFile string
}

// ShippingMethod returns the shipping method of the first line, which the
// printed list shows in its header.
func (d *OrderData) ShippingMethod() string {
	if d == nil || len(d.Lines) == 0 {
		return ""
	}
	return d.Lines[0].ShippingMethod
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an order export from disk.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings from the main configuration.
//
// RETURNS:
//   - The parsed order data.
//   - An error if the file cannot be read or has no header row.
func Parse(filePath string, settings config.CSVSettings) (*OrderData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader reads an order export from r.
//
// PARSING PROCESS:
//  1. Decode the byte stream (Shift_JIS by default) and drop a BOM
//  2. Read all records
//  3. Normalise the header row and map it to the known headers
//  4. Build an OrderLine per non-empty data row
func ParseReader(r io.Reader, settings config.CSVSettings) (*OrderData, error) {
	decoded, err := decodingReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings.Delimiter)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	headerIndex := settings.HeaderRow - 1
	if headerIndex < 0 {
		headerIndex = 0
	}
	if len(allRows) <= headerIndex {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[headerIndex])
	colIndex, kept, dropped := knownColumns(headers)
	if len(kept) == 0 {
		return nil, fmt.Errorf("no known order headers found (first header: %q)", first(headers))
	}

	data := &OrderData{
		Headers:        kept,
		DroppedColumns: dropped,
		Lines:          make([]types.OrderLine, 0, len(allRows)-headerIndex-1),
	}

	for i := headerIndex + 1; i < len(allRows); i++ {
		row := allRows[i]
		if isRowEmpty(row) {
			continue
		}

		fields := make(map[string]string, len(colIndex))
		for header, col := range colIndex {
			if col < len(row) {
				fields[header] = strings.TrimSpace(row[col])
			}
		}

		line := types.OrderLineFromFields(fields)
		line.RowNumber = i + 1
		data.Lines = append(data.Lines, line)
	}

	return data, nil
}

// ReadTable reads a whole CSV file as a cell grid. It is used for CSV
// copies of the reference table, so no header handling is applied.
func ReadTable(filePath, encoding, delimiter string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	decoded, err := decodingReader(file, encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, delimiter)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}
	return rows, nil
}

// decodingReader wraps r so that it yields UTF-8 without a BOM.
func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch normalizeEncoding(encoding) {
	case "shiftjis":
		return SkipBOM(transform.NewReader(r, japanese.ShiftJIS.NewDecoder())), nil
	case "eucjp":
		return SkipBOM(transform.NewReader(r, japanese.EUCJP.NewDecoder())), nil
	case "utf8", "":
		return SkipBOM(r), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func normalizeEncoding(encoding string) string {
	e := strings.ToLower(encoding)
	e = strings.NewReplacer("-", "", "_", "", " ", "").Replace(e)
	switch e {
	case "sjis", "cp932", "windows31j":
		return "shiftjis"
	}
	return e
}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(3)
	if err != nil {
		return br
	}
	if peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}

// configureReader configures the CSV reader for the given delimiter.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Rows of a merchant export do not always have the same width.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders trims header cells and composes them to NFC, so that a
// header typed with a separate voiced mark still matches.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = norm.NFC.String(strings.TrimSpace(header))
	}
	return cleaned
}

// knownColumns maps each known header to its first column.
func knownColumns(headers []string) (colIndex map[string]int, kept, dropped []string) {
	known := make(map[string]bool, len(types.KnownHeaders))
	for _, h := range types.KnownHeaders {
		known[h] = true
	}

	colIndex = make(map[string]int)
	for i, h := range headers {
		if !known[h] {
			if h != "" {
				dropped = append(dropped, h)
			}
			continue
		}
		if _, seen := colIndex[h]; seen {
			continue
		}
		colIndex[h] = i
		kept = append(kept, h)
	}
	return colIndex, kept, dropped
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
