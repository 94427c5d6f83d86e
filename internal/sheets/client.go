// =============================================================================
// Picking List Generator - Google Sheets Reader
// =============================================================================
//
// The reference table is maintained as a Google spreadsheet. This module
// fetches a range of it (read only, API key access) and lists or exports its
// sheets. Cell values are returned as displayed strings, the same shape the
// XLSX and CSV readers return.
//
// =============================================================================

package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var spreadsheetURL = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the spreadsheet ID from a Google Sheets URL. A bare
// ID is returned unchanged.
func SpreadsheetID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)
	if s == "" {
		return "", fmt.Errorf("spreadsheet URL is empty")
	}
	if m := spreadsheetURL.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(s, "/:?") {
		return "", fmt.Errorf("invalid spreadsheet URL %q", urlOrID)
	}
	return s, nil
}

// Client reads spreadsheets.
type Client struct {
	svc *gsheets.Service
}

// NewClient returns a client authenticated with an API key. Extra options
// are passed to the service (tests point it at a local endpoint).
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Values reads an A1 range, rendered as displayed text.
func (c *Client) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}
	return toStrings(resp.Values), nil
}

// SheetNames lists the sheet titles of a spreadsheet in tab order.
func (c *Client) SheetNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet %s: %w", spreadsheetID, err)
	}

	names := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			names = append(names, s.Properties.Title)
		}
	}
	return names, nil
}

// Export reads whole sheets in one request. The result maps each requested
// sheet name to its rows.
func (c *Client) Export(ctx context.Context, spreadsheetID string, sheetNames []string) (map[string][][]string, error) {
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	ranges := make([]string, len(sheetNames))
	for i, name := range sheetNames {
		ranges[i] = quoteSheet(name)
	}

	resp, err := c.svc.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to export sheets: %w", err)
	}
	if len(resp.ValueRanges) != len(sheetNames) {
		return nil, fmt.Errorf("expected %d ranges, got %d", len(sheetNames), len(resp.ValueRanges))
	}

	out := make(map[string][][]string, len(sheetNames))
	for i, vr := range resp.ValueRanges {
		out[sheetNames[i]] = toStrings(vr.Values)
	}
	return out, nil
}

// quoteSheet turns a sheet title into an A1 range covering the whole sheet.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toStrings(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows
}
