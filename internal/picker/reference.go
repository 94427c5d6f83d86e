package picker

import (
	"context"
	"fmt"
	"os"

	"github.com/ginjaninja78/picking-list/internal/config"
	"github.com/ginjaninja78/picking-list/internal/csvparser"
	"github.com/ginjaninja78/picking-list/internal/reference"
	"github.com/ginjaninja78/picking-list/internal/sheets"
	"github.com/ginjaninja78/picking-list/internal/xlsxparser"
)

// ValuesReader reads a spreadsheet range. *sheets.Client implements it.
type ValuesReader interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// NewSheetsClient builds a Sheets client from the API key named in cfg.
func NewSheetsClient(ctx context.Context, cfg config.ReferenceSettings) (*sheets.Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}
	return sheets.NewClient(ctx, key)
}

// SpreadsheetIDOf returns the configured spreadsheet ID, reading it from
// the URL when no ID is given.
func SpreadsheetIDOf(cfg config.ReferenceSettings) (string, error) {
	if cfg.SpreadsheetID != "" {
		return cfg.SpreadsheetID, nil
	}
	return sheets.SpreadsheetID(cfg.SpreadsheetURL)
}

// LoadReference reads the reference table from the configured source and
// checks its column contract. client is only used for the sheets source;
// when nil, one is built from the configured API key.
func LoadReference(ctx context.Context, cfg config.ReferenceSettings, client ValuesReader) (*reference.Table, error) {
	var (
		raw [][]string
		err error
	)

	switch cfg.Source {
	case config.SourceXLSX:
		raw, err = xlsxparser.ReadSheet(cfg.Path, cfg.Sheet)
	case config.SourceCSV:
		raw, err = csvparser.ReadTable(cfg.Path, cfg.Encoding, ",")
	case config.SourceSheets:
		raw, err = readSheetsRange(ctx, cfg, client)
	default:
		err = fmt.Errorf("unknown reference source %q", cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}

	table := reference.NewTable(raw, cfg.SkipRows)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func readSheetsRange(ctx context.Context, cfg config.ReferenceSettings, client ValuesReader) ([][]string, error) {
	id, err := SpreadsheetIDOf(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		c, err := NewSheetsClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return client.Values(ctx, id, cfg.Range)
}
