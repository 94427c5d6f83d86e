// =============================================================================
// Picking List Generator - Run History Store
// =============================================================================
//
// Every generated picking list is recorded in a SQLite database so that a
// list can be reprinted or compared with an earlier run of the same day.
//
//   runs         one row per run (header data and counts)
//   run_entries  the picking entries of a run, in list order
//
// =============================================================================

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ginjaninja78/picking-list/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	source_file     TEXT NOT NULL,
	shipping_method TEXT NOT NULL DEFAULT '',
	loaded_at       TIMESTAMP NOT NULL,
	total           INTEGER NOT NULL,
	excluded_count  INTEGER NOT NULL,
	eligible_count  INTEGER NOT NULL,
	skipped_count   INTEGER NOT NULL,
	entry_count     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_entries (
	run_id                  TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	position                INTEGER NOT NULL,
	product_name            TEXT NOT NULL,
	jan_code                TEXT NOT NULL,
	parent_jan_code         TEXT NOT NULL,
	quantity                INTEGER NOT NULL,
	normalized_units        INTEGER NOT NULL,
	parent_normalized_units INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_loaded_at ON runs(loaded_at);
`

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is a row of the runs table.
type RunRecord struct {
	RunID          string    `db:"run_id"`
	SourceFile     string    `db:"source_file"`
	ShippingMethod string    `db:"shipping_method"`
	LoadedAt       time.Time `db:"loaded_at"`
	Total          int       `db:"total"`
	ExcludedCount  int       `db:"excluded_count"`
	EligibleCount  int       `db:"eligible_count"`
	SkippedCount   int       `db:"skipped_count"`
	EntryCount     int       `db:"entry_count"`
}

// EntryRecord is a row of the run_entries table.
type EntryRecord struct {
	RunID                 string `db:"run_id"`
	Position              int    `db:"position"`
	ProductName           string `db:"product_name"`
	JANCode               string `db:"jan_code"`
	ParentJANCode         string `db:"parent_jan_code"`
	Quantity              int    `db:"quantity"`
	NormalizedUnits       int    `db:"normalized_units"`
	ParentNormalizedUnits int    `db:"parent_normalized_units"`
}

// Entry converts the record back to a picking entry.
func (r EntryRecord) Entry() types.PickingEntry {
	return types.PickingEntry{
		ProductName:           r.ProductName,
		JANCode:               r.JANCode,
		ParentJANCode:         r.ParentJANCode,
		Quantity:              r.Quantity,
		NormalizedUnits:       r.NormalizedUnits,
		ParentNormalizedUnits: r.ParentNormalizedUnits,
	}
}

// Store is the run history database.
type Store struct {
	db *sqlx.DB
}

// Open opens (and creates if needed) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// One connection serialises concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a picking list and its entries in one transaction.
func (s *Store) RecordRun(ctx context.Context, list *types.PickingList) error {
	if list == nil || list.RunID == "" {
		return fmt.Errorf("RecordRun: run ID is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("RecordRun: begin: %w", err)
	}
	defer tx.Rollback()

	const insertRun = `
		INSERT INTO runs (run_id, source_file, shipping_method, loaded_at, total,
			excluded_count, eligible_count, skipped_count, entry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertRun,
		list.RunID, list.SourceFile, list.ShippingMethod, dbTime(list.LoadedAt), list.Total,
		list.ExcludedCount, list.EligibleCount, list.SkippedCount, len(list.Entries),
	); err != nil {
		return fmt.Errorf("RecordRun: insert run: %w", err)
	}

	if len(list.Entries) > 0 {
		records := make([]EntryRecord, len(list.Entries))
		for i, e := range list.Entries {
			records[i] = EntryRecord{
				RunID:                 list.RunID,
				Position:              i + 1,
				ProductName:           e.ProductName,
				JANCode:               e.JANCode,
				ParentJANCode:         e.ParentJANCode,
				Quantity:              e.Quantity,
				NormalizedUnits:       e.NormalizedUnits,
				ParentNormalizedUnits: e.ParentNormalizedUnits,
			}
		}

		const insertEntries = `
			INSERT INTO run_entries (run_id, position, product_name, jan_code, parent_jan_code,
				quantity, normalized_units, parent_normalized_units)
			VALUES (:run_id, :position, :product_name, :jan_code, :parent_jan_code,
				:quantity, :normalized_units, :parent_normalized_units)`
		if _, err := tx.NamedExecContext(ctx, insertEntries, records); err != nil {
			return fmt.Errorf("RecordRun: insert entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("RecordRun: commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := `SELECT * FROM runs ORDER BY loaded_at DESC, run_id`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	var runs []RunRecord
	if err := s.db.SelectContext(ctx, &runs, q, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run and its entries in list order.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunRecord, []EntryRecord, error) {
	var run RunRecord
	err := s.db.GetContext(ctx, &run, `SELECT * FROM runs WHERE run_id = ?`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	var entries []EntryRecord
	if err := s.db.SelectContext(ctx, &entries,
		`SELECT * FROM run_entries WHERE run_id = ? ORDER BY position`, runID); err != nil {
		return nil, nil, fmt.Errorf("failed to get run entries: %w", err)
	}
	return &run, entries, nil
}

// DeleteBefore removes runs loaded before t and returns how many were
// removed.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE loaded_at < ?`, dbTime(t))
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}

// dbTime stores times in UTC at second precision so that the text form
// sorts chronologically.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
