/*
Package sqlite provides a SQLite-backed implementation of sheet.RowStore.

PURPOSE:
  Keeps the spreadsheet shape (header + positional rows) in a relational
  database so the service can run without a spreadsheet file. Each table
  has one header record and one record per data row; a row's cells are
  stored as a JSON array in column order.

KEY TABLES:
  sheet_tables: Table name + header (JSON array)
  sheet_rows:   (table_name, row_index) -> cells (JSON array)

ROW POSITIONS:
  row_index is zero-based and dense. Append takes MAX(row_index)+1 inside
  the same transaction that inserts, so positions never collide.

CELL UPDATES:
  UpdateCells reads the row, applies sheet.CellUpdate (including its
  Expect precondition) and writes it back in one transaction.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/leaves.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - sheet/sheet.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-registry/sheet"
)

// Store implements sheet.RowStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheet_tables (
		name TEXT PRIMARY KEY,
		header_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_rows (
		table_name TEXT NOT NULL REFERENCES sheet_tables(name),
		row_index INTEGER NOT NULL,
		cells_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (table_name, row_index)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// PROVISIONING (sheet.Provisioner)
// =============================================================================

// EnsureTable creates the table or appends the header columns it lacks.
func (s *Store) EnsureTable(ctx context.Context, table string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := loadHeader(ctx, tx, table)
	now := time.Now().UTC().Format(time.RFC3339)
	switch {
	case err == sql.ErrNoRows:
		headerJSON, _ := json.Marshal(header)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_tables (name, header_json, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			table, string(headerJSON), now, now,
		); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	case err != nil:
		return err
	default:
		merged, added := sheet.MergeHeader(existing, header)
		if !added {
			return nil
		}
		headerJSON, _ := json.Marshal(merged)
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_tables SET header_json = ?, updated_at = ? WHERE name = ?`,
			string(headerJSON), now, table,
		); err != nil {
			return fmt.Errorf("failed to extend header of %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// ROW STORE (sheet.RowStore)
// =============================================================================

// FetchAll returns the header and every row ordered by position.
func (s *Store) FetchAll(ctx context.Context, table string) (sheet.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	header, err := loadHeader(ctx, s.db, table)
	if err == sql.ErrNoRows {
		return sheet.Table{}, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, table)
	}
	if err != nil {
		return sheet.Table{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, cells_json FROM sheet_rows WHERE table_name = ? ORDER BY row_index ASC`,
		table,
	)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var data [][]string
	for rows.Next() {
		var (
			index     int
			cellsJSON string
		)
		if err := rows.Scan(&index, &cellsJSON); err != nil {
			return sheet.Table{}, fmt.Errorf("failed to scan row: %w", err)
		}
		cells, err := decodeCells(cellsJSON)
		if err != nil {
			return sheet.Table{}, fmt.Errorf("row %d: %w", index, err)
		}
		// Positions are dense; fill any gap so indexes stay aligned.
		for len(data) < index {
			data = append(data, nil)
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return sheet.Table{}, err
	}

	return sheet.Table{
		Name:   table,
		Header: header,
		Rows:   sheet.PadAll(header, data),
	}, nil
}

// Append adds rows atomically and returns the position of the first one.
func (s *Store) Append(ctx context.Context, table string, rows [][]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := loadHeader(ctx, tx, table); err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, table)
	} else if err != nil {
		return 0, err
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row_index) + 1, 0) FROM sheet_rows WHERE table_name = ?`,
		table,
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to find next row: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, r := range rows {
		cellsJSON, _ := json.Marshal(r)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (table_name, row_index, cells_json, updated_at) VALUES (?, ?, ?, ?)`,
			table, next+i, string(cellsJSON), now,
		); err != nil {
			return 0, fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

// UpdateCells rewrites the named cells of one row.
func (s *Store) UpdateCells(ctx context.Context, table string, update sheet.CellUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	header, err := loadHeader(ctx, tx, table)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", sheet.ErrTableNotFound, table)
	}
	if err != nil {
		return err
	}

	var cellsJSON string
	err = tx.QueryRowContext(ctx,
		`SELECT cells_json FROM sheet_rows WHERE table_name = ? AND row_index = ?`,
		table, update.Row,
	).Scan(&cellsJSON)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, update.Row)
	}
	if err != nil {
		return fmt.Errorf("failed to load row: %w", err)
	}

	cells, err := decodeCells(cellsJSON)
	if err != nil {
		return err
	}
	updated, err := update.Apply(header, cells)
	if err != nil {
		return err
	}

	newJSON, _ := json.Marshal(updated)
	if _, err := tx.ExecContext(ctx,
		`UPDATE sheet_rows SET cells_json = ?, updated_at = ? WHERE table_name = ? AND row_index = ?`,
		string(newJSON), time.Now().UTC().Format(time.RFC3339), table, update.Row,
	); err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}

	return tx.Commit()
}

// Helper functions

func loadHeader(ctx context.Context, db execQuerier, table string) ([]string, error) {
	var headerJSON string
	err := db.QueryRowContext(ctx,
		`SELECT header_json FROM sheet_tables WHERE name = ?`,
		table,
	).Scan(&headerJSON)
	if err != nil {
		return nil, err
	}
	return decodeCells(headerJSON)
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	return cells, nil
}

var (
	_ sheet.RowStore    = (*Store)(nil)
	_ sheet.Provisioner = (*Store)(nil)
)
