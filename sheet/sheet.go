/*
sheet.go - Row store contract for spreadsheet-shaped tables

PURPOSE:
  The leave book and the employee directory are plain tables: a header row
  naming the columns, followed by data rows addressed by position. This
  package defines that shape and the three operations every backend must
  offer. It knows nothing about leave requests.

KEY TYPES:
  Table:       Header + rows, short rows right-padded with ""
  RowStore:    FetchAll / Append / UpdateCells
  CellUpdate:  Targeted write of a few named cells in one row, with an
               optional compare-and-swap precondition (Expect)
  Provisioner: Optional capability to create tables and add missing columns

ROW POSITIONS:
  Data rows are zero-based. Row 0 is the first row under the header
  (spreadsheet row 2). Positions are stable: rows are never deleted.

CONCURRENCY:
  Backends serialize their own writes. CellUpdate.Expect lets callers
  detect that another writer changed the cells between their read and
  their write; the backend returns ErrConflict instead of overwriting.

IMPLEMENTATIONS:
  - store/memory: in-memory (tests, dev)
  - store/sqlite: SQLite
  - store/xlsx:   Excel workbook on disk

SEE ALSO:
  - leave/book.go: maps rows to leave records
  - directory/directory.go: maps rows to employees
*/
package sheet

import (
	"context"
	"fmt"
	"strings"
)

// =============================================================================
// TABLE
// =============================================================================

// Table is a snapshot of a stored table.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Index returns the position of a column, or -1 when the header lacks it.
func (t Table) Index(column string) int {
	return IndexOf(t.Header, column)
}

// Cell returns the value at (row, column). Missing columns and out of range
// rows read as "".
func (t Table) Cell(row int, column string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	idx := t.Index(column)
	if idx < 0 || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// IndexOf finds a column name in a header. Matching ignores surrounding
// whitespace, since hand-edited sheets often carry stray spaces.
func IndexOf(header []string, column string) int {
	want := strings.TrimSpace(column)
	for i, h := range header {
		if strings.TrimSpace(h) == want {
			return i
		}
	}
	return -1
}

// Pad right-pads row with "" up to width. Longer rows are returned as is.
func Pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// PadAll pads every row to the header width.
func PadAll(header []string, rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = Pad(r, len(header))
	}
	return out
}

// =============================================================================
// ROW STORE
// =============================================================================

// RowStore is the persistence contract for positional tables.
type RowStore interface {
	// FetchAll returns the whole table. Rows are padded to the header width.
	FetchAll(ctx context.Context, table string) (Table, error)

	// Append adds rows at the end of the table and returns the position of
	// the first appended row.
	Append(ctx context.Context, table string, rows [][]string) (int, error)

	// UpdateCells writes the named cells of one row. Other cells are left
	// untouched. Returns ErrConflict when Expect does not hold.
	UpdateCells(ctx context.Context, table string, update CellUpdate) error
}

// Provisioner is implemented by stores that can create tables.
type Provisioner interface {
	// EnsureTable creates the table with the given header, or appends the
	// header columns the existing table lacks. Existing columns keep their
	// positions.
	EnsureTable(ctx context.Context, table string, header []string) error
}

// CellUpdate targets a few cells of one row by column name.
type CellUpdate struct {
	Row     int
	Columns []string
	Values  []string

	// Expect holds the values some columns must currently have for the
	// update to apply, compared after trimming spaces. Nil means
	// unconditional.
	Expect map[string]string
}

// Validate checks the update is well formed.
func (u CellUpdate) Validate() error {
	if u.Row < 0 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, u.Row)
	}
	if len(u.Columns) == 0 || len(u.Columns) != len(u.Values) {
		return fmt.Errorf("%w: %d columns, %d values", ErrMalformedUpdate, len(u.Columns), len(u.Values))
	}
	return nil
}

// Apply checks the update against header/row and returns the new row.
// The input row is not modified. Backends call this under their own lock.
func (u CellUpdate) Apply(header, row []string) ([]string, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	out := Pad(append([]string(nil), row...), len(header))

	for column, want := range u.Expect {
		idx := IndexOf(header, column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
		}
		if strings.TrimSpace(out[idx]) != want {
			return nil, &ConflictError{Row: u.Row, Column: column, Expected: want, Actual: out[idx]}
		}
	}

	for i, column := range u.Columns {
		idx := IndexOf(header, column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
		}
		out[idx] = u.Values[i]
	}
	return out, nil
}

// MergeHeader returns existing followed by the columns of want it lacks.
// The second result reports whether anything was added.
func MergeHeader(existing, want []string) ([]string, bool) {
	merged := append([]string(nil), existing...)
	added := false
	for _, column := range want {
		if IndexOf(merged, column) < 0 {
			merged = append(merged, column)
			added = true
		}
	}
	return merged, added
}
