/*
Package xlsx provides a sheet.RowStore backed by an Excel workbook.

PURPOSE:
  The department keeps its leave book as a spreadsheet. This store reads
  and writes that workbook directly: one worksheet per table, row 1 holds
  the header, data rows start at row 2. Every write is saved to disk
  before returning.

ADDRESSING:
  Data row i (zero-based) lives on worksheet row i+2. Cells are read raw:
  a date typed in Excel reads as its serial number. UpdateCells only
  touches the addressed cells, the rest of the row is left as it is.

CONCURRENCY:
  One server process writes the file. A mutex serializes access inside it.
  People may still edit the workbook in Excel; ReloadIfChanged (driven by
  Watcher) picks their edits up when the file's modification time moves.
*/
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/warp/leave-registry/sheet"
	"github.com/xuri/excelize/v2"
)

// rawValues skips number formats, so date cells typed in Excel come back as
// serials instead of locale-formatted text.
var rawValues = excelize.Options{RawCellValue: true}

// Store is a workbook-backed row store.
type Store struct {
	mu      sync.Mutex
	path    string
	file    *excelize.File
	modTime time.Time
}

// Open opens the workbook at path, creating an empty one if it does not exist.
func Open(path string) (*Store, error) {
	var (
		f   *excelize.File
		err error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create workbook: %w", err)
		}
	} else {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
	}
	s := &Store{path: path, file: f}
	s.modTime = s.statModTime()
	return s, nil
}

// ReloadIfChanged re-reads the workbook if the file changed on disk since
// it was last opened or saved here. It reports whether it reloaded.
func (s *Store) ReloadIfChanged() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod := s.statModTime()
	if mod.IsZero() || mod.Equal(s.modTime) {
		return false, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to reload workbook: %w", err)
	}
	old := s.file
	s.file = f
	s.modTime = mod
	old.Close()
	return true, nil
}

// save writes the workbook and remembers its new modification time so
// our own writes are not mistaken for external edits.
func (s *Store) save() error {
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	s.modTime = s.statModTime()
	return nil
}

func (s *Store) statModTime() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Close releases the workbook.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// EnsureTable creates the worksheet or extends its header row.
func (s *Store) EnsureTable(_ context.Context, table string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.file.GetSheetIndex(table)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := s.file.NewSheet(table); err != nil {
			return fmt.Errorf("failed to create worksheet %s: %w", table, err)
		}
		row := append([]string(nil), header...)
		if err := s.file.SetSheetRow(table, "A1", &row); err != nil {
			return err
		}
		return s.save()
	}

	rows, err := s.file.GetRows(table, rawValues)
	if err != nil {
		return err
	}
	var existing []string
	if len(rows) > 0 {
		existing = rows[0]
	}
	merged, added := sheet.MergeHeader(existing, header)
	if !added {
		return nil
	}
	if err := s.file.SetSheetRow(table, "A1", &merged); err != nil {
		return err
	}
	return s.save()
}

// FetchAll reads the worksheet.
func (s *Store) FetchAll(_ context.Context, table string) (sheet.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, data, err := s.read(table)
	if err != nil {
		return sheet.Table{}, err
	}
	return sheet.Table{
		Name:   table,
		Header: header,
		Rows:   sheet.PadAll(header, data),
	}, nil
}

// Append writes rows after the last data row.
func (s *Store) Append(_ context.Context, table string, rows [][]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, data, err := s.read(table)
	if err != nil {
		return 0, err
	}

	first := len(data)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, first+i+2)
		if err != nil {
			return 0, err
		}
		values := append([]string(nil), r...)
		if err := s.file.SetSheetRow(table, cell, &values); err != nil {
			return 0, fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := s.save(); err != nil {
		return 0, err
	}
	return first, nil
}

// UpdateCells writes the addressed cells of one data row.
func (s *Store) UpdateCells(_ context.Context, table string, update sheet.CellUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	header, data, err := s.read(table)
	if err != nil {
		return err
	}
	if update.Row >= len(data) {
		return fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, update.Row)
	}

	// Apply validates Expect and column names before anything is written.
	updated, err := update.Apply(header, data[update.Row])
	if err != nil {
		return err
	}

	for _, column := range update.Columns {
		idx := sheet.IndexOf(header, column)
		cell, err := excelize.CoordinatesToCellName(idx+1, update.Row+2)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(table, cell, updated[idx]); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}

	return s.save()
}

func (s *Store) read(table string) ([]string, [][]string, error) {
	idx, err := s.file.GetSheetIndex(table)
	if err != nil {
		return nil, nil, err
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, table)
	}

	rows, err := s.file.GetRows(table, rawValues)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read worksheet %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

var (
	_ sheet.RowStore    = (*Store)(nil)
	_ sheet.Provisioner = (*Store)(nil)
)
