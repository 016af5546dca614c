// Package memory provides an in-memory sheet.RowStore.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/leave-registry/sheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	header []string
	rows   [][]string
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*table)}
}

// EnsureTable creates the table or adds the header columns it lacks.
func (m *Memory) EnsureTable(_ context.Context, name string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[name]
	if !ok {
		m.tables[name] = &table{header: append([]string(nil), header...)}
		return nil
	}
	t.header, _ = sheet.MergeHeader(t.header, header)
	return nil
}

// Seed replaces a table's content. Rows are stored as given (not padded) so
// tests can reproduce short spreadsheet rows.
func (m *Memory) Seed(name string, header []string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &table{header: append([]string(nil), header...)}
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	m.tables[name] = t
}

func (m *Memory) FetchAll(_ context.Context, name string) (sheet.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[name]
	if !ok {
		return sheet.Table{}, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, name)
	}

	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rows[i] = sheet.Pad(append([]string(nil), r...), len(t.header))
	}
	return sheet.Table{
		Name:   name,
		Header: append([]string(nil), t.header...),
		Rows:   rows,
	}, nil
}

func (m *Memory) Append(_ context.Context, name string, rows [][]string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, name)
	}

	first := len(t.rows)
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	return first, nil
}

func (m *Memory) UpdateCells(_ context.Context, name string, update sheet.CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%w: %s", sheet.ErrTableNotFound, name)
	}
	if update.Row < 0 || update.Row >= len(t.rows) {
		return fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, update.Row)
	}

	row, err := update.Apply(t.header, t.rows[update.Row])
	if err != nil {
		return err
	}
	t.rows[update.Row] = row
	return nil
}

var (
	_ sheet.RowStore    = (*Memory)(nil)
	_ sheet.Provisioner = (*Memory)(nil)
)
