package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-registry/sheet"
	"github.com/warp/leave-registry/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "ngayDangKy", "HuyPhep"}))

	first, err := store.Append(ctx, "leaves", [][]string{
		{"E1", "2025-03-10"},
		{"E2", "2025-03-11", "Hủy"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, first)

	second, err := store.Append(ctx, "leaves", [][]string{{"E3", "2025-03-12"}})
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	table, err := store.FetchAll(ctx, "leaves")
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"E1", "2025-03-10", ""}, table.Rows[0], "short rows are padded")
	assert.Equal(t, "Hủy", table.Cell(1, "HuyPhep"))
	assert.Equal(t, "E3", table.Cell(2, "maNVYT"))
}

func TestStore_UnknownTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.FetchAll(ctx, "missing")
	assert.ErrorIs(t, err, sheet.ErrTableNotFound)

	_, err = store.Append(ctx, "missing", [][]string{{"x"}})
	assert.ErrorIs(t, err, sheet.ErrTableNotFound)
}

func TestStore_UpdateCellsOnlyTouchesNamedColumns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "DuyetPhep", "HuyPhep", "nguoiHuy"}))
	_, err := store.Append(ctx, "leaves", [][]string{{"E1", "Duyệt", "", ""}})
	require.NoError(t, err)

	err = store.UpdateCells(ctx, "leaves", sheet.CellUpdate{
		Row:     0,
		Columns: []string{"HuyPhep", "nguoiHuy"},
		Values:  []string{"Hủy", "E9"},
		Expect:  map[string]string{"HuyPhep": ""},
	})
	require.NoError(t, err)

	table, err := store.FetchAll(ctx, "leaves")
	require.NoError(t, err)
	assert.Equal(t, []string{"E1", "Duyệt", "Hủy", "E9"}, table.Rows[0])
}

func TestStore_UpdateCellsConflict(t *testing.T) {
	// GIVEN: A row already cancelled by another session
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "HuyPhep"}))
	_, err := store.Append(ctx, "leaves", [][]string{{"E1", "Hủy"}})
	require.NoError(t, err)

	// WHEN: A stale session tries to cancel it again
	err = store.UpdateCells(ctx, "leaves", sheet.CellUpdate{
		Row:     0,
		Columns: []string{"HuyPhep"},
		Values:  []string{"Hủy"},
		Expect:  map[string]string{"HuyPhep": ""},
	})

	// THEN: The store refuses with a conflict
	assert.ErrorIs(t, err, sheet.ErrConflict)

	err = store.UpdateCells(ctx, "leaves", sheet.CellUpdate{Row: 7, Columns: []string{"HuyPhep"}, Values: []string{"x"}})
	assert.ErrorIs(t, err, sheet.ErrRowOutOfRange)
}

func TestStore_EnsureTableMigratesHeader(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "HuyPhep"}))
	_, err := store.Append(ctx, "leaves", [][]string{{"E1", "Hủy"}})
	require.NoError(t, err)

	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "HuyPhep", "nguoiHuy"}))

	table, err := store.FetchAll(ctx, "leaves")
	require.NoError(t, err)
	assert.Equal(t, []string{"maNVYT", "HuyPhep", "nguoiHuy"}, table.Header)
	assert.Equal(t, []string{"E1", "Hủy", ""}, table.Rows[0])
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaves.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT"}))
	_, err = store.Append(ctx, "leaves", [][]string{{"E1"}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	table, err := reopened.FetchAll(ctx, "leaves")
	require.NoError(t, err)
	assert.Equal(t, "E1", table.Cell(0, "maNVYT"))
}
