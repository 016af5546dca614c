package xlsx_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-registry/store/xlsx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

// editExternally writes a row with a separate excelize handle, the way an
// office user saving from Excel would, and moves the mtime forward.
func editExternally(t *testing.T, path string, row []any) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("leaves", "A3", &row))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))
}

func TestStore_ReloadIfChanged(t *testing.T) {
	ctx := context.Background()
	store, path := newTestWorkbook(t)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "ngayDangKy"}))
	_, err := store.Append(ctx, "leaves", [][]string{{"E1", "2025-03-10"}})
	require.NoError(t, err)

	reloaded, err := store.ReloadIfChanged()
	require.NoError(t, err)
	assert.False(t, reloaded, "own writes are not external edits")

	editExternally(t, path, []any{"E2", "2025-03-11"})

	reloaded, err = store.ReloadIfChanged()
	require.NoError(t, err)
	assert.True(t, reloaded)

	table, err := store.FetchAll(ctx, "leaves")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "E2", table.Cell(1, "maNVYT"))

	reloaded, err = store.ReloadIfChanged()
	require.NoError(t, err)
	assert.False(t, reloaded)
}

func TestWatcher_PicksUpExternalEdits(t *testing.T) {
	ctx := context.Background()
	store, path := newTestWorkbook(t)
	require.NoError(t, store.EnsureTable(ctx, "leaves", []string{"maNVYT", "ngayDangKy"}))
	_, err := store.Append(ctx, "leaves", [][]string{{"E1", "2025-03-10"}})
	require.NoError(t, err)

	w := xlsx.NewWatcher(store, 5*time.Millisecond, zaptest.NewLogger(t))
	w.Start()
	defer w.Stop()

	editExternally(t, path, []any{"E2", "2025-03-11"})

	assert.Eventually(t, func() bool {
		table, err := store.FetchAll(ctx, "leaves")
		return err == nil && table.Len() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DisabledAndIdempotentStop(t *testing.T) {
	store, _ := newTestWorkbook(t)

	w := xlsx.NewWatcher(store, 0, nil)
	w.Start()
	w.Stop()

	w = xlsx.NewWatcher(store, time.Hour, nil)
	w.Start()
	w.Start()
	w.Stop()
	w.Stop()
}
