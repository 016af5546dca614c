package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-registry/leave"
	"github.com/warp/leave-registry/sheet"
	"github.com/warp/leave-registry/store/memory"
)

const table = "leaves"

func TestBook_LoadReadsLegacyRows(t *testing.T) {
	// GIVEN: a sheet written by an older version, without nguoiHuy and with
	//        coarse kinds, day-first dates and a blank line
	store := memory.NewMemory()
	store.Seed(table,
		[]string{"maNVYT", "tenNhanVien", "ngayDangKy", "loaiPhep", "thoiGianDangKy", "DuyetPhep", "HuyPhep"},
		[]string{"E1", "An", "10/03/2025", "Phép", "2025-03-01 09:00:00", "Duyệt"},
		[]string{},
		[]string{"E2", "Bình", "2025-03-11", "Bù", "2025-03-01 10:00:00", "", "Hủy"},
		[]string{"E3", "Chi", "not a date", "Phép buổi sáng"},
	)
	book := leave.NewBook(store, table)

	// WHEN
	snap, err := book.Load(context.Background())
	require.NoError(t, err)

	// THEN: the blank line is skipped but positions are kept
	require.Len(t, snap.Records, 3)
	first, comp := snap.Records[0], snap.Records[1]
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, leave.FullDayLeave, first.Kind)
	assert.Equal(t, "2025-03-10", first.RequestedDate.String())
	assert.True(t, first.IsApproved())

	assert.Equal(t, 2, comp.Row)
	assert.Equal(t, leave.FullDayComp, comp.Kind)
	// Cancelled before nguoiHuy existed: attributed to the owner.
	assert.Equal(t, "E2", comp.CancelledBy())

	assert.True(t, snap.Records[2].RequestedDate.IsZero())
	assert.Equal(t, leave.MorningLeave, snap.Records[2].Kind)
}

func TestBook_AppendFollowsStoredColumnOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemory()
	header := []string{"tenNhanVien", "maNVYT", "loaiPhep", "ngayDangKy", "thoiGianDangKy", "DuyetPhep", "HuyPhep", "nguoiHuy"}
	store.Seed(table, header)
	book := leave.NewBook(store, table)

	rec := leave.NewRecord(leave.Request{
		EmployeeID: "E1", EmployeeName: "An",
		RequestedDate: date(2025, time.March, 10), Kind: leave.AfternoonComp,
	}, ict(2025, time.March, 1))

	saved, err := book.Append(ctx, header, rec)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Row)

	stored, err := store.FetchAll(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, []string{"An", "E1", "Bù buổi chiều", "2025-03-10", "2025-03-01 09:00:00", "", "", ""}, stored.Rows[0])
}

func TestBook_WritesAreConditional(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemory()
	require.NoError(t, store.EnsureTable(ctx, table, leave.Header))
	book := leave.NewBook(store, table)

	rec, err := book.Append(ctx, leave.Header, leave.NewRecord(leave.Request{
		EmployeeID: "E1", RequestedDate: date(2025, time.March, 10), Kind: leave.FullDayLeave,
	}, ict(2025, time.March, 1)))
	require.NoError(t, err)

	require.NoError(t, book.SetApproval(ctx, rec, leave.Approved))
	// A second decision based on the stale read loses the race.
	assert.ErrorIs(t, book.SetApproval(ctx, rec, leave.Rejected), leave.ErrConcurrentModification)

	require.NoError(t, book.MarkCancelled(ctx, rec, "ADMIN"))
	assert.ErrorIs(t, book.MarkCancelled(ctx, rec, "E1"), leave.ErrConcurrentModification)

	stored, err := store.FetchAll(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, "Duyệt", stored.Cell(0, leave.ColApproval))
	assert.Equal(t, "Hủy", stored.Cell(0, leave.ColCancelled))
	assert.Equal(t, "ADMIN", stored.Cell(0, leave.ColCancelledBy))

	missing := rec
	missing.Row = 7
	assert.ErrorIs(t, book.MarkCancelled(ctx, missing, "E1"), leave.ErrRecordNotFound)
}

func TestBook_StoreFailuresAreWrapped(t *testing.T) {
	book := leave.NewBook(memory.NewMemory(), "nowhere")

	_, err := book.Load(context.Background())
	assert.ErrorIs(t, err, leave.ErrStoreReadFailed)
	assert.ErrorIs(t, err, sheet.ErrTableNotFound)

	_, err = book.Append(context.Background(), nil, leave.Record{EmployeeID: "E1"})
	assert.ErrorIs(t, err, leave.ErrStoreWriteFailed)
}
