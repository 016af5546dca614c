/*
demo.go - Demo data for development instances

PURPOSE:
  Fills an empty staff table with a few accounts and an empty leave table
  with sample requests, so a fresh memory or SQLite instance can be tried
  out straight away. Tables that already hold rows are left alone.

ACCOUNTS (password = account):
  admin    Trưởng khoa  (admin)
  an       Nguyễn Văn An
  binh     Trần Thị Bình
*/
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/leave-registry/directory"
	"github.com/warp/leave-registry/leave"
	"github.com/warp/leave-registry/sheet"
)

var demoStaff = []struct {
	id, name, account, position string
}{
	{"NV000", "Trưởng khoa", "admin", "admin"},
	{"NV001", "Nguyễn Văn An", "an", "Kỹ thuật viên"},
	{"NV002", "Trần Thị Bình", "binh", "Kỹ thuật viên"},
}

// seedDemo writes the demo rows into empty tables. now decides which
// dates are inside the registration window.
func seedDemo(ctx context.Context, store sheet.RowStore, leaveTable, staffTable string, now time.Time) error {
	staff, err := store.FetchAll(ctx, staffTable)
	if err != nil {
		return err
	}
	if staff.Len() == 0 {
		rows := make([][]string, 0, len(demoStaff))
		for _, s := range demoStaff {
			hash, err := directory.HashPassword(s.account)
			if err != nil {
				return err
			}
			rows = append(rows, encodeRow(staff.Header, map[string]string{
				directory.ColEmployeeID:   s.id,
				directory.ColEmployeeName: s.name,
				directory.ColAccount:      s.account,
				directory.ColPassword:     hash,
				directory.ColPosition:     s.position,
			}))
		}
		if _, err := store.Append(ctx, staffTable, rows); err != nil {
			return fmt.Errorf("failed to seed staff: %w", err)
		}
	}

	book := leave.NewBook(store, leaveTable)
	snap, err := book.Load(ctx)
	if err != nil {
		return err
	}
	if len(snap.Records) > 0 {
		return nil
	}

	window := leave.RegistrationWindow(now)
	samples := []struct {
		staff  int
		offset int
		kind   leave.LeaveKind
		state  leave.ApprovalState
	}{
		{1, 3, leave.FullDayLeave, leave.Approved},
		{1, 10, leave.MorningComp, leave.Pending},
		{2, 5, leave.AfternoonLeave, leave.Pending},
		{2, 12, leave.FullDayComp, leave.Rejected},
	}
	for _, s := range samples {
		rec := leave.NewRecord(leave.Request{
			EmployeeID:    demoStaff[s.staff].id,
			EmployeeName:  demoStaff[s.staff].name,
			RequestedDate: window.Start.AddDays(s.offset),
			Kind:          s.kind,
		}, now)
		rec.Approval = s.state
		if _, err := book.Append(ctx, snap.Header, rec); err != nil {
			return err
		}
	}
	return nil
}

func encodeRow(header []string, values map[string]string) []string {
	row := make([]string, len(header))
	for i, column := range header {
		row[i] = values[column]
	}
	return row
}
