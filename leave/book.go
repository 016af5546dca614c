package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/warp/leave-registry/sheet"
)

// =============================================================================
// COLUMNS - The sheet schema, latest version
// =============================================================================

const (
	ColEmployeeID    = "maNVYT"
	ColEmployeeName  = "tenNhanVien"
	ColRequestedDate = "ngayDangKy"
	ColKind          = "loaiPhep"
	ColRegisteredAt  = "thoiGianDangKy"
	ColApproval      = "DuyetPhep"
	ColCancelled     = "HuyPhep"
	ColCancelledBy   = "nguoiHuy"
)

// Header is the canonical column order of a new leave table.
var Header = []string{
	ColEmployeeID,
	ColEmployeeName,
	ColRequestedDate,
	ColKind,
	ColRegisteredAt,
	ColApproval,
	ColCancelled,
	ColCancelledBy,
}

// cancelledLabel is the value of the HuyPhep column on a cancelled row.
const cancelledLabel = "Hủy"

// =============================================================================
// BOOK - Leave records on top of a row store
// =============================================================================

// Book maps leave records to rows of one table. It holds no state between
// calls; every Load reads the store again.
type Book struct {
	store sheet.RowStore
	table string
}

func NewBook(store sheet.RowStore, table string) *Book {
	return &Book{store: store, table: table}
}

// Snapshot is the leave table as read by one Load.
type Snapshot struct {
	Header  []string
	Records []Record
}

// Load reads every record. Blank rows are skipped; their positions stay
// reserved so that Row always matches the storage position.
func (b *Book) Load(ctx context.Context) (Snapshot, error) {
	table, err := b.store.FetchAll(ctx, b.table)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrStoreReadFailed, err)
	}

	records := make([]Record, 0, table.Len())
	for i := range table.Rows {
		if rec, ok := decodeRecord(table, i); ok {
			records = append(records, rec)
		}
	}
	return Snapshot{Header: table.Header, Records: records}, nil
}

// Append writes a new record and returns it with its storage position.
// Cells follow the column order of header, which is the table's header as
// last loaded.
func (b *Book) Append(ctx context.Context, header []string, rec Record) (Record, error) {
	if len(header) == 0 {
		header = Header
	}
	row, err := b.store.Append(ctx, b.table, [][]string{encodeRecord(header, rec)})
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
	rec.Row = row
	return rec, nil
}

// MarkCancelled sets the cancellation cells of rec. The write only happens
// if the row still belongs to the same employee and is not cancelled.
func (b *Book) MarkCancelled(ctx context.Context, rec Record, by string) error {
	return b.update(ctx, sheet.CellUpdate{
		Row:     rec.Row,
		Columns: []string{ColCancelled, ColCancelledBy},
		Values:  []string{cancelledLabel, by},
		Expect: map[string]string{
			ColEmployeeID: rec.EmployeeID,
			ColCancelled:  "",
		},
	})
}

// SetApproval writes the decision cell of rec. The write only happens if
// the cell still holds what was read and the row is not cancelled.
func (b *Book) SetApproval(ctx context.Context, rec Record, state ApprovalState) error {
	return b.update(ctx, sheet.CellUpdate{
		Row:     rec.Row,
		Columns: []string{ColApproval},
		Values:  []string{state.Label()},
		Expect: map[string]string{
			ColEmployeeID: rec.EmployeeID,
			ColApproval:   rec.approvalCell,
			ColCancelled:  "",
		},
	})
}

func (b *Book) update(ctx context.Context, u sheet.CellUpdate) error {
	err := b.store.UpdateCells(ctx, b.table, u)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sheet.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConcurrentModification, err)
	case errors.Is(err, sheet.ErrRowOutOfRange):
		return fmt.Errorf("%w: row %d", ErrRecordNotFound, u.Row)
	default:
		return fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
}

// =============================================================================
// ROW MAPPING
// =============================================================================

func decodeRecord(t sheet.Table, row int) (Record, bool) {
	employeeID := strings.TrimSpace(t.Cell(row, ColEmployeeID))
	if employeeID == "" {
		return Record{}, false
	}

	rec := Record{
		Row:          row,
		EmployeeID:   employeeID,
		EmployeeName: strings.TrimSpace(t.Cell(row, ColEmployeeName)),
		Approval:     parseApprovalState(t.Cell(row, ColApproval)),
		approvalCell: strings.TrimSpace(t.Cell(row, ColApproval)),
	}

	// Undecodable dates stay zero and fall out of every date-ranged view.
	rec.RequestedDate, _ = ParseDay(t.Cell(row, ColRequestedDate))
	rec.RegisteredAt, _ = ParseTimestamp(t.Cell(row, ColRegisteredAt))
	if kind, err := ParseLeaveKind(t.Cell(row, ColKind)); err == nil {
		rec.Kind = kind
	}

	if strings.TrimSpace(t.Cell(row, ColCancelled)) != "" {
		by := strings.TrimSpace(t.Cell(row, ColCancelledBy))
		if by == "" {
			// Rows cancelled before nguoiHuy existed were cancelled by their owner.
			by = employeeID
		}
		rec.Cancellation = &Cancellation{CancelledBy: by}
	}
	return rec, true
}

func encodeRecord(header []string, rec Record) []string {
	values := map[string]string{
		ColEmployeeID:    rec.EmployeeID,
		ColEmployeeName:  rec.EmployeeName,
		ColRequestedDate: rec.RequestedDate.String(),
		ColKind:          rec.Kind.Label(),
		ColRegisteredAt:  FormatTimestamp(rec.RegisteredAt),
		ColApproval:      rec.Approval.Label(),
	}
	if rec.Cancellation != nil {
		values[ColCancelled] = cancelledLabel
		values[ColCancelledBy] = rec.Cancellation.CancelledBy
	}

	row := make([]string, len(header))
	for i, column := range header {
		row[i] = values[strings.TrimSpace(column)]
	}
	return row
}
