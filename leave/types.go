/*
Package leave implements the leave lifecycle of the laboratory's leave book.

PURPOSE:
  A leave record is one requested day (or half day) off. Employees register
  records and may cancel a limited number of them per half-year; an
  administrator approves or rejects them and may cancel any of them.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveKind: leave or comp time, full day or half day
  - ApprovalState: pending / approved / rejected
  - Cancellation: soft delete marker with the cancelling employee
  - Record: one row of the leave book

STATE AXES:
  approval:     Pending -> Approved | Rejected (administrator only)
  cancellation: Active -> Cancelled (one way, independent of approval)

  A cancelled record drops out of every "active" view whatever its
  approval state.

SEE ALSO:
  - registration.go: Creating records
  - quota.go: Cancellation quota per half-year
  - approval.go: Administrator decisions
  - book.go: Row mapping
*/
package leave

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE KIND
// =============================================================================

type LeaveKind string

const (
	FullDayLeave   LeaveKind = "full_day_leave"
	MorningLeave   LeaveKind = "morning_leave"
	AfternoonLeave LeaveKind = "afternoon_leave"
	FullDayComp    LeaveKind = "full_day_comp"
	MorningComp    LeaveKind = "morning_comp"
	AfternoonComp  LeaveKind = "afternoon_comp"
)

// LeaveKinds lists the kinds in display order.
var LeaveKinds = []LeaveKind{
	FullDayLeave, MorningLeave, AfternoonLeave,
	FullDayComp, MorningComp, AfternoonComp,
}

var kindLabels = map[LeaveKind]string{
	FullDayLeave:   "Phép cả ngày",
	MorningLeave:   "Phép buổi sáng",
	AfternoonLeave: "Phép buổi chiều",
	FullDayComp:    "Bù cả ngày",
	MorningComp:    "Bù buổi sáng",
	AfternoonComp:  "Bù buổi chiều",
}

// Labels written by the first schema, which only knew whole days.
var legacyKindLabels = map[string]LeaveKind{
	"Phép": FullDayLeave,
	"Bù":   FullDayComp,
}

// Label is the value stored in the loaiPhep column.
func (k LeaveKind) Label() string { return kindLabels[k] }

func (k LeaveKind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// Category is the root kind: leave (Phép) or comp time (Bù).
type Category string

const (
	CategoryLeave Category = "leave"
	CategoryComp  Category = "comp"
)

func (k LeaveKind) Category() Category {
	switch k {
	case FullDayComp, MorningComp, AfternoonComp:
		return CategoryComp
	default:
		return CategoryLeave
	}
}

var halfDay = decimal.NewFromFloat(0.5)

// Days is the amount of time off the kind represents.
func (k LeaveKind) Days() decimal.Decimal {
	switch k {
	case MorningLeave, AfternoonLeave, MorningComp, AfternoonComp:
		return halfDay
	default:
		return decimal.NewFromInt(1)
	}
}

// ParseLeaveKind accepts a kind code, its sheet label, or a legacy label.
func ParseLeaveKind(s string) (LeaveKind, error) {
	s = strings.TrimSpace(s)
	if k := LeaveKind(s); k.Valid() {
		return k, nil
	}
	for k, label := range kindLabels {
		if label == s {
			return k, nil
		}
	}
	if k, ok := legacyKindLabels[s]; ok {
		return k, nil
	}
	return "", ErrInvalidLeaveKind
}

// =============================================================================
// APPROVAL STATE
// =============================================================================

type ApprovalState string

const (
	Pending  ApprovalState = "pending"
	Approved ApprovalState = "approved"
	Rejected ApprovalState = "rejected"
)

// Values of the DuyetPhep column.
const (
	approvedLabel = "Duyệt"
	rejectedLabel = "Không duyệt"
)

// Label is the value stored in the DuyetPhep column.
func (s ApprovalState) Label() string {
	switch s {
	case Approved:
		return approvedLabel
	case Rejected:
		return rejectedLabel
	default:
		return ""
	}
}

func parseApprovalState(label string) ApprovalState {
	switch strings.TrimSpace(label) {
	case approvedLabel:
		return Approved
	case rejectedLabel:
		return Rejected
	default:
		return Pending
	}
}

// =============================================================================
// RECORD
// =============================================================================

// Cancellation marks a record as cancelled.
type Cancellation struct {
	CancelledBy string
}

// Record is one row of the leave book.
type Record struct {
	// Row is the storage position. It identifies the record.
	Row int

	EmployeeID    string
	EmployeeName  string
	RequestedDate Day
	Kind          LeaveKind
	RegisteredAt  time.Time
	Approval      ApprovalState
	Cancellation  *Cancellation

	// approvalCell is the DuyetPhep text as read, the precondition of the
	// decision write. Hand-typed notes such as "Chờ duyệt" read as Pending.
	approvalCell string
}

func (r Record) IsActive() bool   { return r.Cancellation == nil }
func (r Record) IsPending() bool  { return r.IsActive() && r.Approval == Pending }
func (r Record) IsApproved() bool { return r.IsActive() && r.Approval == Approved }
func (r Record) IsRejected() bool { return r.IsActive() && r.Approval == Rejected }

// CancelledBy returns who cancelled the record, or "" if it is active.
func (r Record) CancelledBy() string {
	if r.Cancellation == nil {
		return ""
	}
	return r.Cancellation.CancelledBy
}
