package leave

import (
	"strings"
	"time"
)

// Request is what an employee submits to register a leave.
type Request struct {
	EmployeeID    string
	EmployeeName  string
	RequestedDate Day
	Kind          LeaveKind
}

// CheckRegistration applies the registration policy to req against the
// current records. It does not write anything.
//
//  1. The kind must be one of the known leave kinds.
//  2. The requested date must be inside RegistrationWindow(now).
//  3. No active record of the employee may have the same date and kind.
func CheckRegistration(req Request, records []Record, now time.Time) error {
	if req.RequestedDate.IsZero() {
		return ErrInvalidDate
	}
	if !req.Kind.Valid() {
		return ErrInvalidLeaveKind
	}

	window := RegistrationWindow(now)
	if !window.Contains(req.RequestedDate) {
		return &OutOfWindowError{Requested: req.RequestedDate, Window: window}
	}

	if existing, ok := findDuplicate(req, records); ok {
		return &DuplicateRequestError{
			EmployeeID:  req.EmployeeID,
			Date:        req.RequestedDate,
			Kind:        req.Kind,
			ExistingRow: existing.Row,
		}
	}
	return nil
}

// NewRecord builds the record a successful registration appends.
func NewRecord(req Request, now time.Time) Record {
	return Record{
		EmployeeID:    strings.TrimSpace(req.EmployeeID),
		EmployeeName:  strings.TrimSpace(req.EmployeeName),
		RequestedDate: req.RequestedDate,
		Kind:          req.Kind,
		RegisteredAt:  now.In(ICT).Truncate(time.Second),
		Approval:      Pending,
	}
}

func findDuplicate(req Request, records []Record) (Record, bool) {
	for _, r := range records {
		if r.IsActive() &&
			r.EmployeeID == req.EmployeeID &&
			r.Kind == req.Kind &&
			r.RequestedDate.Equal(req.RequestedDate) {
			return r, true
		}
	}
	return Record{}, false
}
