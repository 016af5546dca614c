/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

VALIDATION:
  Request types carry validator tags; handlers call decodeAndValidate.
  Policy rules (window, duplicates, quota) stay in the leave package.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-registry/leave"
)

// =============================================================================
// SESSION
// =============================================================================

type LoginRequest struct {
	Account  string `json:"account" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type ProfileDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Role         string `json:"role"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Profile   ProfileDTO `json:"profile"`
}

func toProfileDTO(sess leave.Session) ProfileDTO {
	return ProfileDTO{
		EmployeeID:   sess.EmployeeID,
		EmployeeName: sess.EmployeeName,
		Role:         string(sess.Role),
	}
}

// =============================================================================
// LEAVES
// =============================================================================

type LeaveKindDTO struct {
	Code     string          `json:"code"`
	Label    string          `json:"label"`
	Category string          `json:"category"`
	Days     decimal.Decimal `json:"days"`
}

// RegisterLeaveRequest accepts the kind as a code or as its sheet label.
type RegisterLeaveRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Kind string `json:"kind" validate:"required"`
}

type LeaveDTO struct {
	Row           int    `json:"row"`
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	RequestedDate string `json:"requested_date"`
	Kind          string `json:"kind"`
	KindLabel     string `json:"kind_label"`
	RegisteredAt  string `json:"registered_at"`
	Approval      string `json:"approval"`
	Cancelled     bool   `json:"cancelled"`
	CancelledBy   string `json:"cancelled_by,omitempty"`
}

func toLeaveDTO(r leave.Record) LeaveDTO {
	dto := LeaveDTO{
		Row:           r.Row,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		RequestedDate: r.RequestedDate.String(),
		Kind:          string(r.Kind),
		KindLabel:     r.Kind.Label(),
		Approval:      string(r.Approval),
		Cancelled:     !r.IsActive(),
		CancelledBy:   r.CancelledBy(),
	}
	if !r.RegisteredAt.IsZero() {
		dto.RegisteredAt = leave.FormatTimestamp(r.RegisteredAt)
	}
	return dto
}

func toLeaveDTOs(records []leave.Record) []LeaveDTO {
	out := make([]LeaveDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toLeaveDTO(r))
	}
	return out
}

type LeaveListResponse struct {
	From   string     `json:"from,omitempty"`
	To     string     `json:"to,omitempty"`
	Leaves []LeaveDTO `json:"leaves"`
}

// LeaveActionResponse is returned by every mutating leave endpoint.
type LeaveActionResponse struct {
	Message string   `json:"message"`
	Leave   LeaveDTO `json:"leave"`
}

// =============================================================================
// QUOTA & USAGE
// =============================================================================

type QuotaDTO struct {
	Year                int `json:"year"`
	Max                 int `json:"max_per_half_year"`
	FirstHalfRemaining  int `json:"first_half_remaining"`
	SecondHalfRemaining int `json:"second_half_remaining"`
}

func toQuotaDTO(q leave.QuotaSummary) QuotaDTO {
	return QuotaDTO{
		Year:                q.Year,
		Max:                 leave.MaxCancellationsPerPeriod,
		FirstHalfRemaining:  q.FirstHalfRemaining,
		SecondHalfRemaining: q.SecondHalfRemaining,
	}
}

type CancellableResponse struct {
	Quota  QuotaDTO   `json:"quota"`
	Leaves []LeaveDTO `json:"leaves"`
}

type UsageDTO struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	Period        string          `json:"period"`
	LeaveApproved decimal.Decimal `json:"leave_approved"`
	LeavePending  decimal.Decimal `json:"leave_pending"`
	CompApproved  decimal.Decimal `json:"comp_approved"`
	CompPending   decimal.Decimal `json:"comp_pending"`
	TotalLeave    decimal.Decimal `json:"total_leave"`
	TotalComp     decimal.Decimal `json:"total_comp"`
}

func toUsageDTOs(usage []leave.Usage) []UsageDTO {
	out := make([]UsageDTO, 0, len(usage))
	for _, u := range usage {
		out = append(out, UsageDTO{
			EmployeeID:    u.EmployeeID,
			EmployeeName:  u.EmployeeName,
			Period:        u.Period.String(),
			LeaveApproved: u.LeaveApproved,
			LeavePending:  u.LeavePending,
			CompApproved:  u.CompApproved,
			CompPending:   u.CompPending,
			TotalLeave:    u.TotalLeave(),
			TotalComp:     u.TotalComp(),
		})
	}
	return out
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
