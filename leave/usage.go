package leave

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Usage totals one employee's active leave in one half-year, in days.
// Rejected records are left out.
type Usage struct {
	EmployeeID   string
	EmployeeName string
	Period       HalfYear

	LeaveApproved decimal.Decimal
	LeavePending  decimal.Decimal
	CompApproved  decimal.Decimal
	CompPending   decimal.Decimal
}

// TotalLeave is approved plus pending leave.
func (u Usage) TotalLeave() decimal.Decimal { return u.LeaveApproved.Add(u.LeavePending) }

// TotalComp is approved plus pending comp time.
func (u Usage) TotalComp() decimal.Decimal { return u.CompApproved.Add(u.CompPending) }

// Summarize computes usage per employee for period, ordered by employee id.
// A non-empty employeeID restricts the result to that employee.
func Summarize(records []Record, period HalfYear, employeeID string) []Usage {
	byEmployee := make(map[string]*Usage)
	for _, r := range records {
		if !r.IsActive() || r.IsRejected() || r.RequestedDate.IsZero() || !period.Contains(r.RequestedDate) {
			continue
		}
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}

		u, ok := byEmployee[r.EmployeeID]
		if !ok {
			u = &Usage{
				EmployeeID:    r.EmployeeID,
				EmployeeName:  r.EmployeeName,
				Period:        period,
				LeaveApproved: decimal.Zero,
				LeavePending:  decimal.Zero,
				CompApproved:  decimal.Zero,
				CompPending:   decimal.Zero,
			}
			byEmployee[r.EmployeeID] = u
		}

		days := r.Kind.Days()
		switch {
		case r.Kind.Category() == CategoryComp && r.IsApproved():
			u.CompApproved = u.CompApproved.Add(days)
		case r.Kind.Category() == CategoryComp:
			u.CompPending = u.CompPending.Add(days)
		case r.IsApproved():
			u.LeaveApproved = u.LeaveApproved.Add(days)
		default:
			u.LeavePending = u.LeavePending.Add(days)
		}
	}

	out := make([]Usage, 0, len(byEmployee))
	for _, u := range byEmployee {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}
